package multipart

import (
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"
)

// Encode writes doc using the same naming grammar Decode accepts.
// List items and records are re-indexed densely from 0.
// The caller closes w.
func Encode(w *multipart.Writer, doc *Document, schema Schema) error {
	for _, name := range sortedKeys(doc.Scalars) {
		if err := w.WriteField(name, doc.Scalars[name]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	for _, name := range sortedKeys(doc.Lists) {
		for i, v := range doc.Lists[name] {
			p := Path{Kind: KindListItem, Name: name, Index: i}
			if err := w.WriteField(p.String(), v); err != nil {
				return fmt.Errorf("write %s: %w", p, err)
			}
		}
	}

	for _, name := range sortedKeys(doc.Collections) {
		fileField := schema.Collections[name].FileField
		for i, rec := range doc.Collections[name] {
			fields := make([]string, 0, len(rec.Fields))
			for f := range rec.Fields {
				fields = append(fields, f)
			}
			sort.Strings(fields)

			for _, f := range fields {
				p := Path{Kind: KindRecordField, Name: name, Index: i, Field: f}
				if err := w.WriteField(p.String(), rec.Fields[f]); err != nil {
					return fmt.Errorf("write %s: %w", p, err)
				}
			}
			if rec.File == nil {
				continue
			}
			if fileField == "" {
				return fmt.Errorf("collection %s has no file field", name)
			}
			p := Path{Kind: KindRecordField, Name: name, Index: i, Field: fileField}
			if err := writeFile(w, p.String(), rec.File); err != nil {
				return fmt.Errorf("write %s: %w", p, err)
			}
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, field string, f *File) error {
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// an empty filename would make the part decode as a plain value
	filename := f.Filename
	if filename == "" {
		filename = "upload"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Data)
	return err
}
