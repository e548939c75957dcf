package multipart

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
)

// DecodeError rejects the whole request: no partial acceptance.
type DecodeError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return "decode: " + e.Reason
	}
	return fmt.Sprintf("decode %s: %s", e.Field, e.Reason)
}

// File is an uploaded part attached to a record.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Record is one element of a collection. Index is the index the client sent;
// records are returned densely in ascending Index order.
type Record struct {
	Index  int
	Fields map[string]string
	File   *File
}

// Document is the decoded form.
type Document struct {
	Scalars     map[string]string
	Lists       map[string][]string
	Collections map[string][]Record
}

func NewDocument() *Document {
	return &Document{
		Scalars:     map[string]string{},
		Lists:       map[string][]string{},
		Collections: map[string][]Record{},
	}
}

// Scalar reports the value and whether the field was sent at all.
func (d *Document) Scalar(name string) (string, bool) {
	v, ok := d.Scalars[name]
	return v, ok
}

func (d *Document) List(name string) ([]string, bool) {
	v, ok := d.Lists[name]
	return v, ok
}

func (d *Document) Collection(name string) ([]Record, bool) {
	v, ok := d.Collections[name]
	return v, ok
}

// ParseRequest parses the multipart body of r and decodes it against schema.
func ParseRequest(r *http.Request, maxMemory int64, schema Schema) (*Document, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, &DecodeError{Reason: "content type must be multipart/form-data"}
		}
		return nil, &DecodeError{Reason: "invalid multipart body: " + err.Error()}
	}
	return Decode(r.MultipartForm, schema)
}

type recordKey struct {
	name  string
	index int
}

type builder struct {
	schema  Schema
	doc     *Document
	seen    map[Path]bool
	lists   map[string]map[int]string
	records map[recordKey]*Record
}

// Decode turns a parsed multipart form into a Document.
func Decode(form *multipart.Form, schema Schema) (*Document, error) {
	b := &builder{
		schema:  schema,
		doc:     NewDocument(),
		seen:    map[Path]bool{},
		lists:   map[string]map[int]string{},
		records: map[recordKey]*Record{},
	}
	if form == nil {
		return b.doc, nil
	}

	for _, key := range sortedKeys(form.Value) {
		if err := b.addValue(key, form.Value[key]); err != nil {
			return nil, err
		}
	}
	for _, key := range sortedKeys(form.File) {
		if err := b.addFile(key, form.File[key]); err != nil {
			return nil, err
		}
	}

	if err := b.finish(); err != nil {
		return nil, err
	}
	return b.doc, nil
}

func (b *builder) claim(raw string, p Path) error {
	if b.seen[p] {
		return &DecodeError{Field: raw, Reason: "duplicate value for " + p.String()}
	}
	b.seen[p] = true
	return nil
}

func (b *builder) addValue(raw string, values []string) error {
	p, err := ParsePath(raw)
	if err != nil {
		return err
	}
	if len(values) > 1 {
		return &DecodeError{Field: raw, Reason: "duplicate value"}
	}
	value := ""
	if len(values) == 1 {
		value = values[0]
	}

	switch p.Kind {
	case KindScalar:
		if !b.schema.isScalar(p.Name) {
			return unknown(raw)
		}
		if err := b.claim(raw, p); err != nil {
			return err
		}
		b.doc.Scalars[p.Name] = value

	case KindListItem:
		if !b.schema.isList(p.Name) {
			return unknown(raw)
		}
		if err := b.claim(raw, p); err != nil {
			return err
		}
		if b.lists[p.Name] == nil {
			b.lists[p.Name] = map[int]string{}
		}
		b.lists[p.Name][p.Index] = value

	case KindRecordField:
		col, ok := b.schema.collection(p.Name)
		if !ok {
			return unknown(raw)
		}
		if col.FileField != "" && p.Field == col.FileField {
			// browsers send an empty text part for an untouched file input
			if value == "" {
				return nil
			}
			return &DecodeError{Field: raw, Reason: "expected a file"}
		}
		if !col.hasField(p.Field) {
			return unknown(raw)
		}
		if err := b.claim(raw, p); err != nil {
			return err
		}
		b.record(p).Fields[p.Field] = value
	}
	return nil
}

func (b *builder) addFile(raw string, headers []*multipart.FileHeader) error {
	p, err := ParsePath(raw)
	if err != nil {
		return err
	}
	if p.Kind != KindRecordField {
		if b.schema.isScalar(p.Name) || b.schema.isList(p.Name) {
			return &DecodeError{Field: raw, Reason: "file not allowed here"}
		}
		return unknown(raw)
	}

	col, ok := b.schema.collection(p.Name)
	if !ok {
		return unknown(raw)
	}
	if col.FileField == "" || p.Field != col.FileField {
		if col.hasField(p.Field) {
			return &DecodeError{Field: raw, Reason: "file not allowed here"}
		}
		return unknown(raw)
	}
	if len(headers) != 1 {
		return &DecodeError{Field: raw, Reason: "only one file is allowed per item"}
	}
	if err := b.claim(raw, p); err != nil {
		return err
	}

	file, err := readFile(headers[0])
	if err != nil {
		return &DecodeError{Field: raw, Reason: err.Error()}
	}
	b.record(p).File = file
	return nil
}

func (b *builder) record(p Path) *Record {
	key := recordKey{name: p.Name, index: p.Index}
	rec, ok := b.records[key]
	if !ok {
		rec = &Record{Index: p.Index, Fields: map[string]string{}}
		b.records[key] = rec
	}
	return rec
}

// finish orders list items and records by index. Gaps collapse.
func (b *builder) finish() error {
	for name, items := range b.lists {
		indexes := make([]int, 0, len(items))
		for i := range items {
			indexes = append(indexes, i)
		}
		sort.Ints(indexes)
		list := make([]string, 0, len(indexes))
		for _, i := range indexes {
			list = append(list, items[i])
		}
		b.doc.Lists[name] = list
	}

	for key, rec := range b.records {
		if len(rec.Fields) == 0 {
			p := Path{Kind: KindRecordField, Name: key.name, Index: key.index, Field: b.schema.Collections[key.name].FileField}
			return &DecodeError{Field: p.String(), Reason: "file has no accompanying fields"}
		}
		b.doc.Collections[key.name] = append(b.doc.Collections[key.name], *rec)
	}
	for name := range b.doc.Collections {
		recs := b.doc.Collections[name]
		sort.Slice(recs, func(i, j int) bool { return recs[i].Index < recs[j].Index })
	}
	return nil
}

func readFile(h *multipart.FileHeader) (*File, error) {
	f, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &File{
		Filename:    h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func unknown(raw string) error {
	return &DecodeError{Field: raw, Reason: "unknown field"}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
