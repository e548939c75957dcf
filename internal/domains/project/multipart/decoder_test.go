package multipart

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	Scalars: []string{"title", "pin"},
	Lists:   []string{"stack"},
	Collections: map[string]Collection{
		"features":   {Fields: []string{"title", "imageAlt"}, FileField: "imageFile"},
		"challenges": {Fields: []string{"number", "title"}},
	},
}

type part struct {
	name     string
	value    string
	filename string // non-empty makes it a file part
}

func buildRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, p := range parts {
		if p.filename != "" {
			fw, err := w.CreateFormFile(p.name, p.filename)
			require.NoError(t, err)
			_, err = fw.Write([]byte(p.value))
			require.NoError(t, err)
			continue
		}
		require.NoError(t, w.WriteField(p.name, p.value))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, parts ...part) (*Document, error) {
	t.Helper()
	return ParseRequest(buildRequest(t, parts...), 1<<20, testSchema)
}

func requireDecodeError(t *testing.T, err error) *DecodeError {
	t.Helper()
	var derr *DecodeError
	require.True(t, errors.As(err, &derr), "expected DecodeError, got %v", err)
	return derr
}

func TestDecode(t *testing.T) {
	doc, err := decode(t,
		part{name: "title", value: "Portfolio"},
		part{name: "stack[1]", value: "Postgres"},
		part{name: "stack[0]", value: "Go"},
		part{name: "features[0][title]", value: "CMS"},
		part{name: "features[0][imageAlt]", value: "cms shot"},
		part{name: "features[0][imageFile]", value: "PNGDATA", filename: "cms.png"},
		part{name: "features[1][title]", value: "Pins"},
		part{name: "challenges[0][title]", value: "Concurrency"},
	)
	require.NoError(t, err)

	title, ok := doc.Scalar("title")
	assert.True(t, ok)
	assert.Equal(t, "Portfolio", title)
	_, ok = doc.Scalar("pin")
	assert.False(t, ok)

	stack, ok := doc.List("stack")
	assert.True(t, ok)
	assert.Equal(t, []string{"Go", "Postgres"}, stack)

	features, ok := doc.Collection("features")
	require.True(t, ok)
	require.Len(t, features, 2)
	assert.Equal(t, "CMS", features[0].Fields["title"])
	require.NotNil(t, features[0].File)
	assert.Equal(t, "cms.png", features[0].File.Filename)
	assert.Equal(t, []byte("PNGDATA"), features[0].File.Data)
	assert.Nil(t, features[1].File)

	_, ok = doc.Collection("screenshots")
	assert.False(t, ok)
}

func TestDecode_GapsCollapse(t *testing.T) {
	doc, err := decode(t,
		part{name: "features[5][title]", value: "third"},
		part{name: "features[0][title]", value: "first"},
		part{name: "features[2][title]", value: "second"},
		part{name: "stack[9]", value: "b"},
		part{name: "stack[3]", value: "a"},
	)
	require.NoError(t, err)

	features := doc.Collections["features"]
	require.Len(t, features, 3)
	assert.Equal(t, "first", features[0].Fields["title"])
	assert.Equal(t, "second", features[1].Fields["title"])
	assert.Equal(t, "third", features[2].Fields["title"])
	assert.Equal(t, 5, features[2].Index)
	assert.Equal(t, []string{"a", "b"}, doc.Lists["stack"])
}

func TestDecode_EmptyFileInputIsIgnored(t *testing.T) {
	doc, err := decode(t,
		part{name: "features[0][title]", value: "CMS"},
		part{name: "features[0][imageFile]", value: ""},
	)
	require.NoError(t, err)
	assert.Nil(t, doc.Collections["features"][0].File)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		parts []part
	}{
		{"malformed name", []part{{name: "features[0]title", value: "x"}}},
		{"unknown scalar", []part{{name: "owner", value: "x"}}},
		{"unknown record field", []part{{name: "features[0][color]", value: "x"}}},
		{"scalar used as list", []part{{name: "title[0]", value: "x"}}},
		{"list used as scalar", []part{{name: "stack", value: "x"}}},
		{"duplicate scalar", []part{{name: "title", value: "a"}, {name: "title", value: "b"}}},
		{"duplicate index spelling", []part{{name: "stack[1]", value: "a"}, {name: "stack[01]", value: "b"}}},
		{"two files for one slot", []part{
			{name: "features[0][title]", value: "x"},
			{name: "features[0][imageFile]", value: "a", filename: "a.png"},
			{name: "features[0][imageFile]", value: "b", filename: "b.png"},
		}},
		{"file under scalar", []part{{name: "title", value: "a", filename: "a.png"}}},
		{"file under list", []part{{name: "stack[0]", value: "a", filename: "a.png"}}},
		{"file under text field", []part{{name: "features[0][title]", value: "a", filename: "a.png"}}},
		{"file on collection without files", []part{
			{name: "challenges[0][title]", value: "x"},
			{name: "challenges[0][imageFile]", value: "a", filename: "a.png"},
		}},
		{"file only record", []part{
			{name: "features[0][title]", value: "x"},
			{name: "features[1][imageFile]", value: "a", filename: "a.png"},
		}},
		{"text under file field", []part{
			{name: "features[0][title]", value: "x"},
			{name: "features[0][imageFile]", value: "not a file"},
		}},
		{"oversized index", []part{{name: "stack[10000]", value: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := decode(t, tt.parts...)
			assert.Nil(t, doc)
			requireDecodeError(t, err)
		})
	}
}

func TestParseRequest_NotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	_, err := ParseRequest(req, 1<<20, testSchema)
	requireDecodeError(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc := NewDocument()
	doc.Scalars["title"] = "Portfolio"
	doc.Lists["stack"] = []string{"Go", "Redis"}
	doc.Collections["features"] = []Record{
		{Index: 4, Fields: map[string]string{"title": "A", "imageAlt": "a"}, File: &File{Filename: "a.png", ContentType: "image/png", Data: []byte("A")}},
		{Index: 9, Fields: map[string]string{"title": "B", "imageAlt": "b"}},
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, Encode(w, doc, testSchema))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	got, err := ParseRequest(req, 1<<20, testSchema)
	require.NoError(t, err)

	assert.Equal(t, doc.Scalars, got.Scalars)
	assert.Equal(t, doc.Lists, got.Lists)
	require.Len(t, got.Collections["features"], 2)
	assert.Equal(t, 0, got.Collections["features"][0].Index)
	assert.Equal(t, 1, got.Collections["features"][1].Index)
	assert.Equal(t, "image/png", got.Collections["features"][0].File.ContentType)
	assert.Equal(t, []byte("A"), got.Collections["features"][0].File.Data)
	assert.Equal(t, "B", got.Collections["features"][1].Fields["title"])
}
