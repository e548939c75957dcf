package multipart

import "slices"

// Collection declares the fields of an array of objects and its single file field.
type Collection struct {
	Fields    []string
	FileField string // empty when the records carry no file
}

// Schema lists every name a form may contain. Anything else is rejected.
type Schema struct {
	Scalars     []string
	Lists       []string
	Collections map[string]Collection
}

func (s Schema) isScalar(name string) bool { return slices.Contains(s.Scalars, name) }
func (s Schema) isList(name string) bool   { return slices.Contains(s.Lists, name) }

func (s Schema) collection(name string) (Collection, bool) {
	c, ok := s.Collections[name]
	return c, ok
}

func (c Collection) hasField(name string) bool { return slices.Contains(c.Fields, name) }
