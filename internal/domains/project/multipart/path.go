package multipart

import (
	"fmt"
	"strconv"
)

// Kind is the shape a form field name encodes.
type Kind int

const (
	KindScalar      Kind = iota // title
	KindListItem                // stack[3]
	KindRecordField             // features[2][title]
)

const maxIndexDigits = 4

// Path is a parsed form field name:
//
//	name  = ident [ "[" index "]" [ "[" ident "]" ] ]
//	ident = letter { letter | digit | "_" }
//	index = digit { digit }   (at most 4 digits)
type Path struct {
	Kind  Kind
	Name  string
	Index int
	Field string
}

func (p Path) String() string {
	switch p.Kind {
	case KindListItem:
		return fmt.Sprintf("%s[%d]", p.Name, p.Index)
	case KindRecordField:
		return fmt.Sprintf("%s[%d][%s]", p.Name, p.Index, p.Field)
	default:
		return p.Name
	}
}

// ParsePath parses a form field name. The error is a *DecodeError.
func ParsePath(s string) (Path, error) {
	sc := scanner{src: s}

	name, ok := sc.ident()
	if !ok {
		return Path{}, sc.fail("expected a name")
	}
	if sc.done() {
		return Path{Kind: KindScalar, Name: name}, nil
	}

	if !sc.consume('[') {
		return Path{}, sc.fail("expected '['")
	}
	index, err := sc.index()
	if err != nil {
		return Path{}, err
	}
	if !sc.consume(']') {
		return Path{}, sc.fail("expected ']' after index")
	}
	if sc.done() {
		return Path{Kind: KindListItem, Name: name, Index: index}, nil
	}

	if !sc.consume('[') {
		return Path{}, sc.fail("expected '['")
	}
	field, ok := sc.ident()
	if !ok {
		return Path{}, sc.fail("expected a field name")
	}
	if !sc.consume(']') {
		return Path{}, sc.fail("expected ']' after field name")
	}
	if !sc.done() {
		return Path{}, sc.fail("unexpected trailing characters")
	}
	return Path{Kind: KindRecordField, Name: name, Index: index, Field: field}, nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

func (s *scanner) consume(c byte) bool {
	if s.pos < len(s.src) && s.src[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) ident() (string, bool) {
	start := s.pos
	if s.done() || !isLetter(s.src[s.pos]) {
		return "", false
	}
	s.pos++
	for s.pos < len(s.src) && (isLetter(s.src[s.pos]) || isDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
		s.pos++
	}
	return s.src[start:s.pos], true
}

func (s *scanner) index() (int, error) {
	start := s.pos
	for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
		s.pos++
	}
	digits := s.src[start:s.pos]
	switch {
	case digits == "":
		return 0, s.fail("expected a numeric index")
	case len(digits) > maxIndexDigits:
		return 0, &DecodeError{Field: s.src, Reason: fmt.Sprintf("index %s is too large", digits)}
	}
	n, _ := strconv.Atoi(digits)
	return n, nil
}

func (s *scanner) fail(reason string) error {
	return &DecodeError{Field: s.src, Reason: fmt.Sprintf("malformed name at offset %d: %s", s.pos, reason)}
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
