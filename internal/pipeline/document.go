package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kalambet/intake/internal/apperr"
	"github.com/kalambet/intake/internal/format"
)

// Document is a detected input carrying what its extractor needs. The
// concrete types are PDFDocument, PDFBytesDocument, OrderDocument,
// EmailDocument and UnsupportedDocument.
type Document interface {
	document()
}

// PDFDocument is a PDF on disk.
type PDFDocument struct {
	Path string
}

// PDFBytesDocument is PDF content held in memory.
type PDFBytesDocument struct {
	Data []byte
}

// OrderDocument is a structured order mapping.
type OrderDocument struct {
	Fields map[string]any
}

// EmailDocument is a free-text message.
type EmailDocument struct {
	Text string
}

// UnsupportedDocument is any input no extractor handles.
type UnsupportedDocument struct {
	Format format.Format
}

func (PDFDocument) document()         {}
func (PDFBytesDocument) document()    {}
func (OrderDocument) document()       {}
func (EmailDocument) document()       {}
func (UnsupportedDocument) document() {}

// NewDocument builds the Document for in, already detected as f. JSON text
// is parsed here; text that is not a single JSON object is InvalidInput.
func NewDocument(f format.Format, in format.Input) (Document, error) {
	switch f {
	case format.PDF:
		switch v := in.(type) {
		case format.Bytes:
			return PDFBytesDocument{Data: v.Data}, nil
		case format.String:
			return PDFDocument{Path: v.Value}, nil
		}
	case format.JSON:
		switch v := in.(type) {
		case format.Mapping:
			fields := v.Fields
			if fields == nil {
				fields = map[string]any{}
			}
			return OrderDocument{Fields: fields}, nil
		case format.String:
			fields, err := ParseObject(v.Value)
			if err != nil {
				return nil, err
			}
			return OrderDocument{Fields: fields}, nil
		}
	case format.Email:
		if v, ok := in.(format.String); ok {
			return EmailDocument{Text: v.Value}, nil
		}
	}
	return UnsupportedDocument{Format: f}, nil
}

// ParseObject decodes s as exactly one JSON object. Numbers are kept as
// json.Number so integers and decimals stay distinguishable.
func ParseObject(s string) (map[string]any, error) {
	const op = "parse json input"

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, apperr.New(apperr.InvalidInput, op, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, apperr.Errorf(apperr.InvalidInput, op, "trailing data after JSON value")
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, apperr.Errorf(apperr.InvalidInput, op, "expected a JSON object, got %s", describe(v))
	}
	return m, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// InputFromArg turns a single command-line or tool argument into an Input.
// A ".pdf" suffix is a path. Text that parses as JSON becomes a Mapping when
// it is an object and its decoded value when it is a string; other JSON
// values are unknown input. Anything else is plain text.
func InputFromArg(arg string) format.Input {
	if strings.HasSuffix(strings.ToLower(arg), ".pdf") {
		return format.String{Value: arg}
	}
	if !json.Valid([]byte(arg)) {
		return format.String{Value: arg}
	}
	if strings.HasPrefix(strings.TrimSpace(arg), `"`) {
		var s string
		if err := json.Unmarshal([]byte(arg), &s); err == nil {
			return format.String{Value: s}
		}
	}
	fields, err := ParseObject(arg)
	if err != nil {
		return nil
	}
	return format.Mapping{Fields: fields}
}
