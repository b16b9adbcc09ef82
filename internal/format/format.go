// Package format decides which structural category an incoming document
// belongs to.
package format

import (
	"fmt"
	"strings"
)

// Format is the structural category of an input.
type Format int

const (
	Unknown Format = iota
	PDF
	JSON
	Email
	Text
)

var names = map[Format]string{
	Unknown: "Unknown",
	PDF:     "PDF",
	JSON:    "JSON",
	Email:   "Email",
	Text:    "Text",
}

func (f Format) String() string {
	if n, ok := names[f]; ok {
		return n
	}
	return "Unknown"
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFormat is the inverse of Format.String. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	for f, n := range names {
		if strings.EqualFold(n, s) {
			return f, nil
		}
	}
	return Unknown, fmt.Errorf("unknown format %q", s)
}

// Input is a value of not-yet-known shape. The concrete types are Mapping,
// Bytes and String; a nil Input stands for anything else.
type Input interface {
	input()
}

// Mapping is structured key/value input, e.g. a decoded JSON object.
type Mapping struct {
	Fields map[string]any
}

// Bytes is raw binary input.
type Bytes struct {
	Data []byte
}

// String is string input: a path, a JSON document, or free text.
type String struct {
	Value string
}

func (Mapping) input() {}
func (Bytes) input()   {}
func (String) input()  {}

// Detect returns the format of in. It is deterministic and has no side
// effects; in particular it never touches the filesystem.
//
// Unmatched text defaults to Email: any free text is treated as a potential
// message body.
func Detect(in Input) Format {
	switch v := in.(type) {
	case Mapping:
		return JSON
	case Bytes:
		return PDF
	case String:
		return detectText(v.Value)
	default:
		return Unknown
	}
}

func detectText(s string) Format {
	switch {
	case strings.Contains(s, "From:") && strings.Contains(s, "Subject:"):
		return Email
	case strings.HasSuffix(strings.ToLower(s), ".pdf"):
		return PDF
	case strings.HasPrefix(strings.TrimLeft(s, " \t\r\n"), "{"):
		return JSON
	default:
		return Email
	}
}
