package pipeline

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/kalambet/intake/internal/apperr"
	"github.com/kalambet/intake/internal/format"
)

func TestParseObject(t *testing.T) {
	m, err := ParseObject(`{"quantity": 5, "price_per_unit": 9.99}`)
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if q, ok := m["quantity"].(json.Number); !ok || q.String() != "5" {
		t.Errorf("quantity = %#v, want json.Number 5", m["quantity"])
	}

	for _, bad := range []string{`[1,2]`, `null`, `"str"`, `{`, ``} {
		if _, err := ParseObject(bad); !apperr.Is(err, apperr.InvalidInput) {
			t.Errorf("ParseObject(%q) error = %v, want InvalidInput", bad, err)
		}
	}
}

func TestInputFromArg(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{"invoice.PDF", "format.String"},
		{`{"vendor":"Acme"}`, "format.Mapping"},
		{`[1,2,3]`, "<nil>"},
		{`42`, "<nil>"},
		{"From: a@b.com Subject: hi", "format.String"},
		{`{"vendor":`, "format.String"},
		{`"urgent invoice"`, "format.String"},
		{`null`, "<nil>"},
	}
	for _, tt := range tests {
		if got := fmt.Sprintf("%T", InputFromArg(tt.arg)); got != tt.want {
			t.Errorf("InputFromArg(%q) = %s, want %s", tt.arg, got, tt.want)
		}
	}
}

func TestInputFromArg_JSONStringIsUnwrapped(t *testing.T) {
	in := InputFromArg(`"urgent invoice"`)
	s, ok := in.(format.String)
	if !ok {
		t.Fatalf("InputFromArg = %T, want format.String", in)
	}
	if s.Value != "urgent invoice" {
		t.Errorf("Value = %q, want the decoded string", s.Value)
	}
	if f := format.Detect(in); f != format.Email {
		t.Errorf("Detect = %s, want Email", f)
	}
}
