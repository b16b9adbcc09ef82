package format

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Format
	}{
		{"empty mapping", Mapping{}, JSON},
		{"mapping", Mapping{Fields: map[string]any{"vendor": "Acme"}}, JSON},
		{"bytes", Bytes{Data: []byte("%PDF-1.4")}, PDF},
		{"email headers", String{Value: "From: a@b.com\nSubject: hi\n\nbody"}, Email},
		{"email headers win over pdf suffix", String{Value: "From: x Subject: see report.pdf"}, Email},
		{"email headers win over json", String{Value: `{"note": "From: a Subject: b"}`}, Email},
		{"only From", String{Value: "From: a@b.com"}, Email},
		{"pdf path", String{Value: "/tmp/invoice.pdf"}, PDF},
		{"pdf path upper", String{Value: "SCAN.PDF"}, PDF},
		{"missing pdf path", String{Value: "/does/not/exist.pdf"}, PDF},
		{"json text", String{Value: `{"vendor":"Acme"}`}, JSON},
		{"json text leading whitespace", String{Value: "\n\t  {\"a\":1}"}, JSON},
		{"array text", String{Value: `[1,2]`}, Email},
		{"free text", String{Value: "This is urgent regarding an invoice payment"}, Email},
		{"empty text", String{}, Email},
		{"nil", nil, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.in); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect_Idempotent(t *testing.T) {
	inputs := []Input{
		Mapping{Fields: map[string]any{"a": 1}},
		String{Value: "From: a Subject: b"},
		String{Value: "quote.pdf"},
		Bytes{Data: []byte{0x25}},
		nil,
	}
	for _, in := range inputs {
		if a, b := Detect(in), Detect(in); a != b {
			t.Errorf("Detect(%v) not stable: %v then %v", in, a, b)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range []Format{Unknown, PDF, JSON, Email, Text} {
		got, err := ParseFormat(f.String())
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", f.String(), err)
		}
		if got != f {
			t.Errorf("ParseFormat(%q) = %v, want %v", f.String(), got, f)
		}
	}
	if got, err := ParseFormat("email"); err != nil || got != Email {
		t.Errorf("ParseFormat(email) = %v, %v", got, err)
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Error("ParseFormat(docx) returned nil error")
	}
}
