package apperr

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := New(DocumentReadError, "read pdf", io.ErrUnexpectedEOF)
	wrapped := fmt.Errorf("processing input: %w", base)

	if got := KindOf(wrapped); got != DocumentReadError {
		t.Errorf("KindOf = %v, want %v", got, DocumentReadError)
	}
	if !Is(wrapped, DocumentReadError) {
		t.Error("Is(wrapped, DocumentReadError) = false, want true")
	}
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("errors.Is did not reach the cause")
	}
}

func TestKindOf_Plain(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != Unclassified {
		t.Errorf("KindOf(plain) = %v, want Unclassified", got)
	}
	if Is(nil, InvalidInput) {
		t.Error("Is(nil, ...) = true, want false")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Errorf(InvalidInput, "parse json", "unexpected %s", "token")
	want := "parse json: invalid_input: unexpected token"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
