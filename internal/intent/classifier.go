package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/intake/internal/apperr"
)

// Label is a business intent assigned to a document.
type Label string

const (
	Invoice    Label = "Invoice"
	RFQ        Label = "RFQ"
	Complaint  Label = "Complaint"
	Regulation Label = "Regulation"
	Other      Label = "Other"
)

// Labels lists every valid label in prompt order.
var Labels = []Label{Invoice, RFQ, Complaint, Regulation, Other}

// Fallback is the label used whenever classification cannot produce a
// valid answer.
const Fallback = Other

// Valid reports whether l is one of Labels.
func (l Label) Valid() bool {
	for _, v := range Labels {
		if l == v {
			return true
		}
	}
	return false
}

// Generator produces a completion for a prompt. Backends live in
// internal/engine.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gateway classifies document text with a text-generation backend.
type Gateway struct {
	gen Generator
}

// NewGateway returns a Gateway using gen. A nil gen is allowed: every
// Classify call then reports ClassificationUnavailable.
func NewGateway(gen Generator) *Gateway {
	return &Gateway{gen: gen}
}

// Classify asks the backend for the intent of text. It makes exactly one
// call. On any failure it returns Fallback together with a
// ClassificationUnavailable error; callers decide whether to surface it.
func (g *Gateway) Classify(ctx context.Context, text string) (Label, error) {
	const op = "classify intent"

	if g == nil || g.gen == nil {
		return Fallback, apperr.Errorf(apperr.ClassificationUnavailable, op, "no text-generation backend configured")
	}

	raw, err := g.gen.Generate(ctx, BuildPrompt(text))
	if err != nil {
		return Fallback, apperr.New(apperr.ClassificationUnavailable, op, err)
	}

	label := Label(strings.TrimSpace(raw))
	if !label.Valid() {
		return Fallback, apperr.New(apperr.ClassificationUnavailable, op, fmt.Errorf("unexpected answer %q", truncate(raw, 80)))
	}
	return label, nil
}

// Resolve applies the fallback policy: a failed classification is logged
// and reported as Fallback.
func Resolve(label Label, err error) Label {
	if err != nil {
		slog.Warn("intent classification failed", "error", err)
		return Fallback
	}
	if !label.Valid() {
		return Fallback
	}
	return label
}
