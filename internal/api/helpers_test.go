package api

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/intake/internal/apperr"
	"github.com/kalambet/intake/internal/intent"
	"github.com/kalambet/intake/internal/pipeline"
	"github.com/kalambet/intake/internal/storage"
)

type stubClassifier struct {
	label intent.Label
}

func (s stubClassifier) Classify(context.Context, string) (intent.Label, error) {
	return s.label, nil
}

type stubReader struct {
	text string
	err  error
}

func (s stubReader) ReadText(string) (string, error) { return s.text, s.err }

func newTestDeps(t *testing.T, reader stubReader) (Deps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	p := pipeline.NewProcessor(store, stubClassifier{label: intent.Invoice}, reader)
	return Deps{Processor: p}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

var errReadFailed = apperr.Errorf(apperr.DocumentReadError, "read pdf", "unexpected EOF")
