package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func tagsJSON(names ...string) []byte {
	type entry struct {
		Name string `json:"name"`
	}
	type resp struct {
		Models []entry `json:"models"`
	}
	r := resp{}
	for _, n := range names {
		r.Models = append(r.Models, entry{Name: n})
	}
	b, _ := json.Marshal(r)
	return b
}

func TestOllamaEngine_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"response": "Complaint", "done": true})
	}))
	defer srv.Close()

	e := NewOllamaEngine(srv.URL)
	result, err := e.Generate(context.Background(), "phi3.5", "classify")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result != "Complaint" {
		t.Errorf("got %q, want %q", result, "Complaint")
	}
}

func TestOllamaEngine_HasModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(tagsJSON("phi3.5:latest"))
	}))
	defer srv.Close()

	e := NewOllamaEngine(srv.URL)
	if !e.IsRunning(context.Background()) {
		t.Error("IsRunning() = false, want true")
	}
	if !e.HasModel(context.Background(), "phi3.5") {
		t.Error("HasModel(phi3.5) = false, want true")
	}
}

func TestOllamaEngine_PullModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"status":"success"}`)
	}))
	defer srv.Close()

	var e Engine = NewOllamaEngine(srv.URL)
	p, ok := e.(Puller)
	if !ok {
		t.Fatal("OllamaEngine does not implement Puller")
	}
	var statuses []string
	if err := p.PullModel(context.Background(), "phi3.5", func(pp PullProgress) {
		statuses = append(statuses, pp.Status)
	}); err != nil {
		t.Fatalf("PullModel: %v", err)
	}
	if len(statuses) != 2 || statuses[1] != "success" {
		t.Errorf("statuses = %v", statuses)
	}
}

func TestOpenRouterEngine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			fmt.Fprint(w, `{"data":[{"id":"google/gemini-flash-1.5"}]}`)
		case "/chat/completions":
			fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"Regulation"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e := NewOpenRouterEngine("key", srv.URL)
	ctx := context.Background()
	if !e.IsRunning(ctx) {
		t.Error("IsRunning() = false, want true")
	}
	if !e.HasModel(ctx, "google/gemini-flash-1.5") {
		t.Error("HasModel = false, want true")
	}
	if e.HasModel(ctx, "openai/gpt-4o") {
		t.Error("HasModel(unlisted) = true, want false")
	}
	out, err := e.Generate(ctx, "google/gemini-flash-1.5", "classify")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "Regulation" {
		t.Errorf("Generate() = %q", out)
	}
	if _, ok := Engine(e).(Puller); ok {
		t.Error("OpenRouterEngine should not implement Puller")
	}
}
