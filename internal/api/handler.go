package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/intake/internal/apperr"
	"github.com/kalambet/intake/internal/format"
	"github.com/kalambet/intake/internal/pipeline"
	"github.com/kalambet/intake/internal/storage"
)

const maxProcessBodySize = 10 << 20 // 10MB

// Processor is the part of pipeline.Processor the API layer uses.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
	Conversation(conversationID string) ([]storage.Record, error)
	Conversations(limit, offset int) ([]storage.ConversationSummary, error)
}

type Deps struct {
	Processor Processor
}

// ProcessRequest is the body of POST /process.
type ProcessRequest struct {
	Input          json.RawMessage `json:"input"`
	Encoding       string          `json:"encoding,omitempty"`
	Source         string          `json:"source,omitempty"`
	ConversationID string          `json:"conversation_id,omitempty"`
	ContentType    string          `json:"content_type,omitempty"`
}

// NewHandler returns the HTTP API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/process", handleProcess(deps))
	r.Get("/conversations", handleListConversations(deps))
	r.Get("/conversations/{id}", handleGetConversation(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleProcess(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxProcessBodySize)
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading request body: %v", err)
			return
		}
		if err := validateBody(requestSchema, body); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		var req ProcessRequest
		if err := json.Unmarshal(body, &req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		in, err := decodeInput(req.Input, req.Encoding)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		source := req.Source
		if source == "" {
			source = "http"
		}

		out, err := deps.Processor.Process(r.Context(), pipeline.Request{
			Input:          in,
			DeclaredType:   req.ContentType,
			Source:         source,
			ConversationID: req.ConversationID,
		})
		if err != nil {
			writeProcessError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// decodeInput maps the raw "input" value to a format.Input: objects become
// a Mapping, strings become text (or PDF bytes with base64 encoding), and
// anything else is unknown input.
func decodeInput(raw json.RawMessage, encoding string) (format.Input, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}

	switch x := v.(type) {
	case map[string]any:
		return format.Mapping{Fields: x}, nil
	case string:
		if encoding == "base64" {
			data, err := base64.StdEncoding.DecodeString(x)
			if err != nil {
				return nil, fmt.Errorf("invalid base64 input: %w", err)
			}
			return format.Bytes{Data: data}, nil
		}
		return format.String{Value: x}, nil
	default:
		return nil, nil
	}
}

func writeProcessError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	switch kind {
	case apperr.InvalidInput:
		httpError(w, http.StatusBadRequest, kind.String(), "%v", err)
	case apperr.DocumentReadError:
		httpError(w, http.StatusUnprocessableEntity, kind.String(), "%v", err)
	case apperr.StoreWriteError:
		httpError(w, http.StatusInternalServerError, kind.String(), "%v", err)
	default:
		slog.Error("processing failed", "error", err)
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	}
}

func handleListConversations(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		offset := parseIntParam(r, "offset", 0, 0)

		convs, err := deps.Processor.Conversations(limit, offset)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list conversations: %v", err)
			return
		}
		if convs == nil {
			convs = []storage.ConversationSummary{}
		}
		writeJSON(w, http.StatusOK, convs)
	}
}

func handleGetConversation(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		records, err := deps.Processor.Conversation(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "conversation not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get conversation: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, msg string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(msg, args...),
			"type":    errType,
		},
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
