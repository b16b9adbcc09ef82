package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kalambet/intake/internal/extract"
	"github.com/kalambet/intake/internal/format"
	"github.com/kalambet/intake/internal/intent"
	"github.com/kalambet/intake/internal/storage"
)

// Log is the conversation log the Processor writes to and reads from.
type Log interface {
	extract.RecordAppender
	RetrieveConversation(conversationID string) ([]storage.Record, error)
	ListConversations(limit, offset int) ([]storage.ConversationSummary, error)
}

// Classifier assigns an intent label to document text.
type Classifier interface {
	Classify(ctx context.Context, text string) (intent.Label, error)
}

// Request is one document to process.
type Request struct {
	Input format.Input
	// DeclaredType is the caller's claimed content type. Detection always
	// wins; the value is only logged.
	DeclaredType   string
	Source         string
	ConversationID string
}

// Outcome is the merged result of detection, extraction and classification.
// At most one of PDF, Order and Email is set.
type Outcome struct {
	Format         format.Format        `json:"format"`
	Intent         intent.Label         `json:"intent,omitempty"`
	Supported      bool                 `json:"supported"`
	ConversationID string               `json:"conversation_id,omitempty"`
	PDF            *extract.PDFResult   `json:"pdf,omitempty"`
	Order          *extract.OrderResult `json:"order,omitempty"`
	Email          *extract.EmailResult `json:"email,omitempty"`
}

// Result returns the extractor output, or nil for unsupported input.
func (o Outcome) Result() any {
	switch {
	case o.PDF != nil:
		return o.PDF
	case o.Order != nil:
		return o.Order
	case o.Email != nil:
		return o.Email
	}
	return nil
}

// Processor runs the detect, extract, classify pipeline against one log.
type Processor struct {
	log        Log
	extractor  *extract.Extractor
	classifier Classifier
	logger     *slog.Logger
}

// NewProcessor wires a Processor. reader may be nil to use extract.PDFReader.
func NewProcessor(log Log, classifier Classifier, reader extract.TextReader) *Processor {
	return &Processor{
		log:        log,
		extractor:  extract.New(log, reader),
		classifier: classifier,
		logger:     slog.Default().With("component", "pipeline"),
	}
}

// Process handles one document synchronously. Unsupported input is not an
// error: the Outcome has Supported=false and nothing is extracted, logged
// or classified. Read, parse and store failures are returned unchanged.
func (p *Processor) Process(ctx context.Context, req Request) (Outcome, error) {
	start := time.Now()

	f := format.Detect(req.Input)
	if req.DeclaredType != "" {
		p.logger.Debug("declared content type ignored", "declared", req.DeclaredType, "detected", f)
	}

	doc, err := NewDocument(f, req.Input)
	if err != nil {
		return Outcome{Format: f}, err
	}

	out := Outcome{Format: f, Supported: true}
	opts := extract.Options{Source: req.Source, ConversationID: req.ConversationID}

	var projection string
	switch d := doc.(type) {
	case PDFDocument:
		res, err := p.extractor.ExtractPDF(d.Path, opts)
		if err != nil {
			return out, err
		}
		out.PDF, out.ConversationID, projection = &res, res.SessionID, res.Text

	case PDFBytesDocument:
		res, err := p.extractPDFBytes(d.Data, opts)
		if err != nil {
			return out, err
		}
		out.PDF, out.ConversationID, projection = &res, res.SessionID, res.Text

	case OrderDocument:
		res, err := p.extractor.ExtractOrder(d.Fields, opts)
		if err != nil {
			return out, err
		}
		out.Order, out.ConversationID, projection = &res, res.SessionID, p.orderText(d.Fields)

	case EmailDocument:
		res, err := p.extractor.ExtractEmail(d.Text, opts)
		if err != nil {
			return out, err
		}
		out.Email, out.ConversationID, projection = &res, res.ThreadID, d.Text

	case UnsupportedDocument:
		p.logger.Warn("unsupported format, skipping", "format", d.Format, "source", req.Source)
		return Outcome{Format: d.Format}, nil

	default:
		return out, fmt.Errorf("unhandled document type %T", doc)
	}

	out.Intent = intent.Resolve(p.classify(ctx, projection))

	p.logger.Info("document processed",
		"format", out.Format,
		"intent", out.Intent,
		"conversation_id", out.ConversationID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// orderText renders fields for the classifier. Values JSON cannot encode
// fall back to Go formatting so the classifier still sees the order.
func (p *Processor) orderText(fields map[string]any) string {
	b, err := json.Marshal(fields)
	if err != nil {
		p.logger.Warn("order not JSON-encodable, classifying formatted text", "error", err)
		return fmt.Sprint(fields)
	}
	return string(b)
}

func (p *Processor) classify(ctx context.Context, text string) (intent.Label, error) {
	if p.classifier == nil {
		return intent.NewGateway(nil).Classify(ctx, text)
	}
	return p.classifier.Classify(ctx, text)
}

// extractPDFBytes spools data to a temporary file so in-memory PDFs go
// through the same reader as files on disk.
func (p *Processor) extractPDFBytes(data []byte, opts extract.Options) (extract.PDFResult, error) {
	f, err := os.CreateTemp("", "intake-*.pdf")
	if err != nil {
		return extract.PDFResult{}, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return extract.PDFResult{}, fmt.Errorf("spooling pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		return extract.PDFResult{}, fmt.Errorf("spooling pdf: %w", err)
	}
	return p.extractor.ExtractPDF(f.Name(), opts)
}

// Conversation returns the records of conversationID in timestamp order.
// It returns storage.ErrNotFound when the conversation has no records.
func (p *Processor) Conversation(conversationID string) ([]storage.Record, error) {
	records, err := p.log.RetrieveConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("retrieving conversation %s: %w", conversationID, err)
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records, nil
}

// Conversations lists conversation summaries, most recently active first.
func (p *Processor) Conversations(limit, offset int) ([]storage.ConversationSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return p.log.ListConversations(limit, offset)
}
