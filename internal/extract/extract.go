// Package extract turns classified documents into small structured payloads
// by keyword and pattern matching. Every successful extraction appends one
// record to the conversation log handed to the Extractor.
package extract

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kalambet/intake/internal/storage"
)

// RecordAppender is the write side of the conversation log.
type RecordAppender interface {
	AppendRecord(r storage.NewRecord) (storage.Record, error)
}

// Options carries the per-call metadata written alongside each record.
type Options struct {
	// Source is a caller-supplied origin tag, e.g. "cli" or "http".
	Source string
	// ConversationID groups related records. Empty means start a new
	// conversation.
	ConversationID string
}

func (o Options) conversationID() string {
	if id := strings.TrimSpace(o.ConversationID); id != "" {
		return id
	}
	return uuid.NewString()
}

// Extractor runs the PDF, order and email extractors against one log.
type Extractor struct {
	log    RecordAppender
	reader TextReader
	logger *slog.Logger
}

// New creates an Extractor writing to log. reader is used by ExtractPDF; a
// nil reader selects PDFReader.
func New(log RecordAppender, reader TextReader) *Extractor {
	if reader == nil {
		reader = PDFReader{}
	}
	return &Extractor{
		log:    log,
		reader: reader,
		logger: slog.Default().With("component", "extract"),
	}
}

func (e *Extractor) append(format, source, conversationID string, payload any) error {
	rec, err := e.log.AppendRecord(storage.NewRecord{
		Source:         source,
		Format:         format,
		ConversationID: conversationID,
		ExtractedData:  payload,
	})
	if err != nil {
		return err
	}
	e.logger.Debug("record appended", "id", rec.ID, "format", format, "conversation_id", conversationID)
	return nil
}

// keywordGroup maps a label to the substrings that select it.
type keywordGroup struct {
	label    string
	keywords []string
}

// matchFirst returns the label of the first group with any keyword present
// in text (case-insensitive), or def when none match.
func matchFirst(groups []keywordGroup, text, def string) string {
	lower := strings.ToLower(text)
	for _, g := range groups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return g.label
			}
		}
	}
	return def
}
