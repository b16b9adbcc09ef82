package storage

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested conversation has no records.
var ErrNotFound = errors.New("not found")

// TimestampLayout is the fixed-width UTC layout used for the timestamp
// column. Fixed width keeps lexical order equal to chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// NewRecord is the caller-supplied part of an extraction record.
type NewRecord struct {
	Source         string
	Format         string
	ConversationID string
	ExtractedData  any // serialized to JSON at write time
}

// Record is one immutable row of the conversation log.
type Record struct {
	ID             int64           `json:"id"`
	Source         string          `json:"source"`
	Format         string          `json:"format"`
	Timestamp      time.Time       `json:"timestamp"`
	ConversationID string          `json:"conversation_id"`
	ExtractedData  json.RawMessage `json:"extracted_data"`
}

// Decode unmarshals the stored payload into v.
func (r Record) Decode(v any) error {
	return json.Unmarshal(r.ExtractedData, v)
}

// ConversationSummary aggregates the records of one conversation.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	Records        int       `json:"records"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
}
