package model

import (
	"time"

	"github.com/google/uuid"
)

type RecordID string

// NewRecordID generates a new unique RecordID
func NewRecordID() RecordID {
	return RecordID(uuid.New().String())
}

type RecordType string

const (
	RecordTypeItinerary RecordType = "llm"
	RecordTypeChat      RecordType = "chat"
)

// HistoryRecord is one persisted generation result. Records are created on
// each successful generation and never mutated or deleted afterwards.
type HistoryRecord struct {
	ID        RecordID   `json:"id" firestore:"-"`
	Type      RecordType `json:"type" firestore:"type"`
	Timestamp time.Time  `json:"timestamp" firestore:"timestamp"`
	Request   any        `json:"request" firestore:"request"`
	Response  string     `json:"response" firestore:"response"`
}

// ChatRequest is the request payload stored in a chat HistoryRecord.
type ChatRequest struct {
	Prompt string `json:"prompt" firestore:"prompt"`
}
