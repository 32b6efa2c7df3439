package repository

import (
	"context"

	"github.com/m-mizutani/trek/pkg/model"
)

// Repository defines the interface for per-user history persistence
type Repository interface {
	// PutRecord saves a history record for the user
	PutRecord(ctx context.Context, user string, record *model.HistoryRecord) error

	// ListRecords retrieves the user's records newest first, limited
	ListRecords(ctx context.Context, user string, limit int) ([]*model.HistoryRecord, error)

	// ListRecordsAsc retrieves all of the user's records oldest first,
	// used to rebuild chat transcripts
	ListRecordsAsc(ctx context.Context, user string) ([]*model.HistoryRecord, error)

	// Close releases the underlying client
	Close() error
}
