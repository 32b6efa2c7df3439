package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trek/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	usersCollection   = "users"
	historyCollection = "history"

	// The presentation surface shows at most the 5 most recent entries
	defaultListLimit = 5
	maxListLimit     = 100
)

// Firestore implements Repository using Firestore. Records live in a
// per-user subcollection: users/{email}/history/{recordID}.
type Firestore struct {
	client *firestore.Client
}

// New creates a new Firestore repository
func New(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

func (r *Firestore) history(user string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(user).Collection(historyCollection)
}

func (r *Firestore) PutRecord(ctx context.Context, user string, record *model.HistoryRecord) error {
	if user == "" {
		return goerr.New("user is required")
	}
	if record.ID == "" {
		record.ID = model.NewRecordID()
	}

	if _, err := r.history(user).Doc(string(record.ID)).Set(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to put history record",
			goerr.V("user", user), goerr.V("record_id", record.ID))
	}

	return nil
}

func (r *Firestore) ListRecords(ctx context.Context, user string, limit int) ([]*model.HistoryRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := r.history(user).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit)

	return r.queryRecords(ctx, query)
}

func (r *Firestore) ListRecordsAsc(ctx context.Context, user string) ([]*model.HistoryRecord, error) {
	query := r.history(user).OrderBy("timestamp", firestore.Asc)
	return r.queryRecords(ctx, query)
}

func (r *Firestore) queryRecords(ctx context.Context, query firestore.Query) ([]*model.HistoryRecord, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var records []*model.HistoryRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate history records")
		}

		var record model.HistoryRecord
		if err := doc.DataTo(&record); err != nil {
			return nil, goerr.Wrap(err, "failed to decode history record", goerr.V("doc", doc.Ref.ID))
		}
		record.ID = model.RecordID(doc.Ref.ID)
		records = append(records, &record)
	}

	return records, nil
}

func (r *Firestore) Close() error {
	if err := r.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
