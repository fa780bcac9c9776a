package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/quote-service/internal/domain/model"
)

// LogsRepository stores request and audit entries in the logs collection.
type LogsRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewLogsRepository(db *MongoDB) *LogsRepository {
	return &LogsRepository{collection: db.Logs, now: time.Now}
}

// Insert writes entries in one round trip. Entries missing an ID or a
// timestamp are stamped first. The batch is unordered, so one bad entry does
// not stop the rest.
func (r *LogsRepository) Insert(ctx context.Context, entries ...*model.LogEntry) error {
	switch len(entries) {
	case 0:
		return nil
	case 1:
		entries[0].Stamp(r.now())
		if _, err := r.collection.InsertOne(ctx, entries[0]); err != nil {
			return fmt.Errorf("insert log entry: %w", err)
		}
		return nil
	}

	now := r.now()
	docs := make([]any, len(entries))
	for i, e := range entries {
		e.Stamp(now)
		docs[i] = e
	}
	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("insert %d log entries: %w", len(entries), err)
	}
	return nil
}

// Find returns matching entries, newest first.
func (r *LogsRepository) Find(ctx context.Context, f model.LogFilter) ([]model.LogEntry, error) {
	f = f.Normalized()
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(f.Limit)).
		SetSkip(int64(f.Skip))

	cursor, err := r.collection.Find(ctx, logFilterDocument(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find log entries: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	entries := make([]model.LogEntry, 0, f.Limit)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode log entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of matching entries, ignoring Limit and Skip.
func (r *LogsRepository) Count(ctx context.Context, f model.LogFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, logFilterDocument(f))
	if err != nil {
		return 0, fmt.Errorf("count log entries: %w", err)
	}
	return n, nil
}

func logFilterDocument(f model.LogFilter) bson.D {
	filter := bson.D{}
	for _, eq := range []struct{ key, value string }{
		{"quote_id", f.QuoteID},
		{"request_id", f.RequestID},
		{"client_id", f.ClientID},
		{"action", f.Action},
		{"level", f.Level},
	} {
		if eq.value != "" {
			filter = append(filter, bson.E{Key: eq.key, Value: eq.value})
		}
	}

	if !f.Since.IsZero() || !f.Until.IsZero() {
		window := bson.D{}
		if !f.Since.IsZero() {
			window = append(window, bson.E{Key: "$gte", Value: f.Since})
		}
		if !f.Until.IsZero() {
			window = append(window, bson.E{Key: "$lte", Value: f.Until})
		}
		filter = append(filter, bson.E{Key: "timestamp", Value: window})
	}
	return filter
}
