package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/quote-service/internal/domain/model"
)

// ErrQuoteNotFound is returned when no quote has the requested ID.
var ErrQuoteNotFound = errors.New("quote not found")

// QuoteDocument is a persisted quote. The quote ID doubles as the document ID.
type QuoteDocument struct {
	ID        string      `bson:"_id"`
	Quote     model.Quote `bson:"quote"`
	ClientID  string      `bson:"client_id,omitempty"`
	CreatedAt time.Time   `bson:"created_at"`
}

// QuotesRepository stores issued quotes.
type QuotesRepository struct {
	collection *mongo.Collection
}

// NewQuotesRepository creates a new quotes repository.
func NewQuotesRepository(db *MongoDB) *QuotesRepository {
	return &QuotesRepository{
		collection: db.Quotes,
	}
}

// Create inserts quote. A quote ID can only be stored once.
func (r *QuotesRepository) Create(ctx context.Context, quote model.Quote, clientID string) error {
	createdAt := quote.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, QuoteDocument{
		ID:        quote.ID,
		Quote:     quote,
		ClientID:  clientID,
		CreatedAt: createdAt,
	})
	return err
}

// GetByID returns the quote with id or ErrQuoteNotFound.
func (r *QuotesRepository) GetByID(ctx context.Context, id string) (*model.Quote, error) {
	var doc QuoteDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc.Quote, nil
}

// List returns the most recent quotes, newest first.
func (r *QuotesRepository) List(ctx context.Context, limit int) ([]model.Quote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []QuoteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	quotes := make([]model.Quote, 0, len(docs))
	for _, doc := range docs {
		quotes = append(quotes, doc.Quote)
	}
	return quotes, nil
}
