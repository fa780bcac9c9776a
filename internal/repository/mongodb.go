// Package repository persists pricing tables, quotes and audit logs in MongoDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	PricingTablesCollection = "pricing_tables"
	QuotesCollection        = "quotes"
	LogsCollection          = "logs"
)

const logsTTLIndex = "timestamp_ttl"

type connectOptions struct {
	maxPoolSize    uint64
	minPoolSize    uint64
	connectTimeout time.Duration
	selectTimeout  time.Duration
	socketTimeout  time.Duration
	compressors    []string
	retries        uint64
}

// ConnectOption tunes Connect.
type ConnectOption func(*connectOptions)

// WithPoolSize bounds the connection pool.
func WithPoolSize(minSize, maxSize uint64) ConnectOption {
	return func(o *connectOptions) {
		o.minPoolSize, o.maxPoolSize = minSize, maxSize
	}
}

// WithConnectRetries sets how many times a failed connect or ping is retried
// with exponential backoff. Zero tries once.
func WithConnectRetries(n int) ConnectOption {
	return func(o *connectOptions) {
		if n < 0 {
			n = 0
		}
		o.retries = uint64(n)
	}
}

// WithTimeouts overrides the connect, server selection and socket timeouts.
func WithTimeouts(connect, selection, socket time.Duration) ConnectOption {
	return func(o *connectOptions) {
		o.connectTimeout, o.selectTimeout, o.socketTimeout = connect, selection, socket
	}
}

// WithoutCompression disables wire compression.
func WithoutCompression() ConnectOption {
	return func(o *connectOptions) { o.compressors = nil }
}

// MongoDB holds the client and the service's collections.
type MongoDB struct {
	Client        *mongo.Client
	Database      *mongo.Database
	PricingTables *mongo.Collection
	Quotes        *mongo.Collection
	Logs          *mongo.Collection
}

// Connect dials MongoDB, verifies the connection and ensures the indexes the
// repositories rely on. The decimal codec registry is installed on the client.
func Connect(ctx context.Context, uri, database string, opts ...ConnectOption) (*MongoDB, error) {
	o := connectOptions{
		maxPoolSize:    50,
		minPoolSize:    5,
		connectTimeout: 10 * time.Second,
		selectTimeout:  5 * time.Second,
		socketTimeout:  30 * time.Second,
		compressors:    []string{"zstd", "snappy", "zlib"},
	}
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetRegistry(NewRegistry()).
		SetMaxPoolSize(o.maxPoolSize).
		SetMinPoolSize(o.minPoolSize).
		SetConnectTimeout(o.connectTimeout).
		SetServerSelectionTimeout(o.selectTimeout).
		SetSocketTimeout(o.socketTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)
	if len(o.compressors) > 0 {
		clientOpts.SetCompressors(o.compressors)
	}

	var client *mongo.Client
	dial := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, o.connectTimeout)
		defer cancel()

		c, err := mongo.Connect(attemptCtx, clientOpts)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := c.Ping(attemptCtx, nil); err != nil {
			_ = c.Disconnect(context.Background())
			return err
		}
		client = c
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, o.retries), ctx)

	err := backoff.RetryNotify(dial, retry, func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Str("database", database).Msg("MongoDB not reachable yet")
	})
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	db := client.Database(database)
	m := &MongoDB{
		Client:        client,
		Database:      db,
		PricingTables: db.Collection(PricingTablesCollection),
		Quotes:        db.Collection(QuotesCollection),
		Logs:          db.Collection(LogsCollection),
	}

	if err := m.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

// EnsureIndexes creates the lookup indexes. Pricing table versions are unique.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := m.PricingTables.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "version", Value: -1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("pricing_tables indexes: %w", err)
	}

	_, err = m.Quotes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "quote.part.material", Value: 1}, {Key: "quote.part.process", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("quotes indexes: %w", err)
	}

	_, err = m.Logs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
		{Keys: bson.D{{Key: "quote_id", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("logs indexes: %w", err)
	}
	return nil
}

// SetLogsTTL expires log entries ttl after their timestamp. Calling it again
// with a different ttl replaces the index.
func (m *MongoDB) SetLogsTTL(ctx context.Context, ttl time.Duration) error {
	if ttl < time.Second {
		return fmt.Errorf("logs ttl %s is below one second", ttl)
	}

	if _, err := m.Logs.Indexes().DropOne(ctx, logsTTLIndex); err != nil && !isMissingIndex(err) {
		return fmt.Errorf("drop logs ttl index: %w", err)
	}

	_, err := m.Logs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: 1}},
		Options: options.Index().
			SetName(logsTTLIndex).
			SetExpireAfterSeconds(int32(ttl / time.Second)),
	})
	if err != nil {
		return fmt.Errorf("create logs ttl index: %w", err)
	}
	return nil
}

func isMissingIndex(err error) bool {
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return cmdErr.Name == "IndexNotFound" || cmdErr.Name == "NamespaceNotFound"
}

// HealthCheck pings the primary with a two second budget.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
