//go:build integration

// Package testutil runs the MongoDB container used by the integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

// MongoImage is the server version the repositories are tested against.
const MongoImage = "mongo:7.0"

// Mongo is a running MongoDB container.
type Mongo struct {
	container *mongodb.MongoDBContainer
	URI       string
}

// StartMongo starts a dedicated container. Most packages share one through
// RunWithMongo instead.
func StartMongo(ctx context.Context) (*Mongo, error) {
	container, err := mongodb.Run(ctx, MongoImage)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", MongoImage, err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("mongodb connection string: %w", err)
	}
	return &Mongo{container: container, URI: uri}, nil
}

// Stop terminates the container.
func (m *Mongo) Stop(ctx context.Context) error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Terminate(ctx)
}

var (
	sharedOnce  sync.Once
	sharedMongo *Mongo
	sharedErr   error
)

// RunWithMongo starts the package-wide container, runs the tests and stops it.
//
//	func TestMain(m *testing.M) { os.Exit(testutil.RunWithMongo(m)) }
func RunWithMongo(m *testing.M) int {
	ctx := context.Background()
	sharedOnce.Do(func() {
		sharedMongo, sharedErr = StartMongo(ctx)
	})
	if sharedErr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "integration tests need docker: %v\n", sharedErr)
		return 1
	}

	code := m.Run()

	stopCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sharedMongo.Stop(stopCtx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "stop shared mongodb: %v\n", err)
	}
	return code
}

// MongoURI returns the URI of the package-wide container.
func MongoURI() string {
	if sharedMongo == nil {
		panic("testutil: MongoURI called outside RunWithMongo")
	}
	return sharedMongo.URI
}

var dbSeq atomic.Int64

var dbNameReplacer = strings.NewReplacer("/", "_", "\\", "_", " ", "_", ".", "_", "$", "_", "\"", "_", "#", "_")

// DatabaseName derives a unique, valid database name from the test name so
// parallel tests never share data.
func DatabaseName(t testing.TB) string {
	name := strings.ToLower(dbNameReplacer.Replace(t.Name()))
	if len(name) > 40 {
		name = name[:40]
	}
	return fmt.Sprintf("%s_%d_%d", name, os.Getpid()%10000, dbSeq.Add(1))
}
