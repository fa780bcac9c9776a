package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-service/internal/metrics"
)

const (
	// IdempotencyKeyHeader carries the client's retry key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a replayed response.
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// DefaultIdempotencyTTL is how long a response stays replayable.
	DefaultIdempotencyTTL = 5 * time.Minute
)

// IdempotencyConfig configures the Idempotency middleware.
type IdempotencyConfig struct {
	Store   ReplayStore
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig replays from process memory for five minutes.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		Store:   NewMemoryReplayStore(0),
		TTL:     DefaultIdempotencyTTL,
		Enabled: true,
	}
}

// Idempotency replays the stored response of a POST or PUT that carried the
// same Idempotency-Key, client and body. A retried quote request therefore
// returns the original quote ID instead of issuing a new one. Only 2xx
// responses are stored. Store failures never fail the request.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultIdempotencyTTL
	}
	backend := cfg.Store.Backend()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		storeKey, err := replayKey(key, GetClientID(c), c.Request)
		if err != nil {
			metrics.RecordIdempotencyLookup(backend, "skipped")
			requestLogger(c).Warn().Err(err).Msg("Idempotency skipped, request body unreadable")
			c.Next()
			return
		}

		stored, ok, err := cfg.Store.Get(ctx, storeKey)
		switch {
		case err != nil:
			metrics.RecordIdempotencyLookup(backend, "error")
			requestLogger(c).Warn().
				Err(err).Str("backend", backend).Msg("Idempotency lookup failed")
		case ok:
			metrics.RecordIdempotencyLookup(backend, "hit")
			replay(c, stored)
			return
		default:
			metrics.RecordIdempotencyLookup(backend, "miss")
		}

		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		resp := &StoredResponse{
			StatusCode: status,
			Header:     replayableHeader(rec.Header()),
			Body:       rec.body.Bytes(),
		}
		if err := cfg.Store.Set(ctx, storeKey, resp, cfg.TTL); err != nil {
			requestLogger(c).Warn().
				Err(err).Str("backend", backend).Msg("Failed to store idempotent response")
		}
	}
}

func replay(c *gin.Context, stored *StoredResponse) {
	for k, values := range stored.Header {
		c.Writer.Header().Del(k)
		for _, v := range values {
			c.Writer.Header().Add(k, v)
		}
	}
	c.Header(IdempotencyReplayedHeader, "true")
	c.Status(stored.StatusCode)
	_, _ = c.Writer.Write(stored.Body)
	c.Abort()
}

// replayableHeader drops headers that belong to the request being served
// rather than to the stored response.
func replayableHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		switch ck := http.CanonicalHeaderKey(k); {
		case ck == http.CanonicalHeaderKey(RequestIDHeader), ck == "Content-Length", ck == "Retry-After",
			ck == "Content-Encoding", ck == "Vary":
		case strings.HasPrefix(ck, "X-Ratelimit-"):
		default:
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

// replayKey hashes the key with the client, method, path and body. The body
// is restored for the handler, including the read error if there was one.
func replayKey(idempotencyKey, clientID string, req *http.Request) (string, error) {
	h := sha256.New()
	for _, part := range []string{idempotencyKey, clientID, req.Method, req.URL.Path} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			req.Body = struct {
				io.Reader
				io.Closer
			}{io.MultiReader(bytes.NewReader(body), req.Body), req.Body}
			return "", err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// recordingWriter tees the response body.
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
