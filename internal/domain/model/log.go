package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestInfo describes the HTTP exchange a log entry was written for.
type RequestInfo struct {
	Method     string `bson:"method" json:"method"`
	Path       string `bson:"path" json:"path"`
	Route      string `bson:"route,omitempty" json:"route,omitempty"`
	StatusCode int    `bson:"status_code,omitempty" json:"status_code,omitempty"`
	DurationMS int64  `bson:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	IP         string `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent  string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
}

// LogEntry is a request or audit record kept in the logs collection. Audit
// entries carry an Action; request entries do not.
type LogEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Level     string             `bson:"level" json:"level"`
	Message   string             `bson:"message" json:"message"`
	RequestID string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	ClientID  string             `bson:"client_id,omitempty" json:"client_id,omitempty"`
	QuoteID   string             `bson:"quote_id,omitempty" json:"quote_id,omitempty"`
	Action    string             `bson:"action,omitempty" json:"action,omitempty"`
	Request   *RequestInfo       `bson:"request,omitempty" json:"request,omitempty"`
	Error     string             `bson:"error,omitempty" json:"error,omitempty"`
	Fields    map[string]any     `bson:"fields,omitempty" json:"fields,omitempty"`
}

// WithFields merges fields into the entry.
func (e *LogEntry) WithFields(fields map[string]any) *LogEntry {
	if len(fields) == 0 {
		return e
	}
	if e.Fields == nil {
		e.Fields = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// IsAudit reports whether the entry records a pricing action.
func (e *LogEntry) IsAudit() bool {
	return e.Action != ""
}

// Stamp assigns an ID and a timestamp when they are missing.
func (e *LogEntry) Stamp(now time.Time) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectIDFromTimestamp(now)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
}

// Log query page sizes.
const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

// LogFilter selects log entries. Empty fields match everything and a zero
// Since or Until leaves that end of the time range open.
type LogFilter struct {
	QuoteID   string
	RequestID string
	ClientID  string
	Action    string
	Level     string
	Since     time.Time
	Until     time.Time
	Limit     int
	Skip      int
}

// Normalized clamps Limit to [1, MaxLogLimit], defaulting to
// DefaultLogLimit, and Skip to zero or more.
func (f LogFilter) Normalized() LogFilter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultLogLimit
	case f.Limit > MaxLogLimit:
		f.Limit = MaxLogLimit
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	return f
}

// LogPage is one page of a log query with the total number of matches.
type LogPage struct {
	Entries []LogEntry `json:"entries"`
	Total   int64      `json:"total"`
	Limit   int        `json:"limit"`
	Skip    int        `json:"skip"`
}
