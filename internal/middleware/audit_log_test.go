package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/mocks"
)

func TestAuditLog(t *testing.T) {
	tests := []struct {
		name       string
		actionType string
		message    string
		fields     map[string]any
		clientID   string
		match      func(*model.LogEntry) bool
	}{
		{
			name:       "quote issued by a client",
			actionType: ActionQuote,
			message:    "Quote issued",
			fields:     map[string]any{QuoteIDField: "q-123", "quantity": 10},
			clientID:   "acme",
			match: func(entry *model.LogEntry) bool {
				return entry.Action == ActionQuote &&
					entry.Level == "info" &&
					entry.ClientID == "acme" &&
					entry.QuoteID == "q-123" &&
					entry.Fields["quantity"] == 10 &&
					entry.Fields[QuoteIDField] == nil
			},
		},
		{
			name:       "anonymous cost estimate",
			actionType: ActionCost,
			message:    "Cost estimated",
			fields:     map[string]any{"material": "aluminum"},
			match: func(entry *model.LogEntry) bool {
				return entry.Action == ActionCost &&
					entry.ClientID == "" &&
					entry.QuoteID == "" &&
					entry.RequestID != ""
			},
		},
		{
			name:       "non-string quote id is ignored",
			actionType: ActionApplyLimits,
			message:    "Limits applied",
			fields:     map[string]any{QuoteIDField: 42},
			match: func(entry *model.LogEntry) bool {
				return entry.QuoteID == "" && entry.Request != nil && entry.Request.Path == "/test" && entry.Fields[QuoteIDField] == 42
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			StopLogBatcher()
			mockLogging := mocks.NewMockLoggingService(t)
			done := make(chan struct{})
			mockLogging.On("CreateLog", mock.Anything, mock.MatchedBy(tt.match)).
				Run(func(mock.Arguments) { close(done) }).
				Return(nil).Once()

			router := gin.New()
			router.Use(RequestID())
			router.GET("/test", func(c *gin.Context) {
				if tt.clientID != "" {
					c.Set(ClientIDKey, tt.clientID)
				}
				AuditLog(mockLogging, c, tt.actionType, tt.message, tt.fields)
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("audit entry was not written")
			}
		})
	}
}

func TestAuditLog_NilService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	assert.NotPanics(t, func() {
		AuditLog(nil, c, ActionQuote, "Quote issued", nil)
		AuditLogError(nil, c, ActionQuote, "Quote rejected", assert.AnError, nil)
	})
}

func TestAuditLogError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		clientID string
		match    func(*model.LogEntry) bool
	}{
		{
			name:     "rejected quote keeps the error",
			err:      assert.AnError,
			clientID: "acme",
			match: func(entry *model.LogEntry) bool {
				return entry.Action == ActionQuote &&
					entry.Level == "error" &&
					entry.Error == assert.AnError.Error() &&
					entry.ClientID == "acme"
			},
		},
		{
			name: "nil error leaves the field empty",
			match: func(entry *model.LogEntry) bool {
				return entry.Level == "error" && entry.Error == ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			StopLogBatcher()
			mockLogging := mocks.NewMockLoggingService(t)
			done := make(chan struct{})
			mockLogging.On("CreateLog", mock.Anything, mock.MatchedBy(tt.match)).
				Run(func(mock.Arguments) { close(done) }).
				Return(nil).Once()

			router := gin.New()
			router.Use(RequestID())
			router.POST("/test", func(c *gin.Context) {
				if tt.clientID != "" {
					c.Set(ClientIDKey, tt.clientID)
				}
				AuditLogError(mockLogging, c, ActionQuote, "Quote rejected", tt.err, nil)
				c.Status(http.StatusUnprocessableEntity)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", nil))

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("audit entry was not written")
			}
		})
	}
}
