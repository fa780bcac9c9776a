package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-service/internal/domain/dto"
	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/middleware"
	"github.com/guttosm/quote-service/internal/repository"
	"github.com/guttosm/quote-service/internal/service"
)

func putJSON(t *testing.T, router http.Handler, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPricingTablesHandler_GetActive(t *testing.T) {
	tests := []struct {
		name           string
		tables         model.PricingTables
		err            error
		expectedStatus int
	}{
		{
			name:           "active tables",
			tables:         service.DefaultPricingTables(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "storage unavailable",
			err:            assert.AnError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := newMockPricingTablesService(t)
			router := newTestRouter(newMockQuoteService(t), tables)
			tables.On("Active", mock.Anything).Return(tt.tables, tt.err).Once()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pricing-tables", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.err == nil {
				var got model.PricingTables
				decodeData(t, w, &got)
				assert.Len(t, got.Materials, len(tt.tables.Materials))
				assert.Len(t, got.Tiers, len(model.AllTiers))
			}
		})
	}
}

func TestPricingTablesHandler_Update(t *testing.T) {
	defaults := service.DefaultPricingTables()

	tests := []struct {
		name           string
		body           dto.UpdatePricingTablesRequest
		clientID       string
		expectedBy     string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "explicit author",
			body:           dto.UpdatePricingTablesRequest{Tables: defaults, UpdatedBy: "pricing-team"},
			expectedBy:     "pricing-team",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "author defaults to the API client",
			body:           dto.UpdatePricingTablesRequest{Tables: defaults},
			clientID:       "acme",
			expectedBy:     "acme",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid tables",
			body:           dto.UpdatePricingTablesRequest{Tables: defaults, UpdatedBy: "ops"},
			expectedBy:     "ops",
			err:            model.NewValidationError("materials", "at least one material is required"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidRequest,
		},
		{
			name:           "storage disabled",
			body:           dto.UpdatePricingTablesRequest{Tables: defaults, UpdatedBy: "ops"},
			expectedBy:     "ops",
			err:            service.ErrRepositoryNotConfigured,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   dto.ErrCodeServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := newMockPricingTablesService(t)
			cfg := DefaultRouterConfig()
			cfg.RateLimit = 0
			cfg.QuoteService = newMockQuoteService(t)
			cfg.PricingTablesService = tables
			headers := map[string]string{}
			if tt.clientID != "" {
				cfg.EnableAuth = true
				cfg.APIKeys = map[string]string{"key-" + tt.clientID: tt.clientID}
				headers[middleware.APIKeyHeader] = "key-" + tt.clientID
			}
			router := NewRouter(NewHealthHandler(), cfg)

			stored := defaults
			stored.Version = 4
			tables.On("Update", mock.Anything, mock.AnythingOfType("model.PricingTables"), tt.expectedBy).
				Return(stored, tt.err).Once()

			w := putJSON(t, router, "/api/pricing-tables", tt.body, headers)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.err != nil {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
				return
			}
			var got model.PricingTables
			decodeData(t, w, &got)
			assert.Equal(t, 4, got.Version)
		})
	}
}

func TestPricingTablesHandler_History(t *testing.T) {
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	docs := []repository.PricingTablesDocument{
		{Version: 2, Active: true, CreatedAt: created, CreatedBy: "ops"},
		{Version: 1, CreatedAt: created.Add(-24 * time.Hour), CreatedBy: "system"},
	}

	tests := []struct {
		name           string
		query          string
		expectedLimit  int
		err            error
		expectedStatus int
	}{
		{name: "default limit", expectedLimit: defaultHistoryLimit, expectedStatus: http.StatusOK},
		{name: "explicit limit", query: "?limit=5", expectedLimit: 5, expectedStatus: http.StatusOK},
		{name: "limit above maximum", query: "?limit=500", expectedStatus: http.StatusBadRequest},
		{name: "non-numeric limit", query: "?limit=abc", expectedStatus: http.StatusBadRequest},
		{name: "storage disabled", expectedLimit: defaultHistoryLimit, err: service.ErrRepositoryNotConfigured, expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := newMockPricingTablesService(t)
			router := newTestRouter(newMockQuoteService(t), tables)
			if tt.expectedLimit > 0 {
				tables.On("History", mock.Anything, tt.expectedLimit).Return(docs, tt.err).Once()
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pricing-tables/history"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var got []dto.PricingTablesVersionResponse
			decodeData(t, w, &got)
			require.Len(t, got, 2)
			assert.Equal(t, 2, got[0].Version)
			assert.True(t, got[0].Active)
			assert.Equal(t, "system", got[1].CreatedBy)
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "", want: defaultHistoryLimit},
		{raw: "1", want: 1},
		{raw: "100", want: 100},
		{raw: "0", wantErr: true},
		{raw: "101", wantErr: true},
		{raw: "-3", wantErr: true},
		{raw: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseLimit(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
