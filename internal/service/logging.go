package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/repository"
)

// LoggingService persists and reads request and audit logs.
type LoggingService interface {
	CreateLog(ctx context.Context, entry *model.LogEntry) error
	// CreateLogs writes a batch in one round trip. Nil entries are skipped.
	CreateLogs(ctx context.Context, entries []*model.LogEntry) error
	QueryLogs(ctx context.Context, filter model.LogFilter) (model.LogPage, error)
	// QuoteAuditTrail returns the audit entries recorded for a quote, newest first.
	QuoteAuditTrail(ctx context.Context, quoteID string, limit int) ([]model.LogEntry, error)
}

// LoggingServiceImpl implements LoggingService on a logs repository.
type LoggingServiceImpl struct {
	repo repository.LogsRepositoryInterface
	now  func() time.Time
}

func NewLoggingService(repo repository.LogsRepositoryInterface) *LoggingServiceImpl {
	return &LoggingServiceImpl{repo: repo, now: time.Now}
}

func (s *LoggingServiceImpl) CreateLog(ctx context.Context, entry *model.LogEntry) error {
	if entry == nil {
		return model.NewValidationError("entry", "log entry is required")
	}
	if err := s.prepare(entry); err != nil {
		return err
	}
	return s.repo.Insert(ctx, entry)
}

func (s *LoggingServiceImpl) CreateLogs(ctx context.Context, entries []*model.LogEntry) error {
	batch := make([]*model.LogEntry, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		if err := s.prepare(e); err != nil {
			return err
		}
		batch = append(batch, e)
	}
	if len(batch) == 0 {
		return nil
	}
	return s.repo.Insert(ctx, batch...)
}

// QueryLogs reads the page and the total match count concurrently.
func (s *LoggingServiceImpl) QueryLogs(ctx context.Context, filter model.LogFilter) (model.LogPage, error) {
	filter = filter.Normalized()
	if filter.Level != "" {
		level, err := normalizeLevel(filter.Level)
		if err != nil {
			return model.LogPage{}, err
		}
		filter.Level = level
	}

	page := model.LogPage{Limit: filter.Limit, Skip: filter.Skip}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := s.repo.Find(gctx, filter)
		page.Entries = entries
		return err
	})
	g.Go(func() error {
		total, err := s.repo.Count(gctx, filter)
		page.Total = total
		return err
	})
	if err := g.Wait(); err != nil {
		return model.LogPage{}, fmt.Errorf("query logs: %w", err)
	}
	if page.Entries == nil {
		page.Entries = []model.LogEntry{}
	}
	return page, nil
}

func (s *LoggingServiceImpl) QuoteAuditTrail(ctx context.Context, quoteID string, limit int) ([]model.LogEntry, error) {
	if strings.TrimSpace(quoteID) == "" {
		return nil, model.NewValidationError("quote_id", "quote id is required")
	}
	entries, err := s.repo.Find(ctx, model.LogFilter{QuoteID: quoteID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("audit trail for %s: %w", quoteID, err)
	}

	trail := entries[:0]
	for _, e := range entries {
		if e.IsAudit() {
			trail = append(trail, e)
		}
	}
	return trail, nil
}

// prepare stamps the entry and normalizes its level. Entries without a level
// are recorded at info.
func (s *LoggingServiceImpl) prepare(e *model.LogEntry) error {
	level, err := normalizeLevel(e.Level)
	if err != nil {
		return err
	}
	e.Level = level
	e.Stamp(s.now())
	return nil
}

func normalizeLevel(raw string) (string, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return zerolog.InfoLevel.String(), nil
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil || level == zerolog.NoLevel || level == zerolog.Disabled {
		return "", model.NewValidationError("level", fmt.Sprintf("unknown log level %q", raw))
	}
	return level.String(), nil
}

var _ LoggingService = (*LoggingServiceImpl)(nil)
