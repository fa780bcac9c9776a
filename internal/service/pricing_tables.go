package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/logger"
	"github.com/guttosm/quote-service/internal/repository"
)

// ErrRepositoryNotConfigured is returned when the repository is not configured.
var ErrRepositoryNotConfigured = errors.New("repository not configured")

// DefaultTablesRefreshInterval bounds how long a stored table version is served from memory.
const DefaultTablesRefreshInterval = 30 * time.Second

// PricingTablesService serves the lookup tables quotes are priced with.
type PricingTablesService interface {
	// Active returns the active tables, or the built-in defaults when none are stored.
	Active(ctx context.Context) (model.PricingTables, error)
	// Update validates tables and stores them as the next active version.
	Update(ctx context.Context, tables model.PricingTables, updatedBy string) (model.PricingTables, error)
	// History lists stored versions, newest first.
	History(ctx context.Context, limit int) ([]repository.PricingTablesDocument, error)
	// Seed stores the built-in defaults as version 1 when nothing is stored yet.
	Seed(ctx context.Context) error
}

// PricingTablesServiceImpl implements PricingTablesService.
type PricingTablesServiceImpl struct {
	repo     repository.PricingTablesRepositoryInterface
	refresh  time.Duration
	onUpdate []func(model.PricingTables)

	mu       sync.RWMutex
	current  *model.PricingTables
	loadedAt time.Time
}

// TablesOption configures a PricingTablesServiceImpl.
type TablesOption func(*PricingTablesServiceImpl)

// WithRefreshInterval sets how long the active tables are memoized. Zero disables memoization.
func WithRefreshInterval(d time.Duration) TablesOption {
	return func(s *PricingTablesServiceImpl) {
		s.refresh = d
	}
}

// WithOnUpdate registers a callback run after a new version is stored.
func WithOnUpdate(fn func(model.PricingTables)) TablesOption {
	return func(s *PricingTablesServiceImpl) {
		if fn != nil {
			s.onUpdate = append(s.onUpdate, fn)
		}
	}
}

// NewPricingTablesService creates a pricing tables service. A nil repo serves the defaults only.
func NewPricingTablesService(repo repository.PricingTablesRepositoryInterface, opts ...TablesOption) *PricingTablesServiceImpl {
	s := &PricingTablesServiceImpl{
		repo:    repo,
		refresh: DefaultTablesRefreshInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PricingTablesServiceImpl) Active(ctx context.Context) (model.PricingTables, error) {
	if s.repo == nil {
		return DefaultPricingTables(), nil
	}

	s.mu.RLock()
	if s.current != nil && time.Since(s.loadedAt) < s.refresh {
		tables := *s.current
		s.mu.RUnlock()
		return tables, nil
	}
	s.mu.RUnlock()

	doc, err := s.repo.GetActive(ctx)
	if err != nil {
		return model.PricingTables{}, err
	}
	if doc == nil {
		return DefaultPricingTables(), nil
	}

	tables := doc.ToModel()
	s.remember(tables)
	return tables, nil
}

func (s *PricingTablesServiceImpl) Update(ctx context.Context, tables model.PricingTables, updatedBy string) (model.PricingTables, error) {
	if s.repo == nil {
		return model.PricingTables{}, ErrRepositoryNotConfigured
	}
	if err := tables.Validate(); err != nil {
		return model.PricingTables{}, err
	}

	doc, err := s.repo.Create(ctx, tables, updatedBy)
	if err != nil {
		return model.PricingTables{}, err
	}

	stored := doc.ToModel()
	s.remember(stored)

	logger.Ctx(ctx).Info().
		Int("version", stored.Version).
		Str("updated_by", updatedBy).
		Msg("Pricing tables updated")

	for _, fn := range s.onUpdate {
		fn(stored)
	}
	return stored, nil
}

func (s *PricingTablesServiceImpl) History(ctx context.Context, limit int) ([]repository.PricingTablesDocument, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return s.repo.List(ctx, limit)
}

func (s *PricingTablesServiceImpl) Seed(ctx context.Context) error {
	if s.repo == nil {
		return ErrRepositoryNotConfigured
	}
	doc, err := s.repo.GetActive(ctx)
	if err != nil {
		return err
	}
	if doc != nil {
		log.Debug().Int("version", doc.Version).Msg("Pricing tables already seeded")
		return nil
	}

	seeded, err := s.repo.Create(ctx, DefaultPricingTables(), "system")
	if err != nil {
		return err
	}
	log.Info().Int("version", seeded.Version).Msg("Seeded default pricing tables")
	return nil
}

func (s *PricingTablesServiceImpl) remember(tables model.PricingTables) {
	if s.refresh <= 0 {
		return
	}
	s.mu.Lock()
	s.current = &tables
	s.loadedAt = time.Now()
	s.mu.Unlock()
}
