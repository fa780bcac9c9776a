package cache

import (
	"context"

	"github.com/guttosm/quote-service/internal/domain/model"
)

// Tiered reads the local cache first and falls back to the shared one,
// copying shared hits into the local tier. Writes go to both.
type Tiered struct {
	local  Cache
	shared Cache
}

func NewTiered(local, shared Cache) *Tiered {
	return &Tiered{local: local, shared: shared}
}

func (t *Tiered) Get(ctx context.Context, key string) (model.Quote, bool) {
	if quote, ok := t.local.Get(ctx, key); ok {
		return quote, true
	}
	quote, ok := t.shared.Get(ctx, key)
	if ok {
		t.local.Set(ctx, key, quote)
	}
	return quote, ok
}

func (t *Tiered) Set(ctx context.Context, key string, quote model.Quote) {
	t.local.Set(ctx, key, quote)
	t.shared.Set(ctx, key, quote)
}

func (t *Tiered) Clear() {
	t.local.Clear()
	t.shared.Clear()
}

func (t *Tiered) Stop() {
	t.local.Stop()
	t.shared.Stop()
}

// Metrics reports the local tier.
func (t *Tiered) Metrics() Metrics {
	if r, ok := t.local.(Reporter); ok {
		return r.Metrics()
	}
	return Metrics{}
}

var (
	_ Cache    = (*Tiered)(nil)
	_ Reporter = (*Tiered)(nil)
)
