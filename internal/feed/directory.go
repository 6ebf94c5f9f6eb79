// Package feed assembles read models over the state held by the stores.
package feed

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"

	"github.com/dtroode/gophsocial/internal/logger"
	"github.com/dtroode/gophsocial/internal/model"
)

// Directory is a bounded, in-memory index of profiles keyed by account id.
// It implements model.ProfileSink so the stores can feed it every profile
// they see.
type Directory struct {
	ristretto *ristretto.Cache
	cache     *cache.Cache[model.Profile]
	logger    *logger.Logger
}

// NewDirectory creates a Directory holding about size profiles.
func NewDirectory(size int64, logger *logger.Logger) (*Directory, error) {
	if size <= 0 {
		return nil, fmt.Errorf("directory size must be positive, got %d", size)
	}

	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: 64,
		// cost counts profiles, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile cache: %w", err)
	}

	return &Directory{
		ristretto: rc,
		cache:     cache.New[model.Profile](ristretto_store.NewRistretto(rc)),
		logger:    logger.Component("directory"),
	}, nil
}

// Remember stores profiles that carry an account id. Later profiles for the
// same account replace earlier ones.
func (d *Directory) Remember(ctx context.Context, profiles ...model.Profile) {
	for _, p := range profiles {
		id := p.AccountID()
		if id == "" {
			continue
		}
		if err := d.cache.Set(ctx, id, p, store.WithCost(1)); err != nil {
			d.logger.Debug("profile not cached", "account_id", id, "error", err)
		}
	}
	d.ristretto.Wait()
}

// Resolve returns the cached profile of accountID.
func (d *Directory) Resolve(ctx context.Context, accountID string) (model.Profile, bool) {
	if accountID == "" {
		return model.Profile{}, false
	}
	p, err := d.cache.Get(ctx, accountID)
	if err != nil {
		return model.Profile{}, false
	}
	return p, true
}

// Close releases the cache's background goroutines.
func (d *Directory) Close() {
	d.ristretto.Close()
}
