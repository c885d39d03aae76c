package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"portfel/internal/cache"
	"portfel/internal/core"
	"portfel/internal/ports"
)

const (
	RateSourceRemote = "remote"
	RateSourceStored = "stored"

	rateCacheKey = "rates"
)

// RateSnapshot is the rate map used for one session's computations.
type RateSnapshot struct {
	Rates     core.RateMap `json:"rates"`
	Source    string       `json:"source"`
	FetchedAt time.Time    `json:"fetchedAt"`
}

// RateService keeps the exchange-rate collection in step with the remote
// provider. A failed fetch never blocks callers: they get the stored rates.
type RateService struct {
	provider ports.RateProvider
	store    ports.RateStore
	home     string
	cache    *cache.LRU[RateSnapshot]
	group    singleflight.Group
	now      func() time.Time
}

// NewRateService caches a synced snapshot for ttl. provider may be nil, in
// which case only stored rates are served.
func NewRateService(provider ports.RateProvider, store ports.RateStore, home string, ttl time.Duration) *RateService {
	if home == "" {
		home = core.DefaultHomeCurrency
	}
	return &RateService{
		provider: provider,
		store:    store,
		home:     strings.ToUpper(home),
		cache:    cache.NewLRU[RateSnapshot](1, ttl),
		now:      time.Now,
	}
}

// Cache exposes the snapshot cache so it can be swept by a janitor.
func (s *RateService) Cache() *cache.LRU[RateSnapshot] {
	return s.cache
}

func (s *RateService) HomeCurrency() string {
	return s.home
}

// Current returns the cached snapshot or syncs a new one.
func (s *RateService) Current(ctx context.Context) (RateSnapshot, error) {
	if snap, ok := s.cache.Get(rateCacheKey); ok {
		snap.Rates = snap.Rates.Clone()
		return snap, nil
	}
	return s.Sync(ctx)
}

// Sync fetches remote rates, upserts one record per currency and caches the
// result. Concurrent calls share a single fetch.
func (s *RateService) Sync(ctx context.Context) (RateSnapshot, error) {
	v, err, _ := s.group.Do(rateCacheKey, func() (any, error) {
		return s.sync(ctx)
	})
	if err != nil {
		return RateSnapshot{}, err
	}
	snap := v.(RateSnapshot)
	snap.Rates = snap.Rates.Clone()
	return snap, nil
}

func (s *RateService) sync(ctx context.Context) (RateSnapshot, error) {
	if s.provider == nil {
		return s.fallback(ctx, nil)
	}

	fetched, err := s.provider.FetchRates(ctx)
	if err != nil {
		return s.fallback(ctx, err)
	}

	now := s.now()
	if _, ok := core.RateMap(fetched).Lookup(s.home); !ok {
		slog.WarnContext(ctx, "Provider has no rate for the home currency, rates kept as quoted", "currency", s.home)
	}
	rates := core.NormalizeRates(fetched, s.home)
	stored := 0
	for code, rate := range rates {
		err := s.store.PutRate(ctx, core.ExchangeRate{Currency: code, Rate: rate, UpdatedAt: now})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to store exchange rate", "currency", code, "error", err)
			continue
		}
		stored++
	}

	slog.InfoContext(ctx, "Exchange rates synced", "currencies", len(rates), "stored", stored)

	snap := RateSnapshot{Rates: rates, Source: RateSourceRemote, FetchedAt: now}
	s.cache.Set(rateCacheKey, snap)
	return snap, nil
}

// fallback serves whatever the store has. fetchErr is the provider failure, if any.
func (s *RateService) fallback(ctx context.Context, fetchErr error) (RateSnapshot, error) {
	if fetchErr != nil {
		slog.WarnContext(ctx, "Exchange rate fetch failed, using stored rates", "error", fetchErr)
	}

	records, err := s.store.ListRates(ctx)
	if err != nil {
		if fetchErr != nil {
			return RateSnapshot{}, fmt.Errorf("load stored rates after fetch failure (%v): %w", fetchErr, err)
		}
		return RateSnapshot{}, fmt.Errorf("load stored rates: %w", err)
	}

	var fetchedAt time.Time
	for _, r := range records {
		if r.UpdatedAt.After(fetchedAt) {
			fetchedAt = r.UpdatedAt
		}
	}

	snap := RateSnapshot{
		Rates:     core.RateMapFromRecords(records, s.home),
		Source:    RateSourceStored,
		FetchedAt: fetchedAt,
	}
	s.cache.Set(rateCacheKey, snap)
	return snap, nil
}

// Invalidate drops the cached snapshot so the next Current call syncs.
func (s *RateService) Invalidate() {
	s.cache.Delete(rateCacheKey)
}
