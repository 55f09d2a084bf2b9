package currency

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/StayLedger/pkg/errors"
)

// RateSource resolves a snapshot for a base currency.
type RateSource interface {
	Rates(ctx context.Context, base string) (*Snapshot, error)
}

// ServiceConfig tunes the RateService.
type ServiceConfig struct {
	// Supported lists the codes a provider response must cover.
	Supported []string
	// TTL bounds snapshot freshness. Zero means 12h.
	TTL time.Duration
	// ProviderTimeout bounds a single provider call.
	ProviderTimeout time.Duration
	// ChainDeadline bounds the whole provider walk.
	ChainDeadline time.Duration
}

// ServiceOption customises a RateService.
type ServiceOption func(*RateService)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *RateService) { s.now = now }
}

// WithFallback replaces the static fallback table.
func WithFallback(t *FallbackTable) ServiceOption {
	return func(s *RateService) { s.fallback = t }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) ServiceOption {
	return func(s *RateService) { s.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(l logging.Logger) ServiceOption {
	return func(s *RateService) { s.logger = l }
}

// RateService serves snapshots from the cache and refreshes them by walking
// the provider chain in priority order, falling back to the static table.
type RateService struct {
	cache     RateCache
	providers []Provider
	fallback  *FallbackTable
	cfg       ServiceConfig
	now       func() time.Time
	logger    logging.Logger
	metrics   Metrics
	group     singleflight.Group
}

// NewRateService builds a RateService. providers must already be in priority
// order.
func NewRateService(cache RateCache, providers []Provider, cfg ServiceConfig, opts ...ServiceOption) *RateService {
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 5 * time.Second
	}
	if cfg.ChainDeadline <= 0 {
		cfg.ChainDeadline = cfg.ProviderTimeout * time.Duration(len(providers)+1)
	}
	s := &RateService{
		cache:     cache,
		providers: providers,
		fallback:  DefaultFallbackTable(),
		cfg:       cfg,
		now:       time.Now,
		logger:    logging.NewNopLogger(),
		metrics:   NopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("fx")
	return s
}

// Rates returns a fresh snapshot for base. It never fails because a provider
// is down; it fails only when neither a provider nor the fallback table can
// produce rates for base.
func (s *RateService) Rates(ctx context.Context, base string) (*Snapshot, error) {
	base = NormalizeCode(base)
	if len(base) != 3 {
		return nil, apperrors.New(apperrors.ErrCodeUnsupportedCurrency, "invalid currency code").WithDetail(base)
	}

	if snap, ok := s.cached(ctx, base); ok {
		s.metrics.ObserveCacheLookup(true)
		return snap, nil
	}
	s.metrics.ObserveCacheLookup(false)

	v, err, _ := s.group.Do(base, func() (interface{}, error) {
		// Another caller may have refreshed while we waited on the group.
		if snap, ok := s.cached(ctx, base); ok {
			return snap, nil
		}
		return s.refresh(ctx, base)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Refresh bypasses the cache and walks the chain for base.
func (s *RateService) Refresh(ctx context.Context, base string) (*Snapshot, error) {
	base = NormalizeCode(base)
	v, err, _ := s.group.Do(base, func() (interface{}, error) {
		return s.refresh(ctx, base)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Invalidate drops the cached snapshot for base.
func (s *RateService) Invalidate(ctx context.Context, base string) error {
	return s.cache.Invalidate(ctx, NormalizeCode(base))
}

func (s *RateService) cached(ctx context.Context, base string) (*Snapshot, bool) {
	snap, ok, err := s.cache.Get(ctx, base)
	if err != nil {
		s.logger.Warn("rate cache read failed", logging.Currency("base", base), logging.Err(err))
		return nil, false
	}
	if !ok || !snap.Fresh(s.now(), s.cfg.TTL) {
		return nil, false
	}
	return snap, true
}

func (s *RateService) refresh(ctx context.Context, base string) (*Snapshot, error) {
	// The walk is shared by every caller collapsed into this flight, so it
	// must not die with the first caller's context.
	chainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ChainDeadline)
	defer cancel()

	snap := s.walkChain(chainCtx, base)
	if snap == nil {
		fb, err := s.fallback.Rebase(base, s.now())
		if err != nil {
			s.logger.Error("no rates available for base currency", logging.Currency("base", base), logging.Err(err))
			return nil, err
		}
		s.metrics.ObserveFallback(base)
		s.logger.Warn("all rate providers failed, using static fallback", logging.Currency("base", base))
		snap = fb
	}

	if err := s.cache.Set(ctx, snap); err != nil {
		s.logger.Warn("rate cache write failed", logging.Currency("base", base), logging.Err(err))
	}
	return snap, nil
}

func (s *RateService) walkChain(ctx context.Context, base string) *Snapshot {
	for _, p := range s.providers {
		if ctx.Err() != nil {
			s.logger.Warn("provider chain deadline exceeded", logging.Currency("base", base), logging.Duration("deadline", s.cfg.ChainDeadline))
			return nil
		}
		snap, err := s.try(ctx, p, base)
		if err != nil {
			s.logger.Warn("rate provider failed",
				logging.String("provider", p.Name()),
				logging.Currency("base", base),
				logging.Err(err),
			)
			continue
		}
		s.logger.Debug("rates fetched", logging.String("provider", p.Name()), logging.Currency("base", base))
		return snap
	}
	return nil
}

// try calls a single provider under its own timeout and validates coverage.
// A panic inside a provider is treated like any other provider failure.
func (s *RateService) try(ctx context.Context, p Provider, base string) (snap *Snapshot, err error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	start := s.now()
	outcome := OutcomeError
	defer func() {
		if r := recover(); r != nil {
			snap, err = nil, fmt.Errorf("provider panic: %v", r)
			outcome = OutcomeError
		}
		s.metrics.ObserveProvider(p.Name(), outcome, s.now().Sub(start).Seconds())
	}()

	raw, err := p.Fetch(callCtx, base)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeProviderUnavailable, "provider "+p.Name()+" unavailable")
	}

	candidate := NewSnapshot(base, raw, s.now(), p.Name())
	if missing := candidate.Missing(s.cfg.Supported); len(missing) > 0 {
		outcome = OutcomeIncomplete
		return nil, apperrors.New(apperrors.ErrCodeRateSnapshotInvalid, "provider response incomplete").
			WithDetail(fmt.Sprintf("missing=%v", missing))
	}
	outcome = OutcomeSuccess
	return candidate, nil
}

//Personal.AI order the ending
