// v0
// internal/telemetry/resolver.go
package telemetry

import (
	"context"
	"log/slog"
	"time"
)

// Store is the read side of the relational store. Latest* methods return
// (nil, nil) when no row exists; errors are reserved for store failures.
type Store interface {
	// LatestClimate returns the climate row at the given offset from the
	// newest (0 = newest, 1 = second-newest).
	LatestClimate(ctx context.Context, offset int) (*ClimateSample, error)
	LatestHazard(ctx context.Context) (*HazardSample, error)
	LatestElectrical(ctx context.Context) (*ElectricalSample, error)
	// Series returns every row of the channel's table, newest first.
	Series(ctx context.Context, ch Channel) ([]Record, error)
}

// Observer receives fallback notifications. It is satisfied by
// *observability.Metrics; nil disables reporting.
type Observer interface {
	FallbackServed(channel string)
}

// Resolver maps logical channels to store rows and applies the
// per-channel fallback policy.
type Resolver struct {
	store Store
	log   *slog.Logger
	obs   Observer
	now   func() time.Time
}

// NewResolver builds a resolver. now defaults to time.Now.
func NewResolver(store Store, log *slog.Logger, obs Observer, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{store: store, log: log, obs: obs, now: now}
}

// LatestPrimaryClimate returns the newest climate row or ErrNotFound.
func (r *Resolver) LatestPrimaryClimate(ctx context.Context) (ClimateSample, error) {
	s, err := r.store.LatestClimate(ctx, 0)
	if err != nil {
		return ClimateSample{}, err
	}
	if s == nil {
		return ClimateSample{}, ErrNotFound
	}
	return *s, nil
}

// LatestSecondaryClimate returns the second-newest climate row. When
// only one row exists the sample is derived from it and flagged
// synthetic; with no rows at all it fails with ErrNotFound.
func (r *Resolver) LatestSecondaryClimate(ctx context.Context) (ClimateSample, error) {
	s, err := r.store.LatestClimate(ctx, 1)
	if err != nil {
		return ClimateSample{}, err
	}
	if s != nil {
		return *s, nil
	}
	primary, err := r.LatestPrimaryClimate(ctx)
	if err != nil {
		return ClimateSample{}, err
	}
	r.fallback("sensor2", "derived from primary climate sample")
	return DeriveSecondary(primary), nil
}

// LatestHazard returns the newest hazard row, or the default record
// stamped with the current time when the table is empty.
func (r *Resolver) LatestHazard(ctx context.Context) (HazardSample, error) {
	s, err := r.store.LatestHazard(ctx)
	if err != nil {
		return HazardSample{}, err
	}
	if s == nil {
		r.fallback("fire-smoke", "default hazard record")
		return DefaultHazard(r.now().UTC()), nil
	}
	return *s, nil
}

// LatestElectrical returns the newest electrical row, or the default
// record stamped with the current time when the table is empty.
func (r *Resolver) LatestElectrical(ctx context.Context) (ElectricalSample, error) {
	s, err := r.store.LatestElectrical(ctx)
	if err != nil {
		return ElectricalSample{}, err
	}
	if s == nil {
		r.fallback("electricity", "default electrical record")
		return DefaultElectrical(r.now().UTC()), nil
	}
	return *s, nil
}

func (r *Resolver) fallback(channel, reason string) {
	if r.log != nil {
		r.log.Info("telemetry_fallback", slog.String("channel", channel), slog.String("reason", reason))
	}
	if r.obs != nil {
		r.obs.FallbackServed(channel)
	}
}
