// v0
// internal/telemetry/resolver_test.go
package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"reflect"
	"testing"
	"time"
)

type stubStore struct {
	climate    []ClimateSample
	hazard     *HazardSample
	electrical *ElectricalSample
	series     map[Channel][]Record
	err        error
}

func (s *stubStore) LatestClimate(_ context.Context, offset int) (*ClimateSample, error) {
	if s.err != nil {
		return nil, s.err
	}
	if offset >= len(s.climate) {
		return nil, nil
	}
	c := s.climate[offset]
	return &c, nil
}

func (s *stubStore) LatestHazard(context.Context) (*HazardSample, error) {
	return s.hazard, s.err
}

func (s *stubStore) LatestElectrical(context.Context) (*ElectricalSample, error) {
	return s.electrical, s.err
}

func (s *stubStore) Series(_ context.Context, ch Channel) ([]Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.series[ch], nil
}

type countingObserver struct {
	channels []string
}

func (c *countingObserver) FallbackServed(channel string) {
	c.channels = append(c.channels, channel)
}

func newTestResolver(store Store, obs Observer, now time.Time) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(store, logger, obs, func() time.Time { return now })
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPrimaryClimateNotFound(t *testing.T) {
	r := newTestResolver(&stubStore{}, nil, time.Now())
	if _, err := r.LatestPrimaryClimate(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPrimaryClimateReturnsNewest(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &stubStore{climate: []ClimateSample{{Temperature: Num(24.5), Humidity: Num(55), Timestamp: ts}}}
	r := newTestResolver(store, nil, time.Now())

	got, err := r.LatestPrimaryClimate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got.Temperature != 24.5 || *got.Humidity != 55 || !got.Timestamp.Equal(ts) || got.Synthetic {
		t.Fatalf("unexpected sample %#v", got)
	}
}

func TestSecondaryClimateDerivedFromPrimary(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &stubStore{climate: []ClimateSample{{Temperature: Num(25.0), Humidity: Num(60.0), Timestamp: ts}}}
	obs := &countingObserver{}
	r := newTestResolver(store, obs, time.Now())

	got, err := r.LatestSecondaryClimate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(*got.Temperature, 26.2) {
		t.Fatalf("expected temperature 26.2, got %v", *got.Temperature)
	}
	if !almostEqual(*got.Humidity, 63.5) {
		t.Fatalf("expected humidity 63.5, got %v", *got.Humidity)
	}
	if !got.Timestamp.Equal(ts) {
		t.Fatalf("expected timestamp %s, got %s", ts, got.Timestamp)
	}
	if !got.Synthetic {
		t.Fatalf("expected derived sample to be flagged synthetic")
	}
	if len(obs.channels) != 1 || obs.channels[0] != "sensor2" {
		t.Fatalf("expected one sensor2 fallback, got %v", obs.channels)
	}
}

func TestSecondaryClimateUsesSecondRow(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Minute)
	store := &stubStore{climate: []ClimateSample{
		{Temperature: Num(25), Humidity: Num(60), Timestamp: t1},
		{Temperature: Num(23), Humidity: Num(58), Timestamp: t0},
	}}
	obs := &countingObserver{}
	r := newTestResolver(store, obs, time.Now())

	got, err := r.LatestSecondaryClimate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got.Temperature != 23 || *got.Humidity != 58 || !got.Timestamp.Equal(t0) || got.Synthetic {
		t.Fatalf("expected stored second row, got %#v", got)
	}
	if len(obs.channels) != 0 {
		t.Fatalf("expected no fallback, got %v", obs.channels)
	}
}

func TestSecondaryClimateEmptyStore(t *testing.T) {
	r := newTestResolver(&stubStore{}, nil, time.Now())
	if _, err := r.LatestSecondaryClimate(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHazardDefaultOnEmptyStore(t *testing.T) {
	before := time.Now().UTC()
	r := NewResolver(&stubStore{}, nil, nil, nil)

	got, err := r.LatestHazard(context.Background())
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got.FireIndex != 15 || *got.SmokeIndex != 25 {
		t.Fatalf("expected default 15/25, got %v/%v", *got.FireIndex, *got.SmokeIndex)
	}
	if got.Timestamp.Before(before) || got.Timestamp.After(after) {
		t.Fatalf("expected timestamp within [%s, %s], got %s", before, after, got.Timestamp)
	}
	if !got.Synthetic {
		t.Fatalf("expected default record to be flagged synthetic")
	}
}

func TestElectricalDefaultOnEmptyStore(t *testing.T) {
	before := time.Now().UTC()
	r := NewResolver(&stubStore{}, nil, nil, nil)

	got, err := r.LatestElectrical(context.Background())
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DefaultElectrical(got.Timestamp)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected default record %#v, got %#v", want, got)
	}
	if got.Timestamp.Before(before) || got.Timestamp.After(after) {
		t.Fatalf("expected timestamp within [%s, %s], got %s", before, after, got.Timestamp)
	}
	if *got.VoltageR != 220 || *got.Power3ph != 9946 || *got.Reactive3ph != 3620 {
		t.Fatalf("unexpected default values %#v", got)
	}
}

func TestSecondaryClimateKeepsNullReading(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &stubStore{climate: []ClimateSample{{Temperature: Num(25), Timestamp: ts}}}
	r := newTestResolver(store, nil, time.Now())

	got, err := r.LatestSecondaryClimate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Humidity != nil {
		t.Fatalf("expected null humidity to stay null, got %v", *got.Humidity)
	}
	if !almostEqual(*got.Temperature, 26.2) {
		t.Fatalf("expected temperature 26.2, got %v", *got.Temperature)
	}
}

func TestHazardStoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	r := newTestResolver(&stubStore{err: boom}, nil, time.Now())
	if _, err := r.LatestHazard(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, err := r.LatestElectrical(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestExportSeriesEmptyIsNotError(t *testing.T) {
	e := NewExporter(&stubStore{})
	rows, err := e.ExportSeries(context.Background(), ChannelHazard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", rows)
	}
}

func TestExportSeriesReturnsRowsUnchanged(t *testing.T) {
	store := &stubStore{series: map[Channel][]Record{
		ChannelClimate: {{"suhu": 25.0}, {"suhu": 24.0}},
	}}
	e := NewExporter(store)
	rows, err := e.ExportSeries(context.Background(), ChannelClimate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[0]["suhu"] != 25.0 || rows[1]["suhu"] != 24.0 {
		t.Fatalf("unexpected rows %#v", rows)
	}
}

func TestChannelsAreValid(t *testing.T) {
	chs := Channels()
	if len(chs) != 3 {
		t.Fatalf("expected 3 exportable channels, got %d", len(chs))
	}
	for _, ch := range chs {
		if !ch.Valid() {
			t.Fatalf("expected %q to be valid", ch)
		}
	}
	if Channel("users").Valid() {
		t.Fatalf("expected users to be rejected")
	}
}
