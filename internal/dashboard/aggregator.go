// v0
// internal/dashboard/aggregator.go
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nrgchamp/noc-dashboard/internal/telemetry"
)

// Source fetches the four dashboard channels. *Client satisfies it.
type Source interface {
	Sensor1(ctx context.Context) (*telemetry.ClimateSample, error)
	Sensor2(ctx context.Context) (*telemetry.ClimateSample, error)
	Hazard(ctx context.Context) (*telemetry.HazardSample, error)
	Electrical(ctx context.Context) (*telemetry.ElectricalSample, error)
}

// Timer is a pending scheduled call. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Intervals are the refresh periods offered by the dashboard.
var Intervals = []time.Duration{10 * time.Second, 30 * time.Second, time.Minute, 5 * time.Minute}

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = 30 * time.Second

type Options struct {
	Interval time.Duration
	// RequestTimeout bounds each channel fetch; zero leaves it to the
	// source.
	RequestTimeout time.Duration
	AfterFunc      AfterFunc
	Now            func() time.Time
	// OnUpdate is called with every published snapshot, outside of any
	// aggregator lock.
	OnUpdate func(Snapshot)
	Logger   *slog.Logger
}

// Aggregator polls all channels on a recurring timer and publishes one
// merged Snapshot per poll.
type Aggregator struct {
	src       Source
	log       *slog.Logger
	now       func() time.Time
	afterFunc AfterFunc
	timeout   time.Duration
	onUpdate  func(Snapshot)

	// pollMu serializes polls so snapshots are published in order.
	pollMu sync.Mutex

	mu       sync.Mutex
	interval time.Duration
	timer    Timer
	gen      uint64
	closed   bool

	snapMu sync.RWMutex
	snap   Snapshot
}

func NewAggregator(src Source, opts Options) *Aggregator {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Aggregator{
		src:       src,
		log:       opts.Logger,
		now:       opts.Now,
		afterFunc: opts.AfterFunc,
		timeout:   opts.RequestTimeout,
		onUpdate:  opts.OnUpdate,
		interval:  opts.Interval,
	}
}

// Start arms the recurring schedule and runs the first poll.
func (a *Aggregator) Start(ctx context.Context) Snapshot {
	a.mu.Lock()
	a.armLocked()
	a.mu.Unlock()
	return a.Poll(ctx)
}

// Poll fetches all four channels concurrently, waits for every fetch to
// settle, and publishes the merged snapshot. A failed channel is marked
// offline without affecting the others.
func (a *Aggregator) Poll(ctx context.Context) Snapshot {
	a.pollMu.Lock()
	defer a.pollMu.Unlock()

	var (
		wg         sync.WaitGroup
		s1, s2     *telemetry.ClimateSample
		hz         *telemetry.HazardSample
		el         *telemetry.ElectricalSample
		e1, e2     error
		eHz, eElec error
	)
	fetch := func(run func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fctx, cancel := a.fetchContext(ctx)
			defer cancel()
			run(fctx)
		}()
	}
	fetch(func(c context.Context) { s1, e1 = a.src.Sensor1(c) })
	fetch(func(c context.Context) { s2, e2 = a.src.Sensor2(c) })
	fetch(func(c context.Context) { hz, eHz = a.src.Hazard(c) })
	fetch(func(c context.Context) { el, eElec = a.src.Electrical(c) })
	wg.Wait()

	prev := a.Snapshot()
	next := Snapshot{
		Sensor1:    settle(s1, e1),
		Sensor2:    settle(s2, e2),
		Hazard:     settle(hz, eHz),
		Electrical: settle(el, eElec),
		LastUpdate: prev.LastUpdate,
		Polls:      prev.Polls + 1,
	}
	if next.LiveCount() == 0 {
		next.Err = fmt.Errorf("all channels failed: %w", errors.Join(
			channelErr("sensor1", e1), channelErr("sensor2", e2),
			channelErr("fire-smoke", eHz), channelErr("electricity", eElec),
		))
	} else {
		next.LastUpdate = a.now()
	}

	a.snapMu.Lock()
	a.snap = next
	a.snapMu.Unlock()

	a.logPoll(next)
	if a.onUpdate != nil {
		a.onUpdate(next)
	}
	return next
}

func (a *Aggregator) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}

func channelErr(name string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: no data", name)
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (a *Aggregator) logPoll(s Snapshot) {
	if a.log == nil {
		return
	}
	if s.Err != nil {
		a.log.Warn("poll_failed", slog.Int("poll", s.Polls), slog.Any("err", s.Err))
		return
	}
	a.log.Debug("poll_completed", slog.Int("poll", s.Polls), slog.Int("live", s.LiveCount()))
}

// RefreshNow runs an out-of-band poll. The recurring schedule keeps its
// next-due time.
func (a *Aggregator) RefreshNow(ctx context.Context) Snapshot {
	return a.Poll(ctx)
}

// SetInterval cancels the pending timer, re-arms the schedule with the
// new period counted from now, and polls once so the view reflects the
// change immediately.
func (a *Aggregator) SetInterval(ctx context.Context, d time.Duration) (Snapshot, error) {
	if d <= 0 {
		return Snapshot{}, fmt.Errorf("refresh interval must be positive, got %s", d)
	}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return Snapshot{}, errors.New("aggregator closed")
	}
	a.interval = d
	a.armLocked()
	a.mu.Unlock()

	if a.log != nil {
		a.log.Info("refresh_interval_changed", slog.Duration("interval", d))
	}
	return a.Poll(ctx), nil
}

func (a *Aggregator) Interval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interval
}

// Snapshot returns the latest published snapshot.
func (a *Aggregator) Snapshot() Snapshot {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	return a.snap
}

// Close cancels the pending timer. In-flight fetches finish but nothing
// is rescheduled.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// armLocked replaces the pending timer. The generation counter makes a
// timer that already fired but lost the race to Stop a no-op.
func (a *Aggregator) armLocked() {
	if a.closed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.timer = a.afterFunc(a.interval, func() { a.fire(gen) })
}

func (a *Aggregator) fire(gen uint64) {
	a.mu.Lock()
	if a.closed || gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.armLocked()
	a.mu.Unlock()
	a.Poll(context.Background())
}
