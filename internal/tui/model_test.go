// v0
// internal/tui/model_test.go
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nrgchamp/noc-dashboard/internal/dashboard"
	"nrgchamp/noc-dashboard/internal/telemetry"
)

type fakeController struct {
	interval  time.Duration
	setErr    error
	starts    int
	refreshes int
	closed    bool
}

func (f *fakeController) Start(context.Context) dashboard.Snapshot {
	f.starts++
	return dashboard.Snapshot{}
}

func (f *fakeController) RefreshNow(context.Context) dashboard.Snapshot {
	f.refreshes++
	return dashboard.Snapshot{}
}

func (f *fakeController) SetInterval(_ context.Context, d time.Duration) (dashboard.Snapshot, error) {
	if f.setErr != nil {
		return dashboard.Snapshot{}, f.setErr
	}
	f.interval = d
	return dashboard.Snapshot{}, nil
}

func (f *fakeController) Interval() time.Duration { return f.interval }

func (f *fakeController) Close() { f.closed = true }

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleSnapshot() dashboard.Snapshot {
	elec := telemetry.DefaultElectrical(time.Now())
	return dashboard.Snapshot{
		Sensor1: dashboard.ChannelState[telemetry.ClimateSample]{
			Value: &telemetry.ClimateSample{Temperature: telemetry.Num(45), Humidity: telemetry.Num(50)}, Live: true,
		},
		Sensor2: dashboard.ChannelState[telemetry.ClimateSample]{
			Value: &telemetry.ClimateSample{Temperature: telemetry.Num(46.2), Humidity: telemetry.Num(53.5), Synthetic: true}, Live: true,
		},
		Hazard:     dashboard.ChannelState[telemetry.HazardSample]{},
		Electrical: dashboard.ChannelState[telemetry.ElectricalSample]{Value: &elec, Live: true},
		LastUpdate: time.Now(),
		Polls:      1,
	}
}

func TestViewRendersTiles(t *testing.T) {
	ctrl := &fakeController{interval: 30 * time.Second}
	var model tea.Model = New(ctrl, NewFeed())
	model, _ = model.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	model, _ = model.Update(snapshotMsg(sampleSnapshot()))

	out := model.View()
	for _, want := range []string{"NOC DASHBOARD", "Phase R Voltage", "Temperature (Sensor 2)", "derived", "Critical", "offline", "3/4 live"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected view to contain %q, got:\n%s", want, out)
		}
	}
}

func TestViewNullReading(t *testing.T) {
	snap := sampleSnapshot()
	snap.Sensor1.Value = &telemetry.ClimateSample{Temperature: telemetry.Num(21)}
	var model tea.Model = New(&fakeController{interval: 30 * time.Second}, NewFeed())
	model, _ = model.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	model, _ = model.Update(snapshotMsg(snap))

	if out := model.View(); !strings.Contains(out, "no reading") {
		t.Fatalf("expected null humidity to render as no reading, got:\n%s", out)
	}
}

func TestViewSessionRejected(t *testing.T) {
	rejected := &dashboard.StatusError{Code: 403, Message: "Invalid or expired token"}
	snap := dashboard.Snapshot{Err: fmt.Errorf("all channels failed: %w", rejected), Polls: 1}
	var model tea.Model = New(&fakeController{interval: 30 * time.Second}, NewFeed())
	model, _ = model.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	model, _ = model.Update(snapshotMsg(snap))

	if out := model.View(); !strings.Contains(out, "restart to log in again") {
		t.Fatalf("expected session hint for rejected token, got:\n%s", out)
	}
}

func TestViewBeforeResize(t *testing.T) {
	m := New(&fakeController{interval: 30 * time.Second}, NewFeed())
	if got := m.View(); !strings.Contains(got, "Initializing") {
		t.Fatalf("expected initializing view, got %q", got)
	}
}

func TestIntervalKeys(t *testing.T) {
	ctrl := &fakeController{interval: 30 * time.Second}
	var model tea.Model = New(ctrl, NewFeed())

	model, cmd := model.Update(key("1"))
	if cmd == nil {
		t.Fatalf("expected interval command")
	}
	cmd()
	if ctrl.interval != 10*time.Second {
		t.Fatalf("expected 10s interval, got %s", ctrl.interval)
	}
	model, cmd = model.Update(key("4"))
	if !model.(Model).refreshing {
		t.Fatalf("expected interval change to show a refresh in progress")
	}
	cmd()
	if ctrl.interval != 5*time.Minute {
		t.Fatalf("expected 5m interval, got %s", ctrl.interval)
	}
	if got := model.(Model).interval; got != 5*time.Minute {
		t.Fatalf("expected model to track interval, got %s", got)
	}
}

func TestIntervalKeyError(t *testing.T) {
	ctrl := &fakeController{interval: 30 * time.Second, setErr: errors.New("aggregator closed")}
	var model tea.Model = New(ctrl, NewFeed())

	model, cmd := model.Update(key("2"))
	model, _ = model.Update(cmd())
	m := model.(Model)
	if m.err == nil || m.refreshing {
		t.Fatalf("expected error shown and refresh cleared, got err=%v refreshing=%v", m.err, m.refreshing)
	}
	if m.interval != 30*time.Second {
		t.Fatalf("expected interval restored to 30s, got %s", m.interval)
	}
}

func TestRefreshKey(t *testing.T) {
	ctrl := &fakeController{interval: 30 * time.Second}
	var model tea.Model = New(ctrl, NewFeed())
	model, _ = model.Update(snapshotMsg(sampleSnapshot()))

	model, cmd := model.Update(key("r"))
	if cmd == nil {
		t.Fatalf("expected refresh command")
	}
	cmd()
	if ctrl.refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", ctrl.refreshes)
	}
	if _, cmd = model.Update(key("r")); cmd != nil {
		t.Fatalf("expected refresh to be ignored while one is running")
	}
}

func TestQuitClosesAggregator(t *testing.T) {
	ctrl := &fakeController{interval: 30 * time.Second}
	m := New(ctrl, NewFeed())
	_, cmd := m.Update(key("q"))
	if !ctrl.closed {
		t.Fatalf("expected controller closed on quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit command")
	}
}

func TestFeedKeepsNewest(t *testing.T) {
	f := NewFeed()
	f.Publish(dashboard.Snapshot{Polls: 1})
	f.Publish(dashboard.Snapshot{Polls: 2})

	msg := f.wait()()
	if got := dashboard.Snapshot(msg.(snapshotMsg)).Polls; got != 2 {
		t.Fatalf("expected newest snapshot, got poll %d", got)
	}
}
