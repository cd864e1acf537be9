// v0
// internal/tui/model.go

// Package tui renders the live NOC dashboard in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nrgchamp/noc-dashboard/internal/dashboard"
	"nrgchamp/noc-dashboard/internal/gauge"
	"nrgchamp/noc-dashboard/internal/telemetry"
)

// ── Messages ─────────────────────────────────────────────────────────

type snapshotMsg dashboard.Snapshot

type intervalErrMsg struct{ err error }

// ── Feed ─────────────────────────────────────────────────────────────

// Feed hands published snapshots to the model. Only the newest pending
// snapshot is kept.
type Feed struct {
	ch chan dashboard.Snapshot
}

func NewFeed() *Feed {
	return &Feed{ch: make(chan dashboard.Snapshot, 1)}
}

// Publish is meant for dashboard.Options.OnUpdate. It never blocks.
func (f *Feed) Publish(s dashboard.Snapshot) {
	for {
		select {
		case f.ch <- s:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

func (f *Feed) wait() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-f.ch)
	}
}

// ── Model ────────────────────────────────────────────────────────────

// Controller is the aggregator surface the model drives.
type Controller interface {
	Start(ctx context.Context) dashboard.Snapshot
	RefreshNow(ctx context.Context) dashboard.Snapshot
	SetInterval(ctx context.Context, d time.Duration) (dashboard.Snapshot, error)
	Interval() time.Duration
	Close()
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctrl       Controller
	feed       *Feed
	snap       dashboard.Snapshot
	received   bool
	interval   time.Duration
	refreshing bool
	err        error
	width      int
	height     int
}

func New(ctrl Controller, feed *Feed) Model {
	return Model{ctrl: ctrl, feed: feed, interval: ctrl.Interval(), refreshing: true}
}

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) startCmd() tea.Msg {
	m.ctrl.Start(context.Background())
	return nil
}

func (m Model) refreshCmd() tea.Msg {
	m.ctrl.RefreshNow(context.Background())
	return nil
}

func (m Model) intervalCmd(d time.Duration) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.ctrl.SetInterval(context.Background(), d); err != nil {
			return intervalErrMsg{err: err}
		}
		return nil
	}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startCmd, m.feed.wait())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctrl.Close()
			return m, tea.Quit
		case "r":
			if m.refreshing {
				return m, nil
			}
			m.refreshing = true
			return m, m.refreshCmd
		case "1", "2", "3", "4":
			d := dashboard.Intervals[int(msg.String()[0]-'1')]
			m.interval = d
			m.err = nil
			m.refreshing = true
			return m, m.intervalCmd(d)
		}

	case intervalErrMsg:
		m.err = msg.err
		m.interval = m.ctrl.Interval()
		m.refreshing = false

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case snapshotMsg:
		m.snap = dashboard.Snapshot(msg)
		m.received = true
		m.refreshing = false
		return m, m.feed.wait()
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorOk       = lipgloss.Color("78")
	colorWarn     = lipgloss.Color("220")
	colorCrit     = lipgloss.Color("196")
)

const tileWidth = 28

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}
	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	sections := []string{m.renderTitleBar(contentWidth)}

	if m.snap.Err != nil || m.err != nil {
		err := m.snap.Err
		if m.err != nil {
			err = m.err
		}
		text := fmt.Sprintf(" ERROR: %v", err)
		var se *dashboard.StatusError
		if errors.As(err, &se) && se.IsAuth() {
			text += " (session rejected, restart to log in again)"
		}
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(text))
	}

	if !m.received {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for telemetry..."))
	} else {
		sections = append(sections, m.renderTiles()...)
	}

	sections = append(sections, m.renderFooter(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().Bold(true).Foreground(colorTitleFg).Render("NOC DASHBOARD")

	dim := lipgloss.NewStyle().Foreground(colorDim)
	parts := []string{dim.Render("every " + fmtInterval(m.interval))}
	if !m.snap.LastUpdate.IsZero() {
		parts = append(parts, dim.Render("updated "+m.snap.LastUpdate.Local().Format("02 Jan 2006 15:04:05")))
	}
	parts = append(parts, dim.Render(fmt.Sprintf("%d/4 live", m.snap.LiveCount())))
	if m.refreshing {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorWarn).Bold(true).Render("REFRESHING"))
	}
	right := strings.Join(parts, dim.Render(" │ "))

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func (m Model) renderTiles() []string {
	s := m.snap

	var phases [3]*float64
	var elecSynthetic bool
	if v := s.Electrical.Value; v != nil {
		p := v.Voltages()
		phases = [3]*float64{p.R, p.S, p.T}
		elecSynthetic = v.Synthetic
	}
	electrical := lipgloss.JoinHorizontal(lipgloss.Top,
		renderTile(gauge.PhaseRVoltage, phases[0], s.Electrical.Live, elecSynthetic),
		renderTile(gauge.PhaseSVoltage, phases[1], s.Electrical.Live, elecSynthetic),
		renderTile(gauge.PhaseTVoltage, phases[2], s.Electrical.Live, elecSynthetic),
	)

	climate := lipgloss.JoinHorizontal(lipgloss.Top,
		climateTiles(gauge.Temperature1, gauge.Humidity1, s.Sensor1),
		climateTiles(gauge.Temperature2, gauge.Humidity2, s.Sensor2),
	)

	var fire, smoke *float64
	var hzSynthetic bool
	if v := s.Hazard.Value; v != nil {
		fire, smoke, hzSynthetic = v.FireIndex, v.SmokeIndex, v.Synthetic
	}
	hazard := lipgloss.JoinHorizontal(lipgloss.Top,
		renderTile(gauge.FireDetection, fire, s.Hazard.Live, hzSynthetic),
		renderTile(gauge.SmokeDetection, smoke, s.Hazard.Live, hzSynthetic),
	)
	return []string{electrical, climate, hazard}
}

func climateTiles(temp, hum gauge.Tile, st dashboard.ChannelState[telemetry.ClimateSample]) string {
	var t, h *float64
	var synthetic bool
	if v := st.Value; v != nil {
		t, h, synthetic = v.Temperature, v.Humidity, v.Synthetic
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		renderTile(temp, t, st.Live, synthetic),
		renderTile(hum, h, st.Live, synthetic),
	)
}

func renderTile(tile gauge.Tile, value *float64, live, synthetic bool) string {
	dot := lipgloss.NewStyle().Foreground(colorCrit).Render("●")
	if live {
		dot = lipgloss.NewStyle().Foreground(colorOk).Render("●")
	}
	title := lipgloss.NewStyle().Foreground(colorLabel).Bold(true).Render(tile.Title)
	header := title + " " + dot

	var lines []string
	lines = append(lines, header)
	reading, ok := telemetry.Value(value)
	switch {
	case !live:
		lines = append(lines,
			lipgloss.NewStyle().Foreground(colorDim).Render("-- "+tile.Unit),
			renderBar(0, colorDim),
			lipgloss.NewStyle().Foreground(colorCrit).Render("offline"),
		)
	case !ok:
		lines = append(lines,
			lipgloss.NewStyle().Foreground(colorDim).Render("-- "+tile.Unit),
			renderBar(0, colorDim),
			lipgloss.NewStyle().Foreground(colorWarn).Render("no reading"),
		)
	default:
		r := tile.Read(reading)
		statusColor := colorOk
		if r.Status == gauge.Critical {
			statusColor = colorCrit
		}
		valueLine := fmt.Sprintf("%.1f %s", r.Value, tile.Unit)
		if synthetic {
			valueLine += " " + lipgloss.NewStyle().Foreground(colorWarn).Render("derived")
		}
		lines = append(lines,
			valueLine,
			renderBar(r.Ratio, statusColor),
			lipgloss.NewStyle().Foreground(statusColor).Render(r.Status.String()),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(tileWidth).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func renderBar(ratio float64, color lipgloss.Color) string {
	const width = tileWidth - 4
	filled := int(ratio*width + 0.5)
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(colorDim).Render(strings.Repeat("░", width-filled))
}

func (m Model) renderFooter(width int) string {
	keys := "r refresh │ 1 10s │ 2 30s │ 3 1m │ 4 5m │ q quit"
	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Foreground(colorDim).
		Width(width).
		Padding(0, 1).
		Render(keys)
}

func fmtInterval(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
	return fmt.Sprintf("%ds", int(d/time.Second))
}
