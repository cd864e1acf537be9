// v0
// cmd/noc-dashboard/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"nrgchamp/noc-dashboard/internal/config"
	"nrgchamp/noc-dashboard/internal/dashboard"
	"nrgchamp/noc-dashboard/internal/logging"
	"nrgchamp/noc-dashboard/internal/telemetry"
	"nrgchamp/noc-dashboard/internal/tui"
)

func main() {
	cmd, args := "run", os.Args[1:]
	if len(args) > 0 && (args[0] == "run" || args[0] == "export" || args[0] == "help") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "run":
		err = runCommand(args)
	case "export":
		err = exportCommand(args)
	case "help":
		printUsage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "noc-dashboard %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `usage: noc-dashboard [command] [flags]

commands:
  run                         live dashboard (default)
  export <channel> [--out f]  download a full series as JSON
                              channels: %s
`, channelList())
}

func channelList() string {
	names := make([]string, 0, len(telemetry.Channels()))
	for _, ch := range telemetry.Channels() {
		names = append(names, string(ch))
	}
	return strings.Join(names, ", ")
}

type session struct {
	cfg    *config.Dashboard
	log    *logging.Logger
	client *dashboard.Client
}

func openSession(ctx context.Context, fs *pflag.FlagSet, args []string) (*session, []string, error) {
	cfgPath := fs.StringP("config", "c", "noc-dashboard.yaml", "dashboard configuration file")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadDashboard(*cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	lg, err := logging.New(logging.Options{FilePath: cfg.LogPath})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	client := dashboard.NewClient(cfg.BaseURL, cfg.RequestTimeout, lg.With(slog.String("component", "api_client")))
	if err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
		_ = lg.Close()
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	return &session{cfg: cfg, log: lg, client: client}, fs.Args(), nil
}

func runCommand(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, _, err := openSession(ctx, pflag.NewFlagSet("run", pflag.ExitOnError), args)
	if err != nil {
		return err
	}
	defer s.log.Close()

	feed := tui.NewFeed()
	agg := dashboard.NewAggregator(s.client, dashboard.Options{
		Interval:       s.cfg.RefreshInterval,
		RequestTimeout: s.cfg.RequestTimeout,
		OnUpdate:       feed.Publish,
		Logger:         s.log.With(slog.String("component", "aggregator")),
	})
	defer agg.Close()

	s.log.Info("dashboard_start",
		slog.String("base_url", s.cfg.BaseURL),
		slog.Duration("interval", s.cfg.RefreshInterval),
	)
	_, err = tea.NewProgram(tui.New(agg, feed), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		return err
	}
	s.log.Info("dashboard_stop")
	return nil
}

func exportCommand(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := pflag.NewFlagSet("export", pflag.ExitOnError)
	out := fs.StringP("out", "o", "", "output file (stdout when empty)")
	s, rest, err := openSession(ctx, fs, args)
	if err != nil {
		return err
	}
	defer s.log.Close()

	if len(rest) != 1 {
		return fmt.Errorf("expected one channel argument (%s), got %d", channelList(), len(rest))
	}
	ch := telemetry.Channel(rest[0])
	if !ch.Valid() {
		return fmt.Errorf("unknown channel %q, expected one of %s", ch, channelList())
	}
	rows, err := s.client.Export(ctx, ch)
	if err != nil {
		return err
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return err
	}
	s.log.Info("export_written", slog.String("channel", string(ch)), slog.Int("rows", len(rows)), slog.String("out", *out))
	return nil
}
