// v0
// cmd/noc-api/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"nrgchamp/noc-dashboard/internal/app"
	"nrgchamp/noc-dashboard/internal/auth"
	"nrgchamp/noc-dashboard/internal/config"
	"nrgchamp/noc-dashboard/internal/logging"
	"nrgchamp/noc-dashboard/internal/storage"
)

func main() {
	bootstrap := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = serveCommand(args)
	case "hash-password":
		err = hashPasswordCommand(args)
	case "validate":
		err = validateCommand(args)
	case "help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		bootstrap.Error("noc_api_failed", slog.String("command", cmd), slog.Any("err", err))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: noc-api [command] [flags]

commands:
  serve          run the HTTP API (default)
  hash-password  print a bcrypt hash for the users.password_hash column
  validate       load and check configuration`)
}

func loadConfig(fs *pflag.FlagSet, args []string) (config.Config, error) {
	props := fs.String("properties", "", "properties file (overrides NOC_PROPERTIES_PATH)")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if *props != "" {
		if err := os.Setenv("NOC_PROPERTIES_PATH", *props); err != nil {
			return config.Config{}, err
		}
	}
	return config.Load()
}

func serveCommand(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ExitOnError)
	level := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lg, err := logging.New(logging.Options{FilePath: cfg.LogFilePath, Console: true, Level: *level})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer lg.Close()
	logger := lg.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	application, err := app.New(cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("app init: %w", err)
	}
	defer func() {
		if cerr := application.Close(); cerr != nil {
			logger.Error("app_close_failed", slog.Any("err", cerr))
		}
	}()

	logger.Info("service_boot",
		slog.String("listen_address", cfg.ListenAddress),
		slog.String("log_path", cfg.LogFilePath),
		slog.String("properties_path", cfg.PropertiesPath),
		slog.String("db_driver", cfg.Database.Driver),
	)
	if err := application.Run(ctx); err != nil {
		return err
	}
	logger.Info("service_stopped")
	return nil
}

func hashPasswordCommand(args []string) error {
	fs := pflag.NewFlagSet("hash-password", pflag.ExitOnError)
	password := fs.StringP("password", "p", "", "password to hash (read from stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret := *password
	if secret == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no password on stdin")
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	hash, err := auth.HashPassword(secret)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func validateCommand(args []string) error {
	fs := pflag.NewFlagSet("validate", pflag.ExitOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	fmt.Printf("config ok: listen=%s driver=%s token_ttl=%s\n", cfg.ListenAddress, cfg.Database.Driver, cfg.TokenTTL)
	return nil
}
