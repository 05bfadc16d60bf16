package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lingobridge/lingobridge/internal/cli"
	"github.com/lingobridge/lingobridge/internal/history"
	"github.com/lingobridge/lingobridge/internal/httpapi"
	"github.com/lingobridge/lingobridge/internal/translation"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8085, "HTTP port")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}

	cfg, logger, store, err := bootstrap(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var historyStore *history.Store
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		historyStore, err = history.Open(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open history store: %v\n", err)
			return 1
		}
		defer func() {
			if closeErr := historyStore.Close(); closeErr != nil {
				logger.Warn().Err(closeErr).Msg("close history store failed")
			}
		}()
		logger.Info().Msg("translation history enabled")
	}

	opts := translation.Options{Workers: cfg.Workers}
	if historyStore != nil {
		opts.Recorder = historyStore
	}
	dispatcher := translation.NewDispatcher(store, logger, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := httpapi.NewServer(dispatcher, store, historyStore, logger, httpapi.Options{
		Host:            *host,
		Port:            *port,
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
	})

	exitCode := 0
	if err := server.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("server failed")
		exitCode = 1
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), *shutdownTimeout)
	defer cancel()
	if err := dispatcher.Shutdown(drainCtx); err != nil {
		logger.Warn().Err(err).Msg("dispatcher shutdown incomplete")
	}

	return exitCode
}
