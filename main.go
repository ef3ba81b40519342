package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pacproxy/internal/app"
	"pacproxy/internal/config"
	"pacproxy/internal/logger"
	"pacproxy/internal/version"
)

func main() {
	vlog := log.New(log.Writer(), "", 0)
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.PrintVersionInfo(true, vlog)
		os.Exit(0)
	}

	opts, err := config.Parse(os.Args[1:])
	if err != nil {
		// No logger exists yet at this point, so this fatal path (like
		// the logger.New failure below) cannot go through logger.Fatal.
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	appLogger, cleanup, err := logger.New(&logger.Config{
		Level:      string(opts.LogLevel),
		Systemd:    opts.Systemd,
		FileOutput: opts.LogLevel == config.LogLevelDebug,
		LogDir:     "./logs",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(appLogger)

	application, err := app.New(opts, appLogger, cleanup)
	if err != nil {
		cleanup()
		logger.FatalWithLogger(appLogger, "failed to build application", "err", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				appLogger.Info("received SIGHUP, reloading proxy configuration")
				application.RequestReload()
			}
		}
	}()

	appLogger.Info("starting pacproxy", "port", opts.Port)
	if err := application.Start(ctx); err != nil {
		application.Stop(context.Background())
		logger.FatalWithLogger(appLogger, "server exited with error", "err", err)
	}

	application.Stop(context.Background())
}
