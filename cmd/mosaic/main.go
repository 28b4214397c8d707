// Command mosaic loads a WASM module chosen from a menu and drives it
// interactively from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaic-dev/loader/application/bootstrap"
	"github.com/mosaic-dev/loader/application/config"
	domainerrors "github.com/mosaic-dev/loader/domain/errors"
	"github.com/mosaic-dev/loader/infrastructure/prompter"
	"github.com/mosaic-dev/loader/infrastructure/terminal"
	"github.com/mosaic-dev/loader/log"
)

func main() {
	if err := run(); err != nil {
		os.Exit(report(os.Stderr, err))
	}
}

// report prints err once to w and returns the process exit code.
func report(w io.Writer, err error) int {
	fmt.Fprintf(w, "mosaic: %v\n", err)
	return domainerrors.ExitCode(err)
}

func run() (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fsys := os.DirFS(".")

	loader, err := config.NewLoader(fsys)
	if err != nil {
		return err
	}
	cfg, path, err := loader.Load()
	if err != nil {
		return err
	}

	logger, closer, err := log.Setup(cfg)
	if err != nil {
		return domainerrors.NewSetupError(domainerrors.StageConfig, err)
	}
	defer func() { _ = closer.Close() }()
	slog.SetDefault(logger)

	// Stderr already carries the message; only a log file needs the detail.
	if cfg.LogFile != "" {
		defer func() {
			if err != nil {
				detail := domainerrors.ToErrorDetail(err)
				logger.Error("mosaic exited", "type", detail.Type, "code", detail.Code, "error", detail.Message)
			}
		}()
	}

	if path != "" {
		logger.Debug("configuration loaded", "path", path)
	}

	console := terminal.NewConsole(os.Stdin, os.Stdout)
	defer func() { _ = console.Close() }()

	cli := prompter.NewCliPrompter(os.Stdin, os.Stdout)
	if !cli.IsInteractive() {
		logger.Warn("stdin is not a terminal; the interactive session will fail to start")
	}

	return bootstrap.New(fsys, console, cli,
		bootstrap.WithConfig(cfg),
		bootstrap.WithLogger(logger),
	).Run(ctx)
}
