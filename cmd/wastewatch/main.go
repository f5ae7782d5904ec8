package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/x/term"
	"github.com/pkg/browser"

	"codeberg.org/wastewatch/authclient/internal/config"
	"codeberg.org/wastewatch/authclient/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())

	command := "help"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	} else if interactive {
		command = "tui"
	}

	handler, ok := commands[command]
	if !ok || command == "help" {
		printUsage(os.Stdout, term.IsTerminal(os.Stdout.Fd()))
		if !ok && command != "-h" && command != "--help" {
			fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
			return 2
		}
		return 0
	}

	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.ErrorErr(err, "failed to load configuration")
		return 1
	}

	closeLog, err := configureLogging(cfg, command)
	if err != nil {
		logger.ErrorErr(err, "failed to open log file")
		return 1
	}
	defer closeLog()

	// stdout carries command results only
	browser.Stdout = os.Stderr
	if command == "tui" {
		browser.Stdout, browser.Stderr = io.Discard, io.Discard
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		logger.ErrorErr(err, "failed to initialize")
		return 1
	}
	defer a.close()

	return handler(ctx, a, args)
}

// the TUI owns the terminal, so its logs go to LOG_FILE or nowhere
func configureLogging(cfg *config.Config, command string) (func(), error) {
	if command != "tui" {
		logger.Configure(cfg.Environment, os.Stderr)
		return func() {}, nil
	}

	if cfg.LogFile == "" {
		logger.Configure(cfg.Environment, io.Discard)
		return func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}

	logger.Configure(cfg.Environment, f)
	return func() { _ = f.Close() }, nil
}
