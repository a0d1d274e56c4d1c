package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/cli"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/config"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
)

var CLI cli.Root

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("streakctl"),
		kong.Description("Maintenance commands for the streak engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: CLI.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	err = kctx.Run(&cli.Context{
		Ctx:    ctx,
		Config: cfg,
		Log:    log,
		Out:    os.Stdout,
		In:     os.Stdin,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
