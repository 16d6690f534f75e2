// Package main is the entry point for the kanori CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"kanori/internal/backend/kanori"
	"kanori/internal/cli"
	"kanori/internal/commands"
	"kanori/internal/config"
	"kanori/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cancel in-flight requests on interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return kanori.New(ctx, cfg, cfg.Log())
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	return dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
