// Package main provides the helmstack CLI for syncing a stack of helm
// releases to a cluster.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nathantilsley/helmstack/internal/platform/config"
	"github.com/nathantilsley/helmstack/internal/platform/logger"
	"github.com/nathantilsley/helmstack/internal/platform/telemetry"
	helmcli "github.com/nathantilsley/helmstack/internal/stack/adapters/helm_cli"
	kubecontext "github.com/nathantilsley/helmstack/internal/stack/adapters/kube_context"
	linediff "github.com/nathantilsley/helmstack/internal/stack/adapters/line_diff"
	stackfile "github.com/nathantilsley/helmstack/internal/stack/adapters/stack_file"
	valuefiles "github.com/nathantilsley/helmstack/internal/stack/adapters/value_files"
	"github.com/nathantilsley/helmstack/internal/stack/app"
	"github.com/nathantilsley/helmstack/internal/stack/ports"
)

// Container holds all application dependencies.
type Container struct {
	Config         config.Config
	Logger         *slog.Logger
	Telemetry      *telemetry.Telemetry
	ReleaseService ports.ReleaseUseCase
}

// NewContainer builds and wires all dependencies.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	// Logs share stderr with helm so stdout stays clean for show and get.
	log := logger.New(os.Stderr, cfg.EffectiveLogLevel())

	tel, err := telemetry.New(ctx, cfg.OTelEnabled)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	// Adapters
	documents := stackfile.New()
	runner := helmcli.New(helmcli.Options{DryRun: cfg.DryRun}, log)
	contexts := kubecontext.New(cfg.KubectlBin)
	valueFiles := valuefiles.New("")
	differ := linediff.New(3)

	releaseService := app.NewReleaseService(
		app.Settings{
			StackFile:   cfg.StackFile,
			Environment: cfg.Environment,
			KubeContext: cfg.KubeContext,
			HelmBinary:  cfg.HelmBinary,
		},
		documents,
		runner,
		contexts,
		valueFiles,
		differ,
		log,
		tel.Meter,
		tel.Tracer,
	)

	log.Debug("container ready",
		"stackFile", cfg.StackFile,
		"environment", cfg.Environment,
		"dryRun", cfg.DryRun,
		"telemetry", cfg.OTelEnabled,
	)

	return &Container{
		Config:         cfg,
		Logger:         log,
		Telemetry:      tel,
		ReleaseService: releaseService,
	}, nil
}

// containerFactory adapts NewContainer to the shape the command tree needs.
func containerFactory(ctx context.Context, cfg config.Config) (ports.ReleaseUseCase, func(context.Context) error, error) {
	c, err := NewContainer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return c.ReleaseService, c.Telemetry.Shutdown, nil
}
