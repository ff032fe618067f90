package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/semrd/sdmxclgen/internal/config"
	"github.com/spf13/pflag"
)

// RunParams contains dependencies for the run function
type RunParams struct {
	LoadSettings  func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings func(*config.Settings) error
	RunPipeline   func(context.Context, *config.Settings, Stages) error
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:  config.LoadSettingsWithFlags,
		ValidSettings: config.ValidateSettings,
		RunPipeline:   RunPipeline,
	}
}

// ErrNoStages indicates the invocation selected no pipeline stage.
var ErrNoStages = errors.New("no stage selected: use --download, --analyze, --generate and/or --index")

// RunWithDeps executes the pipeline with the provided dependencies
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if err := params.ValidSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Configure logging - always use stderr so report output on stdout
	// stays machine-readable
	handler := slog.NewTextHandler(os.Stderr, nil)
	slog.SetDefault(slog.New(handler))

	slog.Info("Starting sdmxclgen", "version", version)
	config.Log(settings)

	stages := StagesFromFlags(flags)
	if !stages.Any() {
		return ErrNoStages
	}

	return params.RunPipeline(ctx, settings, stages)
}
