// Package helmcli runs synthesized helm commands as child processes.
package helmcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

// Options configures the executor.
type Options struct {
	DryRun bool
	Stdout io.Writer // child stdout; defaults to os.Stdout
	Stderr io.Writer // mirror of child stderr; defaults to os.Stderr
}

// Adapter implements ports.CommandRunnerPort by shelling out to the binary
// named in each command.
type Adapter struct {
	opts   Options
	logger *slog.Logger
}

// New creates a new helm CLI adapter.
func New(opts Options, logger *slog.Logger) *Adapter {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Adapter{opts: opts, logger: logger}
}

// Run executes cmd and waits for it. The child's stderr is copied to the
// configured writer as it is produced. In dry-run mode nothing is spawned.
func (a *Adapter) Run(ctx context.Context, cmd domain.Command) error {
	if a.opts.DryRun {
		a.logger.Debug("dry run, not executing", "command", cmd.String())
		return nil
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	c.Stdout = a.opts.Stdout

	stderr, err := c.StderrPipe()
	if err != nil {
		return domain.NewExternalCommandError(cmd, fmt.Errorf("opening stderr pipe: %w", err))
	}
	if err := c.Start(); err != nil {
		return domain.NewExternalCommandError(cmd, err)
	}

	// Wait closes the pipe, so drain it first.
	_, copyErr := io.Copy(a.opts.Stderr, stderr)
	waitErr := c.Wait()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			a.logger.Debug("command exited non-zero", "command", cmd.String(), "exitCode", exitErr.ExitCode())
		}
		return domain.NewExternalCommandError(cmd, waitErr)
	}
	if copyErr != nil {
		a.logger.Warn("streaming command stderr failed", "command", cmd.String(), "error", copyErr)
	}
	return nil
}
