package ports

import (
	"context"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

// StackDocumentPort abstracts decoding stack and overlay documents and
// encoding resolved releases back to the same document format.
type StackDocumentPort interface {
	LoadStack(ctx context.Context, path string) (domain.Stack, error)
	LoadOverlay(ctx context.Context, path string) (domain.Overlay, error)
	EncodeReleases(releases []domain.Release) ([]byte, error)
}

// CommandRunnerPort executes a synthesized command, blocking until the
// child process exits.
type CommandRunnerPort interface {
	Run(ctx context.Context, cmd domain.Command) error
}

// ContextDiscoveryPort asks the cluster client for its current context.
type ContextDiscoveryPort interface {
	CurrentContext(ctx context.Context) (string, error)
}

// ValueFilePort materializes inline `set` blocks as temporary value files.
type ValueFilePort interface {
	Write(releaseName string, set domain.SetValues) (path string, err error)
	Remove(path string) error
}

// DiffPort renders a textual diff between two documents.
type DiffPort interface {
	ComputeDiff(baseName, headName string, base, head []byte) string
}
