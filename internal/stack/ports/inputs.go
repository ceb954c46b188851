package ports

import (
	"context"
	"io"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

// ReleaseUseCase is the driving port behind the CLI commands.
type ReleaseUseCase interface {
	Sync(ctx context.Context, opts domain.SyncOptions) error
	Delete(ctx context.Context, opts domain.DeleteOptions) error
	Get(ctx context.Context, opts domain.GetOptions) error
	Show(ctx context.Context, w io.Writer, opts domain.ShowOptions) error
}
