package app

import (
	"fmt"
	"log/slog"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
	"github.com/nathantilsley/helmstack/internal/stack/ports"
)

// garbageFiles tracks temporary value files created during one run.
// Removal is best-effort: failures are logged and never fatal.
type garbageFiles struct {
	store  ports.ValueFilePort
	keep   bool
	paths  []string
	logger *slog.Logger
}

func newGarbageFiles(store ports.ValueFilePort, keep bool, logger *slog.Logger) *garbageFiles {
	return &garbageFiles{store: store, keep: keep, logger: logger}
}

func (g *garbageFiles) track(path string) {
	g.paths = append(g.paths, path)
}

// cleanup removes every tracked file and forgets it. With keep set the
// files are left on disk and only logged.
func (g *garbageFiles) cleanup() {
	paths := g.paths
	g.paths = nil
	for _, p := range paths {
		if g.keep {
			g.logger.Info("keeping temporary value file", "path", p)
			continue
		}
		if err := g.store.Remove(p); err != nil {
			g.logger.Warn("failed to remove temporary value file", "path", p, "error", err)
			continue
		}
		g.logger.Debug("removed temporary value file", "path", p)
	}
}

// materializeSet writes a release's `set` block to a temporary value file,
// tracks it as garbage, and returns a copy of the release with the file
// appended to its values. Releases without `set` are returned unchanged.
func materializeSet(store ports.ValueFilePort, garbage *garbageFiles, r domain.Release) (domain.Release, error) {
	if r.Set.IsZero() {
		return r, nil
	}

	path, err := store.Write(r.Name, r.Set)
	if err != nil {
		return domain.Release{}, fmt.Errorf("materializing set values for release %q: %w", r.Name, err)
	}
	garbage.track(path)

	out := r
	out.Values = make([]string, 0, len(r.Values)+1)
	out.Values = append(out.Values, r.Values...)
	out.Values = append(out.Values, path)
	return out, nil
}
