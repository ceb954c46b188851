package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

// Mock adapters for testing

type mockDocuments struct {
	stack    domain.Stack
	stackErr error
	overlays map[string]domain.Overlay // path -> overlay
	loaded   []string                  // overlay paths in load order
}

func (m *mockDocuments) LoadStack(_ context.Context, _ string) (domain.Stack, error) {
	if m.stackErr != nil {
		return domain.Stack{}, m.stackErr
	}
	return m.stack, nil
}

func (m *mockDocuments) LoadOverlay(_ context.Context, path string) (domain.Overlay, error) {
	m.loaded = append(m.loaded, path)
	ov, ok := m.overlays[path]
	if !ok {
		return domain.Overlay{}, domain.NewParseError(domain.ReasonOverlayParseError, path, os.ErrNotExist)
	}
	return ov, nil
}

// EncodeReleases renders one line per release so tests can compare output
// without depending on the YAML adapter.
func (m *mockDocuments) EncodeReleases(releases []domain.Release) ([]byte, error) {
	var sb strings.Builder
	for _, r := range releases {
		fmt.Fprintf(&sb, "%s %s ns=%s values=%v\n", r.Name, r.Chart, r.Namespace, r.Values)
	}
	return []byte(sb.String()), nil
}

type mockRunner struct {
	commands []domain.Command
	failOn   string // release name whose command fails
	onRun    func(cmd domain.Command)
}

func (m *mockRunner) Run(_ context.Context, cmd domain.Command) error {
	m.commands = append(m.commands, cmd)
	if m.onRun != nil {
		m.onRun(cmd)
	}
	if m.failOn != "" && cmd.Release == m.failOn {
		return domain.NewExternalCommandError(cmd, fmt.Errorf("exit status 1"))
	}
	return nil
}

func (m *mockRunner) argvs() [][]string {
	out := make([][]string, 0, len(m.commands))
	for _, c := range m.commands {
		out = append(out, c.Argv())
	}
	return out
}

type mockContexts struct {
	context string
	err     error
	calls   int
}

func (m *mockContexts) CurrentContext(_ context.Context) (string, error) {
	m.calls++
	return m.context, m.err
}

// mockValueFiles records writes. With dir set it also creates real files so
// command synthesis can find them.
type mockValueFiles struct {
	dir       string
	written   map[string]string
	removed   []string
	writeErr  error
	removeErr error
	n         int
}

func newMockValueFiles() *mockValueFiles {
	return &mockValueFiles{written: map[string]string{}}
}

func (m *mockValueFiles) Write(releaseName string, set domain.SetValues) (string, error) {
	if m.writeErr != nil {
		return "", m.writeErr
	}
	m.n++
	dir := m.dir
	if dir == "" {
		dir = "/tmp"
	}
	path := filepath.Join(dir, fmt.Sprintf("helmstack-%s-%d.yaml", releaseName, m.n))

	var content string
	if set.Literal != nil {
		content = "literal:" + *set.Literal
	} else {
		content = "tree:" + strings.Join(set.Tree.Keys(), ",")
	}
	m.written[path] = content

	if m.dir != "" {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return "", err
		}
	}
	return path, nil
}

func (m *mockValueFiles) Remove(path string) error {
	m.removed = append(m.removed, path)
	if m.removeErr != nil {
		return m.removeErr
	}
	if m.dir != "" {
		return os.Remove(path)
	}
	return nil
}

type mockDiff struct{}

func (m *mockDiff) ComputeDiff(baseName, headName string, base, head []byte) string {
	if string(base) != string(head) {
		return fmt.Sprintf("--- %s\n+++ %s\n-%s+%s", baseName, headName, string(base), string(head))
	}
	return ""
}
