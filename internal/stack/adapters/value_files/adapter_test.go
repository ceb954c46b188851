package valuefiles

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	stackfile "github.com/nathantilsley/helmstack/internal/stack/adapters/stack_file"
	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

func TestEncode_QuotesEveryScalar(t *testing.T) {
	set := domain.SetValues{Tree: domain.Mapping(
		domain.Field("enabled", domain.Scalar("yes")),
		domain.Field("replicas", domain.Scalar("2")),
		domain.Field("ratio", domain.Scalar("1.50")),
		domain.Field("debug", domain.Scalar("false")),
		domain.Field("image", domain.Mapping(
			domain.Field("tag", domain.Scalar("1.0")),
			domain.Field("repository", domain.Scalar("nginx")),
		)),
		domain.Field("hosts", domain.Sequence(domain.Scalar("a.example.com"), domain.Scalar("443"))),
		domain.Field("resource", domain.Null()),
	)}

	got, err := Encode(set)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := `enabled: "yes"
replicas: "2"
ratio: "1.50"
debug: "false"
image:
  tag: "1.0"
  repository: "nginx"
hosts:
  - "a.example.com"
  - "443"
resource: null
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_LoadedStackKeepsScalarText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "helmstack.yaml")
	doc := "releases:\n  - name: api\n    chart: internal/api\n    set: {tag: 1.0, ratio: 1e3, version: 1.10, port: 0x1F}\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	stack, err := stackfile.New().LoadStack(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadStack() error = %v", err)
	}

	got, err := Encode(stack.Releases[0].Set)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := "tag: \"1.0\"\nratio: \"1e3\"\nversion: \"1.10\"\nport: \"0x1F\"\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_LiteralVerbatim(t *testing.T) {
	literal := "image:\n  tag: latest # pinned later\n"
	got, err := Encode(domain.SetValues{Literal: &literal})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(got) != literal {
		t.Errorf("Encode() = %q, want %q", got, literal)
	}
}

func TestWriteAndRemove(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)
	literal := "replicas: 3\n"

	path, err := a.Write("team/api", domain.SetValues{Literal: &literal})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Write() path %q not under %q", path, dir)
	}
	if base := filepath.Base(path); !strings.HasPrefix(base, "helmstack-team_api-") || !strings.HasSuffix(base, ".yaml") {
		t.Errorf("Write() file name = %q", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(data) != literal {
		t.Errorf("file content = %q, want %q", data, literal)
	}

	if err := a.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Remove(): %v", err)
	}
}

func TestWrite_DistinctFilesPerCall(t *testing.T) {
	a := New(t.TempDir())
	set := domain.SetValues{Tree: domain.Mapping(domain.Field("a", domain.Scalar("1")))}

	p1, err := a.Write("api", set)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := a.Write("api", set)
	if err != nil {
		t.Fatal(err)
	}
	if p1 == p2 {
		t.Errorf("Write() returned the same path twice: %s", p1)
	}
}
