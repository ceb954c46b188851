package app

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

func TestSelectReleases(t *testing.T) {
	releases := []domain.Release{
		{Name: "crds", Chart: "c"},
		{Name: "operator", Chart: "c", Ignore: true},
		{Name: "api", Chart: "c"},
		{Name: "web", Chart: "c"},
	}

	tests := []struct {
		name    string
		targets []string
		want    []string
	}{
		{
			name:    "no targets keeps all non-ignored in order",
			targets: nil,
			want:    []string{"crds", "api", "web"},
		},
		{
			name:    "document order wins over target order",
			targets: []string{"web", "crds"},
			want:    []string{"crds", "web"},
		},
		{
			name:    "ignored release stays dropped when targeted",
			targets: []string{"operator"},
			want:    []string{},
		},
		{
			name:    "unknown target selects nothing",
			targets: []string{"ghost"},
			want:    []string{},
		},
		{
			name:    "blank targets behave like no targets",
			targets: []string{" ", ""},
			want:    []string{"crds", "api", "web"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ReleaseNames(SelectReleases(releases, tt.targets))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SelectReleases() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectReleases_Idempotent(t *testing.T) {
	releases := []domain.Release{
		{Name: "a"}, {Name: "b", Ignore: true}, {Name: "c"}, {Name: "d"},
	}
	targets := []string{"d", "a", "b"}

	once := SelectReleases(releases, targets)
	twice := SelectReleases(once, targets)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second selection changed result (-once +twice):\n%s", diff)
	}
}

func TestSelectReleases_DoesNotModifyInput(t *testing.T) {
	releases := []domain.Release{{Name: "a", Ignore: true}, {Name: "b"}}
	_ = SelectReleases(releases, nil)
	if len(releases) != 2 || releases[0].Name != "a" {
		t.Errorf("input slice modified: %v", releases)
	}
}

func TestUnmatchedTargets(t *testing.T) {
	releases := []domain.Release{{Name: "api"}, {Name: "web"}}

	got := UnmatchedTargets(releases, []string{"web", "wbe", "db"})
	if diff := cmp.Diff([]string{"wbe", "db"}, got); diff != "" {
		t.Errorf("UnmatchedTargets() mismatch (-want +got):\n%s", diff)
	}
	if got := UnmatchedTargets(releases, nil); got != nil {
		t.Errorf("UnmatchedTargets(nil) = %v, want nil", got)
	}
}
