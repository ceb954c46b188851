package app

import (
	"strings"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

// SelectReleases drops ignored releases and, when targets is non-empty,
// keeps only releases named in it. Document order is preserved regardless
// of the order of targets.
func SelectReleases(releases []domain.Release, targets []string) []domain.Release {
	wanted := make(map[string]struct{}, len(targets))
	for _, t := range normalizeTargets(targets) {
		wanted[t] = struct{}{}
	}

	out := make([]domain.Release, 0, len(releases))
	for _, r := range releases {
		if r.Ignore {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[r.Name]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// UnmatchedTargets returns the targets that name no release, in the order
// given.
func UnmatchedTargets(releases []domain.Release, targets []string) []string {
	known := make(map[string]struct{}, len(releases))
	for _, r := range releases {
		known[r.Name] = struct{}{}
	}
	var out []string
	for _, t := range normalizeTargets(targets) {
		if _, ok := known[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func normalizeTargets(targets []string) []string {
	var out []string
	for _, t := range targets {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
