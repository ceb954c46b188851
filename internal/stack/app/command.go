package app

import (
	"os"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

// CommandDefaults are the run-wide inputs to command synthesis.
type CommandDefaults struct {
	HelmBinary  string
	KubeContext string // empty means no --kube-context flag

	// Command-line overrides; nil falls through to Stack.
	RecreatePods *bool
	Force        *bool

	Stack domain.HelmDefaults
}

// fileExists is replaced in tests.
var fileExists = func(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (d CommandDefaults) binary() string {
	if d.HelmBinary == "" {
		return "helm"
	}
	return d.HelmBinary
}

func (d CommandDefaults) prefix() []string {
	if d.KubeContext == "" {
		return nil
	}
	return []string{"--kube-context", d.KubeContext}
}

// effectiveFlag resolves release > command line > stack default.
func effectiveFlag(release, cli *bool, stack bool) bool {
	if release != nil {
		return *release
	}
	if cli != nil {
		return *cli
	}
	return stack
}

// BuildUpgradeCommand synthesizes `helm upgrade --install` for a release.
// Every value file must exist on disk; the first missing one fails with
// ValueFileNotFound before any command is returned.
func BuildUpgradeCommand(d CommandDefaults, r domain.Release) (domain.Command, error) {
	if r.Name == "" {
		return domain.Command{}, domain.NewMissingFieldError("", "name")
	}
	if r.Chart == "" {
		return domain.Command{}, domain.NewMissingFieldError(r.Name, "chart")
	}

	args := d.prefix()
	args = append(args, "upgrade", r.Name, r.Chart)
	if r.Namespace != "" {
		args = append(args, "--namespace", r.Namespace)
	}
	if r.Version != "" {
		args = append(args, "--version", r.Version)
	}
	if effectiveFlag(r.RecreatePods, d.RecreatePods, d.Stack.RecreatePods) {
		args = append(args, "--recreate-pods")
	}
	if effectiveFlag(r.Force, d.Force, d.Stack.Force) {
		args = append(args, "--force")
	}
	args = append(args, "--install")

	for _, v := range r.Values {
		if !fileExists(v) {
			return domain.Command{}, domain.NewValueFileNotFoundError(r.Name, v)
		}
		args = append(args, "--values", v)
	}

	return domain.Command{
		Operation: domain.OperationUpgrade,
		Release:   r.Name,
		Binary:    d.binary(),
		Args:      args,
	}, nil
}

// BuildDeleteCommand synthesizes `helm delete [--purge] <name>`.
func BuildDeleteCommand(d CommandDefaults, r domain.Release, purge bool) (domain.Command, error) {
	if r.Name == "" {
		return domain.Command{}, domain.NewMissingFieldError("", "name")
	}

	args := d.prefix()
	args = append(args, "delete")
	if purge {
		args = append(args, "--purge")
	}
	args = append(args, r.Name)

	return domain.Command{
		Operation: domain.OperationDelete,
		Release:   r.Name,
		Binary:    d.binary(),
		Args:      args,
	}, nil
}

// BuildGetCommand synthesizes `helm get <name>`.
func BuildGetCommand(d CommandDefaults, r domain.Release) (domain.Command, error) {
	if r.Name == "" {
		return domain.Command{}, domain.NewMissingFieldError("", "name")
	}

	args := d.prefix()
	args = append(args, "get", r.Name)

	return domain.Command{
		Operation: domain.OperationGet,
		Release:   r.Name,
		Binary:    d.binary(),
		Args:      args,
	}, nil
}

// BuildRepoAddCommand synthesizes `helm repo add <name> <url>`.
func BuildRepoAddCommand(d CommandDefaults, repo domain.Repository) domain.Command {
	return domain.Command{
		Operation: domain.OperationRepoAdd,
		Binary:    d.binary(),
		Args:      []string{"repo", "add", repo.Name, repo.URL},
	}
}

// BuildRepoUpdateCommand synthesizes `helm repo update`.
func BuildRepoUpdateCommand(d CommandDefaults) domain.Command {
	return domain.Command{
		Operation: domain.OperationRepoUpdate,
		Binary:    d.binary(),
		Args:      []string{"repo", "update"},
	}
}
