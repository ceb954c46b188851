// Package kubecontext discovers the active cluster context from kubectl.
package kubecontext

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
)

// Adapter implements ports.ContextDiscoveryPort with
// `kubectl config current-context`.
type Adapter struct {
	kubectlBin string
}

// New creates a new kube context adapter. An empty binary means "kubectl".
func New(kubectlBin string) *Adapter {
	if kubectlBin == "" {
		kubectlBin = "kubectl"
	}
	return &Adapter{kubectlBin: kubectlBin}
}

// CurrentContext returns the trimmed name of the current context.
func (a *Adapter) CurrentContext(ctx context.Context) (string, error) {
	cmd := domain.Command{
		Binary: a.kubectlBin,
		Args:   []string{"config", "current-context"},
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.Join(err, errors.New(msg))
		}
		return "", domain.NewExternalCommandError(cmd, err)
	}

	name := strings.TrimSpace(stdout.String())
	if name == "" {
		return "", domain.NewExternalCommandError(cmd, errors.New("no current context set"))
	}
	return name, nil
}
