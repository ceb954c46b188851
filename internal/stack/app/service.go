package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/nathantilsley/helmstack/internal/stack/domain"
	"github.com/nathantilsley/helmstack/internal/stack/ports"
)

// Settings are the global options the engine consumes.
type Settings struct {
	StackFile   string
	Environment string // empty means no overlays
	KubeContext string // empty means ask the cluster client
	HelmBinary  string
}

// ReleaseService implements ports.ReleaseUseCase. It resolves the stack for
// the target environment and runs one helm command per selected release,
// strictly in document order.
type ReleaseService struct {
	settings   Settings
	documents  ports.StackDocumentPort
	runner     ports.CommandRunnerPort
	contexts   ports.ContextDiscoveryPort // optional
	valueFiles ports.ValueFilePort
	differ     ports.DiffPort
	lookupEnv  LookupFunc
	logger     *slog.Logger

	tracer          trace.Tracer
	commandsRun     metric.Int64Counter
	commandDuration metric.Float64Histogram
}

// NewReleaseService creates a ReleaseService wired with all driven ports.
// contexts may be nil, in which case no context is discovered.
func NewReleaseService(
	settings Settings,
	documents ports.StackDocumentPort,
	runner ports.CommandRunnerPort,
	contexts ports.ContextDiscoveryPort,
	valueFiles ports.ValueFilePort,
	differ ports.DiffPort,
	logger *slog.Logger,
	meter metric.Meter,
	tracer trace.Tracer,
) *ReleaseService {
	commandsRun, err := meter.Int64Counter(
		"helmstack.commands",
		metric.WithDescription("Helm commands executed, by operation and outcome"),
	)
	if err != nil {
		commandsRun = noopmetric.Int64Counter{}
	}
	commandDuration, err := meter.Float64Histogram(
		"helmstack.command.duration",
		metric.WithDescription("Wall time of helm commands"),
		metric.WithUnit("s"),
	)
	if err != nil {
		commandDuration = noopmetric.Float64Histogram{}
	}

	return &ReleaseService{
		settings:        settings,
		documents:       documents,
		runner:          runner,
		contexts:        contexts,
		valueFiles:      valueFiles,
		differ:          differ,
		lookupEnv:       os.LookupEnv,
		logger:          logger,
		tracer:          tracer,
		commandsRun:     commandsRun,
		commandDuration: commandDuration,
	}
}

// resolution is the in-memory result of loading a stack for one run.
type resolution struct {
	stack    domain.Stack
	base     []domain.Release // interpolated, before overlays
	releases []domain.Release // after overlays
}

// resolve loads the stack, interpolates it, checks release names are unique,
// and applies the environment's overlays in order.
func (s *ReleaseService) resolve(ctx context.Context) (resolution, error) {
	ctx, span := s.tracer.Start(ctx, "stack.resolve",
		trace.WithAttributes(
			attribute.String("stack.file", s.settings.StackFile),
			attribute.String("stack.environment", s.settings.Environment),
		))
	defer span.End()

	stack, err := s.documents.LoadStack(ctx, s.settings.StackFile)
	if err != nil {
		return resolution{}, recordErr(span, err)
	}

	stack, err = InterpolateStack(stack, s.lookupEnv)
	if err != nil {
		return resolution{}, recordErr(span, err)
	}

	if err := checkUniqueNames(stack.Releases); err != nil {
		return resolution{}, recordErr(span, err)
	}

	overlays, err := s.loadOverlays(ctx, stack)
	if err != nil {
		return resolution{}, recordErr(span, err)
	}

	res := resolution{
		stack:    stack,
		base:     stack.Releases,
		releases: MergeOverlays(stack.Releases, overlays...),
	}
	span.SetAttributes(
		attribute.Int("stack.releases", len(res.releases)),
		attribute.Int("stack.overlays", len(overlays)),
	)
	return res, nil
}

func (s *ReleaseService) loadOverlays(ctx context.Context, stack domain.Stack) ([]domain.Overlay, error) {
	envName := s.settings.Environment
	if envName == "" {
		return nil, nil
	}

	env, ok := stack.Environments[envName]
	if !ok {
		return nil, domain.NewConfigurationError(domain.ReasonEnvironmentNotFound,
			"environment %q is not declared in %s", envName, s.settings.StackFile)
	}
	if len(env.Overlays) == 0 {
		return nil, domain.NewConfigurationError(domain.ReasonOverlayMissing,
			"environment %q has no overlay list", envName)
	}

	overlays := make([]domain.Overlay, 0, len(env.Overlays))
	for _, p := range env.Overlays {
		if !filepath.IsAbs(p) && stack.Dir != "" {
			p = filepath.Join(stack.Dir, p)
		}
		ov, err := s.documents.LoadOverlay(ctx, p)
		if err != nil {
			return nil, err
		}
		ov, err = InterpolateOverlay(ov, s.lookupEnv)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("loaded overlay", "environment", envName, "path", p, "releases", len(ov.Releases))
		overlays = append(overlays, ov)
	}
	return overlays, nil
}

func checkUniqueNames(releases []domain.Release) error {
	seen := make(map[string]struct{}, len(releases))
	for _, r := range releases {
		if r.Name == "" {
			continue
		}
		if _, dup := seen[r.Name]; dup {
			return domain.NewConfigurationError(domain.ReasonDuplicateRelease,
				"release %q is declared more than once", r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}

// selectReleases applies SelectReleases and reports empty or partial matches.
func (s *ReleaseService) selectReleases(releases []domain.Release, targets []string) []domain.Release {
	if unmatched := UnmatchedTargets(releases, targets); len(unmatched) > 0 {
		s.logger.Warn("targets match no release", "targets", unmatched)
	}
	selected := SelectReleases(releases, targets)
	if len(selected) == 0 {
		s.logger.Warn("no releases found")
	} else {
		s.logger.Info("selected releases", "count", len(selected), "releases", domain.ReleaseNames(selected))
	}
	return selected
}

// commandDefaults builds the synthesis defaults, discovering the cluster
// context when none is configured.
func (s *ReleaseService) commandDefaults(ctx context.Context, stack domain.Stack) (CommandDefaults, error) {
	d := CommandDefaults{
		HelmBinary:  s.settings.HelmBinary,
		KubeContext: s.settings.KubeContext,
		Stack:       stack.Defaults,
	}
	if d.KubeContext != "" || s.contexts == nil {
		return d, nil
	}

	kubeCtx, err := s.contexts.CurrentContext(ctx)
	if err != nil {
		return CommandDefaults{}, fmt.Errorf("discovering kube context: %w", err)
	}
	d.KubeContext = kubeCtx
	s.logger.Info("using current kube context", "context", kubeCtx)
	return d, nil
}

// Sync upgrades (installing when missing) every selected release.
func (s *ReleaseService) Sync(ctx context.Context, opts domain.SyncOptions) error {
	ctx, span := s.tracer.Start(ctx, "stack.sync")
	defer span.End()

	res, err := s.resolve(ctx)
	if err != nil {
		return err
	}
	releases := s.selectReleases(res.releases, opts.Targets)
	if len(releases) == 0 {
		return nil
	}

	defaults, err := s.commandDefaults(ctx, res.stack)
	if err != nil {
		return recordErr(span, err)
	}
	defaults.RecreatePods = opts.RecreatePods
	defaults.Force = opts.Force

	if !opts.SkipRepos {
		if err := s.syncRepositories(ctx, defaults, res.stack.Repositories); err != nil {
			return recordErr(span, err)
		}
	}

	garbage := newGarbageFiles(s.valueFiles, opts.KeepTempFiles, s.logger)
	defer garbage.cleanup()

	for _, r := range releases {
		if err := s.syncRelease(ctx, defaults, garbage, r); err != nil {
			return recordErr(span, err)
		}
	}

	s.logger.Info("sync complete", "releases", len(releases))
	return nil
}

func (s *ReleaseService) syncRepositories(ctx context.Context, d CommandDefaults, repos []domain.Repository) error {
	if len(repos) == 0 {
		return nil
	}
	for _, repo := range repos {
		s.logger.Info("adding repository", "name", repo.Name, "url", repo.URL)
		if err := s.execute(ctx, BuildRepoAddCommand(d, repo)); err != nil {
			return err
		}
	}
	return s.execute(ctx, BuildRepoUpdateCommand(d))
}

// syncRelease removes the release's temporary value files once its command
// has run, whether or not it succeeded.
func (s *ReleaseService) syncRelease(ctx context.Context, d CommandDefaults, garbage *garbageFiles, r domain.Release) error {
	defer garbage.cleanup()

	r, err := materializeSet(s.valueFiles, garbage, r)
	if err != nil {
		return err
	}
	cmd, err := BuildUpgradeCommand(d, r)
	if err != nil {
		return err
	}

	s.logger.Info("syncing release", "release", r.Name, "chart", r.Chart, "namespace", r.Namespace)
	return s.execute(ctx, cmd)
}

// Delete removes every selected release. With no targets it refuses to run
// unless opts.All confirms a whole-stack delete.
func (s *ReleaseService) Delete(ctx context.Context, opts domain.DeleteOptions) error {
	ctx, span := s.tracer.Start(ctx, "stack.delete")
	defer span.End()

	if len(normalizeTargets(opts.Targets)) == 0 && !opts.All {
		return recordErr(span, domain.NewConfigurationError(domain.ReasonDeleteRequiresTargets,
			"refusing to delete every release without --all; name the releases to delete"))
	}

	res, err := s.resolve(ctx)
	if err != nil {
		return err
	}
	releases := s.selectReleases(res.releases, opts.Targets)
	if len(releases) == 0 {
		return nil
	}

	defaults, err := s.commandDefaults(ctx, res.stack)
	if err != nil {
		return recordErr(span, err)
	}

	for _, r := range releases {
		cmd, err := BuildDeleteCommand(defaults, r, opts.Purge)
		if err != nil {
			return recordErr(span, err)
		}
		s.logger.Info("deleting release", "release", r.Name, "purge", opts.Purge)
		if err := s.execute(ctx, cmd); err != nil {
			return recordErr(span, err)
		}
	}
	return nil
}

// Get runs `helm get` for every selected release.
func (s *ReleaseService) Get(ctx context.Context, opts domain.GetOptions) error {
	ctx, span := s.tracer.Start(ctx, "stack.get")
	defer span.End()

	res, err := s.resolve(ctx)
	if err != nil {
		return err
	}
	releases := s.selectReleases(res.releases, opts.Targets)
	if len(releases) == 0 {
		return nil
	}

	defaults, err := s.commandDefaults(ctx, res.stack)
	if err != nil {
		return recordErr(span, err)
	}

	for _, r := range releases {
		cmd, err := BuildGetCommand(defaults, r)
		if err != nil {
			return recordErr(span, err)
		}
		if err := s.execute(ctx, cmd); err != nil {
			return recordErr(span, err)
		}
	}
	return nil
}

// Show writes the resolved releases to w as YAML, or with opts.Diff a
// unified diff between the base and the environment-resolved releases.
// It never invokes the helm binary.
func (s *ReleaseService) Show(ctx context.Context, w io.Writer, opts domain.ShowOptions) error {
	ctx, span := s.tracer.Start(ctx, "stack.show")
	defer span.End()

	res, err := s.resolve(ctx)
	if err != nil {
		return err
	}
	releases := s.selectReleases(res.releases, opts.Targets)

	resolved, err := s.documents.EncodeReleases(releases)
	if err != nil {
		return recordErr(span, fmt.Errorf("encoding resolved releases: %w", err))
	}

	if !opts.Diff {
		_, err = w.Write(resolved)
		return err
	}

	base, err := s.documents.EncodeReleases(SelectReleases(res.base, opts.Targets))
	if err != nil {
		return recordErr(span, fmt.Errorf("encoding base releases: %w", err))
	}

	envName := s.settings.Environment
	if envName == "" {
		envName = "base"
	}
	diff := s.differ.ComputeDiff(s.settings.StackFile, s.settings.StackFile+" ("+envName+")", base, resolved)
	if diff == "" {
		s.logger.Info("environment overlays change nothing", "environment", envName)
		return nil
	}
	_, err = fmt.Fprintln(w, diff)
	return err
}

// execute runs one command and records its span and metrics.
func (s *ReleaseService) execute(ctx context.Context, cmd domain.Command) error {
	attrs := []attribute.KeyValue{
		attribute.String("helm.operation", string(cmd.Operation)),
	}
	if cmd.Release != "" {
		attrs = append(attrs, attribute.String("helm.release", cmd.Release))
	}

	ctx, span := s.tracer.Start(ctx, "helm "+string(cmd.Operation), trace.WithAttributes(attrs...))
	defer span.End()

	s.logger.Debug("running command", "command", cmd.String())
	start := time.Now()
	err := s.runner.Run(ctx, cmd)
	elapsed := time.Since(start).Seconds()

	outcome := "success"
	if err != nil {
		outcome = "failure"
		recordErr(span, err)
	}
	s.commandsRun.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("outcome", outcome))...))
	s.commandDuration.Record(ctx, elapsed, metric.WithAttributes(attrs...))

	if err != nil {
		if cmd.Release != "" {
			return fmt.Errorf("release %q: %w", cmd.Release, err)
		}
		return err
	}
	return nil
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
