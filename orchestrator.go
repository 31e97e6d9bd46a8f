package release

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

// State is the orchestrator's position in a platform's pipeline.
type State int

const (
	Idle State = iota
	ResolvingMatrix
	Building
	Collecting
	Packaging
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ResolvingMatrix:
		return "resolving-matrix"
	case Building:
		return "building"
	case Collecting:
		return "collecting"
	case Packaging:
		return "packaging"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Options wires an Orchestrator. Build is applied unchanged to every target
// of the run.
type Options struct {
	AppName string
	DistDir string
	Build   BuildConfig

	// Copied into every staging directory when set.
	License *LicenseInfo

	// Checked against the executor's toolchain before the first build.
	MinToolchain *semver.Version

	Executor  Executor
	Collector Collector
	Packager  Packager
	Console   *Console
}

// Orchestrator drives build, collect and package for each requested platform,
// one step at a time.
type Orchestrator struct {
	opts  Options
	state State
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Console == nil {
		opts.Console = CreateConsole()
	}

	return &Orchestrator{opts: opts}
}

// CreateOrchestrator wires the cargo executor, strip collector and archive
// packager from cfg.
func CreateOrchestrator(cfg *Config) (*Orchestrator, error) {
	var err error

	if cfg == nil {
		cfg = NewConfig()
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}

	cfg.BaseDir, err = filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, err
	}

	console := CreateConsole()

	cargo, err := console.FindExecutable(cfg.Cargo)
	if err != nil {
		return nil, err
	}

	code, err := LoadCodeInfo(cfg.BaseDir)
	if err != nil {
		return nil, err
	}

	app, err := appName(cfg, code)
	if err != nil {
		return nil, err
	}

	var license *LicenseInfo
	if cfg.IncludeLicense {
		license, err = FindLicense(cfg.BaseDir)
		if err != nil {
			return nil, err
		}
		if license == nil {
			slog.Warn("no license file found, archives will not include one", "dir", cfg.BaseDir)
		} else {
			slog.Info("license", "file", filepath.Base(license.Path), "id", license.ID)
		}
	}

	dist := cfg.distDir()

	return NewOrchestrator(Options{
		AppName:      app,
		DistDir:      dist,
		Build:        cfg.Build,
		License:      license,
		MinToolchain: code.MinToolchain,
		Executor: &CargoExecutor{
			Runner:    console,
			Cargo:     cargo,
			BaseDir:   cfg.BaseDir,
			TargetDir: cfg.targetDir(),
			AppName:   app,
		},
		Collector: &StripCollector{
			Runner:        console,
			AppName:       app,
			DistDir:       dist,
			StripPrefixes: cfg.StripPrefixes,
		},
		Packager: &ArchivePackager{
			AppName: app,
			DistDir: dist,
		},
		Console: console,
	}), nil
}

func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) AppName() string {
	return o.opts.AppName
}

// StagingDir is the directory p's binaries are collected into.
func (o *Orchestrator) StagingDir(p *Platform) string {
	return filepath.Join(o.opts.DistDir, p.DistName(o.opts.AppName))
}

// Run resolves platform and target names and packages each platform in the
// order given. An unknown name fails with *UsageError before anything runs.
func (o *Orchestrator) Run(ctx context.Context, platformNames, targetNames []string) ([]*Artifact, error) {
	o.setState(ResolvingMatrix, nil, nil)

	plans, err := ResolvePlan(platformNames, targetNames)
	if err != nil {
		o.setState(Idle, nil, nil)
		return nil, err
	}

	return o.RunPlan(ctx, plans)
}

// RunPlan packages already resolved platforms. The first failure stops the
// run; artifacts of platforms completed before it are returned with the
// error and stay on disk.
func (o *Orchestrator) RunPlan(ctx context.Context, plans []PlatformPlan) ([]*Artifact, error) {
	if err := o.checkToolchain(); err != nil {
		return nil, err
	}

	total := 0
	for _, plan := range plans {
		total += 2*len(plan.Targets) + 1
	}

	pr := &progress{console: o.opts.Console, total: total}

	var artifacts []*Artifact
	for _, plan := range plans {
		a, err := o.runPlatform(ctx, plan, pr)
		if err != nil {
			pr.fail("ERROR %v %v: %v", o.state, plan.Platform.Name, err)
			return artifacts, err
		}

		artifacts = append(artifacts, a)
	}

	o.setState(Done, nil, nil)

	return artifacts, nil
}

func (o *Orchestrator) runPlatform(ctx context.Context, plan PlatformPlan, pr *progress) (*Artifact, error) {
	p := plan.Platform
	staging := o.StagingDir(p)

	o.setState(Building, p, nil)

	if err := recreateDir(staging); err != nil {
		return nil, errors.Wrapf(err, "recreating staging directory %v", staging)
	}

	for _, t := range plan.Targets {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "interrupted before building %v", t)
		}

		o.setState(Building, p, &t)
		pr.step("Building %v", t)

		binary, err := o.opts.Executor.Build(t, o.opts.Build, FlagsFor(t))
		if err != nil {
			return nil, err
		}

		o.setState(Collecting, p, &t)
		pr.step("Collecting %v", t)

		entry, err := o.opts.Collector.Collect(t, p, binary)
		if err != nil {
			return nil, err
		}

		slog.Debug("staged", "platform", entry.Platform, "name", entry.Name, "source", entry.Source, "strip", entry.StripPrefix)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "interrupted before packaging %v", p.Name)
	}

	o.setState(Packaging, p, nil)
	pr.step("Packaging %v", p.ArchiveName(o.opts.AppName))

	if o.opts.License != nil {
		if err := stageLicense(o.opts.License, staging); err != nil {
			return nil, &PackageError{Platform: p.Name, Err: err}
		}
	}

	a, err := o.opts.Packager.Package(p, staging)
	if err != nil {
		return nil, err
	}

	slog.Info("archive written", "platform", p.Name, "path", a.Path, "size", a.Size)

	return a, nil
}

func (o *Orchestrator) checkToolchain() error {
	if o.opts.MinToolchain == nil {
		return nil
	}

	v, ok := o.opts.Executor.(interface {
		ToolchainVersion() (*semver.Version, error)
	})
	if !ok {
		return nil
	}

	version, err := v.ToolchainVersion()
	if err != nil {
		return err
	}

	if version.LessThan(o.opts.MinToolchain) {
		return errors.Errorf("unsupported toolchain version %v - should be at least %v", version, o.opts.MinToolchain)
	}

	return nil
}

func (o *Orchestrator) setState(s State, p *Platform, t *Target) {
	o.state = s

	attrs := []any{"state", s.String()}
	if p != nil {
		attrs = append(attrs, "platform", p.Name)
	}
	if t != nil {
		attrs = append(attrs, "target", t.String())
	}
	slog.Debug("transition", attrs...)
}

// recreateDir removes dir and creates it again empty.
func recreateDir(dir string) error {
	if err := sh.Rm(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

type progress struct {
	console *Console
	total   int
	i       int
}

func (p *progress) step(format string, a ...interface{}) {
	p.i++
	p.console.Progressf(p.i, p.total, format, a...)
}

func (p *progress) fail(format string, a ...interface{}) {
	p.console.Failuref(p.i, p.total, format, a...)
}
