package release

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

// Executor compiles one target and returns the path of the produced binary.
type Executor interface {
	Build(t Target, cfg BuildConfig, flags FlagSet) (string, error)
}

// CargoExecutor builds release binaries with cargo.
type CargoExecutor struct {
	Runner    Runner
	Cargo     string
	BaseDir   string
	TargetDir string
	AppName   string

	// Source of the ambient environment. Defaults to os.Environ.
	Environ func() []string
}

// Build runs "cargo build --release" for t. The ambient environment is copied,
// never modified, so flags cannot leak into the next target.
func (e *CargoExecutor) Build(t Target, cfg BuildConfig, flags FlagSet) (string, error) {
	environ := e.Environ
	if environ == nil {
		environ = os.Environ
	}

	env := mergeEnv(environ(), cfg.Flags(), flags)

	err := e.Runner.Run(env, e.Cargo,
		"build", "--release",
		"--target", t.String(),
		"--manifest-path", filepath.Join(e.BaseDir, manifestName),
		"--target-dir", e.TargetDir)
	if err != nil {
		return "", &BuildError{Target: t, ExitCode: sh.ExitStatus(err), Err: err}
	}

	return e.BinaryPath(t), nil
}

// BinaryPath is where cargo leaves the release binary for t.
func (e *CargoExecutor) BinaryPath(t Target) string {
	name := e.AppName
	if t.IsWindows() {
		name += ".exe"
	}

	return filepath.Join(e.TargetDir, t.String(), "release", name)
}

var cargoVersionRE = regexp.MustCompile(`(?i)^cargo ([0-9]+\.[0-9]+\.[0-9]+[0-9A-Za-z.+-]*)`)

// ToolchainVersion asks cargo for its version.
func (e *CargoExecutor) ToolchainVersion() (*semver.Version, error) {
	out, err := e.Runner.Output(e.Cargo, "--version")
	if err != nil {
		return nil, err
	}

	parts := cargoVersionRE.FindStringSubmatch(out)
	if len(parts) != 2 {
		return nil, errors.Errorf("Unknown cargo version output: %v", out)
	}

	return semver.NewVersion(parts[1])
}
