package release

import (
	"fmt"

	"github.com/pkg/errors"
)

// UsageError reports an unknown platform or target name. It is raised before
// any side effect happens.
type UsageError struct {
	Kind string // "platform" or "target"
	Name string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("unknown %v: '%v'", e.Kind, e.Name)
}

// BuildError reports a failed compiler invocation for one target.
type BuildError struct {
	Target   Target
	ExitCode int
	Err      error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build of %v failed with exit status %v: %v", e.Target, e.ExitCode, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// CollectError reports a failure while staging one target's binary. Step is
// one of "locate", "copy" or "strip".
type CollectError struct {
	Target   Target
	Step     string
	ExitCode int
	Err      error
}

func (e *CollectError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("collecting %v failed at %v with exit status %v: %v", e.Target, e.Step, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("collecting %v failed at %v: %v", e.Target, e.Step, e.Err)
}

func (e *CollectError) Unwrap() error {
	return e.Err
}

// PackageError reports a failure while archiving a platform's staging
// directory. Archives are written in-process, so it maps to exit code 1.
type PackageError struct {
	Platform string
	Err      error
}

func (e *PackageError) Error() string {
	return fmt.Sprintf("packaging %v failed: %v", e.Platform, e.Err)
}

func (e *PackageError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Orchestrator.Run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return 1
	}

	code := 0

	var build *BuildError
	var collect *CollectError
	switch {
	case errors.As(err, &build):
		code = build.ExitCode
	case errors.As(err, &collect):
		code = collect.ExitCode
	}

	if code <= 0 {
		return 1
	}
	return code
}
