package release

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

// Known toolchain naming irregularities: the cross strip for these targets is
// not installed under the target triple.
var stripPrefixExceptions = map[string]string{
	"i686-unknown-linux-gnu": "i686-linux-gnu",
}

// StripPrefix returns the toolchain prefix of the strip utility for t.
// overrides take precedence over the built-in exceptions.
func StripPrefix(t Target, overrides map[string]string) string {
	triple := t.String()
	if p, ok := overrides[triple]; ok && p != "" {
		return p
	}
	if p, ok := stripPrefixExceptions[triple]; ok {
		return p
	}
	return triple
}

// StagingEntry records one binary placed into a staging directory.
type StagingEntry struct {
	Platform    string
	Name        string
	Source      string
	Destination string
	StripPrefix string
}

// Collector moves a built binary into its platform's staging directory.
type Collector interface {
	Collect(t Target, p *Platform, binary string) (*StagingEntry, error)
}

type StripCollector struct {
	Runner        Runner
	AppName       string
	DistDir       string
	StripPrefixes map[string]string
}

// StagedName is the canonical file name of t's binary, e.g. app-x86_64.exe.
func StagedName(app string, t Target) string {
	name := app + "-" + t.Arch
	if t.IsWindows() {
		name += ".exe"
	}
	return name
}

func (c *StripCollector) Collect(t Target, p *Platform, binary string) (*StagingEntry, error) {
	info, err := os.Stat(binary)
	if err != nil {
		return nil, &CollectError{Target: t, Step: "locate", Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &CollectError{Target: t, Step: "locate", Err: errors.Errorf("%v is not a regular file", binary)}
	}

	dir := filepath.Join(c.DistDir, p.DistName(c.AppName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &CollectError{Target: t, Step: "copy", Err: err}
	}

	entry := &StagingEntry{
		Platform:    p.Name,
		Name:        StagedName(c.AppName, t),
		Source:      binary,
		StripPrefix: StripPrefix(t, c.StripPrefixes),
	}
	entry.Destination = filepath.Join(dir, entry.Name)

	if err := sh.Copy(entry.Destination, binary); err != nil {
		return nil, &CollectError{Target: t, Step: "copy", Err: err}
	}
	if err := os.Chmod(entry.Destination, info.Mode().Perm()); err != nil {
		return nil, &CollectError{Target: t, Step: "copy", Err: err}
	}

	if err := c.Runner.Run(nil, entry.StripPrefix+"-strip", entry.Destination); err != nil {
		return nil, &CollectError{Target: t, Step: "strip", ExitCode: sh.ExitStatus(err), Err: err}
	}

	return entry, nil
}
