package release

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeCall struct {
	env  map[string]string
	cmd  string
	args []string
}

// fakeRunner stands in for cargo and the strip tools. A cargo build writes a
// placeholder binary where cargo would have left it.
type fakeRunner struct {
	app     string
	version string
	calls   []fakeCall
	strips  []string
	fail    func(cmd string, args []string) error
}

func (r *fakeRunner) Run(env map[string]string, cmd string, args ...string) error {
	r.calls = append(r.calls, fakeCall{env: env, cmd: cmd, args: args})

	if r.fail != nil {
		if err := r.fail(cmd, args); err != nil {
			return err
		}
	}

	if strings.HasSuffix(cmd, "-strip") {
		r.strips = append(r.strips, cmd+" "+strings.Join(args, " "))
		return nil
	}

	triple := argValue(args, "--target")
	name := r.app
	if strings.Contains(triple, "windows") {
		name += ".exe"
	}

	out := filepath.Join(argValue(args, "--target-dir"), triple, "release", name)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(out, []byte("binary for "+triple), 0o755)
}

func (r *fakeRunner) Output(cmd string, args ...string) (string, error) {
	return r.version, nil
}

func (r *fakeRunner) builds() []fakeCall {
	var result []fakeCall
	for _, c := range r.calls {
		if c.cmd == "cargo" {
			result = append(result, c)
		}
	}
	return result
}

func argValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

type countingPackager struct {
	Packager
	calls []string
}

func (c *countingPackager) Package(p *Platform, dir string) (*Artifact, error) {
	c.calls = append(c.calls, p.Name)
	return c.Packager.Package(p, dir)
}

type testEnv struct {
	dir      string
	dist     string
	runner   *fakeRunner
	packager *countingPackager
	o        *Orchestrator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		dist:   filepath.Join(dir, "dist"),
		runner: &fakeRunner{app: "ball", version: "cargo 1.80.0 (376290515 2024-07-16)"},
	}
	env.packager = &countingPackager{Packager: &ArchivePackager{AppName: "ball", DistDir: env.dist}}

	env.o = NewOrchestrator(Options{
		AppName: "ball",
		DistDir: env.dist,
		Build:   NewBuildConfig(),
		Executor: &CargoExecutor{
			Runner:    env.runner,
			Cargo:     "cargo",
			BaseDir:   dir,
			TargetDir: filepath.Join(dir, "target"),
			AppName:   "ball",
			Environ:   func() []string { return []string{"PATH=/usr/bin", "RUSTFLAGS=-C debuginfo=0"} },
		},
		Collector: &StripCollector{
			Runner:  env.runner,
			AppName: "ball",
			DistDir: env.dist,
		},
		Packager: env.packager,
		Console:  &Console{Stdout: io.Discard, Stderr: io.Discard},
	})

	return env
}
