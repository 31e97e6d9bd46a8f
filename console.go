package release

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/magefile/mage/mg"
	"github.com/pkg/errors"
)

// Runner starts external tools. Every call blocks until the process exits.
type Runner interface {
	// Run executes cmd with env layered over the current environment and
	// streams its output.
	Run(env map[string]string, cmd string, args ...string) error

	// Output executes cmd and returns its trimmed standard output.
	Output(cmd string, args ...string) (string, error)
}

func CreateConsole() *Console {
	return &Console{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

type Console struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (r *Console) FindExecutable(cmd string) (string, error) {
	result, err := exec.LookPath(cmd)
	if err != nil {
		return "", errors.Wrapf(err, "%v executable not found in PATH", cmd)
	}

	result, err = filepath.Abs(result)
	if err != nil {
		return "", err
	}

	return result, nil
}

// Run streams the tool's output through the console writers. Arguments are
// passed verbatim. A non-zero exit is reported as an mg.Fatal error, see
// sh.ExitStatus.
func (r *Console) Run(env map[string]string, cmd string, args ...string) error {
	slog.Debug("exec", "cmd", cmd, "args", args, "env", FlagSet(env).Environ())

	c := r.createCommand(env, cmd, args)
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	fmt.Fprintf(r.Stdout, "Executing '%v'\n", strings.Join(append([]string{cmd}, args...), "' '"))

	err := c.Run()
	if err == nil {
		return nil
	}

	if c.ProcessState == nil {
		return errors.Wrapf(err, "failed to run %v", cmd)
	}

	code := c.ProcessState.ExitCode()
	return mg.Fatalf(code, "running '%v' failed with exit code %v", cmd, code)
}

func (r *Console) Output(cmd string, args ...string) (string, error) {
	c := r.createCommand(nil, cmd, args)
	c.Stderr = r.Stderr

	output, err := c.Output()
	if err != nil {
		return "", errors.Wrapf(err, "error calling %v %v", cmd, args)
	}

	return strings.TrimRight(string(output), "\r\n"), nil
}

func (r *Console) createCommand(env map[string]string, cmd string, args []string) *exec.Cmd {
	c := exec.Command(cmd, args...)
	c.Env = append(os.Environ(), FlagSet(env).Environ()...)

	return c
}

// Progressf prints a step line in the form "[15:04:05 i/n] message".
func (r *Console) Progressf(i, n int, format string, a ...interface{}) {
	fmt.Fprintf(r.Stdout, "[%v %v/%v] %v\n", time.Now().Format("15:04:05"), i, n, color.Info.Sprintf(format, a...))
}

// Failuref is Progressf for a step that failed.
func (r *Console) Failuref(i, n int, format string, a ...interface{}) {
	fmt.Fprintf(r.Stdout, "[%v %v/%v] %v\n", time.Now().Format("15:04:05"), i, n, color.Danger.Sprintf(format, a...))
}
