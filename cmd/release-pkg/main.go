// Command release-pkg cross-compiles a Cargo crate for every target of the
// requested platforms, strips the binaries into dist/{app}-{platform}/ and
// archives each platform as dist/{app}-windows.zip or dist/{app}-linux.tar.xz.
//
//	release-pkg                 # windows and linux
//	release-pkg linux
//	release-pkg "windows linux" -t x86_64-pc-windows-gnu
//
// Defaults may be stored as JSON in $XDG_CONFIG_HOME/release-pkg/config.json
// or ./release-pkg.json, keyed by long flag name.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"

	release "github.com/pescuma/go-release"
)

const name = "release-pkg"

// Set with -ldflags "-X main.version=...".
var version = "(local)"

var cli struct {
	Platforms []string `arg:"" optional:"" help:"Platforms to package (windows, linux). A quoted space separated list is accepted. Defaults to all."`

	Target       []string          `short:"t" help:"Only build these target triples." placeholder:"TRIPLE"`
	Source       string            `short:"C" default:"." help:"Crate directory containing Cargo.toml." placeholder:"DIR"`
	Name         string            `short:"n" help:"Application name for binaries and archives. Defaults to the Cargo package name."`
	Dist         string            `help:"Output directory. Defaults to <source>/dist." placeholder:"DIR"`
	Cargo        string            `default:"cargo" help:"Cargo executable."`
	CodegenUnits int               `default:"1" help:"Codegen units for every release build."`
	LTO          string            `name:"lto" default:"fat" help:"Link-time optimisation mode for every release build."`
	StripPrefix  map[string]string `help:"Strip toolchain prefix for a target." placeholder:"TRIPLE=PREFIX"`
	License      bool              `help:"Copy the project license into every archive."`

	Quiet   bool             `short:"q" help:"Suppress informational output."`
	Verbose bool             `short:"v" help:"Enable verbose output."`
	Debug   bool             `short:"d" help:"Enable debug output."`
	Version kong.VersionFlag `help:"Show version information."`
}

func main() {
	slog.SetDefault(logger(slog.LevelWarn))
	os.Exit(run(os.Args[1:]))
}

// Parses arguments, resolves the platforms and runs the release. Returns the
// process exit code.
func run(args []string) int {
	parser, err := kong.New(&cli,
		kong.Name(name),
		kong.Description("Cross-compiles, strips and archives release binaries per platform."),
		kong.Vars{"version": version},
		kong.Configuration(kong.JSON, configFiles()...),
	)
	if err != nil {
		slog.Error(err.Error())
		return 1
	}

	if _, err := parser.Parse(args); err != nil {
		parser.Errorf("%s", err)
		return 1
	}

	slog.SetDefault(logger(logLevel()))

	plans, err := release.ResolvePlan(cli.Platforms, cli.Target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v (known platforms: %v)\n", name, err, release.DefaultPlatforms())
		return release.ExitCode(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	o, err := release.CreateOrchestrator(config())
	if err != nil {
		slog.Error(err.Error())
		return 1
	}

	artifacts, err := o.RunPlan(ctx, plans)

	if len(artifacts) > 0 && !cli.Quiet {
		fmt.Println()
		if serr := release.WriteSummary(os.Stdout, artifacts); serr != nil {
			slog.Warn("summary", "error", serr)
		}
	}

	if err != nil {
		slog.Error(err.Error())
		return release.ExitCode(err)
	}

	return 0
}

func config() *release.Config {
	cfg := release.NewConfig()

	cfg.BaseDir = cli.Source
	cfg.AppName = cli.Name
	cfg.DistDir = cli.Dist
	cfg.Cargo = cli.Cargo
	cfg.Build.CodegenUnits = cli.CodegenUnits
	cfg.Build.LTO = cli.LTO
	cfg.IncludeLicense = cli.License

	for k, v := range cli.StripPrefix {
		cfg.StripPrefixes[k] = v
	}

	return cfg
}

// JSON files holding flag defaults.
func configFiles() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, name, "config.json"),
		name + ".json",
	}
}

func logger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Returns the log level selected by -q, -v and -d.
func logLevel() slog.Level {
	switch {
	case cli.Debug:
		return slog.LevelDebug
	case cli.Quiet:
		return slog.LevelError
	case cli.Verbose:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}
