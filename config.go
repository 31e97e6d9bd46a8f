package release

import (
	"path/filepath"
)

type Config struct {
	// Source tree containing Cargo.toml. Empty means the working directory.
	BaseDir string

	// Executable name used in staged binaries and archive names. Empty means
	// the package name from Cargo.toml.
	AppName string

	// Defaults to BaseDir/dist.
	DistDir string

	// Cargo's --target-dir. Defaults to BaseDir/target.
	TargetDir string

	Cargo string

	Build BuildConfig

	// Per-triple strip toolchain prefixes, layered over the built-in exceptions.
	StripPrefixes map[string]string

	// Copy the project license into every staging directory.
	IncludeLicense bool
}

func NewConfig() *Config {
	result := &Config{}

	result.Cargo = "cargo"
	result.Build = NewBuildConfig()
	result.StripPrefixes = map[string]string{}

	return result
}

func (c *Config) distDir() string {
	if c.DistDir != "" {
		return c.DistDir
	}
	return filepath.Join(c.BaseDir, "dist")
}

func (c *Config) targetDir() string {
	if c.TargetDir != "" {
		return c.TargetDir
	}
	return filepath.Join(c.BaseDir, "target")
}
