package release

import (
	"log/slog"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

const manifestName = "Cargo.toml"

// CodeInfo describes the crate being released.
type CodeInfo struct {
	BaseDir string

	// Empty for a virtual manifest.
	Name string

	// Minimum toolchain from rust-version; nil when the crate does not declare
	// one or inherits it from the workspace.
	MinToolchain *semver.Version
}

type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`

		// Either a string or a {workspace = true} table.
		RustVersion any `toml:"rust-version"`
	} `toml:"package"`
}

// LoadCodeInfo reads dir/Cargo.toml.
func LoadCodeInfo(dir string) (*CodeInfo, error) {
	file := filepath.Join(dir, manifestName)

	var m cargoManifest
	if _, err := toml.DecodeFile(file, &m); err != nil {
		return nil, errors.Wrapf(err, "Error loading %v. This should be run from the crate folder.", manifestName)
	}

	result := &CodeInfo{
		BaseDir: dir,
		Name:    m.Package.Name,
	}

	switch v := m.Package.RustVersion.(type) {
	case nil:
	case string:
		var err error
		result.MinToolchain, err = semver.NewVersion(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid rust-version '%v'", v)
		}
	case map[string]any:
		slog.Debug("rust-version inherited from the workspace, skipping toolchain check", "manifest", file)
	default:
		return nil, errors.Errorf("invalid rust-version '%v'", v)
	}

	return result, nil
}

// appName picks the name used for staged binaries and archives.
func appName(cfg *Config, code *CodeInfo) (string, error) {
	if cfg.AppName != "" {
		return cfg.AppName, nil
	}
	if code.Name == "" {
		return "", errors.Errorf("%v has no [package] name, set the application name explicitly",
			filepath.Join(code.BaseDir, manifestName))
	}
	return fixFilename(code.Name), nil
}
