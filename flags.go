package release

import (
	"sort"
	"strconv"
	"strings"
)

const (
	envRustFlags    = "RUSTFLAGS"
	envCFlags       = "CFLAGS"
	envCXXFlags     = "CXXFLAGS"
	envPanic        = "CARGO_PROFILE_RELEASE_PANIC"
	envCodegenUnits = "CARGO_PROFILE_RELEASE_CODEGEN_UNITS"
	envLTO          = "CARGO_PROFILE_RELEASE_LTO"
)

// The GUI toolkit's win32 clipboard and IME hooks pull in OS headers that
// do not build against the GNU ABI.
const windowsGNUDefines = "-DIMGUI_DISABLE_WIN32_DEFAULT_CLIPBOARD_FUNCTIONS -DIMGUI_DISABLE_WIN32_DEFAULT_IME_FUNCTIONS"

// Link libstdc++, libgcc and the C runtime statically so no runtime DLL ships alongside.
const windowsGNUStaticLink = "-C target-feature=+crt-static -C link-arg=-static -C link-arg=-static-libgcc -C link-arg=-static-libstdc++"

// FlagSet maps environment variable names to values appended to the ambient
// value for a single build invocation.
type FlagSet map[string]string

// Environ renders the set as sorted KEY=value strings.
func (f FlagSet) Environ() []string {
	result := make([]string, 0, len(f))
	for k, v := range f {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// FlagsFor returns the extra environment required to build t. It never
// performs I/O and every call returns a fresh map.
func FlagsFor(t Target) FlagSet {
	result := FlagSet{}

	if t.System == "windows-gnu" {
		result[envCFlags] = windowsGNUDefines
		result[envCXXFlags] = windowsGNUDefines
		result[envRustFlags] = windowsGNUStaticLink

		// 32-bit mingw cannot unwind through the toolchain's SEH-less unwinder.
		if t.Arch == "i686" {
			result[envPanic] = "abort"
		}
	}

	return result
}

// BuildConfig holds the process-wide optimisation knobs. It is fixed for a
// run and applied identically to every target.
type BuildConfig struct {
	CodegenUnits int
	LTO          string
}

func NewBuildConfig() BuildConfig {
	return BuildConfig{
		CodegenUnits: 1,
		LTO:          "fat",
	}
}

// Flags renders the config as environment overrides. Unlike target flags
// these replace the ambient value.
func (c BuildConfig) Flags() FlagSet {
	result := FlagSet{}
	if c.CodegenUnits > 0 {
		result[envCodegenUnits] = strconv.Itoa(c.CodegenUnits)
	}
	if c.LTO != "" {
		result[envLTO] = c.LTO
	}
	return result
}

// mergeEnv computes the overrides for one invocation: global values replace
// the ambient ones and target flags are appended to them. ambient is only
// read.
func mergeEnv(ambient []string, global FlagSet, flags FlagSet) map[string]string {
	base := make(map[string]string, len(ambient))
	for _, entry := range ambient {
		if k, v, ok := strings.Cut(entry, "="); ok {
			base[k] = v
		}
	}

	result := make(map[string]string, len(global)+len(flags))
	for k, v := range global {
		result[k] = v
	}
	for k, v := range flags {
		prev, ok := result[k]
		if !ok {
			prev = base[k]
		}
		result[k] = strings.TrimSpace(prev + " " + v)
	}

	return result
}
