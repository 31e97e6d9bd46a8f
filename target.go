package release

import (
	"strings"
)

// Target identifies one compilation target as an (arch, vendor, system)
// triple, e.g. x86_64 / pc / windows-gnu.
type Target struct {
	Arch   string
	Vendor string
	System string
}

func (t Target) String() string {
	return t.Arch + "-" + t.Vendor + "-" + t.System
}

func (t Target) IsWindows() bool {
	return strings.HasPrefix(t.System, "windows")
}

// Platform returns the platform that owns t.
func (t Target) Platform() (*Platform, bool) {
	for _, p := range platforms.items {
		if p.Vendor == t.Vendor && p.System == t.System {
			return p, true
		}
	}
	return nil, false
}

type ArchiveFormat int

const (
	FormatZip ArchiveFormat = iota
	FormatTarXz
)

func (f ArchiveFormat) Ext() string {
	switch f {
	case FormatZip:
		return ".zip"
	case FormatTarXz:
		return ".tar.xz"
	default:
		return ""
	}
}

// Platform groups the targets that share one archive format and naming.
type Platform struct {
	Name   string
	Vendor string
	System string
	Format ArchiveFormat
	Archs  []string
}

// Targets returns the platform's target matrix, 64-bit first.
func (p *Platform) Targets() []Target {
	result := make([]Target, len(p.Archs))
	for i, a := range p.Archs {
		result[i] = Target{Arch: a, Vendor: p.Vendor, System: p.System}
	}
	return result
}

// DistName is the staging directory name, which is also the archive's root entry.
func (p *Platform) DistName(app string) string {
	return app + "-" + p.Name
}

func (p *Platform) ArchiveName(app string) string {
	return p.DistName(app) + p.Format.Ext()
}

type Platforms struct {
	names []string
	items map[string]*Platform
}

func (l *Platforms) Get(name string) *Platform {
	p, ok := l.items[name]
	if !ok {
		return nil
	}

	return p
}

func (l *Platforms) Add(p *Platform) {
	if l.items == nil {
		l.items = map[string]*Platform{}
	}

	_, ok := l.items[p.Name]
	if ok {
		panic("Platform already exists: " + p.Name)
	}

	l.names = append(l.names, p.Name)
	l.items[p.Name] = p
}

func (l *Platforms) Names() []string {
	return append([]string(nil), l.names...)
}

var platforms Platforms

func init() {
	platforms.Add(&Platform{
		Name:   "windows",
		Vendor: "pc",
		System: "windows-gnu",
		Format: FormatZip,
		Archs:  []string{"x86_64", "i686"},
	})
	platforms.Add(&Platform{
		Name:   "linux",
		Vendor: "unknown",
		System: "linux-gnu",
		Format: FormatTarXz,
		Archs:  []string{"x86_64", "i686"},
	})
}

// DefaultPlatforms lists every known platform name in packaging order.
func DefaultPlatforms() []string {
	return platforms.Names()
}

// LookupPlatform returns the named platform or a *UsageError.
func LookupPlatform(name string) (*Platform, error) {
	p := platforms.Get(name)
	if p == nil {
		return nil, &UsageError{Kind: "platform", Name: name}
	}
	return p, nil
}

// ParseTarget accepts only triples that belong to a known platform.
func ParseTarget(s string) (Target, error) {
	for _, name := range platforms.names {
		for _, t := range platforms.items[name].Targets() {
			if t.String() == s {
				return t, nil
			}
		}
	}
	return Target{}, &UsageError{Kind: "target", Name: s}
}

// PlatformPlan is the resolved work for one platform.
type PlatformPlan struct {
	Platform *Platform
	Targets  []Target
}

// ResolvePlan turns CLI input into an ordered list of platform plans.
//
// Each name may itself be a space separated list. No names means every known
// platform. When targets is non-empty only those triples are built, and each
// must belong to a requested platform. Nothing is executed here, so a
// *UsageError leaves no trace on disk.
func ResolvePlan(names []string, targets []string) ([]PlatformPlan, error) {
	var requested []string
	seen := map[string]bool{}
	for _, n := range names {
		for _, f := range strings.Fields(n) {
			if seen[f] {
				continue
			}
			seen[f] = true
			requested = append(requested, f)
		}
	}
	if len(requested) == 0 {
		requested = DefaultPlatforms()
	}

	result := make([]PlatformPlan, 0, len(requested))
	for _, n := range requested {
		p, err := LookupPlatform(n)
		if err != nil {
			return nil, err
		}
		result = append(result, PlatformPlan{Platform: p, Targets: p.Targets()})
	}

	if len(targets) == 0 {
		return result, nil
	}

	wanted := map[Target]bool{}
	for _, s := range targets {
		for _, f := range strings.Fields(s) {
			t, err := ParseTarget(f)
			if err != nil {
				return nil, err
			}

			p, _ := t.Platform()
			if len(seen) > 0 && !seen[p.Name] {
				return nil, &UsageError{Kind: "target", Name: f}
			}

			wanted[t] = true
		}
	}

	filtered := result[:0]
	for _, plan := range result {
		var ts []Target
		for _, t := range plan.Targets {
			if wanted[t] {
				ts = append(ts, t)
			}
		}
		if len(ts) > 0 {
			filtered = append(filtered, PlatformPlan{Platform: plan.Platform, Targets: ts})
		}
	}

	return filtered, nil
}
