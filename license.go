package release

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/licensecheck"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

// Below this share of recognised text the file is reported as unknown.
const minLicenseCoverage = 75

var licenseFilePrefixes = []string{"LICENSE", "LICENCE", "COPYING"}

// LicenseInfo describes the license file found in a source tree.
type LicenseInfo struct {
	Path string
	ID   string // SPDX identifier, empty when not recognised
}

// FindLicense looks for a license file at the top of dir. It returns nil
// when there is none.
func FindLicense(dir string) (*LicenseInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		upper := strings.ToUpper(e.Name())
		for _, p := range licenseFilePrefixes {
			if strings.HasPrefix(upper, p) {
				candidates = append(candidates, e.Name())
				break
			}
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	sort.Strings(candidates)
	path := filepath.Join(dir, candidates[0])

	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result := &LicenseInfo{Path: path}

	cov := licensecheck.Scan(text)
	if cov.Percent >= minLicenseCoverage && len(cov.Match) > 0 {
		result.ID = cov.Match[0].ID
	}

	return result, nil
}

// stageLicense copies the license into dir under its original file name.
func stageLicense(l *LicenseInfo, dir string) error {
	dest := filepath.Join(dir, filepath.Base(l.Path))
	if err := sh.Copy(dest, l.Path); err != nil {
		return errors.Wrapf(err, "copying license to %v", dir)
	}
	return nil
}
