package release

import (
	"os"
	"path/filepath"
	"testing"
)

const mitLicense = `MIT License

Copyright (c) 2024 The Ball Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindLicense(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		wantFile string
		wantID   string
	}{
		{
			name:     "mit",
			files:    map[string]string{"LICENSE": mitLicense, "README.md": "# ball"},
			wantFile: "LICENSE",
			wantID:   "MIT",
		},
		{
			name:     "british spelling with extension",
			files:    map[string]string{"Licence.txt": mitLicense},
			wantFile: "Licence.txt",
			wantID:   "MIT",
		},
		{
			name:     "first candidate wins",
			files:    map[string]string{"LICENSE-MIT": mitLicense, "LICENSE-APACHE": "see the Apache site"},
			wantFile: "LICENSE-APACHE",
		},
		{
			name:     "unrecognised text",
			files:    map[string]string{"COPYING": "All rights reserved."},
			wantFile: "COPYING",
		},
		{
			name:  "none",
			files: map[string]string{"README.md": "# ball"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, filepath.Join(dir, name), content)
			}

			l, err := FindLicense(dir)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantFile == "" {
				if l != nil {
					t.Fatalf("FindLicense = %+v, want nil", l)
				}
				return
			}

			if l == nil {
				t.Fatal("FindLicense = nil")
			}
			if l.Path != filepath.Join(dir, tt.wantFile) {
				t.Errorf("path = %q, want %q", l.Path, tt.wantFile)
			}
			if l.ID != tt.wantID {
				t.Errorf("id = %q, want %q", l.ID, tt.wantID)
			}
		})
	}
}

func TestFindLicenseIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "LICENSES"), 0o755); err != nil {
		t.Fatal(err)
	}

	l, err := FindLicense(dir)
	if err != nil || l != nil {
		t.Fatalf("FindLicense = %+v, %v", l, err)
	}
}

func TestStageLicense(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "LICENSE"), mitLicense)

	if err := stageLicense(&LicenseInfo{Path: filepath.Join(src, "LICENSE")}, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dst, "LICENSE"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != mitLicense {
		t.Error("staged license differs from source")
	}
}
