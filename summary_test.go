package release

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteSummary(t *testing.T) {
	artifacts := []*Artifact{
		{Platform: "windows", Path: "/dist/ball-windows.zip", Size: 2 << 20, SHA256: "aaaa"},
		{Platform: "linux", Path: "/dist/ball-linux.tar.xz", Size: 512, SHA256: "bbbb"},
	}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, artifacts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ball-windows.zip", "ball-linux.tar.xz", "2.0 MiB", "512 B", "aaaa", "bbbb"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%v", want, out)
		}
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 30, "5.0 GiB"},
	}

	for _, tt := range tests {
		if got := humanSize(tt.n); got != tt.want {
			t.Errorf("humanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
