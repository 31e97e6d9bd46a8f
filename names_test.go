package release

import "testing"

func TestFixFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ball", "ball"},
		{"my app", "my_app"},
		{"a/b\\c", "a_b_c"},
		{"what?*", "what__"},
	}

	for _, tt := range tests {
		if got := fixFilename(tt.in); got != tt.want {
			t.Errorf("fixFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckArchivePath(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "ball-linux/ball-x86_64"},
		{name: "ball-windows/ball-i686.exe"},
		{name: "ball-windows/LICENSE"},
		{name: "ball-windows/aux.txt", wantErr: true},
		{name: "ball-windows/../etc", wantErr: true},
		{name: "/abs", wantErr: true},
		{name: "ball-linux/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkArchivePath(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkArchivePath(%q) = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}
