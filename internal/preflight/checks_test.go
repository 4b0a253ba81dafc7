package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/logpulse/logpulse/internal/config"
)

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name    string
		command []string
		want    bool
	}{
		{"found in path", []string{"sh", "-c", "true"}, true},
		{"missing binary", []string{"definitely-not-a-real-binary-12345"}, false},
		{"empty command", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := checkCommand(tt.command)
			if check.Passed != tt.want {
				t.Errorf("Passed = %v, want %v (%s)", check.Passed, tt.want, check.Message)
			}
		})
	}
}

func TestCheckWorkingDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		dir  string
		want bool
	}{
		{"inherited", "", true},
		{"existing dir", dir, true},
		{"missing dir", filepath.Join(dir, "nope"), false},
		{"regular file", file, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := checkWorkingDir(tt.dir)
			if check.Passed != tt.want {
				t.Errorf("Passed = %v, want %v (%s)", check.Passed, tt.want, check.Message)
			}
		})
	}
}

func TestCheckLogPath(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.log")
	if err := os.WriteFile(existing, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		mutate    func(*config.Config)
		want      bool
		wantMsg   string
	}{
		{
			name:   "temp file default",
			mutate: func(c *config.Config) {},
			want:   true,
		},
		{
			name:   "fresh path",
			mutate: func(c *config.Config) { c.LogPath = filepath.Join(dir, "new.log") },
			want:   true,
		},
		{
			name:    "existing without flags",
			mutate:  func(c *config.Config) { c.LogPath = existing },
			want:    false,
			wantMsg: "-overwrite or -append",
		},
		{
			name: "existing with append",
			mutate: func(c *config.Config) {
				c.LogPath = existing
				c.Append = true
			},
			want: true,
		},
		{
			name: "existing with overwrite",
			mutate: func(c *config.Config) {
				c.LogPath = existing
				c.Overwrite = true
			},
			want: true,
		},
		{
			name:   "missing parent dir",
			mutate: func(c *config.Config) { c.LogPath = filepath.Join(dir, "a", "b", "x.log") },
			want:   false,
		},
		{
			name:   "path is a directory",
			mutate: func(c *config.Config) { c.LogPath = dir },
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			check := checkLogPath(cfg)
			if check.Passed != tt.want {
				t.Errorf("Passed = %v, want %v (%s)", check.Passed, tt.want, check.Message)
			}
			if tt.wantMsg != "" && !strings.Contains(check.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to mention %q", check.Message, tt.wantMsg)
			}
		})
	}
}

func TestRunAll(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Command = []string{"sh", "-c", "true"}

	result := RunAll(cfg)
	if !result.Passed {
		for _, c := range result.Checks {
			t.Logf("%s", c.String())
		}
		t.Error("RunAll Passed = false, want true")
	}
	if len(result.Checks) != 3 {
		t.Errorf("got %d checks, want 3", len(result.Checks))
	}

	cfg.Command = []string{"definitely-not-a-real-binary-12345"}
	if result := RunAll(cfg); result.Passed {
		t.Error("RunAll Passed = true with missing binary, want false")
	}
}
