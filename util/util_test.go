package util

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  Spaces   everywhere  ", "spaces-everywhere"},
		{"Crème brûlée!", "creme-brulee"},
		{"Already-slugged", "already-slugged"},
		{"Symbols &*() dropped", "symbols-dropped"},
		{"Part 3: The Return", "part-3-the-return"},
		{"", ""},
		{"???", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSafeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"normal_name-1.mp4", "normal_name-1.mp4"},
		{"with spaces.mp4", "with_spaces.mp4"},
		{"slash/../../etc", "slash_.._.._etc"},
		{"émoji🎬", "_moji_"},
	}
	for _, tc := range cases {
		if got := SafeFilename(tc.in); got != tc.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTimestampFormat(t *testing.T) {
	ts := Timestamp()
	if !regexp.MustCompile(`^\d{14}$`).MatchString(ts) {
		t.Errorf("Timestamp() = %q, want 14 digits", ts)
	}
}

func TestEnsureDirNested(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
	// Idempotent.
	if err := EnsureDir(path); err != nil {
		t.Errorf("EnsureDir on existing dir: %v", err)
	}
}
