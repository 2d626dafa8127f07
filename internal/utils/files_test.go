package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")
	if err := SafeWriteFile(path, []byte("a: 1\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := SafeWriteFile(path, []byte("a: 2\n")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "a: 2\n" {
		t.Fatalf("content = %q, want %q", b, "a: 2\n")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	tests := []struct{ in, want string }{
		{"~", home},
		{"~/recipes", filepath.Join(home, "recipes")},
		{"data/../votes.csv", "votes.csv"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		if err != nil {
			t.Fatalf("ExpandHome(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	recipe := filepath.Join(dir, "polls.yaml")
	if err := os.WriteFile(recipe, []byte("name: polls\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, ref := range []string{recipe, "polls", "polls.yaml"} {
		got, err := ResolveFile(ref, dir)
		if err != nil {
			t.Fatalf("ResolveFile(%q): %v", ref, err)
		}
		if got != recipe {
			t.Errorf("ResolveFile(%q) = %q, want %q", ref, got, recipe)
		}
	}
	if _, err := ResolveFile("missing", dir); !IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if err := EnsureDir(filepath.Join(dir, "a", "b")); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
}
