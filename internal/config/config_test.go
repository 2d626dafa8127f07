package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPTimeoutSec != 60 || c.RetryMaxAttempts != 3 || c.RetryBaseDelayMs != 500 || c.RetryMaxDelayMs != 4000 {
		t.Fatalf("unexpected http defaults: %+v", c)
	}
	if !c.CacheEnabled || c.CacheMaxBytes != 64<<20 {
		t.Fatalf("unexpected cache defaults: %+v", c)
	}
	if c.OtherLabel != "Other" || c.OutputFormat != "table" {
		t.Fatalf("unexpected presentation defaults: %+v", c)
	}
	if want := filepath.Join(home, DirName, "recipes"); c.RecipesDir != want {
		t.Fatalf("recipes_dir = %q, want %q", c.RecipesDir, want)
	}
}

func TestSaveThenLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	c.OtherLabel = "Rest"
	c.ChartWidth = 1024
	if err := Save(c, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, DirName, "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if got.OtherLabel != "Rest" || got.ChartWidth != 1024 {
		t.Fatalf("round trip lost values: %+v", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("retry_max_attempts: 7\nother_label: File\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHARTPREP_OTHER_LABEL", "Env")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.RetryMaxAttempts != 7 {
		t.Errorf("retry_max_attempts = %d, want 7", c.RetryMaxAttempts)
	}
	if c.OtherLabel != "Env" {
		t.Errorf("other_label = %q, want Env", c.OtherLabel)
	}
	opt := c.LoaderOptions()
	if opt.HTTPTimeout != 60*time.Second || opt.RetryBaseDelay != 500*time.Millisecond {
		t.Errorf("loader options = %+v", opt)
	}
}
