package cli

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvLoaderLoadsRequestedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.env")
	if err := os.WriteFile(path, []byte("LINGOBRIDGE_TEST_VALUE=from-flag\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("LINGOBRIDGE_TEST_VALUE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, ".env", "")
	if err := fs.Parse([]string{"--env", path}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded != path {
		t.Fatalf("unexpected loaded path: %q", loaded)
	}
	if got := os.Getenv("LINGOBRIDGE_TEST_VALUE"); got != "from-flag" {
		t.Fatalf("env var not loaded: %q", got)
	}
}

func TestEnvLoaderOverrideVariable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.env")
	if err := os.WriteFile(path, []byte("LINGOBRIDGE_TEST_VALUE=from-override\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("LINGOBRIDGE_ENV_FILE", path)
	t.Setenv("LINGOBRIDGE_TEST_VALUE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, ".env", "")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded != path {
		t.Fatalf("expected override path, got %q", loaded)
	}
	if got := os.Getenv("LINGOBRIDGE_TEST_VALUE"); got != "from-override" {
		t.Fatalf("env var not loaded: %q", got)
	}
}

func TestEnvLoaderMissingFile(t *testing.T) {
	t.Setenv("LINGOBRIDGE_ENV_FILE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, filepath.Join(t.TempDir(), "absent.env"), "")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if _, err := loader.Load(); err == nil {
		t.Fatal("expected error for missing env file")
	}
}
