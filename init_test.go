package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/qmlscan/internal/config"
)

// TestGenerateConfigRoundTrips verifies that the generated file loads back
// into the defaults.
func TestGenerateConfigRoundTrips(t *testing.T) {
	t.Parallel()

	content, err := generateConfig(config.Default())
	if err != nil {
		t.Fatalf("generateConfig: %v", err)
	}
	if !strings.HasPrefix(string(content), "# qmlscan configuration.") {
		t.Errorf("missing header:\n%s", content)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		t.Fatalf("generated YAML does not parse: %v", err)
	}
	for _, key := range []string{"format", "log_level", "max_file_size", "extensions", "register_function", "assert_functions", "string_functions"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("key %q missing from:\n%s", key, content)
		}
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "qmlscan.yaml")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := config.Default()
	if cfg.Format != want.Format || cfg.MaxFileSize != want.MaxFileSize || cfg.RegisterFunction != want.RegisterFunction {
		t.Errorf("loaded %+v, want %+v", cfg, want)
	}
}

// TestInitCreatesFile verifies that init creates the target file when it
// does not exist.
func TestInitCreatesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "qmlscan.yaml")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", path}, &stdout, &stderr); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if !strings.Contains(string(data), "register_function: qmlRegisterType") {
		t.Errorf("unexpected content:\n%s", data)
	}
	if !strings.Contains(stderr.String(), "wrote default configuration") {
		t.Errorf("missing confirmation, stderr: %q", stderr.String())
	}
}

// TestInitDryRun verifies that --dry-run prints the configuration and does
// not create the file.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "qmlscan.yaml")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", "--dry-run", path}, &stdout, &stderr); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := os.Stat(path); err == nil {
		t.Error("--dry-run should not create the file")
	}
	if !strings.Contains(stdout.String(), "format: toon") {
		t.Errorf("dry-run output missing settings:\n%s", stdout.String())
	}
}

// TestInitKeepsExistingFile verifies that an existing file is only replaced
// with --force.
func TestInitKeepsExistingFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "qmlscan.yaml")
	if err := os.WriteFile(path, []byte("format: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", path}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for existing file")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "format: json\n" {
		t.Errorf("existing file modified:\n%s", data)
	}

	if err := run([]string{"init", "--force", path}, &stdout, &stderr); err != nil {
		t.Fatalf("init --force: %v", err)
	}
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "format: toon") {
		t.Errorf("--force did not overwrite:\n%s", data)
	}
}
