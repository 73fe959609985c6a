package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverCppFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.cpp", "int main() {}")
	writeFile(t, dir, "src/item.h", "class Item {};")
	writeFile(t, dir, "src/item.CXX", "")
	// Not C++
	writeFile(t, dir, "readme.txt", "hello")
	writeFile(t, dir, "main.qml", "Item {}")
	// Hidden file should be ignored
	writeFile(t, dir, ".hidden.h", "secret")

	entries, err := Files(dir, nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(entries), paths)
	}

	// Should be sorted
	want := []string{"main.cpp", filepath.Join("src", "item.CXX"), filepath.Join("src", "item.h")}
	for i, w := range want {
		if paths[i] != w {
			t.Errorf("entry %d: got %q, want %q", i, paths[i], w)
		}
	}

	for _, e := range entries {
		if e.Language != "cpp" {
			t.Errorf("entry %q: language = %q, want cpp", e.Path, e.Language)
		}
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.cpp", "")
	writeFile(t, dir, "node_modules/pkg.h", "")
	writeFile(t, dir, "build/moc_main.cpp", "")
	writeFile(t, dir, "cmake-build-debug/gen.h", "")
	writeFile(t, dir, ".hidden/secret.h", "")

	entries, err := Files(dir, nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Path != "main.cpp" {
		t.Errorf("expected main.cpp, got %q", entries[0].Path)
	}
}

func TestDiscoverExtensionFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "plugin.cpp", "")
	writeFile(t, dir, "plugin.h", "")
	writeFile(t, dir, "gen.inl", "")

	entries, err := Files(dir, []string{".cpp", "H"})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for .cpp/.h filter, got %d", len(entries))
	}

	entries, err = Files(dir, []string{".inl"})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "gen.inl" {
		t.Fatalf("expected gen.inl for .inl filter, got %v", entries)
	}
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, ".gitignore", "generated/\n*_autogen.cpp\n")
	writeFile(t, dir, "main.cpp", "")
	writeFile(t, dir, "main_autogen.cpp", "")
	writeFile(t, dir, "generated/types.h", "")

	entries, err := Files(dir, nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "main.cpp" {
		t.Fatalf("expected only main.cpp, got %v", entries)
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.h", "")

	// Create symlink
	err := os.Symlink(filepath.Join(dir, "real.h"), filepath.Join(dir, "link.h"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := Files(dir, nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry (no symlink), got %d", len(entries))
	}
	if entries[0].Path != "real.h" {
		t.Errorf("expected real.h, got %q", entries[0].Path)
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
