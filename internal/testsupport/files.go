package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with placeholder content, creating parents as
// needed. The pipeline never decodes audio itself, so fixture bytes are
// arbitrary.
func WriteFile(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("fixture"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SeedInputTree lays out input/<person>/<file> fixtures and returns the input
// root.
func SeedInputTree(t testing.TB, folders map[string][]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "input")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir input root: %v", err)
	}
	for folder, files := range folders {
		dir := filepath.Join(root, folder)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		for _, file := range files {
			WriteFile(t, filepath.Join(dir, file))
		}
	}
	return root
}
