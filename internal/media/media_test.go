package media

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "clip.mp4", "some media bytes")

	sum := sha256.Sum256([]byte("some media bytes"))
	want := hex.EncodeToString(sum[:])

	got, err := Fingerprint(path)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if got != want {
		t.Errorf("Fingerprint = %s, want %s", got, want)
	}

	again, err := Fingerprint(path)
	if err != nil || again != want {
		t.Errorf("cached Fingerprint = %s (%v), want %s", again, err, want)
	}
}

func TestFingerprintTracksContentChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "clip.mp4", "before")

	first, err := Fingerprint(path)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	writeFile(t, dir, "clip.mp4", "after!")
	// Same size is possible; force a distinct mtime so the cache cannot
	// serve the stale digest.
	if err := os.Chtimes(path, time.Now().Add(2*time.Second), time.Now().Add(2*time.Second)); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	second, err := Fingerprint(path)
	if err != nil {
		t.Fatalf("Fingerprint after rewrite failed: %v", err)
	}
	if first == second {
		t.Error("Fingerprint did not change with file content")
	}
}

func TestFingerprintMissingFile(t *testing.T) {
	if _, err := Fingerprint(filepath.Join(t.TempDir(), "absent.mp4")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestScanFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.mp4", "c")
	writeFile(t, dir, "a.mp3", "a")
	writeFile(t, dir, "b.txt", "not media")
	writeFile(t, dir, "D.MKV", "uppercase extension")
	if err := os.Mkdir(filepath.Join(dir, "sub.mp4"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	paths, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "D.MKV"),
		filepath.Join(dir, "a.mp3"),
		filepath.Join(dir, "c.mp4"),
	}
	if len(paths) != len(want) {
		t.Fatalf("Scan returned %d paths, want %d: %v", len(paths), len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Scan[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestLoadAssignsContiguousIndexes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.mp4", "second")
	writeFile(t, dir, "a.mp4", "first")

	entries, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Load returned %d entries, want 2", len(entries))
	}

	for i, e := range entries {
		if e.Index != i {
			t.Errorf("entry %d has index %d", i, e.Index)
		}
		if e.LocalPath == "" {
			t.Errorf("entry %d has no local path", i)
		}
	}
	if entries[0].Name != "a.mp4" || entries[1].Name != "b.mp4" {
		t.Errorf("Load order wrong: %s, %s", entries[0].Name, entries[1].Name)
	}
	if entries[0].Size != int64(len("first")) {
		t.Errorf("entry size = %d, want %d", entries[0].Size, len("first"))
	}
}

func TestDescribeMissingFile(t *testing.T) {
	if _, err := Describe(filepath.Join(t.TempDir(), "absent.mp4"), 0); err == nil {
		t.Error("Expected error for missing file")
	}
}
