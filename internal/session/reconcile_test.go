package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JOHNSONPCX/movie-sync/internal/media"
)

func writeMedia(t *testing.T, dir, name, content string) media.Entry {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	entry, err := media.Describe(path, 0)
	if err != nil {
		t.Fatalf("describing %s: %v", name, err)
	}
	return entry
}

func TestReconcilePartialAvailability(t *testing.T) {
	hostDir := t.TempDir()
	clientDir := t.TempDir()

	alpha := writeMedia(t, hostDir, "alpha.mp4", "alpha content")
	beta := writeMedia(t, hostDir, "beta.mp4", "beta content")
	// The client has beta's bytes under a different file name; identity
	// is the hash, not the path.
	writeMedia(t, clientDir, "renamed.mp4", "beta content")

	s := newTestSession(RoleClient, clientDir, newFakePlayer())

	announced := []media.Entry{
		{Name: alpha.Name, Size: alpha.Size, Hash: alpha.Hash, Index: 0},
		{Name: beta.Name, Size: beta.Size, Hash: beta.Hash, Index: 1},
	}
	s.reconcile(announced)

	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("reconciled playlist length = %d, want 2", len(entries))
	}
	for i, e := range entries {
		if e.Index != i {
			t.Errorf("entry %d has index %d, order not preserved", i, e.Index)
		}
	}

	if entries[0].LocalPath != "" {
		t.Errorf("alpha should be unresolved, got path %q", entries[0].LocalPath)
	}
	if want := filepath.Join(clientDir, "renamed.mp4"); entries[1].LocalPath != want {
		t.Errorf("beta resolved to %q, want %q", entries[1].LocalPath, want)
	}

	missing := s.Missing()
	if len(missing) != 1 {
		t.Fatalf("missing = %v, want exactly index 0", missing)
	}
	if _, ok := missing[0]; !ok {
		t.Errorf("index 0 should be recorded missing, got %v", missing)
	}
}

func TestReconcileAllAvailable(t *testing.T) {
	dir := t.TempDir()
	a := writeMedia(t, dir, "a.mp4", "one")
	b := writeMedia(t, dir, "b.mp4", "two")

	s := newTestSession(RoleClient, dir, newFakePlayer())
	s.reconcile([]media.Entry{
		{Name: a.Name, Size: a.Size, Hash: a.Hash, Index: 0},
		{Name: b.Name, Size: b.Size, Hash: b.Hash, Index: 1},
	})

	for i, e := range s.Entries() {
		if e.LocalPath == "" {
			t.Errorf("entry %d unresolved despite local copy", i)
		}
	}
	if len(s.Missing()) != 0 {
		t.Errorf("missing = %v, want none", s.Missing())
	}
}

func TestReconcileReplacesWholesale(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession(RoleClient, dir, newFakePlayer())

	old := writeMedia(t, dir, "old.mp4", "old")
	s.list.Replace([]media.Entry{old})
	s.list.SetCurrent(0)
	s.mu.Lock()
	s.missing = map[int]media.Entry{5: {Name: "stale"}}
	s.mu.Unlock()

	fresh := writeMedia(t, dir, "fresh.mp4", "fresh")
	s.reconcile([]media.Entry{{Name: fresh.Name, Size: fresh.Size, Hash: fresh.Hash, Index: 0}})

	entries := s.Entries()
	if len(entries) != 1 || entries[0].Name != "fresh.mp4" {
		t.Errorf("old playlist state leaked into rebuild: %v", entries)
	}
	if len(s.Missing()) != 0 {
		t.Errorf("stale missing records survived: %v", s.Missing())
	}
}

func TestVerifyAndLoadGate(t *testing.T) {
	dir := t.TempDir()
	present := writeMedia(t, dir, "here.mp4", "bytes")
	present.Index = 0

	p := newFakePlayer()
	s := newTestSession(RoleClient, dir, p)
	s.list.Replace([]media.Entry{
		present,
		{Name: "gone.mp4", Size: 3, Hash: "deadbeef", Index: 1},
	})
	s.list.SetCurrent(0)

	if err := s.verifyAndLoad(7); err == nil {
		t.Error("loading an absent index should fail")
	}

	if err := s.verifyAndLoad(1); err == nil {
		t.Error("loading an unavailable file should fail")
	}
	if got := s.list.CurrentIndex(); got != 0 {
		t.Errorf("failed load moved the cursor to %d", got)
	}
	if len(p.opened) != 0 {
		t.Errorf("failed load reached the player: %v", p.opened)
	}

	if err := s.verifyAndLoad(0); err != nil {
		t.Fatalf("loading an available file failed: %v", err)
	}
	if got := s.list.CurrentIndex(); got != 0 {
		t.Errorf("cursor = %d after successful load, want 0", got)
	}
	if len(p.opened) != 1 || p.opened[0] != present.LocalPath {
		t.Errorf("player opened %v, want %s", p.opened, present.LocalPath)
	}
	if !s.isLoaded() {
		t.Error("session should be marked loaded")
	}
}
