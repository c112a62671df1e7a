package goals

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"RetentionSentinel/internal/model"
)

func TestStore_SetPersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC)
	s.Clock = func() time.Time { return at }

	if _, err := s.Set("it", "Established", 5); err != nil {
		t.Fatal(err)
	}
	g, err := s.Set("FR", "Clients Récents", 20)
	if err != nil {
		t.Fatal(err)
	}
	if g.Segment != "RecentlyActive" || g.Country != "FR" || !g.UpdatedAt.Equal(at) {
		t.Errorf("unexpected goal: %+v", g)
	}
	if _, err := s.Set("FR", "Acquisition", 10); err != nil {
		t.Fatal(err)
	}
	// Overwrite keeps one entry per key.
	if _, err := s.Set("FR", "Acquisition", 12); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	got := reloaded.List()
	want := []struct {
		country, segment string
		target           int
	}{
		{"FR", "Acquisition", 12},
		{"FR", "RecentlyActive", 20},
		{"IT", "Established", 5},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d goals, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Country != w.country || got[i].Segment != w.segment || got[i].Target != w.target {
			t.Errorf("goal %d: expected %v, got %+v", i, w, got[i])
		}
	}
}

func TestStore_Validation(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "goals.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Set("FR", "Loyal", 3); err == nil {
		t.Error("expected unknown segment error")
	}
	if _, err := s.Set("", "Acquisition", 3); err == nil {
		t.Error("expected empty country error")
	}
	if _, err := s.Set("FR", "Acquisition", -1); err == nil {
		t.Error("expected negative target error")
	}
	if len(s.List()) != 0 {
		t.Errorf("invalid sets must not be stored: %+v", s.List())
	}
}

func TestStore_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Set("BE", "NewlyReturning", 4); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("BE", "Nouveaux Clients"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("BE", "NewlyReturning"); err != nil {
		t.Errorf("deleting a missing goal: %v", err)
	}
	goals, err := LoadState(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 0 {
		t.Errorf("expected empty file after delete, got %+v", goals)
	}
}

func TestStore_FailedSaveRollsBack(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "missing", "goals.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Set("FR", "Acquisition", 3); err == nil {
		t.Fatal("expected save error for missing directory")
	}
	if len(s.List()) != 0 {
		t.Errorf("failed set must be rolled back: %+v", s.List())
	}
}

func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestNewStore_RejectsUnknownSegmentOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.json")
	if err := SaveState(path, []model.Goal{{Country: "FR", Segment: "Whales", Target: 1}}); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path); err == nil {
		t.Error("expected error for unknown segment")
	}
}
