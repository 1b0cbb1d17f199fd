package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	runs := []Run{
		{Difficulty: "balanced", Outcome: OutcomeGameOver, Cause: "squished", Score: 100, Lines: 1, Ticks: 900},
		{Difficulty: "balanced", Outcome: OutcomeGameOver, Cause: "field filled", Score: 50, Ticks: 400},
		{Difficulty: "balanced", Outcome: OutcomeEscaped, Score: 200, Lines: 2, Ticks: 3000, Seed: 7, GodMode: true},
		{Difficulty: "lenient", Outcome: OutcomeEscaped, Score: 500, Source: SourceSim},
	}
	for _, r := range runs {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	top, err := store.TopRuns("balanced", 10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(top))
	}

	// Should be sorted descending
	want := []int{200, 100, 50}
	for i, w := range want {
		if top[i].Score != w {
			t.Errorf("top[%d].Score = %d, expected %d", i, top[i].Score, w)
		}
	}

	best := top[0]
	if best.Outcome != OutcomeEscaped || !best.GodMode || best.Seed != 7 || best.Ticks != 3000 {
		t.Errorf("Round trip lost fields: %+v", best)
	}
	if best.Source != SourcePlay {
		t.Errorf("Default source = %q, expected %q", best.Source, SourcePlay)
	}
	if top[1].Cause != "squished" {
		t.Errorf("Cause = %q, expected squished", top[1].Cause)
	}

	all, err := store.TopRuns("", 10)
	if err != nil {
		t.Fatalf("TopRuns(all) failed: %v", err)
	}
	if len(all) != 4 || all[0].Difficulty != "lenient" {
		t.Errorf("TopRuns(all) = %d runs, first %q", len(all), all[0].Difficulty)
	}
}

func TestStoreTopRunsLimitAndTies(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveRun(Run{Difficulty: "aggressive", Outcome: OutcomeGameOver, Score: (i + 1) * 100})
	}
	store.SaveRun(Run{Difficulty: "aggressive", Outcome: OutcomeGameOver, Score: 500, Ticks: 99})

	top, err := store.TopRuns("aggressive", 3)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("Expected 3 runs with limit, got %d", len(top))
	}
	if top[0].Ticks != 99 {
		t.Errorf("Tie on score should prefer the longer run, got %+v", top[0])
	}
	if top[1].Score != 500 || top[2].Score != 400 {
		t.Errorf("Runs not in expected order: %v", top)
	}
}

func TestStoreSaveRunsBatch(t *testing.T) {
	store := openTestStore(t)

	batch := make([]Run, 25)
	for i := range batch {
		batch[i] = Run{Difficulty: "balanced", Source: SourceSim, Outcome: OutcomeGameOver, Score: i}
	}
	if err := store.SaveRuns(batch); err != nil {
		t.Fatalf("SaveRuns() failed: %v", err)
	}

	recent, err := store.RecentRuns(5)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("Expected 5 recent runs, got %d", len(recent))
	}
	if recent[0].Score != 24 || recent[0].Source != SourceSim {
		t.Errorf("Newest run = %+v, expected score 24 from sim", recent[0])
	}
}

func TestStoreBestScore(t *testing.T) {
	store := openTestStore(t)

	// No runs yet
	best, err := store.BestScore("balanced")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 0 {
		t.Errorf("Expected best score of 0 for empty history, got %d", best)
	}

	store.SaveRun(Run{Difficulty: "balanced", Outcome: OutcomeGameOver, Score: 100})
	store.SaveRun(Run{Difficulty: "balanced", Outcome: OutcomeGameOver, Score: 300})
	store.SaveRun(Run{Difficulty: "balanced", Outcome: OutcomeGameOver, Score: 200})

	best, err = store.BestScore("balanced")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 300 {
		t.Errorf("Expected best score of 300, got %d", best)
	}
}

func TestStoreClearRuns(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(Run{Difficulty: "balanced", Outcome: OutcomeGameOver, Score: 100})
	store.SaveRun(Run{Difficulty: "balanced", Outcome: OutcomeGameOver, Score: 200})
	store.SaveRun(Run{Difficulty: "lenient", Outcome: OutcomeGameOver, Score: 300})

	if err := store.ClearRuns("balanced"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	balanced, _ := store.TopRuns("balanced", 10)
	if len(balanced) != 0 {
		t.Errorf("Expected 0 balanced runs after clear, got %d", len(balanced))
	}
	lenient, _ := store.TopRuns("lenient", 10)
	if len(lenient) != 1 {
		t.Errorf("Lenient runs should not be affected by clearing balanced")
	}

	if err := store.ClearRuns(""); err != nil {
		t.Fatalf("ClearRuns(all) failed: %v", err)
	}
	all, _ := store.TopRuns("", 10)
	if len(all) != 0 {
		t.Errorf("Expected empty history, got %d runs", len(all))
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.Stats("balanced")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if empty.Runs != 0 || empty.EscapeRate() != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("Stats() on empty history = %+v", empty)
	}

	store.SaveRun(Run{Difficulty: "balanced", Outcome: OutcomeEscaped, Score: 300, Lines: 3, Ticks: 600})
	store.SaveRun(Run{Difficulty: "balanced", Outcome: OutcomeGameOver, Score: 100, Lines: 1, Ticks: 200})
	store.SaveRun(Run{Difficulty: "aggressive", Outcome: OutcomeGameOver, Score: 0, Ticks: 60})

	stats, err := store.Stats("balanced")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Runs != 2 || stats.Escapes != 1 || stats.BestScore != 300 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.AvgScore != 200 || stats.AvgTicks != 400 || stats.TotalLines != 4 {
		t.Errorf("Stats() averages = %+v", stats)
	}
	if stats.EscapeRate() != 0.5 {
		t.Errorf("EscapeRate() = %v, expected 0.5", stats.EscapeRate())
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}

	all, err := store.AllStats()
	if err != nil {
		t.Fatalf("AllStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected stats for 2 difficulties, got %d", len(all))
	}
	if all["aggressive"].Runs != 1 || all["balanced"].Escapes != 1 {
		t.Errorf("AllStats() = %+v / %+v", all["aggressive"], all["balanced"])
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
