package store

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/abelbrown/popcorn/internal/movie"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func entry(id string, community float64, user, runtime int) movie.WatchedEntry {
	return movie.WatchedEntry{
		ID:              id,
		Title:           "Title " + id,
		Year:            "2014",
		CommunityRating: community,
		UserRating:      user,
		RuntimeMinutes:  runtime,
	}
}

func TestOpen(t *testing.T) {
	st := openTestStore(t)

	var name string
	err := st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='watched'").Scan(&name)
	if err != nil {
		t.Fatalf("watched table not created: %v", err)
	}
	if name != "watched" {
		t.Errorf("expected table name 'watched', got %q", name)
	}
}

func TestOpenIsolated(t *testing.T) {
	a := openTestStore(t)
	b := openTestStore(t)

	if err := a.Add(entry("tt1", 8, 9, 120)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := b.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("second store sees %d entries, want 0", len(got))
	}
}

func TestAddAndEntries(t *testing.T) {
	st := openTestStore(t)

	want := []movie.WatchedEntry{
		entry("tt3", 7.5, 8, 100),
		entry("tt1", 8.7, 10, 169),
		entry("tt2", 6.1, 4, 95),
	}
	want[1].PosterURL = "https://example.com/p.jpg"

	for _, e := range want {
		if err := st.Add(e); err != nil {
			t.Fatalf("Add(%s) failed: %v", e.ID, err)
		}
	}

	got, err := st.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAddDuplicate(t *testing.T) {
	st := openTestStore(t)

	if err := st.Add(entry("tt1", 8, 9, 120)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	err := st.Add(entry("tt1", 8, 3, 120))
	if !errors.Is(err, ErrAlreadyWatched) {
		t.Fatalf("expected ErrAlreadyWatched, got %v", err)
	}

	got, err := st.Get("tt1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserRating != 9 {
		t.Errorf("UserRating = %d, want original 9", got.UserRating)
	}
}

func TestAddRejects(t *testing.T) {
	st := openTestStore(t)

	tests := []struct {
		name  string
		entry movie.WatchedEntry
		want  error
	}{
		{"unrated", entry("tt1", 8, 0, 120), movie.ErrUnrated},
		{"negative", entry("tt1", 8, -1, 120), movie.ErrUnrated},
		{"above scale", entry("tt1", 8, 11, 120), movie.ErrInvalidRating},
		{"no id", entry("", 8, 5, 120), movie.ErrIncompleteDetail},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := st.Add(tc.entry); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if got, _ := st.Entries(); len(got) != 0 {
		t.Errorf("rejected adds left %d entries", len(got))
	}
}

func TestAddThenRemoveRestoresList(t *testing.T) {
	st := openTestStore(t)

	st.Add(entry("tt1", 8, 9, 120))
	st.Add(entry("tt2", 6, 7, 100))
	before, _ := st.Entries()

	if err := st.Add(entry("tt3", 5, 5, 90)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	removed, err := st.Remove("tt3")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	after, _ := st.Entries()
	if len(after) != len(before) {
		t.Fatalf("length %d after round trip, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("entry %d changed: %+v vs %+v", i, after[i], before[i])
		}
	}
}

func TestRemoveMissing(t *testing.T) {
	st := openTestStore(t)

	removed, err := st.Remove("nope")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestGet(t *testing.T) {
	st := openTestStore(t)
	st.Add(entry("tt1", 8, 9, 120))

	got, err := st.Get("tt1")
	if err != nil {
		t.Fatalf("Get(tt1) failed: %v", err)
	}
	if got.UserRating != 9 || got.RuntimeMinutes != 120 {
		t.Errorf("Get(tt1) = %+v", got)
	}

	if _, err := st.Get("tt2"); !errors.Is(err, ErrNotWatched) {
		t.Errorf("Get(tt2) err = %v, want ErrNotWatched", err)
	}
}

func TestAggregates(t *testing.T) {
	st := openTestStore(t)
	st.Add(entry("a", 8, 9, 120))
	st.Add(entry("b", 6, 7, 100))

	agg, err := st.Aggregates()
	if err != nil {
		t.Fatalf("Aggregates failed: %v", err)
	}
	if agg.Count != 2 {
		t.Errorf("Count = %d, want 2", agg.Count)
	}
	got := fmt.Sprintf("%.2f/%.2f/%.2f", agg.AvgCommunityRating, agg.AvgUserRating, agg.AvgRuntime)
	if got != "7.00/8.00/110.00" {
		t.Errorf("aggregates = %s, want 7.00/8.00/110.00", got)
	}
}

func TestAggregatesEmpty(t *testing.T) {
	st := openTestStore(t)

	agg, err := st.Aggregates()
	if err != nil {
		t.Fatalf("Aggregates failed: %v", err)
	}
	for _, v := range []float64{agg.AvgCommunityRating, agg.AvgUserRating, agg.AvgRuntime} {
		if math.IsNaN(v) || v != 0 {
			t.Errorf("empty mean = %v, want 0", v)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	st := openTestStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := st.Add(entry(fmt.Sprintf("tt%d", n), 7, 1+n%10, 100)); err != nil {
				errs <- err
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := st.Aggregates(); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent operation failed: %v", err)
	}

	agg, _ := st.Aggregates()
	if agg.Count != 20 {
		t.Errorf("Count = %d, want 20", agg.Count)
	}
}
