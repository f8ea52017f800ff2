package tally

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/inocensus/inocensus/internal/records"
)

func rec(repo, path string, includes []string, functions map[string]int) *records.Record {
	return &records.Record{Repo: repo, Ref: "main", Path: path, Includes: includes, Functions: functions}
}

var fixture = []*records.Record{
	rec("a/one", "x.ino", []string{"Servo.h", "Wire.h"}, map[string]int{"delay": 3, "Serial.print": 1}),
	rec("a/one", "y.ino", []string{"Wire.h"}, map[string]int{"delay": 1}),
	rec("b/two", "z.ino", []string{"Wire.h"}, map[string]int{"Serial.print": 2}),
}

func TestCollector_Tally(t *testing.T) {
	c := NewCollector()
	for _, r := range fixture {
		c.Add(r)
	}

	got := c.Tally()
	want := &Tally{
		Version:       "1.0",
		Includes:      map[string]int{"Servo.h": 1, "Wire.h": 3},
		Functions:     map[string]int{"delay": 4, "Serial.print": 3},
		RepoIncludes:  map[string]int{"Servo.h": 1, "Wire.h": 2},
		RepoFunctions: map[string]int{"delay": 1, "Serial.print": 2},
		Totals:        Totals{Repos: 2, Files: 3},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Tally{}, "Timestamp")); diff != "" {
		t.Errorf("Tally() mismatch (-want +got):\n%s", diff)
	}
}

func TestCollector_MergeMatchesSequential(t *testing.T) {
	whole := NewCollector()
	for _, r := range fixture {
		whole.Add(r)
	}

	left, right := NewCollector(), NewCollector()
	left.Add(fixture[0])
	right.Add(fixture[1])
	right.Add(fixture[2])
	left.Merge(right)
	left.Merge(left)

	opt := cmpopts.IgnoreFields(Tally{}, "Timestamp")
	if diff := cmp.Diff(whole.Tally(), left.Tally(), opt); diff != "" {
		t.Errorf("merged tally differs (-sequential +merged):\n%s", diff)
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, r := range fixture {
				c.Add(r)
			}
		}()
	}
	wg.Wait()

	tally := c.Tally()
	if tally.Includes["Wire.h"] != 150 {
		t.Errorf("Wire.h count = %d, want 150", tally.Includes["Wire.h"])
	}
	if tally.RepoIncludes["Wire.h"] != 2 {
		t.Errorf("Wire.h repo count = %d, want 2", tally.RepoIncludes["Wire.h"])
	}
	if got := c.Totals(); got != (Totals{Repos: 2, Files: 150}) {
		t.Errorf("Totals() = %+v", got)
	}

	c.Reset()
	if got := c.Totals(); got != (Totals{}) {
		t.Errorf("Totals() after Reset() = %+v", got)
	}
}

func TestSorted(t *testing.T) {
	got := Sorted(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1})
	want := []Entry{{"c", 5}, {"a", 2}, {"b", 2}, {"d", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sorted() mismatch (-want +got):\n%s", diff)
	}
}

func TestTally_Table(t *testing.T) {
	tally := NewTally()
	tally.RepoFunctions["f"] = 1
	for _, l := range Listings() {
		if tally.Table(l) == nil {
			t.Errorf("Table(%q) = nil", l)
		}
	}
	if tally.Table(ListingRepoFunctions)["f"] != 1 {
		t.Error("Table(repo_functions) returned the wrong map")
	}
	if tally.Table("unknown") != nil {
		t.Error("Table(unknown) should be nil")
	}
}

func TestStore_SaveLoad(t *testing.T) {
	c := NewCollector()
	for _, r := range fixture {
		c.Add(r)
	}
	want := c.Tally()

	store := NewStore(filepath.Join(t.TempDir(), "out", "tally.json"))
	if store.Exists() {
		t.Fatal("Exists() before Save()")
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApproxTime(0)); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}
