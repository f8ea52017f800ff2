package tally

import (
	"sort"
	"time"
)

// Tally is the aggregated view over a set of records
type Tally struct {
	Version       string         `json:"version"`
	Timestamp     time.Time      `json:"timestamp"`
	Includes      map[string]int `json:"includes"`       // header -> files including it
	Functions     map[string]int `json:"functions"`      // call name -> total occurrences
	RepoIncludes  map[string]int `json:"repo_includes"`  // header -> repositories including it
	RepoFunctions map[string]int `json:"repo_functions"` // call name -> repositories calling it
	Totals        Totals         `json:"totals"`
}

// Totals counts what went into a Tally
type Totals struct {
	Repos int `json:"repos"`
	Files int `json:"files"`
}

// Entry is one key of a listing with its count
type Entry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// NewTally creates an empty Tally
func NewTally() *Tally {
	return &Tally{
		Version:       "1.0",
		Timestamp:     time.Now(),
		Includes:      make(map[string]int),
		Functions:     make(map[string]int),
		RepoIncludes:  make(map[string]int),
		RepoFunctions: make(map[string]int),
	}
}

// Listing names one of the four tables of a Tally
type Listing string

const (
	ListingIncludes      Listing = "includes"
	ListingFunctions     Listing = "functions"
	ListingRepoIncludes  Listing = "repo_includes"
	ListingRepoFunctions Listing = "repo_functions"
)

// Listings returns all listings in output order
func Listings() []Listing {
	return []Listing{ListingIncludes, ListingFunctions, ListingRepoIncludes, ListingRepoFunctions}
}

// Table returns the counts behind a listing, or nil for an unknown name
func (t *Tally) Table(l Listing) map[string]int {
	switch l {
	case ListingIncludes:
		return t.Includes
	case ListingFunctions:
		return t.Functions
	case ListingRepoIncludes:
		return t.RepoIncludes
	case ListingRepoFunctions:
		return t.RepoFunctions
	default:
		return nil
	}
}

// Sorted returns the entries of a table by count descending, then key ascending
func Sorted(table map[string]int) []Entry {
	entries := make([]Entry, 0, len(table))
	for k, v := range table {
		entries = append(entries, Entry{Key: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}
