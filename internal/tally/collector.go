package tally

import (
	"sync"

	"github.com/inocensus/inocensus/internal/records"
)

// Collector aggregates records into include and call tables
type Collector struct {
	mu        sync.Mutex
	includes  map[string]int
	functions map[string]int
	repos     map[string]*repoKeys
	files     int
}

// repoKeys holds every include and call name seen in one repository
type repoKeys struct {
	includes  map[string]struct{}
	functions map[string]struct{}
}

func newRepoKeys() *repoKeys {
	return &repoKeys{
		includes:  make(map[string]struct{}),
		functions: make(map[string]struct{}),
	}
}

// NewCollector creates a new collector
func NewCollector() *Collector {
	return &Collector{
		includes:  make(map[string]int),
		functions: make(map[string]int),
		repos:     make(map[string]*repoKeys),
	}
}

// Add folds one record into the tables
func (c *Collector) Add(rec *records.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files++
	keys := c.repo(rec.Repo)
	for _, inc := range rec.Includes {
		c.includes[inc]++
		keys.includes[inc] = struct{}{}
	}
	for name, n := range rec.Functions {
		c.functions[name] += n
		keys.functions[name] = struct{}{}
	}
}

func (c *Collector) repo(name string) *repoKeys {
	keys, ok := c.repos[name]
	if !ok {
		keys = newRepoKeys()
		c.repos[name] = keys
	}
	return keys
}

// Merge merges another collector's data into this one
func (c *Collector) Merge(other *Collector) {
	if other == c {
		return
	}
	other.mu.Lock()
	defer other.mu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files += other.files
	for inc, n := range other.includes {
		c.includes[inc] += n
	}
	for name, n := range other.functions {
		c.functions[name] += n
	}
	for repo, otherKeys := range other.repos {
		keys := c.repo(repo)
		for inc := range otherKeys.includes {
			keys.includes[inc] = struct{}{}
		}
		for name := range otherKeys.functions {
			keys.functions[name] = struct{}{}
		}
	}
}

// Totals returns the number of repositories and files added so far
func (c *Collector) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Totals{Repos: len(c.repos), Files: c.files}
}

// Tally returns a snapshot of the aggregated tables
func (c *Collector) Tally() *Tally {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := NewTally()
	for inc, n := range c.includes {
		t.Includes[inc] = n
	}
	for name, n := range c.functions {
		t.Functions[name] = n
	}
	for _, keys := range c.repos {
		for inc := range keys.includes {
			t.RepoIncludes[inc]++
		}
		for name := range keys.functions {
			t.RepoFunctions[name]++
		}
	}
	t.Totals = Totals{Repos: len(c.repos), Files: c.files}
	return t
}

// Reset clears all collected data
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.includes = make(map[string]int)
	c.functions = make(map[string]int)
	c.repos = make(map[string]*repoKeys)
	c.files = 0
}
