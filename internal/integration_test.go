package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/inocensus/inocensus/internal/cli"
	"github.com/inocensus/inocensus/internal/database"
	"github.com/inocensus/inocensus/internal/fetch"
	"github.com/inocensus/inocensus/internal/query"
	"github.com/inocensus/inocensus/internal/tally"
	"github.com/inocensus/inocensus/internal/testutil"
)

const sketchDir = "../testdata/sketches"

// sketchRefs maps each sample sketch to a file reference whose repository is
// its top-level directory, the same convention Scan uses
func sketchRefs(t *testing.T) []query.FileRef {
	t.Helper()
	var refs []query.FileRef
	err := filepath.Walk(sketchDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ".ino" {
			return err
		}
		rel, _ := filepath.Rel(sketchDir, path)
		rel = filepath.ToSlash(rel)
		refs = append(refs, query.FileRef{
			Repo: "owner/" + strings.SplitN(rel, "/", 2)[0],
			Ref:  "refs/heads/main",
			Path: rel,
		})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return refs
}

// serveSketches serves testdata/sketches the way the raw content host lays
// files out: /<owner>/<repo>/<branch>/<path>
func serveSketches(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 4)
		if len(parts) != 4 || parts[2] != "main" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(sketchDir, filepath.FromSlash(parts[3])))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func testConfig(t *testing.T) *cli.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := cli.DefaultConfig()
	cfg.FileList = filepath.Join(dir, "ino.json")
	cfg.RecordsFile = filepath.Join(dir, "ino_content.json")
	cfg.ProgressFile = filepath.Join(dir, "ino.done")
	cfg.OutputDir = filepath.Join(dir, "listings")
	cfg.Parallelism = 2
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// TestScanSampleSketches mines the bundled sketches from disk and checks
// every listing
func TestScanSampleSketches(t *testing.T) {
	cfg := testConfig(t)

	code, err := cli.Scan(context.Background(), cfg, sketchDir)
	if err != nil || code != 0 {
		t.Fatalf("Scan() = %d, %v", code, err)
	}

	want := map[string]string{
		"includes.lst": "Wire.h: 2\nAdafruit_BMP280.h: 1\nconfig.h: 1\n",
		"functions.lst": strings.Join([]string{
			"delay: 4",
			"Serial.println: 2",
			"digitalWrite: 2",
			"Serial.begin: 1",
			"Serial.print: 1",
			"Wire.endTransmission: 1",
			"bmp.begin: 1",
			"bmp.readTemperature: 1",
			"millis: 1",
			"pinMode: 1",
			"poll: 1",
			"s.last.update: 1",
			"s.read: 1",
		}, "\n") + "\n",
		"repo_includes.lst": "Adafruit_BMP280.h: 1\nWire.h: 1\nconfig.h: 1\n",
	}
	for name, content := range want {
		if diff := cmp.Diff(content, readFile(t, filepath.Join(cfg.OutputDir, name))); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	repoFunctions := readFile(t, filepath.Join(cfg.OutputDir, "repo_functions.lst"))
	if !strings.HasPrefix(repoFunctions, "delay: 2\n") {
		t.Errorf("repo_functions.lst should start with delay: 2, got:\n%s", repoFunctions)
	}
}

// TestEndToEndWithTestcontainers runs fetch with the PostgreSQL sink against
// a local content server, then analyses both the records file and the
// database and expects the same tally
func TestEndToEndWithTestcontainers(t *testing.T) {
	connString := testutil.SetupPostgresContainer(t)
	ctx := context.Background()

	cfg := testConfig(t)
	cfg.DatabaseURL = connString
	cfg.BaseURL = serveSketches(t)

	refs := sketchRefs(t)
	if len(refs) != 3 {
		t.Fatalf("expected 3 sample sketches, found %d", len(refs))
	}
	// A missing file and a repeated entry, as the public dataset has both
	refs = append(refs, query.FileRef{Repo: "owner/blink", Ref: "refs/heads/main", Path: "missing.ino"}, refs[0])
	if err := query.SaveList(cfg.FileList, refs); err != nil {
		t.Fatal(err)
	}

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	defer pool.Close()
	if err := pool.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	fetcher, err := fetch.New(fetch.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   10 * time.Second,
		MaxBytes:  cfg.MaxBytes,
		CacheSize: cfg.CacheSize,
		RetryWait: time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	code, err := cli.Fetch(ctx, cfg, fetcher, cli.Sinks{Store: pool})
	if err != nil || code != 0 {
		t.Fatalf("Fetch() = %d, %v", code, err)
	}
	if n, err := pool.CountRecords(ctx); err != nil || n != 3 {
		t.Fatalf("CountRecords() = %d, %v; want 3", n, err)
	}

	// The records file still holds the repeated entry; dedupe before comparing
	if _, err := cli.Dedupe(cfg, ""); err != nil {
		t.Fatal(err)
	}
	fileCfg := *cfg
	fileCfg.OutputDir = filepath.Join(t.TempDir(), "from-file")
	if _, err := cli.Analyse(ctx, &fileCfg, cli.FileRecords{Path: cli.DefaultDedupedPath(cfg.RecordsFile)}); err != nil {
		t.Fatal(err)
	}

	dbCfg := *cfg
	dbCfg.OutputDir = filepath.Join(t.TempDir(), "from-db")
	if _, err := cli.Analyse(ctx, &dbCfg, pool); err != nil {
		t.Fatal(err)
	}

	fromFile, err := tally.NewStore(filepath.Join(fileCfg.OutputDir, cli.TallyFileName)).Load()
	if err != nil {
		t.Fatal(err)
	}
	fromDB, err := tally.NewStore(filepath.Join(dbCfg.OutputDir, cli.TallyFileName)).Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(fromFile, fromDB, cmpopts.IgnoreFields(tally.Tally{}, "Timestamp")); diff != "" {
		t.Errorf("tally from file and database differ (-file +db):\n%s", diff)
	}
	if fromDB.Functions["delay"] != 4 || fromDB.Totals != (tally.Totals{Repos: 2, Files: 3}) {
		t.Errorf("unexpected tally: functions %v totals %+v", fromDB.Functions, fromDB.Totals)
	}
}
