package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/zipcities/internal/config"
	"github.com/matzehuels/zipcities/pkg/cache"
	"github.com/matzehuels/zipcities/pkg/errors"
	"github.com/matzehuels/zipcities/pkg/observability"
	"github.com/matzehuels/zipcities/pkg/pipeline"
	"github.com/matzehuels/zipcities/pkg/zipcode"
)

const testDataset = `zip,type,primary_city,acceptable_cities,unacceptable_cities,state,county,timezone,area_codes,latitude,longitude,world_region,country,decommissioned,estimated_population,notes
10001,STANDARD,New York,Manhattan,,NY,New York County,America/New_York,212,40.75,-73.99,NA,US,0,100000,
10002,STANDARD,new york,,,NY,New York County,America/New_York,212,40.71,-73.98,NA,US,0,50000,
M5V,STANDARD,Toronto,,,ON,,America/Toronto,416,43.64,-79.39,NA,CA,0,900000,
`

// testCLI returns a CLI logging to a buffer with an isolated cache directory.
func testCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	return New(&buf, log.InfoLevel), &buf
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(c *CLI, args ...string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestRootCommandWritesCityList(t *testing.T) {
	c, logs := testCLI(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "zips.csv", testDataset)
	output := filepath.Join(dir, "cities.json")

	if err := execute(c, "-i", input, "-o", output); err != nil {
		t.Fatalf("execute error: %v", err)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	want := `[["New York","NY",100000],["Manhattan","NY",100000]]` + "\n"
	if string(got) != want {
		t.Errorf("output = %s, want %s", got, want)
	}
	if !strings.Contains(logs.String(), "Built city list") {
		t.Errorf("missing completion log:\n%s", logs.String())
	}
}

func TestVerboseRunReportsRowsDespiteCache(t *testing.T) {
	c, logs := testCLI(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "zips.csv", testDataset)
	output := filepath.Join(dir, "cities.json")

	for i := 0; i < 2; i++ {
		if err := execute(c, "-i", input, "-o", output); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if !strings.Contains(logs.String(), "wrote cached output") {
		t.Fatalf("second quiet run should reuse the cache:\n%s", logs.String())
	}

	logs.Reset()
	c.SetLogLevel(log.DebugLevel)
	if err := execute(c, "-i", input, "-o", output); err != nil {
		t.Fatalf("verbose run: %v", err)
	}

	got := logs.String()
	if strings.Contains(got, "wrote cached output") {
		t.Error("verbose run should not reuse cached output")
	}
	for _, want := range []string{"parsed dataset", "country is not US", "dedupe finished", "Built city list"} {
		if !strings.Contains(got, want) {
			t.Errorf("verbose run missing %q:\n%s", want, got)
		}
	}
}

func TestRootCommandRequiresOutput(t *testing.T) {
	c, _ := testCLI(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "zips.csv", testDataset)

	err := execute(c, "-i", input)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want INVALID_INPUT", err)
	}
	if !strings.Contains(errors.UserMessage(err), "output JSON file path is required") {
		t.Errorf("message = %q", errors.UserMessage(err))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("no files should be created, found %d entries", len(entries))
	}
}

func TestRootCommandMissingInput(t *testing.T) {
	c, _ := testCLI(t)
	dir := t.TempDir()

	err := execute(c, "-i", filepath.Join(dir, "missing.csv"), "-o", filepath.Join(dir, "out.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRootCommandRejectsArgs(t *testing.T) {
	c, _ := testCLI(t)
	if err := execute(c, "extra"); err == nil {
		t.Error("positional arguments should be rejected")
	}
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	c, _ := testCLI(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "zips.csv", testDataset)
	fromFile := filepath.Join(dir, "from-file.json")
	fromFlag := filepath.Join(dir, "from-flag.json")
	cfgPath := writeFile(t, dir, "zipcities.toml",
		"input = '"+input+"'\noutput = '"+fromFile+"'\nno_cache = true\n")

	if err := execute(c, "-c", cfgPath); err != nil {
		t.Fatalf("config run: %v", err)
	}
	if _, err := os.Stat(fromFile); err != nil {
		t.Errorf("config output not written: %v", err)
	}

	if err := execute(c, "-c", cfgPath, "-o", fromFlag); err != nil {
		t.Fatalf("flag run: %v", err)
	}
	if _, err := os.Stat(fromFlag); err != nil {
		t.Errorf("flag should override config output: %v", err)
	}
}

func TestInvalidConfigFile(t *testing.T) {
	c, _ := testCLI(t)
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "zipcities.toml", "output = 'x.json'\n[cache]\nredis_url = 'not a url'\n")

	err := execute(c, "-c", cfgPath)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestCachePathCommand(t *testing.T) {
	c, _ := testCLI(t)

	var out bytes.Buffer
	root := c.RootCommand()
	root.SetArgs([]string{"cache", "path"})
	root.SetOut(&out)
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	want, _ := config.DefaultCacheDir()
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	c, _ := testCLI(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "zips.csv", testDataset)

	if err := execute(c, "-i", input, "-o", filepath.Join(dir, "cities.json")); err != nil {
		t.Fatal(err)
	}

	cacheDir, _ := config.DefaultCacheDir()
	if countFiles(t, cacheDir) == 0 {
		t.Fatal("run should populate the file cache")
	}

	if err := execute(c, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if n := countFiles(t, cacheDir); n != 0 {
		t.Errorf("cache still holds %d files", n)
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	_ = filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return nil
	})
	return n
}

func TestNewCacheSelection(t *testing.T) {
	c, _ := testCLI(t)
	ctx := context.Background()

	cfg := config.Default()
	cfg.NoCache = true
	if _, ok := c.newCache(ctx, cfg).(cache.NullCache); !ok {
		t.Error("NoCache should select NullCache")
	}

	cfg = config.Default()
	cfg.Cache.Dir = t.TempDir()
	if _, ok := c.newCache(ctx, cfg).(*cache.FileCache); !ok {
		t.Error("default should select FileCache")
	}

	cfg.Cache.RedisURL = "redis://127.0.0.1:1/0"
	if _, ok := c.newCache(ctx, cfg).(*cache.FileCache); !ok {
		t.Error("unreachable redis should fall back to FileCache")
	}
}

func TestNewRunnerUsesConfiguredTTL(t *testing.T) {
	c, _ := testCLI(t)
	cfg := config.Default()
	cfg.NoCache = true
	cfg.Cache.TTL = config.Duration(cache.TTLArtifact / 2)

	r := c.newRunner(context.Background(), cfg)
	defer r.Close()
	if r.TTL != cache.TTLArtifact/2 {
		t.Errorf("TTL = %v, want %v", r.TTL, cache.TTLArtifact/2)
	}
}

func TestSummaryRows(t *testing.T) {
	res := &pipeline.Result{
		Parse: zipcode.Stats{Rows: 10, Kept: 7, SkippedCountry: 2, Malformed: 1, Aliases: 4},
		Stats: pipeline.Stats{Candidates: 11, Unique: 9, Replaced: 1},
	}

	got := map[string]string{}
	for _, row := range summaryRows(res) {
		got[row[0]] = row[1]
	}
	want := map[string]string{
		"rows read":        "10",
		"locations kept":   "7",
		"aliases":          "4",
		"skipped: country": "2",
		"malformed":        "1",
		"candidates":       "11",
		"replaced":         "1",
		"unique places":    "9",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}

	if table := summaryTable(res); !strings.Contains(table, "unique places") {
		t.Errorf("table missing rows:\n%s", table)
	}
}

func TestPathFlagCompletion(t *testing.T) {
	c, _ := testCLI(t)
	root := c.RootCommand()

	tests := []struct {
		flag string
		ext  string
	}{
		{"input", "csv"},
		{"output", "json"},
		{"config", "toml"},
	}
	for _, tt := range tests {
		f := root.Flag(tt.flag)
		if f == nil {
			t.Fatalf("flag %q not registered", tt.flag)
		}
		got := f.Annotations[cobra.BashCompFilenameExt]
		if len(got) != 1 || got[0] != tt.ext {
			t.Errorf("--%s completes %v, want [%s]", tt.flag, got, tt.ext)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	c, _ := testCLI(t)

	var out bytes.Buffer
	root := c.RootCommand()
	root.SetArgs([]string{"completion", "bash"})
	root.SetOut(&out)
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "__start_zipcities") {
		t.Errorf("bash script does not register zipcities:\n%.200s", out.String())
	}

	root = c.RootCommand()
	root.SetArgs([]string{"completion", "tcsh"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Error("unsupported shell should be rejected")
	}
}
