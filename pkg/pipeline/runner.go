package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/zipcities/pkg/cache"
	"github.com/matzehuels/zipcities/pkg/errors"
	pkgio "github.com/matzehuels/zipcities/pkg/io"
	"github.com/matzehuels/zipcities/pkg/observability"
)

// artifactKeyType labels artifact events for cache hooks.
const artifactKeyType = "artifact"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// pipeline results.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of stored artifacts. Zero means cache.TTLArtifact.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → dedupe → export pipeline.
//
// Configuration errors are reported before the input is opened. A missing
// output directory is reported before parsing. No output file is created or
// replaced unless the whole run succeeds.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	output, err := resolveOutput(opts.Output)
	if err != nil {
		return nil, err
	}

	data, err := readInput(opts.Input)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:  uuid.NewString(),
		Output: output,
	}
	result.Stats.InputBytes = len(data)

	key := r.Keyer.ArtifactKey(cache.Hash(data), cache.ArtifactKeyOpts{
		Format:  FormatJSON,
		Version: FormatVersion,
	})

	if !opts.Refresh {
		if cities, artifact, ok := r.cached(ctx, key); ok {
			start := time.Now()
			if err := Export(ctx, artifact, len(cities), output); err != nil {
				return nil, err
			}
			result.Cities = cities
			result.Stats.Unique = len(cities)
			result.Stats.ExportTime = time.Since(start)
			result.CacheHit = true
			r.Logger.Info("wrote cached output", "run", result.RunID, "cities", len(cities), "output", output)
			return result, nil
		}
	}

	// Stage 1: Parse
	start := time.Now()
	parsed, err := Parse(ctx, opts.Logger, opts.Input, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	result.Parse = parsed.Stats
	result.Stats.ParseTime = time.Since(start)

	r.Logger.Info("parsed dataset",
		"rows", parsed.Stats.Rows,
		"kept", parsed.Stats.Kept,
		"skipped", parsed.Stats.Skipped(),
		"aliases", parsed.Stats.Aliases,
		"duration", result.Stats.ParseTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Dedupe
	start = time.Now()
	d := Dedupe(ctx, opts.Logger, parsed)
	result.Stats.Candidates = d.Seen()
	result.Stats.Unique = d.Len()
	result.Stats.Replaced = d.Replaced()
	result.Stats.DedupeTime = time.Since(start)

	r.Logger.Info("deduplicated places",
		"candidates", d.Seen(),
		"unique", d.Len(),
		"duration", result.Stats.DedupeTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Export
	start = time.Now()
	cities, artifact, err := Render(d.Places())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render output")
	}
	if err := Export(ctx, artifact, len(cities), output); err != nil {
		return nil, err
	}
	result.Cities = cities
	result.Stats.ExportTime = time.Since(start)

	r.Logger.Info("wrote output",
		"run", result.RunID,
		"cities", len(cities),
		"output", output,
		"duration", result.Stats.ExportTime)

	r.store(ctx, key, artifact)
	return result, nil
}

// cached returns a verified artifact for key. Unreadable or undecodable
// entries count as misses.
func (r *Runner) cached(ctx context.Context, key string) ([]pkgio.City, []byte, bool) {
	hooks := observability.Cache()

	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "err", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, artifactKeyType)
		return nil, nil, false
	}

	cities, err := pkgio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		r.Logger.Warn("discarding corrupt cache entry", "err", err)
		_ = r.Cache.Delete(ctx, key)
		hooks.OnCacheMiss(ctx, artifactKeyType)
		return nil, nil, false
	}

	hooks.OnCacheHit(ctx, artifactKeyType)
	return cities, data, true
}

// store saves an artifact. Cache failures are logged, never returned.
func (r *Runner) store(ctx context.Context, key string, data []byte) {
	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.TTLArtifact
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache store failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, artifactKeyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// readInput reads the whole dataset, closing the file on every path.
func readInput(path string) ([]byte, error) {
	f, err := os.Open(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input file %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeReadFailed, err, "open input %s", path)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeReadFailed, err, "read input %s", path)
	}
	return data, nil
}

// resolveOutput makes path absolute against the working directory and checks
// that its directory exists.
func resolveOutput(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve output %s", path)
	}
	dir := filepath.Dir(abs)
	info, err := os.Stat(dir)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, err, "output directory %s", dir)
	}
	if !info.IsDir() {
		return "", errors.New(errors.ErrCodeWriteFailed, "output directory %s is not a directory", dir)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() {
		return "", errors.New(errors.ErrCodeInvalidPath, "output %s is a directory", abs)
	}
	return abs, nil
}

// String summarizes a result on one line.
func (r *Result) String() string {
	source := "computed"
	if r.CacheHit {
		source = "cached"
	}
	return fmt.Sprintf("%d cities → %s (%s)", len(r.Cities), r.Output, source)
}
