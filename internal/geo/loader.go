package geo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// DefaultCacheSize bounds the number of parsed collections kept in memory
// when no explicit size is configured.
const DefaultCacheSize = 16

// Metrics receives loader instrumentation. Implementations must be safe
// for concurrent use; a nil Metrics disables instrumentation.
type Metrics interface {
	DatasetLoaded(path string, features int, elapsed time.Duration)
	CacheHit()
	CacheMiss()
}

// Loader reads GeoJSON files from a data directory and returns feature
// collections normalized to WGS84. Parsed collections are cached per
// resolved path; the source files are static, so entries never expire.
// Callers must treat returned collections as read-only.
type Loader struct {
	dir     string
	cache   *expirable.LRU[string, *geojson.FeatureCollection]
	metrics Metrics
}

// NewLoader creates a loader resolving dataset files relative to dir.
// cacheSize values < 1 fall back to DefaultCacheSize; metrics may be nil.
func NewLoader(dir string, cacheSize int, metrics Metrics) *Loader {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	return &Loader{
		dir:     dir,
		cache:   expirable.NewLRU[string, *geojson.FeatureCollection](cacheSize, nil, 0),
		metrics: metrics,
	}
}

// Dir returns the loader's data directory.
func (l *Loader) Dir() string { return l.dir }

// Load reads, parses, and normalizes the named dataset file. The name is
// resolved relative to the loader's directory unless already absolute.
// Features with null or empty geometries are dropped; an entirely unusable
// file yields ErrNoFeatures.
func (l *Loader) Load(ctx context.Context, name string) (*geojson.FeatureCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := l.Resolve(name)
	if fc, ok := l.cache.Get(path); ok {
		if l.metrics != nil {
			l.metrics.CacheHit()
		}
		return fc, nil
	}
	if l.metrics != nil {
		l.metrics.CacheMiss()
	}

	start := time.Now()
	fc, err := l.read(path)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	l.cache.Add(path, fc)
	if l.metrics != nil {
		l.metrics.DatasetLoaded(path, len(fc.Features), elapsed)
	}
	log.Debug().
		Str("path", path).
		Int("features", len(fc.Features)).
		Dur("elapsed", elapsed).
		Msg("dataset loaded")
	return fc, nil
}

// Invalidate drops the cache entry for the named dataset.
func (l *Loader) Invalidate(name string) {
	l.cache.Remove(l.Resolve(name))
}

// Purge drops every cached collection.
func (l *Loader) Purge() {
	l.cache.Purge()
}

// Resolve maps a dataset file name to its on-disk path.
func (l *Loader) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(l.dir, name)
}

func (l *Loader) read(path string) (*geojson.FeatureCollection, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, ErrBadGeoJSON, err)
	}
	if err := normalize(fc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoFeatures)
	}
	return fc, nil
}

// normalize drops unusable features and reprojects the collection to
// WGS84. The projection comes from the file's legacy crs declaration when
// present, otherwise from the coordinate-magnitude heuristic.
func normalize(fc *geojson.FeatureCollection) error {
	kept := fc.Features[:0]
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil || emptyGeometry(f.Geometry) {
			continue
		}
		kept = append(kept, f)
	}
	fc.Features = kept

	epsg, declared, err := declaredEPSG(fc)
	if err != nil {
		return err
	}
	if !declared {
		epsg = inferEPSG(fc)
	}
	if err := toWGS84(fc, epsg); err != nil {
		return err
	}
	// the collection is geographic now; a stale declaration would lie
	delete(fc.ExtraMembers, "crs")
	return nil
}
