// Package config loads the planner's runtime configuration: where mod
// archives and the KOTOR install live, and the resource cache's
// quota, TTL, garbage-collection and watch knobs (spec §4.7). Only
// Cache.Dir is passed on to internal/cache: its GC uses fixed
// thresholds of its own, EvictToQuota takes its byte budget as an
// argument, and nothing reads MaxBytes, the *Hours fields or
// WatchEnabled.
package config

import (
	"os"
	"path/filepath"
)

// Cache holds the resource cache's quota/TTL/GC knobs, expressed in
// the same units spec §4.7 documents them in (bytes, hours).
type Cache struct {
	Dir                          string
	MaxBytes                     int64
	StaleFileAgeHours            int
	NeverVerifiedMaxAgeHours     int
	VerifiedDowngradeAfterHours  int
	ObservedOnceDowngradeAtHours int
	WatchEnabled                 bool
}

// Config is the planner's full runtime configuration.
type Config struct {
	Version int

	ModDirectory   string
	KotorDirectory string

	Cache Cache

	ParallelFileWorkers int // 0 = auto-detect (NumCPU-1, at least 1)
	Verbose             bool
}

const (
	defaultMaxBytes                    = 20 * 1024 * 1024 * 1024 // 20GB
	defaultStaleFileAgeHours           = 90 * 24
	defaultNeverVerifiedMaxAgeHours    = 365 * 24
	defaultVerifiedDowngradeAfterHours = 30 * 24
	defaultObservedOnceDowngradeAt     = 60 * 24
)

// Load resolves configuration in layers: built-in defaults, then an
// optional .kotormodsync.kdl overlay found in rootDir (falling back to
// the working directory). CLI-flag overrides are layered in
// afterward by the caller via ApplyOverrides.
func Load(rootDir string) (*Config, error) {
	searchDir := rootDir
	if searchDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			searchDir = cwd
		} else {
			searchDir = "."
		}
	}

	cfg := defaultConfig(searchDir)

	overlay, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}
	if overlay != nil {
		cfg = mergeConfigs(cfg, overlay)
	}

	return cfg, nil
}

func defaultConfig(rootDir string) *Config {
	return &Config{
		Version:        1,
		ModDirectory:   filepath.Join(rootDir, "mods"),
		KotorDirectory: rootDir,
		Cache: Cache{
			Dir:                          filepath.Join(rootDir, ".kotormodsync-cache"),
			MaxBytes:                     defaultMaxBytes,
			StaleFileAgeHours:            defaultStaleFileAgeHours,
			NeverVerifiedMaxAgeHours:     defaultNeverVerifiedMaxAgeHours,
			VerifiedDowngradeAfterHours:  defaultVerifiedDowngradeAfterHours,
			ObservedOnceDowngradeAtHours: defaultObservedOnceDowngradeAt,
			WatchEnabled:                 false,
		},
		ParallelFileWorkers: 0,
		Verbose:             false,
	}
}

// mergeConfigs layers overlay on top of base: any field the overlay
// left at its zero value falls back to base.
func mergeConfigs(base, overlay *Config) *Config {
	merged := *base

	if overlay.ModDirectory != "" {
		merged.ModDirectory = overlay.ModDirectory
	}
	if overlay.KotorDirectory != "" {
		merged.KotorDirectory = overlay.KotorDirectory
	}
	if overlay.Cache.Dir != "" {
		merged.Cache.Dir = overlay.Cache.Dir
	}
	if overlay.Cache.MaxBytes != 0 {
		merged.Cache.MaxBytes = overlay.Cache.MaxBytes
	}
	if overlay.Cache.StaleFileAgeHours != 0 {
		merged.Cache.StaleFileAgeHours = overlay.Cache.StaleFileAgeHours
	}
	if overlay.Cache.NeverVerifiedMaxAgeHours != 0 {
		merged.Cache.NeverVerifiedMaxAgeHours = overlay.Cache.NeverVerifiedMaxAgeHours
	}
	if overlay.Cache.VerifiedDowngradeAfterHours != 0 {
		merged.Cache.VerifiedDowngradeAfterHours = overlay.Cache.VerifiedDowngradeAfterHours
	}
	if overlay.Cache.ObservedOnceDowngradeAtHours != 0 {
		merged.Cache.ObservedOnceDowngradeAtHours = overlay.Cache.ObservedOnceDowngradeAtHours
	}
	merged.Cache.WatchEnabled = merged.Cache.WatchEnabled || overlay.Cache.WatchEnabled
	if overlay.ParallelFileWorkers != 0 {
		merged.ParallelFileWorkers = overlay.ParallelFileWorkers
	}
	merged.Verbose = merged.Verbose || overlay.Verbose

	return &merged
}

// Overrides carries the CLI-flag layer applied last, after defaults
// and the KDL overlay.
type Overrides struct {
	ModDirectory   string
	KotorDirectory string
	CacheDir       string
	MaxBytes       int64
	Verbose        bool
}

// ApplyOverrides mutates cfg in place with any non-zero fields in o.
func ApplyOverrides(cfg *Config, o Overrides) {
	if o.ModDirectory != "" {
		cfg.ModDirectory = o.ModDirectory
	}
	if o.KotorDirectory != "" {
		cfg.KotorDirectory = o.KotorDirectory
	}
	if o.CacheDir != "" {
		cfg.Cache.Dir = o.CacheDir
	}
	if o.MaxBytes != 0 {
		cfg.Cache.MaxBytes = o.MaxBytes
	}
	if o.Verbose {
		cfg.Verbose = true
	}
}
