package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/OldRepublicDevs/kotormodsync/internal/cache"
	"github.com/OldRepublicDevs/kotormodsync/internal/config"
	"github.com/OldRepublicDevs/kotormodsync/internal/debug"
	kmserrors "github.com/OldRepublicDevs/kotormodsync/internal/errors"
	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/internal/version"

	"github.com/urfave/cli/v2"
)

// Exit codes (spec §6).
const (
	exitSuccess          = 0
	exitValidationIssues = 2
	exitCacheLocked      = 3
	exitMalformedState   = 4
)

// appDataDir resolves the root the resource cache's persisted files
// live under: KOTORMODSYNC_APPDATA_DIR if set (so tests don't touch a
// real user profile), else the OS's per-user config directory.
func appDataDir() (string, error) {
	if dir := os.Getenv("KOTORMODSYNC_APPDATA_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve app-data directory: %w", err)
	}
	return filepath.Join(base, "KOTORModSync"), nil
}

// loadConfig loads the layered configuration (defaults, then an
// optional .kotormodsync.kdl overlay, then CLI flag overrides) and
// pins the cache directory to the app-data layout spec §6 documents,
// unless the caller explicitly overrode it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	cacheDirOverride := c.String("cache-dir")
	if cacheDirOverride == "" {
		appData, err := appDataDir()
		if err != nil {
			return nil, err
		}
		cacheDirOverride = appData
	}

	config.ApplyOverrides(cfg, config.Overrides{
		ModDirectory:   c.String("mod-dir"),
		KotorDirectory: c.String("kotor-dir"),
		CacheDir:       cacheDirOverride,
		Verbose:        c.Bool("verbose"),
	})

	validator := config.NewValidator()
	if err := validator.ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}

	if cfg.Verbose {
		debug.EnableDebug = "true"
		debug.SetDebugOutput(os.Stderr)
	}

	return cfg, nil
}

func openCache(cfg *config.Config) (*cache.Index, error) {
	idx, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func main() {
	app := &cli.App{
		Name:    "kotormodsync-planner",
		Usage:   "Plans and executes KOTOR mod installation instructions",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "root",
				Usage: "Project root to search for .kotormodsync.kdl (default: working directory)",
			},
			&cli.StringFlag{
				Name:  "mod-dir",
				Usage: "Override the configured mod archive directory",
			},
			&cli.StringFlag{
				Name:  "kotor-dir",
				Usage: "Override the configured KOTOR installation directory",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Override the resource cache directory (default: the app-data KOTORModSync directory)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose debug output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "cache",
				Usage: "Inspect and maintain the resource cache",
				Subcommands: []*cli.Command{
					{
						Name:   "stats",
						Usage:  "Print resource cache statistics",
						Action: cacheStatsCommand,
					},
					{
						Name:  "clear",
						Usage: "Clear cached resource metadata",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "provider",
								Usage: "Restrict the clear to one provider's entries",
							},
						},
						Action: cacheClearCommand,
					},
					{
						Name:   "gc",
						Usage:  "Run garbage collection (stale/never-verified deletion, trust downgrade)",
						Action: cacheGCCommand,
					},
					{
						Name:  "quota",
						Usage: "Evict least-recently-verified entries down to a byte budget",
						Flags: []cli.Flag{
							&cli.Int64Flag{
								Name:     "max-bytes",
								Usage:    "Target byte budget to evict down to",
								Required: true,
							},
						},
						Action: cacheQuotaCommand,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to the exit codes spec §6 documents. For
// the malformed-state case it also prints any debug.CatastrophicError
// messages recorded so far, since those are the likely root cause of a
// config/IO failure surfaced this late.
func exitCodeFor(err error) int {
	fmt.Fprintln(os.Stderr, err)

	var cacheLocked *kmserrors.CacheLockedError
	if errors.As(err, &cacheLocked) {
		return exitCacheLocked
	}

	for _, msg := range debug.RecentCatastrophic() {
		fmt.Fprintln(os.Stderr, msg)
	}
	return exitMalformedState
}

func cacheStatsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	idx, err := openCache(cfg)
	if err != nil {
		return err
	}

	stats := idx.Stats()
	fmt.Printf("download entries:  %d\n", stats.DownloadEntries)
	fmt.Printf("resource entries:  %d\n", stats.ResourceEntries)
	fmt.Printf("verified entries:  %d\n", stats.Trusted)
	fmt.Printf("total bytes:       %d\n", stats.TotalBytes)
	return nil
}

func cacheClearCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	idx, err := openCache(cfg)
	if err != nil {
		return err
	}

	idx.Clear(c.String("provider"))
	if err := idx.Save(); err != nil {
		return err
	}

	debug.LogCache(model.SeverityInfo, "cleared (provider=%q)", c.String("provider"))
	fmt.Println("cache cleared")
	return nil
}

func cacheGCCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	idx, err := openCache(cfg)
	if err != nil {
		return err
	}

	result := idx.GC(time.Now(), func(name string) bool {
		_, statErr := os.Stat(filepath.Join(cfg.ModDirectory, name))
		return statErr == nil
	})
	if err := idx.Save(); err != nil {
		return err
	}

	debug.LogCache(model.SeverityInfo, "gc: deleted=%d downgraded=%d", result.Deleted, result.Downgraded)
	fmt.Printf("deleted %d entries, downgraded %d entries\n", result.Deleted, result.Downgraded)
	return nil
}

func cacheQuotaCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	idx, err := openCache(cfg)
	if err != nil {
		return err
	}

	maxBytes := c.Int64("max-bytes")
	evicted, freed := idx.EvictToQuota(maxBytes, nil)
	if err := idx.Save(); err != nil {
		return err
	}

	debug.LogCache(model.SeverityInfo, "quota: evicted=%d freedBytes=%d target=%d", evicted, freed, maxBytes)
	fmt.Printf("evicted %d entries, freed %d bytes\n", evicted, freed)
	return nil
}
