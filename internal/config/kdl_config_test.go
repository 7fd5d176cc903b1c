package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Empty(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Empty(t, cfg.ModDirectory)
	assert.Equal(t, int64(0), cfg.Cache.MaxBytes)
}

func TestParseKDL_TopLevelDirectories(t *testing.T) {
	kdlContent := `
mod_directory "my-mods"
kotor_directory "C:\\Games\\KOTOR"
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, "my-mods", cfg.ModDirectory)
	assert.Equal(t, `C:\Games\KOTOR`, cfg.KotorDirectory)
}

func TestParseKDL_CacheBlock(t *testing.T) {
	kdlContent := `
cache {
    dir "cache-dir"
    max_bytes "5GB"
    stale_file_age_hours 48
    never_verified_max_age_hours 1000
    verified_downgrade_after_hours 20
    observed_once_downgrade_at_hours 40
    watch true
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, "cache-dir", cfg.Cache.Dir)
	assert.Equal(t, int64(5*1024*1024*1024), cfg.Cache.MaxBytes)
	assert.Equal(t, 48, cfg.Cache.StaleFileAgeHours)
	assert.Equal(t, 1000, cfg.Cache.NeverVerifiedMaxAgeHours)
	assert.Equal(t, 20, cfg.Cache.VerifiedDowngradeAfterHours)
	assert.Equal(t, 40, cfg.Cache.ObservedOnceDowngradeAtHours)
	assert.True(t, cfg.Cache.WatchEnabled)
}

func TestParseKDL_MaxBytesAsInteger(t *testing.T) {
	kdlContent := `
cache {
    max_bytes 12345
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), cfg.Cache.MaxBytes)
}

func TestParseKDL_ParallelWorkersAndVerbose(t *testing.T) {
	kdlContent := `
parallel_file_workers 8
verbose true
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.ParallelFileWorkers)
	assert.True(t, cfg.Verbose)
}

func TestParseKDL_RejectsMalformedDocument(t *testing.T) {
	_, err := parseKDL("cache { dir \"unterminated")
	assert.Error(t, err)
}
