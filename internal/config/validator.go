package config

import (
	"fmt"
	"runtime"

	kmserrors "github.com/OldRepublicDevs/kotormodsync/internal/errors"
)

// Validator validates configuration and applies smart defaults.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and fills in any knob still at
// its zero value with a smart default. Returns a *errors.ConfigError
// on a malformed value.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.ModDirectory == "" {
		return kmserrors.NewConfigError("mod_directory", "", fmt.Errorf("mod directory cannot be empty"))
	}
	if cfg.KotorDirectory == "" {
		return kmserrors.NewConfigError("kotor_directory", "", fmt.Errorf("kotor directory cannot be empty"))
	}

	if err := v.validateCache(&cfg.Cache); err != nil {
		return kmserrors.NewConfigError("cache", "", err)
	}

	if cfg.ParallelFileWorkers < 0 {
		return kmserrors.NewConfigError("parallel_file_workers", fmt.Sprint(cfg.ParallelFileWorkers), fmt.Errorf("cannot be negative"))
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateCache(c *Cache) error {
	if c.Dir == "" {
		return fmt.Errorf("cache directory cannot be empty")
	}
	if c.MaxBytes < 0 {
		return fmt.Errorf("max bytes cannot be negative, got %d", c.MaxBytes)
	}
	if c.StaleFileAgeHours < 0 || c.NeverVerifiedMaxAgeHours < 0 ||
		c.VerifiedDowngradeAfterHours < 0 || c.ObservedOnceDowngradeAtHours < 0 {
		return fmt.Errorf("TTL/GC hour values cannot be negative")
	}
	if c.ObservedOnceDowngradeAtHours != 0 && c.VerifiedDowngradeAfterHours != 0 &&
		c.ObservedOnceDowngradeAtHours <= c.VerifiedDowngradeAfterHours {
		return fmt.Errorf("observed_once_downgrade_at_hours (%d) must exceed verified_downgrade_after_hours (%d)",
			c.ObservedOnceDowngradeAtHours, c.VerifiedDowngradeAfterHours)
	}
	return nil
}

// setSmartDefaults fills in zero-valued knobs by deriving
// ParallelFileWorkers from runtime.NumCPU, leaving one core free for
// the caller's own goroutines.
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.ParallelFileWorkers == 0 {
		cfg.ParallelFileWorkers = max(1, runtime.NumCPU()-1)
	}
	if cfg.Cache.MaxBytes == 0 {
		cfg.Cache.MaxBytes = defaultMaxBytes
	}
	if cfg.Cache.StaleFileAgeHours == 0 {
		cfg.Cache.StaleFileAgeHours = defaultStaleFileAgeHours
	}
	if cfg.Cache.NeverVerifiedMaxAgeHours == 0 {
		cfg.Cache.NeverVerifiedMaxAgeHours = defaultNeverVerifiedMaxAgeHours
	}
	if cfg.Cache.VerifiedDowngradeAfterHours == 0 {
		cfg.Cache.VerifiedDowngradeAfterHours = defaultVerifiedDowngradeAfterHours
	}
	if cfg.Cache.ObservedOnceDowngradeAtHours == 0 {
		cfg.Cache.ObservedOnceDowngradeAtHours = defaultObservedOnceDowngradeAt
	}
}

// ValidateConfig is a convenience wrapper for quick validation.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
