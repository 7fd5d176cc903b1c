package validator

import (
	"sync"
	"time"

	"github.com/OldRepublicDevs/kotormodsync/internal/model"
)

// defaultResultTTL is the validation result cache's fixed lifetime
// (spec §4.6): "cached keyed by (component id, mod archive directory,
// instruction count), 5-minute TTL."
const defaultResultTTL = 5 * time.Minute

type resultKey struct {
	componentID      model.ID
	modArchiveDir    string
	instructionCount int
}

type cachedResult struct {
	result   Result
	cachedAt time.Time
}

// resultCache is a lock-free TTL cache for Validate outcomes, backed
// by a sync.Map with expiry checked lazily on Get rather than a
// background sweep, since validation results are requested at
// human-interactive rates, not hot-path rates.
type resultCache struct {
	entries sync.Map // map[resultKey]cachedResult
	ttl     time.Duration
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{ttl: ttl}
}

func (c *resultCache) get(key resultKey) (Result, bool) {
	val, ok := c.entries.Load(key)
	if !ok {
		return Result{}, false
	}
	entry := val.(cachedResult)
	if time.Since(entry.cachedAt) > c.ttl {
		c.entries.Delete(key)
		return Result{}, false
	}
	return entry.result, true
}

func (c *resultCache) put(key resultKey, result Result) {
	c.entries.Store(key, cachedResult{result: result, cachedAt: time.Now()})
}

// invalidate drops every cached result for a component, used when its
// instructions are rewritten by an external repair (e.g. generator
// regeneration) outside a Validate call.
func (c *resultCache) invalidate(componentID model.ID) {
	c.entries.Range(func(k, _ interface{}) bool {
		if k.(resultKey).componentID == componentID {
			c.entries.Delete(k)
		}
		return true
	})
}
