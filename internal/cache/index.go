// Package cache implements the Resource Cache & Index (spec §4.7): a
// cross-process, disk-persistent pair of indices (download cache,
// resource metadata index) with file locking, trust elevation,
// garbage collection, and LRU quota eviction.
//
// Each index is a sharded map with one RWMutex per shard. Reads do not
// expire entries and there is no background sweep: stale records are
// only deleted or downgraded when GC is called explicitly. Disk
// persistence and cross-process locking sit underneath that in-memory
// shape so two CLI invocations never stomp on each other's writes.
package cache

import (
	"log"
	"os"
	"time"

	"github.com/OldRepublicDevs/kotormodsync/internal/model"
)

// Index holds both persisted maps described in spec §4.7 as
// in-process, shard-mutex-guarded state.
type Index struct {
	cacheDir string

	downloads               *shardedMap[model.DownloadCacheEntry]
	byMetadataHash           *shardedMap[model.ResourceMetadata]
	byContentId              *shardedMap[model.ResourceMetadata]
	metadataHashToContentId *shardedMap[string]
}

// Open creates cacheDir if needed, takes the cross-process lock, loads
// both persisted files, and releases the lock. Returns
// *errors.CacheLockedError if another process currently holds it.
func Open(cacheDir string) (*Index, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, err
	}

	idx := &Index{
		cacheDir:                cacheDir,
		downloads:               newShardedMap[model.DownloadCacheEntry](),
		byMetadataHash:          newShardedMap[model.ResourceMetadata](),
		byContentId:             newShardedMap[model.ResourceMetadata](),
		metadataHashToContentId: newShardedMap[string](),
	}

	lock, err := acquireLock(cacheDir)
	if err != nil {
		return nil, err
	}
	defer releaseLock(lock)

	idx.load()
	return idx, nil
}

// Save persists both indices under the cross-process lock (spec §4.7:
// "the lock covers both load and save").
func (idx *Index) Save() error {
	lock, err := acquireLock(idx.cacheDir)
	if err != nil {
		return err
	}
	defer releaseLock(lock)
	return idx.save()
}

// GetDownloadEntry looks up a URL's resolved download record.
func (idx *Index) GetDownloadEntry(url string) (model.DownloadCacheEntry, bool) {
	return idx.downloads.Get(url)
}

// PutDownloadEntry records a URL's resolved local filename.
func (idx *Index) PutDownloadEntry(entry model.DownloadCacheEntry) {
	idx.downloads.Set(entry.URL, entry)
}

// GetByMetadataHash looks up a resource by its metadata hash.
func (idx *Index) GetByMetadataHash(hash string) (model.ResourceMetadata, bool) {
	return idx.byMetadataHash.Get(hash)
}

// GetByContentId looks up a resource by its content identity.
func (idx *Index) GetByContentId(contentID string) (model.ResourceMetadata, bool) {
	return idx.byContentId.Get(contentID)
}

// Observe records a new metadata observation under the trust-elevation
// rules of spec §4.7 and returns the stored (possibly merged) record.
func (idx *Index) Observe(observed model.ResourceMetadata) model.ResourceMetadata {
	now := time.Now()
	existing, ok := idx.byMetadataHash.Get(observed.MetadataHash)

	if !ok {
		if observed.FirstSeen.IsZero() {
			observed.FirstSeen = now
		}
		observed.LastVerified = now
		observed.Trust = model.TrustObservedOnce
		idx.store(observed)
		return observed
	}

	if existing.ContentId == observed.ContentId {
		merged := existing
		merged.Trust = existing.Trust.Upgrade()
		merged.LastVerified = now
		if observed.ContentHashSHA256 != "" {
			merged.ContentHashSHA256 = observed.ContentHashSHA256
			merged.PieceLength = observed.PieceLength
			merged.PieceHashesSHA256 = observed.PieceHashesSHA256
		}
		if observed.FileSize > 0 {
			merged.FileSize = observed.FileSize
		}
		for name := range observed.Filenames {
			merged.AddFilename(name)
		}
		idx.store(merged)
		return merged
	}

	if existing.Trust == model.TrustVerified {
		log.Printf("cache: conflicting content id for metadata hash %s, keeping verified record", observed.MetadataHash)
		return existing
	}

	log.Printf("cache: conflicting content id for metadata hash %s, replacing and resetting trust", observed.MetadataHash)
	observed.Trust = model.TrustObservedOnce
	observed.LastVerified = now
	idx.store(observed)
	return observed
}

func (idx *Index) store(m model.ResourceMetadata) {
	idx.byMetadataHash.Set(m.MetadataHash, m)
	if m.ContentId != "" {
		idx.metadataHashToContentId.Set(m.MetadataHash, m.ContentId)
		idx.byContentId.Set(m.ContentId, m)
	}
}

// Stats summarizes the index, backing the `cache stats` CLI command.
type Stats struct {
	DownloadEntries int
	ResourceEntries int
	TotalBytes      int64
	Trusted         int
}

func (idx *Index) Stats() Stats {
	s := Stats{DownloadEntries: idx.downloads.Len(), ResourceEntries: idx.byMetadataHash.Len()}
	idx.byMetadataHash.Range(func(_ string, m model.ResourceMetadata) bool {
		s.TotalBytes += m.FileSize
		if m.Trust == model.TrustVerified {
			s.Trusted++
		}
		return true
	})
	return s
}

// Clear removes entries, optionally restricted to a single provider
// key (spec §6 `cache clear [--provider P]`). provider == "" clears
// everything.
func (idx *Index) Clear(provider string) {
	if provider == "" {
		idx.downloads.Clear()
		idx.byMetadataHash.Clear()
		idx.byContentId.Clear()
		idx.metadataHashToContentId.Clear()
		return
	}

	var toDrop []string
	idx.byMetadataHash.Range(func(hash string, m model.ResourceMetadata) bool {
		if recordProvider(m) == provider {
			toDrop = append(toDrop, hash)
		}
		return true
	})
	for _, hash := range toDrop {
		m, ok := idx.byMetadataHash.Get(hash)
		if !ok {
			continue
		}
		idx.byMetadataHash.Delete(hash)
		if m.ContentId != "" {
			idx.byContentId.Delete(m.ContentId)
		}
		idx.metadataHashToContentId.Delete(hash)
	}
}

func recordProvider(m model.ResourceMetadata) string {
	if m.HandlerMetadata == nil {
		return ""
	}
	if p, ok := m.HandlerMetadata["provider"].(string); ok {
		return p
	}
	return ""
}
