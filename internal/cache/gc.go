package cache

import (
	"log"
	"sort"
	"time"

	"github.com/OldRepublicDevs/kotormodsync/internal/model"
)

const (
	staleFileAge            = 90 * 24 * time.Hour
	neverVerifiedMaxAge     = 365 * 24 * time.Hour
	verifiedDowngradeAfter  = 30 * 24 * time.Hour
	observedOnceDowngradeAt = 60 * 24 * time.Hour
)

// GCResult summarizes one garbage-collection pass.
type GCResult struct {
	Deleted    int
	Downgraded int
}

// GC applies the three rules of spec §4.7 in order: drop stale
// entries whose backing file is gone, drop never-verified entries
// older than a year, and downgrade trust on re-verification lapse.
// fileExists is consulted per recorded filename; pass nil to always
// treat files as present (a no-op for rule (i)).
func (idx *Index) GC(now time.Time, fileExists func(filename string) bool) GCResult {
	var result GCResult
	var toDelete []string

	idx.byMetadataHash.Range(func(hash string, m model.ResourceMetadata) bool {
		lastVerifiedAge := now.Sub(m.LastVerified)
		firstSeenAge := now.Sub(m.FirstSeen)

		switch {
		case lastVerifiedAge > staleFileAge && !anyFileExists(m, fileExists):
			toDelete = append(toDelete, hash)
		case m.Trust == model.TrustUnverified && firstSeenAge > neverVerifiedMaxAge:
			toDelete = append(toDelete, hash)
		case m.Trust == model.TrustVerified && lastVerifiedAge > verifiedDowngradeAfter:
			m.Trust = model.TrustObservedOnce
			idx.store(m)
			result.Downgraded++
		case m.Trust == model.TrustObservedOnce && lastVerifiedAge > observedOnceDowngradeAt:
			m.Trust = model.TrustUnverified
			idx.store(m)
			result.Downgraded++
		}
		return true
	})

	for _, hash := range toDelete {
		idx.deleteEntry(hash)
		result.Deleted++
	}
	return result
}

func anyFileExists(m model.ResourceMetadata, fileExists func(string) bool) bool {
	if fileExists == nil {
		return true
	}
	if len(m.Filenames) == 0 {
		return false
	}
	for name := range m.Filenames {
		if fileExists(name) {
			return true
		}
	}
	return false
}

func (idx *Index) deleteEntry(hash string) {
	m, ok := idx.byMetadataHash.Get(hash)
	if !ok {
		return
	}
	idx.byMetadataHash.Delete(hash)
	if m.ContentId != "" {
		idx.byContentId.Delete(m.ContentId)
	}
	idx.metadataHashToContentId.Delete(hash)
}

// EvictToQuota evicts entries least-recently-verified first (falling
// back to FirstSeen when never verified) until the sum of recorded
// FileSize is at or below maxBytes, deleting the backing file through
// deleteFile for each evicted entry (spec §4.7 "Quota eviction").
func (idx *Index) EvictToQuota(maxBytes int64, deleteFile func(model.ResourceMetadata) error) (evicted int, freedBytes int64) {
	all := idx.byMetadataHash.Snapshot()
	list := make([]model.ResourceMetadata, 0, len(all))
	var total int64
	for _, m := range all {
		list = append(list, m)
		total += m.FileSize
	}
	sort.Slice(list, func(i, j int) bool {
		return lruTime(list[i]).Before(lruTime(list[j]))
	})

	for _, m := range list {
		if total <= maxBytes {
			break
		}
		if deleteFile != nil {
			if err := deleteFile(m); err != nil {
				log.Printf("cache: evicting %s: %v", m.MetadataHash, err)
				continue
			}
		}
		idx.deleteEntry(m.MetadataHash)
		total -= m.FileSize
		freedBytes += m.FileSize
		evicted++
	}
	return evicted, freedBytes
}

func lruTime(m model.ResourceMetadata) time.Time {
	if !m.LastVerified.IsZero() {
		return m.LastVerified
	}
	return m.FirstSeen
}
