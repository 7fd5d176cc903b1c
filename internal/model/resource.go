package model

import "time"

// TrustLevel is the corroboration level of a ResourceMetadata record
// (spec §3, §4.7). Elevation happens on repeated agreement, downgrade
// on staleness (Garbage Collection, spec §4.7).
type TrustLevel string

const (
	TrustUnverified   TrustLevel = "Unverified"
	TrustObservedOnce TrustLevel = "ObservedOnce"
	TrustVerified     TrustLevel = "Verified"
)

// Rank gives a total order over trust levels so callers can compare
// without a lookup table: Unverified < ObservedOnce < Verified.
func (t TrustLevel) Rank() int {
	switch t {
	case TrustObservedOnce:
		return 1
	case TrustVerified:
		return 2
	default:
		return 0
	}
}

// Upgrade returns the next trust level, capped at Verified.
func (t TrustLevel) Upgrade() TrustLevel {
	switch t {
	case TrustUnverified:
		return TrustObservedOnce
	case TrustObservedOnce:
		return TrustVerified
	default:
		return TrustVerified
	}
}

// Downgrade returns the previous trust level, floored at Unverified.
func (t TrustLevel) Downgrade() TrustLevel {
	switch t {
	case TrustVerified:
		return TrustObservedOnce
	case TrustObservedOnce:
		return TrustUnverified
	default:
		return TrustUnverified
	}
}

// ResourceMetadata is a provider-independent description of a
// download's identity (spec §3). It is indexed both by MetadataHash
// and by ContentId (spec §4.7).
type ResourceMetadata struct {
	MetadataHash string
	ContentId    string

	ContentHashSHA256 string
	PieceLength       int64
	PieceHashesSHA256 []string

	PrimaryURL      string
	HandlerMetadata map[string]any

	FileSize int64

	FirstSeen    time.Time
	LastVerified time.Time

	Trust TrustLevel

	SchemaVersion int

	// Filenames is the set of filenames this resource has been
	// observed under across providers/URLs.
	Filenames map[string]struct{}
}

// AddFilename records an observed filename, initializing the set if
// necessary.
func (r *ResourceMetadata) AddFilename(name string) {
	if r.Filenames == nil {
		r.Filenames = make(map[string]struct{})
	}
	r.Filenames[name] = struct{}{}
}

// DownloadCacheEntry maps a URL to its resolved local filename (spec
// §3). Persisted as JSON keyed by URL (spec §6).
type DownloadCacheEntry struct {
	URL                 string `json:"Url"`
	FileName            string `json:"FileName"`
	IsArchiveFile       bool   `json:"IsArchiveFile"`
	ExtractInstructionID string `json:"ExtractInstructionGuid"`
}
