package cache

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/OldRepublicDevs/kotormodsync/internal/model"
)

const (
	downloadCacheFileName = "download-cache.json"
	resourceIndexFileName = "resource-index.json"
	lockFileName          = "resource-index.json.lock"

	currentSchemaVersion = 1
)

// resourceIndexFile mirrors spec §6's persisted layout: entries are
// keyed by MetadataHash (the canonical record), mappings carry the
// MetadataHash -> ContentId relation. The ContentId -> ResourceMetadata
// index is reconstructed from the two at load time rather than
// triple-persisted.
type resourceIndexFile struct {
	SchemaVersion int                              `json:"schemaVersion"`
	LastSaved     time.Time                         `json:"lastSaved"`
	Entries       map[string]resourceMetadataRecord `json:"entries"`
	Mappings      map[string]string                 `json:"mappings"`
}

// resourceMetadataRecord is the JSON wire shape of model.ResourceMetadata;
// Filenames serializes as a sorted slice instead of a map[string]struct{}.
type resourceMetadataRecord struct {
	MetadataHash      string         `json:"metadataHash"`
	ContentId         string         `json:"contentId"`
	ContentHashSHA256 string         `json:"contentHashSha256,omitempty"`
	PieceLength       int64          `json:"pieceLength,omitempty"`
	PieceHashesSHA256 []string       `json:"pieceHashesSha256,omitempty"`
	PrimaryURL        string         `json:"primaryUrl"`
	HandlerMetadata   map[string]any `json:"handlerMetadata,omitempty"`
	FileSize          int64          `json:"fileSize"`
	FirstSeen         time.Time      `json:"firstSeen"`
	LastVerified      time.Time      `json:"lastVerified"`
	Trust             string         `json:"trust"`
	SchemaVersion     int            `json:"schemaVersion"`
	Filenames         []string       `json:"filenames,omitempty"`
}

func resourceMetadataRecordFromModel(m model.ResourceMetadata) resourceMetadataRecord {
	names := make([]string, 0, len(m.Filenames))
	for n := range m.Filenames {
		names = append(names, n)
	}
	sort.Strings(names)
	return resourceMetadataRecord{
		MetadataHash:      m.MetadataHash,
		ContentId:         m.ContentId,
		ContentHashSHA256: m.ContentHashSHA256,
		PieceLength:       m.PieceLength,
		PieceHashesSHA256: m.PieceHashesSHA256,
		PrimaryURL:        m.PrimaryURL,
		HandlerMetadata:   m.HandlerMetadata,
		FileSize:          m.FileSize,
		FirstSeen:         m.FirstSeen,
		LastVerified:      m.LastVerified,
		Trust:             string(m.Trust),
		SchemaVersion:     m.SchemaVersion,
		Filenames:         names,
	}
}

func (rec resourceMetadataRecord) toModel() model.ResourceMetadata {
	m := model.ResourceMetadata{
		MetadataHash:      rec.MetadataHash,
		ContentId:         rec.ContentId,
		ContentHashSHA256: rec.ContentHashSHA256,
		PieceLength:       rec.PieceLength,
		PieceHashesSHA256: rec.PieceHashesSHA256,
		PrimaryURL:        rec.PrimaryURL,
		HandlerMetadata:   rec.HandlerMetadata,
		FileSize:          rec.FileSize,
		FirstSeen:         rec.FirstSeen,
		LastVerified:      rec.LastVerified,
		Trust:             model.TrustLevel(rec.Trust),
		SchemaVersion:     rec.SchemaVersion,
	}
	for _, n := range rec.Filenames {
		m.AddFilename(n)
	}
	return m
}

// load reads both persisted files, tolerating a missing or corrupt
// file by logging a warning and leaving the in-memory state empty
// rather than failing (spec §4.7: "JSON corruption produces a warning
// and an empty in-memory state, no crash"). Callers must hold the
// cross-process lock before calling.
func (idx *Index) load() {
	idx.loadDownloadCache()
	idx.loadResourceIndex()
}

func (idx *Index) loadDownloadCache() {
	path := filepath.Join(idx.cacheDir, downloadCacheFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("cache: reading %s: %v", path, err)
		}
		return
	}

	var entries map[string]model.DownloadCacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("cache: %s is corrupt, starting empty: %v", path, err)
		return
	}
	for url, entry := range entries {
		idx.downloads.Set(url, entry)
	}
}

func (idx *Index) loadResourceIndex() {
	path := filepath.Join(idx.cacheDir, resourceIndexFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("cache: reading %s: %v", path, err)
		}
		return
	}

	var file resourceIndexFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("cache: %s is corrupt, starting empty: %v", path, err)
		return
	}

	for hash, rec := range file.Entries {
		m := rec.toModel()
		idx.byMetadataHash.Set(hash, m)
		if contentID, ok := file.Mappings[hash]; ok && contentID != "" {
			idx.metadataHashToContentId.Set(hash, contentID)
			idx.byContentId.Set(contentID, m)
		}
	}
}

// save persists both files atomically: serialize, keep a ".bak" of
// whatever was previously on disk, write "<path>.tmp", then rename
// the tmp file into place (spec §4.7). Callers must hold the
// cross-process lock before calling.
func (idx *Index) save() error {
	downloads := make(map[string]model.DownloadCacheEntry)
	idx.downloads.Range(func(url string, entry model.DownloadCacheEntry) bool {
		downloads[url] = entry
		return true
	})
	if err := atomicWriteJSON(filepath.Join(idx.cacheDir, downloadCacheFileName), downloads); err != nil {
		return err
	}

	entries := make(map[string]resourceMetadataRecord)
	idx.byMetadataHash.Range(func(hash string, m model.ResourceMetadata) bool {
		entries[hash] = resourceMetadataRecordFromModel(m)
		return true
	})
	file := resourceIndexFile{
		SchemaVersion: currentSchemaVersion,
		LastSaved:     time.Now(),
		Entries:       entries,
		Mappings:      idx.metadataHashToContentId.Snapshot(),
	}
	return atomicWriteJSON(filepath.Join(idx.cacheDir, resourceIndexFileName), file)
}

func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if existing, err := os.ReadFile(path); err == nil {
		_ = os.WriteFile(path+".bak", existing, 0o644)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
