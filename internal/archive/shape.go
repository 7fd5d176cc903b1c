package archive

import (
	"path"
	"strings"

	"github.com/OldRepublicDevs/kotormodsync/internal/model"
)

// gameFileExtensions is the fixed KOTOR-engine extension set (spec §4.2).
var gameFileExtensions = map[string]struct{}{
	"2da": {}, "are": {}, "bik": {}, "dds": {}, "dlg": {}, "erf": {},
	"git": {}, "gui": {}, "ifo": {}, "jrl": {}, "lip": {}, "lyt": {},
	"mdl": {}, "mdx": {}, "mod": {}, "ncs": {}, "pth": {}, "rim": {},
	"ssf": {}, "tga": {}, "tlk": {}, "tpc": {}, "txi": {}, "utc": {},
	"utd": {}, "ute": {}, "uti": {}, "utm": {}, "utp": {}, "uts": {},
	"utw": {}, "vis": {}, "wav": {},
}

func isGameFile(entryPath string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(strings.ReplaceAll(entryPath, `\`, "/"))), ".")
	_, ok := gameFileExtensions[ext]
	return ok
}

// Analyze inspects an archive's entry set and produces the shape
// signals the Auto-Instruction Generator classifies on (spec §4.2).
// It does not extract any file.
func (i *Inspector) Analyze(archivePath string) (model.ArchiveAnalysis, error) {
	entries, err := i.Entries(archivePath)
	if err != nil {
		return model.ArchiveAnalysis{}, err
	}
	a := AnalyzeEntries(entries)
	if a.HasNamespacesIni {
		ids, err := i.NamespaceIDs(archivePath, a.PatcherPath)
		if err != nil {
			return model.ArchiveAnalysis{}, err
		}
		a.NamespaceEntries = ids
	}
	return a, nil
}

// AnalyzeEntries computes an ArchiveAnalysis from a pre-enumerated
// entry list, split out so the Auto-Instruction Generator's tests can
// exercise shape classification without a real archive reader.
func AnalyzeEntries(entries []Entry) model.ArchiveAnalysis {
	var a model.ArchiveAnalysis
	topFolders := make(map[string]struct{})

	for _, e := range entries {
		forward := strings.ReplaceAll(e.Path, `\`, "/")
		segments := strings.Split(forward, "/")

		for idx, seg := range segments {
			if strings.EqualFold(seg, "tslpatchdata") {
				a.HasTslPatchData = true
				a.PatcherPath = strings.Join(segments[:idx], "/")
			}
		}
		base := segments[len(segments)-1]
		if strings.EqualFold(base, "namespaces.ini") {
			a.HasNamespacesIni = true
		}
		if strings.EqualFold(base, "changes.ini") {
			a.HasChangesIni = true
		}
		if strings.HasSuffix(strings.ToLower(base), ".exe") {
			a.PatcherExecutable = base
		}

		if !isGameFile(e.Path) {
			continue
		}
		if len(segments) == 1 {
			a.HasFlatFiles = true
			a.HasSimpleOverrideFiles = true
			continue
		}
		a.HasSimpleOverrideFiles = true
		topFolders[segments[0]] = struct{}{}
	}

	for folder := range topFolders {
		a.TopLevelFolders = append(a.TopLevelFolders, folder)
	}
	return a
}
