package model

// ArchiveAnalysis is the Archive Inspector's output (spec §4.2): shape
// signals used by the Auto-Instruction Generator to classify an
// archive without extracting it.
type ArchiveAnalysis struct {
	HasTslPatchData        bool
	HasNamespacesIni       bool
	HasChangesIni          bool
	HasSimpleOverrideFiles bool
	HasFlatFiles           bool

	// TopLevelFolders are the top-level folders (relative to archive
	// root) that contain at least one recognized game file.
	TopLevelFolders []string

	// PatcherPath is the archive-relative path to the folder
	// containing tslpatchdata (its parent), set only when
	// HasTslPatchData is true.
	PatcherPath string

	// PatcherExecutable is the base name of an .exe found anywhere in
	// the archive (the last one enumerated), if any.
	PatcherExecutable string

	// NamespaceEntries lists namespace ids found in namespaces.ini,
	// one Patcher instruction is generated per entry (spec §4.5).
	NamespaceEntries []string
}
