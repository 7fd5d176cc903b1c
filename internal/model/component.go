package model

// FilenamePolicyKind selects how a downloaded URL is named when the
// handler that served it offers no filename of its own (SPEC_FULL
// "Supplemented features").
type FilenamePolicyKind string

const (
	FilenamePolicyProvider FilenamePolicyKind = "UseProviderFilename"
	FilenamePolicyBasename FilenamePolicyKind = "UseURLBasename"
	FilenamePolicyFixed    FilenamePolicyKind = "Fixed"
)

// FilenamePolicy records a per-URL filename policy for a Component.
// No code in this module reads it or applies it to a download.
type FilenamePolicy struct {
	Kind  FilenamePolicyKind
	Fixed string // only meaningful when Kind == FilenamePolicyFixed
}

// InstallMethod is the human-readable installation method string the
// Auto-Generator derives from archive shape (spec §4.5).
type InstallMethod string

const (
	MethodUnknown    InstallMethod = ""
	MethodTSLPatcher InstallMethod = "TSLPatcher"
	MethodOverride   InstallMethod = "Override"
	MethodHybrid     InstallMethod = "Hybrid"
)

// Component is a selectable mod (spec §3). It exclusively owns its
// Instructions, Options, and filename policy.
type Component struct {
	ID       ID
	Name     string
	Author   string
	URLs     []string
	Filename FilenamePolicy

	Instructions []Instruction
	Options      []Option

	DependsOn    []ID
	RestrictedBy []ID

	Selected bool

	// InstallMethod is set (and only ever upgraded, never downgraded -
	// see SPEC_FULL's preserved Open Question) by the Auto-Generator.
	InstallMethod InstallMethod
}

// FindOption returns a pointer to the owned Option with the given id,
// or nil.
func (c *Component) FindOption(id ID) *Option {
	for i := range c.Options {
		if c.Options[i].ID == id {
			return &c.Options[i]
		}
	}
	return nil
}

// UpgradeInstallMethod sets InstallMethod unless doing so would
// downgrade Hybrid back to a single-shape method (preserved Open
// Question in SPEC_FULL: intentional, not resolved).
func (c *Component) UpgradeInstallMethod(m InstallMethod) {
	if c.InstallMethod == MethodHybrid {
		return
	}
	if c.InstallMethod == MethodUnknown {
		c.InstallMethod = m
		return
	}
	if c.InstallMethod != m {
		c.InstallMethod = MethodHybrid
	}
}
