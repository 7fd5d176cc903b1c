package vfs

import (
	"testing"

	"github.com/OldRepublicDevs/kotormodsync/pkg/pathutil"
)

// TestEnumerateMatchSymmetry checks spec §8's property directly: for a
// VFS containing only p, match(p, q) must hold iff enumerate([q])
// returns exactly [p].
func TestEnumerateMatchSymmetry(t *testing.T) {
	cases := []struct {
		p, q string
	}{
		{`C:\Mods\ModX\Override\a.2da`, `<<modDirectory>>\Override\a.2da`},
		{`C:\Mods\ModX\Override\a.2da`, `<<modDirectory>>\Override\*.2da`},
		{`C:\Mods\ModX\Override\a.2da`, `<<modDirectory>>\Override\*.tga`},
		{`C:\Mods\ModX\Override\a.2da`, `<<modDirectory>>\*\a.2da`},
		{`C:\Mods\ModX\Override\a.2da`, `<<modDirectory>>\a.2da`},
		{`C:\Mods\ModX\Override\a.2da`, `<<modDirectory>>\Override\a.tga`},
		{`C:\Mods\ModX\Override\Sub\a.2da`, `<<modDirectory>>\Override\*.2da`},
	}

	for _, tc := range cases {
		v := newSeededVFS(tc.p)
		resolved := pathutil.ResolvePlaceholders(tc.q, `C:\Mods\ModX`, `C:\KOTOR`)
		wantMatch := pathutil.Match(tc.p, resolved)

		got, err := v.Enumerate([]string{tc.q}, false)
		gotMatch := err == nil && len(got) == 1 && got[0] == tc.p

		if wantMatch != gotMatch {
			t.Errorf("p=%q q=%q: Match=%v, enumerate-returns-[p]=%v (got %v, err %v)",
				tc.p, tc.q, wantMatch, gotMatch, got, err)
		}
	}
}
