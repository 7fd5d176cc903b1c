package pathutil

import "testing"

func TestPatternsOverlap(t *testing.T) {
	tests := []struct {
		name string
		p1   string
		p2   string
		want bool
	}{
		{"identical literal paths overlap", `C:\Mods\Foo\Bar.2da`, `C:\Mods\Foo\Bar.2da`, true},
		{"different literal filenames do not overlap", `C:\Mods\Foo\Bar.2da`, `C:\Mods\Foo\Baz.2da`, false},
		{"wildcard filename vs literal overlaps", `C:\Mods\Foo\*.2da`, `C:\Mods\Foo\Bar.2da`, true},
		{"wildcard filename vs literal, different dir falls back to filename overlap", `C:\Mods\Foo\*.2da`, `C:\Mods\Other\Bar.2da`, true},
		{"both wildcard dirs assumed overlap", `C:\Mods\*\Bar.2da`, `C:\Mods\*\Bar.2da`, true},
		{"lone star filenames, same parent dirs overlap", `C:\Mods\Foo\*`, `C:\Mods\Foo\*`, true},
		{"lone star filenames, different parent dirs do not overlap", `C:\Mods\Foo\*`, `C:\Mods\Bar\*`, false},
		{"lone star filenames, wildcard parent dirs do not overlap", `C:\Mods\*\*`, `C:\Mods\*\*`, false},
		{"both filenames wildcarded but not lone star still compared", `C:\Mods\Foo\*.2da`, `C:\Mods\Foo\*.tga`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PatternsOverlap(tt.p1, tt.p2); got != tt.want {
				t.Errorf("PatternsOverlap(%q, %q) = %v, want %v", tt.p1, tt.p2, got, tt.want)
			}
		})
	}
}

// TestOverlapConservativeness pins the spec §8 property: for all
// patterns p1, p2 and concrete paths c, if Match(c, p1) and
// Match(c, p2) both hold then PatternsOverlap(p1, p2) must hold.
func TestOverlapConservativeness(t *testing.T) {
	patterns := [][2]string{
		{`C:\Mods\*.2da`, `C:\Mods\Foo*.2da`},
		{`C:\Mods\Foo\*`, `C:\Mods\*\Bar.2da`},
		{`C:\Mods\A\B.2da`, `C:\Mods\A\B.2da`},
	}
	concretes := []string{
		`C:\Mods\Foobar.2da`,
		`C:\Mods\Foo\Bar.2da`,
		`C:\Mods\A\B.2da`,
	}

	for _, pp := range patterns {
		for _, c := range concretes {
			if Match(c, pp[0]) && Match(c, pp[1]) {
				if !PatternsOverlap(pp[0], pp[1]) {
					t.Errorf("Match(%q,%q) and Match(%q,%q) both true but PatternsOverlap(%q,%q) false",
						c, pp[0], c, pp[1], pp[0], pp[1])
				}
			}
		}
	}
}

func TestPatternsOverlapNeverPanics(t *testing.T) {
	adversarial := []string{"", "*", `\`, `a\*\*\b`, string([]byte{0, 1})}
	for _, a := range adversarial {
		for _, b := range adversarial {
			_ = PatternsOverlap(a, b)
		}
	}
}
