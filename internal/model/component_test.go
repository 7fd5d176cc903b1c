package model

import "testing"

func TestUpgradeInstallMethod_FirstSetFromUnknown(t *testing.T) {
	c := &Component{}
	c.UpgradeInstallMethod(MethodTSLPatcher)
	if c.InstallMethod != MethodTSLPatcher {
		t.Fatalf("got %q, want %q", c.InstallMethod, MethodTSLPatcher)
	}
}

func TestUpgradeInstallMethod_ConflictingMethodsBecomeHybrid(t *testing.T) {
	c := &Component{InstallMethod: MethodTSLPatcher}
	c.UpgradeInstallMethod(MethodOverride)
	if c.InstallMethod != MethodHybrid {
		t.Fatalf("got %q, want %q", c.InstallMethod, MethodHybrid)
	}
}

func TestUpgradeInstallMethod_SameMethodIsIdempotent(t *testing.T) {
	c := &Component{InstallMethod: MethodOverride}
	c.UpgradeInstallMethod(MethodOverride)
	if c.InstallMethod != MethodOverride {
		t.Fatalf("got %q, want %q", c.InstallMethod, MethodOverride)
	}
}

func TestUpgradeInstallMethod_HybridNeverDowngrades(t *testing.T) {
	c := &Component{InstallMethod: MethodHybrid}
	c.UpgradeInstallMethod(MethodOverride)
	if c.InstallMethod != MethodHybrid {
		t.Fatalf("Hybrid downgraded to %q", c.InstallMethod)
	}
}

func TestFindOption(t *testing.T) {
	opt := Option{ID: NewID(), Name: "first"}
	c := &Component{Options: []Option{opt}}

	found := c.FindOption(opt.ID)
	if found == nil || found.Name != "first" {
		t.Fatalf("FindOption did not return the matching option")
	}

	if c.FindOption(NewID()) != nil {
		t.Fatalf("FindOption should return nil for an unknown id")
	}
}
