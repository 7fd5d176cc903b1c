package model

import "testing"

func TestTrustLevelRank(t *testing.T) {
	if TrustUnverified.Rank() >= TrustObservedOnce.Rank() {
		t.Fatalf("Unverified should rank below ObservedOnce")
	}
	if TrustObservedOnce.Rank() >= TrustVerified.Rank() {
		t.Fatalf("ObservedOnce should rank below Verified")
	}
}

func TestTrustLevelUpgrade(t *testing.T) {
	tests := []struct{ from, want TrustLevel }{
		{TrustUnverified, TrustObservedOnce},
		{TrustObservedOnce, TrustVerified},
		{TrustVerified, TrustVerified},
	}
	for _, tt := range tests {
		if got := tt.from.Upgrade(); got != tt.want {
			t.Errorf("%s.Upgrade() = %s, want %s", tt.from, got, tt.want)
		}
	}
}

func TestTrustLevelDowngrade(t *testing.T) {
	tests := []struct{ from, want TrustLevel }{
		{TrustVerified, TrustObservedOnce},
		{TrustObservedOnce, TrustUnverified},
		{TrustUnverified, TrustUnverified},
	}
	for _, tt := range tests {
		if got := tt.from.Downgrade(); got != tt.want {
			t.Errorf("%s.Downgrade() = %s, want %s", tt.from, got, tt.want)
		}
	}
}

func TestAddFilename_InitializesSetLazily(t *testing.T) {
	var r ResourceMetadata
	r.AddFilename("foo.tga")
	r.AddFilename("bar.tga")

	if len(r.Filenames) != 2 {
		t.Fatalf("got %d filenames, want 2", len(r.Filenames))
	}
	if _, ok := r.Filenames["foo.tga"]; !ok {
		t.Fatalf("expected foo.tga to be recorded")
	}
}
