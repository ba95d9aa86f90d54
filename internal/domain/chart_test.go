package domain

import "testing"

func TestStorageChartRoundTrip(t *testing.T) {
	tiers := []DifficultyTier{TierBasic, TierAdvanced, TierExtreme}
	modes := []PlayMode{ModeNormal, ModeHard}

	seen := make(map[StorageChart]bool)
	for _, mode := range modes {
		for _, tier := range tiers {
			sc, err := ToStorageChart(tier, mode)
			if err != nil {
				t.Fatalf("ToStorageChart(%d, %d): %v", tier, mode, err)
			}
			if seen[sc] {
				t.Fatalf("storage chart %d produced twice", sc)
			}
			seen[sc] = true

			gotTier, gotMode, err := FromStorageChart(sc)
			if err != nil {
				t.Fatalf("FromStorageChart(%d): %v", sc, err)
			}
			if gotTier != tier || gotMode != mode {
				t.Errorf("round trip of (%d, %d) = (%d, %d)", tier, mode, gotTier, gotMode)
			}
		}
	}
	if len(seen) != 6 {
		t.Fatalf("got %d storage charts, want 6", len(seen))
	}
}

func TestToStorageChartInvalid(t *testing.T) {
	if _, err := ToStorageChart(DifficultyTier(7), ModeNormal); err == nil {
		t.Fatal("expected error for unknown tier")
	}
	if _, err := ToStorageChart(TierBasic, PlayMode(3)); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if _, _, err := FromStorageChart(StorageChart(42)); err == nil {
		t.Fatal("expected error for unknown storage chart")
	}
}

func TestChartKeyString(t *testing.T) {
	key := ChartKey{SongID: 10000001, Tier: TierExtreme, Mode: ModeHard}
	if got, want := key.String(), "10000001:2:1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCollapseRegionFanout(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{RegionFanoutBase, RegionFanoutBase},
		{RegionFanoutBase + 10, RegionFanoutBase},
		{RegionFanoutLast, RegionFanoutBase},
		{RegionFanoutBase - 1, RegionFanoutBase - 1},
		{RegionFanoutLast + 1, RegionFanoutLast + 1},
		{10000001, 10000001},
	}
	for _, tt := range tests {
		if got := CollapseRegionFanout(tt.in); got != tt.want {
			t.Errorf("CollapseRegionFanout(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRegionFanoutSongIDs(t *testing.T) {
	ids := RegionFanoutSongIDs()
	if len(ids) != RegionFanoutLast-RegionFanoutBase+1 {
		t.Fatalf("got %d ids, want %d", len(ids), RegionFanoutLast-RegionFanoutBase+1)
	}
	for _, id := range ids {
		if !IsRegionFanout(id) {
			t.Errorf("id %d not recognized as fanout", id)
		}
	}
}
