package domain

// The cabinet fans one licensed song out to a block of per-region ids.
// Every id in the block is the same chart, so scores collapse onto the
// base id and the block never enters challenge selection.
const (
	RegionFanoutBase = 80000301
	RegionFanoutLast = 80000347
)

// IsRegionFanout reports whether songID falls in the fanout block.
func IsRegionFanout(songID int) bool {
	return songID >= RegionFanoutBase && songID <= RegionFanoutLast
}

// CollapseRegionFanout maps a fanout id onto the block's base id. Ids
// outside the block pass through unchanged.
func CollapseRegionFanout(songID int) int {
	if IsRegionFanout(songID) {
		return RegionFanoutBase
	}
	return songID
}

// RegionFanoutSongIDs lists every id in the fanout block.
func RegionFanoutSongIDs() []int {
	ids := make([]int, 0, RegionFanoutLast-RegionFanoutBase+1)
	for id := RegionFanoutBase; id <= RegionFanoutLast; id++ {
		ids = append(ids, id)
	}
	return ids
}
