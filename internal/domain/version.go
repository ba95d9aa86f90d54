package domain

// GameVersion identifies one game revision. Profile data is stored per
// revision; a read on the current revision may fall back to the shape of an
// earlier one.
type GameVersion int

const (
	Version1 GameVersion = iota + 1
	Version2
	Version3
	Version4
	Version5
	Version6
	Version7
	Version8
	Version9
	Version10
)

// CurrentVersion is the revision this deployment serves.
const CurrentVersion = Version10

// versionOrder is the hand-maintained total order over known revisions,
// oldest first. Fallback walks it right to left.
var versionOrder = []GameVersion{
	Version1, Version2, Version3, Version4, Version5,
	Version6, Version7, Version8, Version9, Version10,
}

// Predecessor returns the revision immediately before v, if any.
func Predecessor(v GameVersion) (GameVersion, bool) {
	for i, candidate := range versionOrder {
		if candidate == v {
			if i == 0 {
				return 0, false
			}
			return versionOrder[i-1], true
		}
	}
	return 0, false
}

// KnownVersion reports whether v is a known revision.
func KnownVersion(v GameVersion) bool {
	for _, candidate := range versionOrder {
		if candidate == v {
			return true
		}
	}
	return false
}
