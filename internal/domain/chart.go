package domain

import "fmt"

// DifficultyTier is the difficulty selector a cabinet sends with an attempt.
type DifficultyTier int

const (
	TierBasic DifficultyTier = iota
	TierAdvanced
	TierExtreme
)

// PlayMode distinguishes the normal chart from its hard-mode variant.
type PlayMode int

const (
	ModeNormal PlayMode = iota
	ModeHard
)

// StorageChart is the storage-side chart enumeration. The three tiers and
// two modes map onto exactly six values; scores for different values are
// always tracked as independent records.
type StorageChart int

const (
	StorageChartBasic StorageChart = iota
	StorageChartAdvanced
	StorageChartExtreme
	StorageChartHardBasic
	StorageChartHardAdvanced
	StorageChartHardExtreme
)

var toStorage = map[PlayMode]map[DifficultyTier]StorageChart{
	ModeNormal: {
		TierBasic:    StorageChartBasic,
		TierAdvanced: StorageChartAdvanced,
		TierExtreme:  StorageChartExtreme,
	},
	ModeHard: {
		TierBasic:    StorageChartHardBasic,
		TierAdvanced: StorageChartHardAdvanced,
		TierExtreme:  StorageChartHardExtreme,
	},
}

var fromStorage = map[StorageChart]struct {
	tier DifficultyTier
	mode PlayMode
}{
	StorageChartBasic:        {TierBasic, ModeNormal},
	StorageChartAdvanced:     {TierAdvanced, ModeNormal},
	StorageChartExtreme:      {TierExtreme, ModeNormal},
	StorageChartHardBasic:    {TierBasic, ModeHard},
	StorageChartHardAdvanced: {TierAdvanced, ModeHard},
	StorageChartHardExtreme:  {TierExtreme, ModeHard},
}

// ToStorageChart resolves a (tier, mode) selector to its storage chart value.
func ToStorageChart(tier DifficultyTier, mode PlayMode) (StorageChart, error) {
	byTier, ok := toStorage[mode]
	if !ok {
		return 0, fmt.Errorf("mode %d: %w", mode, ErrInvalidChart)
	}
	sc, ok := byTier[tier]
	if !ok {
		return 0, fmt.Errorf("tier %d: %w", tier, ErrInvalidChart)
	}
	return sc, nil
}

// FromStorageChart is the inverse of ToStorageChart.
func FromStorageChart(sc StorageChart) (DifficultyTier, PlayMode, error) {
	entry, ok := fromStorage[sc]
	if !ok {
		return 0, 0, fmt.Errorf("storage chart %d: %w", sc, ErrInvalidChart)
	}
	return entry.tier, entry.mode, nil
}

// ChartKey identifies one playable chart. It is the join key between
// attempts, score records, and course music lists.
type ChartKey struct {
	SongID int            `json:"song_id" yaml:"song_id"`
	Tier   DifficultyTier `json:"tier" yaml:"tier"`
	Mode   PlayMode       `json:"mode" yaml:"mode"`
}

// Storage returns the storage chart value for this key.
func (k ChartKey) Storage() (StorageChart, error) {
	return ToStorageChart(k.Tier, k.Mode)
}

// String renders a stable form used as redis key/member material.
func (k ChartKey) String() string {
	return fmt.Sprintf("%d:%d:%d", k.SongID, k.Tier, k.Mode)
}
