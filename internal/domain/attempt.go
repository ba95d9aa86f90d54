package domain

import "time"

// MaxChartScore is the highest score a single chart can award.
const MaxChartScore = 1_000_000

// DetailedStats carries the optional per-judgement breakdown of an attempt.
type DetailedStats struct {
	Perfect int `json:"perfect"`
	Great   int `json:"great"`
	Good    int `json:"good"`
	Poor    int `json:"poor"`
	Miss    int `json:"miss"`
}

// Attempt is one recorded play of a chart. It is created per submission and
// consumed immediately by the merge path; it is never mutated.
type Attempt struct {
	Chart      ChartKey       `json:"chart"`
	Points     int            `json:"points"`
	Flags      ClearFlags     `json:"clear_flags"`
	Combo      int            `json:"combo"`
	Timestamp  time.Time      `json:"timestamp"`
	Replay     []byte         `json:"replay,omitempty"`
	Stats      *DetailedStats `json:"stats,omitempty"`
	MusicRate  float64        `json:"music_rate,omitempty"`
	PlayCount  int            `json:"play_count"`
	ClearCount int            `json:"clear_count"`
	FullCombos int            `json:"full_combo_count"`
	Excellents int            `json:"excellent_count"`
}

// ScoreRecord is the durable best-known record for one (player, chart) pair.
// BestPoints is non-decreasing over the record's lifetime. The play/clear/
// fc/ex counters are client-reported per chart and stored verbatim.
type ScoreRecord struct {
	PlayerID   string    `json:"player_id"`
	Chart      ChartKey  `json:"chart"`
	BestPoints int       `json:"best_points"`
	PlayCount  int       `json:"play_count"`
	ClearCount int       `json:"clear_count"`
	FullCombos int       `json:"full_combo_count"`
	Excellents int       `json:"excellent_count"`
	ClearMedal Medal     `json:"clear_medal"`
	BestReplay []byte    `json:"best_replay,omitempty"`
	MusicRate  float64   `json:"best_music_rate,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PlayerStats aggregates a player's records across all charts.
type PlayerStats struct {
	PlayerID    string `json:"player_id"`
	ChartsKnown int    `json:"charts_known"`
	TotalPlays  int    `json:"total_plays"`
	TotalClears int    `json:"total_clears"`
	FullCombos  int    `json:"full_combos"`
	Excellents  int    `json:"excellents"`
	TopPoints   int    `json:"top_points"`
}

// AttemptSubmission is a play-result submission as it arrives from the
// request-handler or Kafka layer, already parsed off the wire.
type AttemptSubmission struct {
	PlayerID   string         `json:"player_id"`
	SongID     int            `json:"song_id"`
	Tier       DifficultyTier `json:"tier"`
	HardMode   bool           `json:"hard_mode"`
	Points     int            `json:"points"`
	ClearFlags ClearFlags     `json:"clear_flags"`
	Combo      int            `json:"combo"`
	Timestamp  time.Time      `json:"timestamp"`
	Replay     []byte         `json:"replay,omitempty"`
	Stats      *DetailedStats `json:"stats,omitempty"`
	MusicRate  float64        `json:"music_rate,omitempty"`
	PlayCount  int            `json:"play_count"`
	ClearCount int            `json:"clear_count"`
	FullCombos int            `json:"full_combo_count"`
	Excellents int            `json:"excellent_count"`
}

// BatchAttemptSubmission represents one gameend report: a list of per-song
// attempt records played in a single credit.
type BatchAttemptSubmission struct {
	Attempts []AttemptSubmission `json:"attempts"`
}

// AttemptResult is what the merge path hands back to the encoding layer for
// one submitted attempt.
type AttemptResult struct {
	Record        ScoreRecord    `json:"record"`
	Medal         Medal          `json:"medal"`
	NewBest       bool           `json:"new_best"`
	ChallengeSong bool           `json:"challenge_song"`
	Courses       []CourseUpdate `json:"courses,omitempty"`
}
