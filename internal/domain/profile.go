package domain

import "time"

// Profile is the per (player, revision) profile row. The counters are
// authoritative client-reported totals stored verbatim on each submission;
// nothing here is derived server-side.
type Profile struct {
	PlayerID   string      `json:"player_id"`
	Version    GameVersion `json:"version"`
	TuneCount  int         `json:"tune_cnt"`
	SaveCount  int         `json:"save_cnt"`
	ClearCount int         `json:"clear_cnt"`
	FullCombos int         `json:"fc_cnt"`
	Excellents int         `json:"ex_cnt"`
	MatchCount int         `json:"match_cnt"`
	BeatCount  int         `json:"beat_cnt"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ProfileCounters is the counter subset a submission carries.
type ProfileCounters struct {
	TuneCount  int `json:"tune_cnt"`
	SaveCount  int `json:"save_cnt"`
	ClearCount int `json:"clear_cnt"`
	FullCombos int `json:"fc_cnt"`
	Excellents int `json:"ex_cnt"`
	MatchCount int `json:"match_cnt"`
	BeatCount  int `json:"beat_cnt"`
}
