package domain

// RankEntry is one row of a chart leaderboard.
type RankEntry struct {
	Rank     int64  `json:"rank"`
	PlayerID string `json:"player_id"`
	Points   int    `json:"points"`
}
