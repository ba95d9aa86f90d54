package domain

import "time"

// Challenge slot names. The first pick is the headline challenge, the
// second a bonus pick.
const (
	ChallengeSlotToday = "today"
	ChallengeSlotBonus = "bonus"
)

// ChallengeSchedule is the per-period daily challenge selection. It is
// created at most once per scheduling period and never mutated within it.
type ChallengeSchedule struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	SongIDs     []int     `json:"song_ids"`
}

// Contains reports whether a song is one of the period's challenge songs.
func (s *ChallengeSchedule) Contains(songID int) bool {
	if s == nil {
		return false
	}
	for _, id := range s.SongIDs {
		if id == songID {
			return true
		}
	}
	return false
}

// ScheduleEvent describes one completed challenge selection, for downstream
// notification.
type ScheduleEvent struct {
	ID       string            `json:"id"`
	Version  GameVersion       `json:"version"`
	Schedule ChallengeSchedule `json:"schedule"`
	Slots    map[string]int    `json:"slots"`
	At       time.Time         `json:"at"`
}
