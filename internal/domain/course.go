package domain

import "time"

// Course status bits as stored per (player, course). Monotonic: bits are
// OR-ed in and never cleared outside administrative resets.
const (
	CourseStatusSeen    = 0x01
	CourseStatusPlayed  = 0x02
	CourseStatusCleared = 0x04
)

// CourseKind distinguishes always-available courses from dated ones.
type CourseKind int

const (
	CoursePermanent CourseKind = 1
	CourseTimeBased CourseKind = 2
)

// ClearKind selects how a course run is judged.
type ClearKind int

const (
	ClearSingleScore   ClearKind = 1
	ClearCombinedScore ClearKind = 2
	ClearHazard        ClearKind = 3
)

// HazardTier values are catalog data carried through to the client, which
// enforces the survival rule and reports the outcome.
type HazardTier int

const (
	HazardExc1 HazardTier = 1
	HazardExc2 HazardTier = 2
	HazardExc3 HazardTier = 3
	HazardFC1  HazardTier = 4
	HazardFC2  HazardTier = 5
	HazardFC3  HazardTier = 6
)

// Reward kinds attached to course clears.
type RewardKind int

const (
	RewardSong  RewardKind = 1
	RewardTitle RewardKind = 2
	RewardEmo   RewardKind = 6
)

// CourseChart is one selectable alternative within a course slot.
type CourseChart struct {
	Chart  ChartKey `json:"chart" yaml:"chart"`
	Secret bool     `json:"secret" yaml:"secret"`
}

// CourseSlot is one ordered position in a course; the player plays exactly
// one of its alternatives.
type CourseSlot []CourseChart

// CourseReward describes what a clear awards.
type CourseReward struct {
	Kind   RewardKind `json:"kind" yaml:"kind"`
	Value  int        `json:"value" yaml:"value"`
	Secret bool       `json:"secret" yaml:"secret"`
}

// CourseDefinition is one static catalog entry. Definitions are validated
// once at load time and immutable afterwards.
type CourseDefinition struct {
	ID            int          `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	Difficulty    int          `json:"difficulty" yaml:"difficulty"`
	Kind          CourseKind   `json:"kind" yaml:"kind"`
	EndTime       time.Time    `json:"end_time,omitempty" yaml:"end_time"`
	ClearKind     ClearKind    `json:"clear_kind" yaml:"clear_kind"`
	HazardTier    HazardTier   `json:"hazard_tier,omitempty" yaml:"hazard_tier"`
	RequiredScore int          `json:"required_score,omitempty" yaml:"required_score"`
	HardRequired  bool         `json:"hard_required" yaml:"hard_required"`
	Music         []CourseSlot `json:"music" yaml:"music"`
	Reward        CourseReward `json:"reward" yaml:"reward"`
}

// CourseProgress is the per (player, course) state. The flags form an
// implication chain: cleared implies played implies seen.
type CourseProgress struct {
	PlayerID string `json:"player_id"`
	CourseID int    `json:"course_id"`
	Seen     bool   `json:"seen"`
	Played   bool   `json:"played"`
	Cleared  bool   `json:"cleared"`
}

// Status packs the progress flags into the wire status bitmask.
func (p CourseProgress) Status() int {
	status := 0
	if p.Seen {
		status |= CourseStatusSeen
	}
	if p.Played {
		status |= CourseStatusPlayed
	}
	if p.Cleared {
		status |= CourseStatusCleared
	}
	return status
}

// CourseUpdate reports a progress change for one course.
type CourseUpdate struct {
	CourseID int            `json:"course_id"`
	Progress CourseProgress `json:"progress"`
}

// CourseRunResult is the client's report of one completed course run.
// SlotScores are the per-slot scores in play order; ClaimedCleared is the
// client's hazard survival verdict, trusted for hazard courses.
type CourseRunResult struct {
	ClaimedCleared bool  `json:"is_cleared"`
	SlotScores     []int `json:"slot_scores,omitempty"`
}
