// Package scheduler runs the idempotent daily challenge selection. The
// once-per-period guarantee rests on an atomic claim in the marker store,
// so any number of server processes can race the periodic trigger and
// exactly one will pick and persist the songs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/scorecore/internal/domain"
)

// Scope is the marker-store scope under which daily selections are claimed.
const Scope = "fc_challenge"

// PickCount is how many challenge songs one period gets.
const PickCount = 2

// MarkerStore provides the shared claim-once-per-period primitive.
type MarkerStore interface {
	// TryClaim atomically claims the (scope, period) pair. It returns true
	// for exactly one caller per period.
	TryClaim(ctx context.Context, scope string, periodStart time.Time) (bool, error)
}

// SongStore lists the active song catalog for a revision.
type SongStore interface {
	AllActiveSongIDs(ctx context.Context, version domain.GameVersion) ([]int, error)
}

// ScheduleStore persists the selected challenge schedule.
type ScheduleStore interface {
	PutSchedule(ctx context.Context, schedule *domain.ChallengeSchedule) error
	CurrentSchedule(ctx context.Context, now time.Time) (*domain.ChallengeSchedule, error)
}

// Scheduler selects challenge songs at most once per scheduling period.
type Scheduler struct {
	markers   MarkerStore
	songs     SongStore
	schedules ScheduleStore
	version   domain.GameVersion
	excluded  map[int]struct{}
	rng       *rand.Rand
	logger    *slog.Logger
}

// New creates a scheduler. The region-fanout block is always excluded from
// selection; excluded adds operator-configured ids on top. The random source
// is injected so tests can pin selections.
func New(
	markers MarkerStore,
	songs SongStore,
	schedules ScheduleStore,
	version domain.GameVersion,
	excluded []int,
	rng *rand.Rand,
	logger *slog.Logger,
) *Scheduler {
	ex := make(map[int]struct{}, len(excluded))
	for _, id := range domain.RegionFanoutSongIDs() {
		ex[id] = struct{}{}
	}
	for _, id := range excluded {
		ex[id] = struct{}{}
	}
	return &Scheduler{
		markers:   markers,
		songs:     songs,
		schedules: schedules,
		version:   version,
		excluded:  ex,
		rng:       rng,
		logger:    logger,
	}
}

// PeriodWindow returns the daily scheduling window containing now.
func PeriodWindow(now time.Time) (time.Time, time.Time) {
	start := now.UTC().Truncate(24 * time.Hour)
	return start, start.AddDate(0, 0, 1)
}

// RunScheduledWork claims the current period and, on winning the claim,
// samples the challenge songs and persists the schedule. Losing the claim
// is the expected already-scheduled outcome and returns nil.
func (s *Scheduler) RunScheduledWork(ctx context.Context, now time.Time) (*domain.ScheduleEvent, error) {
	periodStart, periodEnd := PeriodWindow(now)

	claimed, err := s.markers.TryClaim(ctx, Scope, periodStart)
	if err != nil {
		return nil, fmt.Errorf("claiming schedule period: %w", err)
	}
	if !claimed {
		return nil, nil
	}

	songIDs, err := s.songs.AllActiveSongIDs(ctx, s.version)
	if err != nil {
		return nil, fmt.Errorf("listing active songs: %w", err)
	}

	candidates := make([]int, 0, len(songIDs))
	for _, id := range songIDs {
		if _, skip := s.excluded[id]; skip {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) < PickCount {
		return nil, fmt.Errorf("only %d candidate songs, need %d", len(candidates), PickCount)
	}
	// Stable order before sampling keeps a seeded run deterministic.
	sort.Ints(candidates)

	picks := make([]int, 0, PickCount)
	for _, idx := range s.rng.Perm(len(candidates))[:PickCount] {
		picks = append(picks, candidates[idx])
	}

	schedule := &domain.ChallengeSchedule{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		SongIDs:     picks,
	}
	if err := s.schedules.PutSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("persisting challenge schedule: %w", err)
	}

	event := &domain.ScheduleEvent{
		ID:       uuid.New().String(),
		Version:  s.version,
		Schedule: *schedule,
		Slots: map[string]int{
			domain.ChallengeSlotToday: picks[0],
			domain.ChallengeSlotBonus: picks[1],
		},
		At: now.UTC(),
	}

	s.logger.Info("daily challenge scheduled",
		"period_start", periodStart,
		"today", picks[0],
		"bonus", picks[1],
	)
	return event, nil
}

// CurrentSchedule reads the schedule covering now, if one exists.
func (s *Scheduler) CurrentSchedule(ctx context.Context, now time.Time) (*domain.ChallengeSchedule, error) {
	return s.schedules.CurrentSchedule(ctx, now)
}
