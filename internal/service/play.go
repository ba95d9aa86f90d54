// Package service orchestrates the reconciliation flow: chart resolution,
// best-record merging, leaderboard caching, course progress, and the daily
// challenge read path.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scorecore/internal/catalog"
	"github.com/scorecore/internal/domain"
	"github.com/scorecore/internal/ledger"
	"github.com/scorecore/internal/postgres"
	"github.com/scorecore/internal/progress"
	"github.com/scorecore/internal/redis"
	"github.com/scorecore/internal/scheduler"
	"github.com/scorecore/internal/websocket"
)

// PlayService provides business logic for play-result reconciliation
type PlayService struct {
	ledger    *ledger.Ledger
	progress  *progress.Evaluator
	scheduler *scheduler.Scheduler
	catalog   *catalog.Catalog
	cache     *redis.CacheService
	postgres  *postgres.Repository
	version   domain.GameVersion
	hub       *websocket.Hub
	logger    *slog.Logger
}

// NewPlayService creates a new play service
func NewPlayService(
	ldg *ledger.Ledger,
	eval *progress.Evaluator,
	sched *scheduler.Scheduler,
	cat *catalog.Catalog,
	cache *redis.CacheService,
	pg *postgres.Repository,
	version domain.GameVersion,
	logger *slog.Logger,
) *PlayService {
	return &PlayService{
		ledger:    ldg,
		progress:  eval,
		scheduler: sched,
		catalog:   cat,
		cache:     cache,
		postgres:  pg,
		version:   version,
		logger:    logger,
	}
}

// SetHub attaches the WebSocket hub for new-best broadcasts
func (s *PlayService) SetHub(hub *websocket.Hub) {
	s.hub = hub
}

// resolveChart turns a submission's song id, tier, and mode into the chart
// the attempt is stored under. Region-fanout ids collapse onto the block's
// base id so every region shares one record.
func resolveChart(submission domain.AttemptSubmission) (domain.ChartKey, error) {
	if submission.SongID <= 0 {
		return domain.ChartKey{}, domain.ErrInvalidRequest
	}
	mode := domain.ModeNormal
	if submission.HardMode {
		mode = domain.ModeHard
	}
	chart := domain.ChartKey{
		SongID: domain.CollapseRegionFanout(submission.SongID),
		Tier:   submission.Tier,
		Mode:   mode,
	}
	if _, err := chart.Storage(); err != nil {
		return domain.ChartKey{}, err
	}
	return chart, nil
}

// SubmitAttempt reconciles one play result end to end
func (s *PlayService) SubmitAttempt(ctx context.Context, submission domain.AttemptSubmission) (*domain.AttemptResult, error) {
	if submission.PlayerID == "" {
		return nil, domain.ErrInvalidRequest
	}
	chart, err := resolveChart(submission)
	if err != nil {
		return nil, err
	}

	attempt := domain.Attempt{
		Chart:      chart,
		Points:     submission.Points,
		Flags:      submission.ClearFlags,
		Combo:      submission.Combo,
		Timestamp:  submission.Timestamp,
		Replay:     submission.Replay,
		Stats:      submission.Stats,
		MusicRate:  submission.MusicRate,
		PlayCount:  submission.PlayCount,
		ClearCount: submission.ClearCount,
		FullCombos: submission.FullCombos,
		Excellents: submission.Excellents,
	}
	if attempt.Timestamp.IsZero() {
		attempt.Timestamp = time.Now()
	}

	record, newBest, err := s.ledger.MergeAttempt(ctx, submission.PlayerID, attempt)
	if err != nil {
		return nil, fmt.Errorf("merging attempt: %w", err)
	}

	// The leaderboard is a cache over the durable record; a cache failure
	// must not fail the submission.
	if _, err := s.cache.SetScoreIfBetter(ctx, chart, submission.PlayerID, record.BestPoints); err != nil {
		s.logger.Warn("failed to update chart leaderboard",
			"chart", chart.String(),
			"error", err,
		)
	}

	if newBest && s.hub != nil {
		s.hub.BroadcastScoreUpdate(chart, record)
	}

	updates, err := s.progress.OnAttempt(ctx, submission.PlayerID, attempt)
	if err != nil {
		return nil, fmt.Errorf("updating course progress: %w", err)
	}

	result := &domain.AttemptResult{
		Record:  *record,
		Medal:   record.ClearMedal,
		NewBest: newBest,
		Courses: updates,
	}

	if schedule, err := s.CurrentChallenge(ctx, attempt.Timestamp); err != nil {
		s.logger.Warn("failed to check challenge schedule", "error", err)
	} else if schedule != nil && schedule.Contains(chart.SongID) {
		result.ChallengeSong = true
	}

	return result, nil
}

// SubmitBatch reconciles one credit's worth of attempts. A failing attempt
// is logged and skipped so the rest of the report still lands.
func (s *PlayService) SubmitBatch(ctx context.Context, batch domain.BatchAttemptSubmission) ([]domain.AttemptResult, error) {
	results := make([]domain.AttemptResult, 0, len(batch.Attempts))
	for _, submission := range batch.Attempts {
		result, err := s.SubmitAttempt(ctx, submission)
		if err != nil {
			s.logger.Error("failed to reconcile attempt in batch",
				"player_id", submission.PlayerID,
				"song_id", submission.SongID,
				"error", err,
			)
			continue
		}
		results = append(results, *result)
	}
	return results, nil
}

// SubmitCourseResult judges a completed course run
func (s *PlayService) SubmitCourseResult(ctx context.Context, playerID string, courseID int, result domain.CourseRunResult) (*domain.CourseProgress, error) {
	if playerID == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.progress.OnCourseResult(ctx, playerID, courseID, result)
}

// MarkCourseStatus folds a client-reported status bitmask into progress
func (s *PlayService) MarkCourseStatus(ctx context.Context, playerID string, courseID, status int) (*domain.CourseProgress, error) {
	if playerID == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.progress.MarkStatus(ctx, playerID, courseID, status)
}

// PlayerScores returns all of a player's best records
func (s *PlayService) PlayerScores(ctx context.Context, playerID string) ([]domain.ScoreRecord, error) {
	return s.postgres.ListScores(ctx, playerID)
}

// PlayerStats aggregates a player's records across every chart
func (s *PlayService) PlayerStats(ctx context.Context, playerID string) (*domain.PlayerStats, error) {
	return s.ledger.PlayerStats(ctx, playerID)
}

// PlayerCourses returns a player's course progress
func (s *PlayService) PlayerCourses(ctx context.Context, playerID string) ([]domain.CourseProgress, error) {
	return s.progress.PlayerProgress(ctx, playerID)
}

// Courses lists the course catalog
func (s *PlayService) Courses() []domain.CourseDefinition {
	return s.catalog.Courses()
}

// ChartTop returns the top N players on a chart
func (s *PlayService) ChartTop(ctx context.Context, chart domain.ChartKey, n int) ([]domain.RankEntry, error) {
	if _, err := chart.Storage(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 10
	}
	if n > 100 {
		n = 100
	}
	return s.cache.TopN(ctx, chart, n)
}

// ChartCount returns the number of ranked players on a chart
func (s *PlayService) ChartCount(ctx context.Context, chart domain.ChartKey) (int64, error) {
	if _, err := chart.Storage(); err != nil {
		return 0, err
	}
	return s.cache.ChartCount(ctx, chart)
}

// ChartRank returns a player's rank on a chart
func (s *PlayService) ChartRank(ctx context.Context, chart domain.ChartKey, playerID string) (*domain.RankEntry, error) {
	if _, err := chart.Storage(); err != nil {
		return nil, err
	}
	return s.cache.PlayerRank(ctx, chart, playerID)
}

// Profile reads a player's profile for the given revision, falling back
// through predecessor revisions so a returning player's old save is found.
func (s *PlayService) Profile(ctx context.Context, playerID string, version domain.GameVersion) (*domain.Profile, error) {
	if !domain.KnownVersion(version) {
		return nil, domain.ErrUnknownVersion
	}
	for v := version; ; {
		profile, err := s.postgres.GetProfile(ctx, playerID, v)
		if err == nil {
			return profile, nil
		}
		if !domain.IsNotFoundError(err) {
			return nil, fmt.Errorf("getting profile: %w", err)
		}
		prev, ok := domain.Predecessor(v)
		if !ok {
			return nil, domain.ErrProfileNotFound
		}
		v = prev
	}
}

// SaveProfile stores a player's profile counters verbatim for the service's
// revision
func (s *PlayService) SaveProfile(ctx context.Context, playerID string, counters domain.ProfileCounters) (*domain.Profile, error) {
	if playerID == "" {
		return nil, domain.ErrInvalidRequest
	}
	profile := &domain.Profile{
		PlayerID:   playerID,
		Version:    s.version,
		TuneCount:  counters.TuneCount,
		SaveCount:  counters.SaveCount,
		ClearCount: counters.ClearCount,
		FullCombos: counters.FullCombos,
		Excellents: counters.Excellents,
		MatchCount: counters.MatchCount,
		BeatCount:  counters.BeatCount,
		UpdatedAt:  time.Now(),
	}
	if err := s.postgres.PutProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	return profile, nil
}

// CurrentChallenge returns the challenge schedule covering now, if one has
// been selected. Reads go through the cache; a miss falls back to the
// database and refills the cache.
func (s *PlayService) CurrentChallenge(ctx context.Context, now time.Time) (*domain.ChallengeSchedule, error) {
	periodStart, _ := scheduler.PeriodWindow(now)

	schedule, err := s.cache.CachedSchedule(ctx, periodStart)
	if err != nil {
		s.logger.Warn("failed to read cached schedule", "error", err)
	} else if schedule != nil {
		return schedule, nil
	}

	schedule, err = s.scheduler.CurrentSchedule(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("getting current schedule: %w", err)
	}
	if schedule == nil {
		return nil, nil
	}

	if err := s.cache.CacheSchedule(ctx, schedule); err != nil {
		s.logger.Warn("failed to cache schedule", "error", err)
	}
	return schedule, nil
}
