// Package progress tracks the per-player course state machine and judges
// completed course runs against the catalog's clear criteria.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/scorecore/internal/catalog"
	"github.com/scorecore/internal/domain"
)

// ProgressStore is the durable per (player, course) achievement store.
type ProgressStore interface {
	GetCourseProgress(ctx context.Context, playerID string, courseID int) (*domain.CourseProgress, error)
	PutCourseProgress(ctx context.Context, progress *domain.CourseProgress) error
	ListCourseProgress(ctx context.Context, playerID string) ([]domain.CourseProgress, error)
}

// Evaluator applies attempts and course-run reports to course progress.
// All flag updates are a monotonic bit-OR: a later observation never clears
// a previously set flag.
type Evaluator struct {
	catalog *catalog.Catalog
	store   ProgressStore
	logger  *slog.Logger
}

// New creates an evaluator over the given catalog and store.
func New(cat *catalog.Catalog, store ProgressStore, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		catalog: cat,
		store:   store,
		logger:  logger,
	}
}

func (e *Evaluator) load(ctx context.Context, playerID string, courseID int) (*domain.CourseProgress, error) {
	progress, err := e.store.GetCourseProgress(ctx, playerID, courseID)
	if err != nil {
		if !errors.Is(err, domain.ErrProgressNotFound) {
			return nil, fmt.Errorf("getting course progress: %w", err)
		}
		progress = &domain.CourseProgress{PlayerID: playerID, CourseID: courseID}
	}
	return progress, nil
}

// OnAttempt marks seen and played on every course whose music list contains
// the attempt's chart. Clearing is never decided here; a course clear is a
// holistic judgement over a whole run, reported separately by the client.
func (e *Evaluator) OnAttempt(ctx context.Context, playerID string, attempt domain.Attempt) ([]domain.CourseUpdate, error) {
	var updates []domain.CourseUpdate
	for _, courseID := range e.catalog.CoursesContaining(attempt.Chart) {
		progress, err := e.load(ctx, playerID, courseID)
		if err != nil {
			return nil, err
		}

		if progress.Seen && progress.Played {
			continue
		}
		progress.Seen = true
		progress.Played = true
		if err := e.store.PutCourseProgress(ctx, progress); err != nil {
			return nil, fmt.Errorf("putting course progress: %w", err)
		}
		updates = append(updates, domain.CourseUpdate{CourseID: courseID, Progress: *progress})
	}
	return updates, nil
}

// MarkStatus folds a client-reported status bitmask into stored progress.
// Bits only ever turn on.
func (e *Evaluator) MarkStatus(ctx context.Context, playerID string, courseID int, status int) (*domain.CourseProgress, error) {
	if _, err := e.catalog.Course(courseID); err != nil {
		return nil, err
	}
	progress, err := e.load(ctx, playerID, courseID)
	if err != nil {
		return nil, err
	}

	progress.Seen = progress.Seen || status&domain.CourseStatusSeen != 0
	progress.Played = progress.Played || status&domain.CourseStatusPlayed != 0
	progress.Cleared = progress.Cleared || status&domain.CourseStatusCleared != 0

	if err := e.store.PutCourseProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("putting course progress: %w", err)
	}
	return progress, nil
}

// OnCourseResult judges one completed course run and updates progress.
// Score-kind courses are judged server-side from the reported slot scores;
// hazard courses trust the client's survival verdict. A non-clearing run
// never resets a previously earned clear.
func (e *Evaluator) OnCourseResult(ctx context.Context, playerID string, courseID int, result domain.CourseRunResult) (*domain.CourseProgress, error) {
	course, err := e.catalog.Course(courseID)
	if err != nil {
		return nil, err
	}
	progress, err := e.load(ctx, playerID, courseID)
	if err != nil {
		return nil, err
	}

	progress.Seen = true
	progress.Played = true

	cleared := false
	switch course.ClearKind {
	case domain.ClearSingleScore:
		for _, score := range result.SlotScores {
			if score >= course.RequiredScore {
				cleared = true
				break
			}
		}
	case domain.ClearCombinedScore:
		total := 0
		for _, score := range result.SlotScores {
			total += score
		}
		cleared = total >= course.RequiredScore
	case domain.ClearHazard:
		// The cabinet enforces the hazard survival rule; the server only
		// records the outcome.
		cleared = result.ClaimedCleared
	}

	if cleared {
		progress.Cleared = true
	}

	if err := e.store.PutCourseProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("putting course progress: %w", err)
	}
	return progress, nil
}

// PlayerProgress returns all stored course progress for a player.
func (e *Evaluator) PlayerProgress(ctx context.Context, playerID string) ([]domain.CourseProgress, error) {
	progress, err := e.store.ListCourseProgress(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing course progress: %w", err)
	}
	return progress, nil
}
