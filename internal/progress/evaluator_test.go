package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/scorecore/internal/catalog"
	"github.com/scorecore/internal/domain"
)

type fakeProgressStore struct {
	rows map[string]*domain.CourseProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{rows: make(map[string]*domain.CourseProgress)}
}

func rowKey(playerID string, courseID int) string {
	return playerID + "/" + strconv.Itoa(courseID)
}

func (s *fakeProgressStore) GetCourseProgress(_ context.Context, playerID string, courseID int) (*domain.CourseProgress, error) {
	row, ok := s.rows[rowKey(playerID, courseID)]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	clone := *row
	return &clone, nil
}

func (s *fakeProgressStore) PutCourseProgress(_ context.Context, progress *domain.CourseProgress) error {
	clone := *progress
	s.rows[rowKey(progress.PlayerID, progress.CourseID)] = &clone
	return nil
}

func (s *fakeProgressStore) ListCourseProgress(_ context.Context, playerID string) ([]domain.CourseProgress, error) {
	var out []domain.CourseProgress
	for _, row := range s.rows {
		if row.PlayerID == playerID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func courseChart(songID int) domain.ChartKey {
	return domain.ChartKey{SongID: songID, Tier: domain.TierExtreme}
}

func testCourses() []domain.CourseDefinition {
	single := domain.CourseDefinition{
		ID:            1,
		Name:          "Single",
		Kind:          domain.CoursePermanent,
		ClearKind:     domain.ClearSingleScore,
		RequiredScore: 950_000,
		Music: []domain.CourseSlot{
			{{Chart: courseChart(10000001)}},
			{{Chart: courseChart(10000002)}},
			{{Chart: courseChart(10000003)}},
		},
	}
	combined := domain.CourseDefinition{
		ID:            2,
		Name:          "Combined",
		Kind:          domain.CoursePermanent,
		ClearKind:     domain.ClearCombinedScore,
		RequiredScore: 2_600_000,
		Music: []domain.CourseSlot{
			{{Chart: courseChart(10000004)}},
			{{Chart: courseChart(10000005)}},
			{{Chart: courseChart(10000006)}},
		},
	}
	hazard := domain.CourseDefinition{
		ID:         3,
		Name:       "Hazard",
		Kind:       domain.CoursePermanent,
		ClearKind:  domain.ClearHazard,
		HazardTier: domain.HazardFC3,
		Music: []domain.CourseSlot{
			{{Chart: courseChart(10000007)}},
			{{Chart: courseChart(10000001)}},
			{{Chart: courseChart(10000008)}},
		},
	}
	return []domain.CourseDefinition{single, combined, hazard}
}

func newTestEvaluator(t *testing.T) (*Evaluator, *fakeProgressStore) {
	t.Helper()
	cat, err := catalog.New(testCourses())
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	store := newFakeProgressStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cat, store, logger), store
}

func TestOnAttemptMarksSeenAndPlayed(t *testing.T) {
	eval, _ := newTestEvaluator(t)
	ctx := context.Background()

	// Chart 10000001 appears in courses 1 and 3.
	updates, err := eval.OnAttempt(ctx, "p1", domain.Attempt{Chart: courseChart(10000001)})
	if err != nil {
		t.Fatalf("OnAttempt: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	for _, update := range updates {
		if !update.Progress.Seen || !update.Progress.Played {
			t.Errorf("course %d: progress = %+v, want seen and played", update.CourseID, update.Progress)
		}
		if update.Progress.Cleared {
			t.Errorf("course %d: attempt alone must not clear", update.CourseID)
		}
	}

	// A second attempt on the same chart changes nothing.
	updates, err = eval.OnAttempt(ctx, "p1", domain.Attempt{Chart: courseChart(10000001)})
	if err != nil {
		t.Fatalf("OnAttempt: %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("got %d updates on repeat attempt, want 0", len(updates))
	}
}

func TestOnAttemptIgnoresUnlistedChart(t *testing.T) {
	eval, _ := newTestEvaluator(t)

	updates, err := eval.OnAttempt(context.Background(), "p1", domain.Attempt{Chart: courseChart(99999999)})
	if err != nil {
		t.Fatalf("OnAttempt: %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("got %d updates for unlisted chart, want 0", len(updates))
	}
}

func TestSingleScoreClearBoundary(t *testing.T) {
	eval, _ := newTestEvaluator(t)
	ctx := context.Background()

	progress, err := eval.OnCourseResult(ctx, "p1", 1, domain.CourseRunResult{SlotScores: []int{800_000, 949_999, 700_000}})
	if err != nil {
		t.Fatalf("OnCourseResult: %v", err)
	}
	if progress.Cleared {
		t.Error("949999 must not clear a 950000 requirement")
	}

	progress, err = eval.OnCourseResult(ctx, "p1", 1, domain.CourseRunResult{SlotScores: []int{800_000, 950_000, 700_000}})
	if err != nil {
		t.Fatalf("OnCourseResult: %v", err)
	}
	if !progress.Cleared {
		t.Error("950000 in any slot must clear")
	}
}

func TestCombinedScoreClearBoundary(t *testing.T) {
	eval, _ := newTestEvaluator(t)
	ctx := context.Background()

	progress, err := eval.OnCourseResult(ctx, "p1", 2, domain.CourseRunResult{SlotScores: []int{900_000, 900_000, 799_999}})
	if err != nil {
		t.Fatalf("OnCourseResult: %v", err)
	}
	if progress.Cleared {
		t.Error("2599999 total must not clear a 2600000 requirement")
	}

	progress, err = eval.OnCourseResult(ctx, "p1", 2, domain.CourseRunResult{SlotScores: []int{900_000, 900_000, 800_000}})
	if err != nil {
		t.Fatalf("OnCourseResult: %v", err)
	}
	if !progress.Cleared {
		t.Error("2600000 total must clear")
	}
}

func TestHazardTrustsClientVerdict(t *testing.T) {
	eval, _ := newTestEvaluator(t)
	ctx := context.Background()

	// Perfect slot scores do not matter; the claim does.
	progress, err := eval.OnCourseResult(ctx, "p1", 3, domain.CourseRunResult{
		ClaimedCleared: false,
		SlotScores:     []int{1_000_000, 1_000_000, 1_000_000},
	})
	if err != nil {
		t.Fatalf("OnCourseResult: %v", err)
	}
	if progress.Cleared {
		t.Error("hazard must not clear without the client's verdict")
	}

	progress, err = eval.OnCourseResult(ctx, "p1", 3, domain.CourseRunResult{ClaimedCleared: true})
	if err != nil {
		t.Fatalf("OnCourseResult: %v", err)
	}
	if !progress.Cleared {
		t.Error("hazard must clear on the client's verdict")
	}
}

func TestClearedNeverResets(t *testing.T) {
	eval, _ := newTestEvaluator(t)
	ctx := context.Background()

	if _, err := eval.OnCourseResult(ctx, "p1", 1, domain.CourseRunResult{SlotScores: []int{990_000}}); err != nil {
		t.Fatalf("OnCourseResult: %v", err)
	}

	progress, err := eval.OnCourseResult(ctx, "p1", 1, domain.CourseRunResult{SlotScores: []int{100_000}})
	if err != nil {
		t.Fatalf("OnCourseResult: %v", err)
	}
	if !progress.Cleared {
		t.Error("a failing run must not reset an earned clear")
	}
}

func TestMarkStatusMonotonic(t *testing.T) {
	eval, _ := newTestEvaluator(t)
	ctx := context.Background()

	progress, err := eval.MarkStatus(ctx, "p1", 1, domain.CourseStatusSeen|domain.CourseStatusPlayed)
	if err != nil {
		t.Fatalf("MarkStatus: %v", err)
	}
	if !progress.Seen || !progress.Played {
		t.Fatalf("progress = %+v, want seen and played", progress)
	}

	// A later report with fewer bits must not clear anything.
	progress, err = eval.MarkStatus(ctx, "p1", 1, domain.CourseStatusSeen)
	if err != nil {
		t.Fatalf("MarkStatus: %v", err)
	}
	if !progress.Played {
		t.Error("played bit must survive a seen-only report")
	}
	if got, want := progress.Status(), domain.CourseStatusSeen|domain.CourseStatusPlayed; got != want {
		t.Errorf("Status() = %#x, want %#x", got, want)
	}
}

func TestUnknownCourse(t *testing.T) {
	eval, _ := newTestEvaluator(t)
	ctx := context.Background()

	if _, err := eval.OnCourseResult(ctx, "p1", 99, domain.CourseRunResult{}); !errors.Is(err, domain.ErrUnknownCourse) {
		t.Errorf("OnCourseResult error = %v, want ErrUnknownCourse", err)
	}
	if _, err := eval.MarkStatus(ctx, "p1", 99, domain.CourseStatusSeen); !errors.Is(err, domain.ErrUnknownCourse) {
		t.Errorf("MarkStatus error = %v, want ErrUnknownCourse", err)
	}
}
