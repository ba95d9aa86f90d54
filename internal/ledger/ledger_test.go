package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/scorecore/internal/domain"
)

type fakeScoreStore struct {
	records map[string]*domain.ScoreRecord
}

func newFakeScoreStore() *fakeScoreStore {
	return &fakeScoreStore{records: make(map[string]*domain.ScoreRecord)}
}

func key(playerID string, chart domain.ChartKey) string {
	return playerID + "/" + chart.String()
}

func (s *fakeScoreStore) GetScore(_ context.Context, playerID string, chart domain.ChartKey) (*domain.ScoreRecord, error) {
	record, ok := s.records[key(playerID, chart)]
	if !ok {
		return nil, domain.ErrScoreNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *fakeScoreStore) PutScore(_ context.Context, record *domain.ScoreRecord) error {
	clone := *record
	s.records[key(record.PlayerID, record.Chart)] = &clone
	return nil
}

func (s *fakeScoreStore) ListScores(_ context.Context, playerID string) ([]domain.ScoreRecord, error) {
	var out []domain.ScoreRecord
	for _, record := range s.records {
		if record.PlayerID == playerID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func newTestLedger(t *testing.T) (*Ledger, *fakeScoreStore) {
	t.Helper()
	store := newFakeScoreStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, logger), store
}

func attempt(points int, flags domain.ClearFlags) domain.Attempt {
	return domain.Attempt{
		Chart:     domain.ChartKey{SongID: 10000001, Tier: domain.TierExtreme},
		Points:    points,
		Flags:     flags,
		Timestamp: time.Now(),
	}
}

func TestMergeFirstAttemptCreatesRecord(t *testing.T) {
	ldg, _ := newTestLedger(t)
	ctx := context.Background()

	record, newBest, err := ldg.MergeAttempt(ctx, "p1", attempt(850_000, domain.FlagPlayed|domain.FlagCleared))
	if err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}
	if !newBest {
		t.Error("first attempt must be a new best")
	}
	if record.BestPoints != 850_000 {
		t.Errorf("BestPoints = %d, want 850000", record.BestPoints)
	}
	if record.ClearMedal != domain.MedalCleared {
		t.Errorf("ClearMedal = %v, want %v", record.ClearMedal, domain.MedalCleared)
	}
}

func TestMergeBestPointsNeverDecrease(t *testing.T) {
	ldg, _ := newTestLedger(t)
	ctx := context.Background()

	points := []int{700_000, 900_000, 800_000, 850_000, 950_000, 100_000}
	best := 0
	for _, p := range points {
		record, _, err := ldg.MergeAttempt(ctx, "p1", attempt(p, domain.FlagPlayed))
		if err != nil {
			t.Fatalf("MergeAttempt(%d): %v", p, err)
		}
		if p > best {
			best = p
		}
		if record.BestPoints != best {
			t.Errorf("after %d: BestPoints = %d, want %d", p, record.BestPoints, best)
		}
	}
}

func TestMergeTieFavorsNewestAttempt(t *testing.T) {
	ldg, _ := newTestLedger(t)
	ctx := context.Background()

	first := attempt(900_000, domain.FlagPlayed|domain.FlagCleared)
	first.Replay = []byte("old")
	if _, _, err := ldg.MergeAttempt(ctx, "p1", first); err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}

	second := attempt(900_000, domain.FlagPlayed|domain.FlagCleared)
	second.Replay = []byte("new")
	record, newBest, err := ldg.MergeAttempt(ctx, "p1", second)
	if err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}
	if !newBest {
		t.Error("equal points must count as a new best")
	}
	if string(record.BestReplay) != "new" {
		t.Errorf("BestReplay = %q, want the newer attempt's", record.BestReplay)
	}
}

func TestMergeMedalNeverRegresses(t *testing.T) {
	ldg, _ := newTestLedger(t)
	ctx := context.Background()

	fc := attempt(980_000, domain.FlagPlayed|domain.FlagCleared|domain.FlagFullCombo)
	if _, _, err := ldg.MergeAttempt(ctx, "p1", fc); err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}

	// A higher score with a worse clear must replace the points but keep
	// the full-combo medal.
	worse := attempt(990_000, domain.FlagPlayed|domain.FlagCleared)
	record, newBest, err := ldg.MergeAttempt(ctx, "p1", worse)
	if err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}
	if !newBest {
		t.Error("higher points must be a new best")
	}
	if record.BestPoints != 990_000 {
		t.Errorf("BestPoints = %d, want 990000", record.BestPoints)
	}
	if record.ClearMedal != domain.MedalFullCombo {
		t.Errorf("ClearMedal = %v, want %v", record.ClearMedal, domain.MedalFullCombo)
	}
}

func TestMergeSeparatesModes(t *testing.T) {
	ldg, store := newTestLedger(t)
	ctx := context.Background()

	normal := attempt(800_000, domain.FlagPlayed)
	hard := normal
	hard.Chart.Mode = domain.ModeHard
	hard.Points = 600_000

	if _, _, err := ldg.MergeAttempt(ctx, "p1", normal); err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}
	if _, _, err := ldg.MergeAttempt(ctx, "p1", hard); err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}

	if len(store.records) != 2 {
		t.Fatalf("got %d records, want 2 independent ones", len(store.records))
	}
}

func TestMergeClampsPoints(t *testing.T) {
	ldg, _ := newTestLedger(t)
	ctx := context.Background()

	record, _, err := ldg.MergeAttempt(ctx, "p1", attempt(1_200_000, domain.FlagPlayed))
	if err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}
	if record.BestPoints != domain.MaxChartScore {
		t.Errorf("BestPoints = %d, want clamped to %d", record.BestPoints, domain.MaxChartScore)
	}

	record, _, err = ldg.MergeAttempt(ctx, "p2", attempt(-5, domain.FlagPlayed))
	if err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}
	if record.BestPoints != 0 {
		t.Errorf("BestPoints = %d, want clamped to 0", record.BestPoints)
	}
}

func TestMergeCountersMonotone(t *testing.T) {
	ldg, _ := newTestLedger(t)
	ctx := context.Background()

	first := attempt(700_000, domain.FlagPlayed)
	first.PlayCount = 10
	first.ClearCount = 6
	if _, _, err := ldg.MergeAttempt(ctx, "p1", first); err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}

	// A stale report with lower counters must not move them backwards.
	stale := attempt(650_000, domain.FlagPlayed)
	stale.PlayCount = 4
	stale.ClearCount = 2
	record, _, err := ldg.MergeAttempt(ctx, "p1", stale)
	if err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}
	if record.PlayCount != 10 || record.ClearCount != 6 {
		t.Errorf("counters = (%d, %d), want (10, 6)", record.PlayCount, record.ClearCount)
	}
}

func TestPlayerStats(t *testing.T) {
	ldg, _ := newTestLedger(t)
	ctx := context.Background()

	a := attempt(800_000, domain.FlagPlayed)
	a.PlayCount = 3
	b := attempt(950_000, domain.FlagPlayed)
	b.Chart.SongID = 10000002
	b.PlayCount = 5

	if _, _, err := ldg.MergeAttempt(ctx, "p1", a); err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}
	if _, _, err := ldg.MergeAttempt(ctx, "p1", b); err != nil {
		t.Fatalf("MergeAttempt: %v", err)
	}

	stats, err := ldg.PlayerStats(ctx, "p1")
	if err != nil {
		t.Fatalf("PlayerStats: %v", err)
	}
	if stats.ChartsKnown != 2 {
		t.Errorf("ChartsKnown = %d, want 2", stats.ChartsKnown)
	}
	if stats.TotalPlays != 8 {
		t.Errorf("TotalPlays = %d, want 8", stats.TotalPlays)
	}
	if stats.TopPoints != 950_000 {
		t.Errorf("TopPoints = %d, want 950000", stats.TopPoints)
	}
}
