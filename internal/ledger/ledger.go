// Package ledger merges incoming attempts into durable per-player best
// records. Merging is read-then-conditionally-write per (player, chart) key
// so the backing store can serialize concurrent submissions with optimistic
// retry.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/scorecore/internal/domain"
)

// ScoreStore is the durable keyed store behind the ledger.
type ScoreStore interface {
	GetScore(ctx context.Context, playerID string, chart domain.ChartKey) (*domain.ScoreRecord, error)
	PutScore(ctx context.Context, record *domain.ScoreRecord) error
	ListScores(ctx context.Context, playerID string) ([]domain.ScoreRecord, error)
}

// Ledger provides best-score merging and play-statistics aggregation.
type Ledger struct {
	store  ScoreStore
	logger *slog.Logger
}

// New creates a ledger over the given store.
func New(store ScoreStore, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger,
	}
}

// clampPoints bounds a client-reported score into the valid chart range.
// Out-of-range input is clamped rather than rejected; the client is not
// fully trusted but must not be denied service.
func clampPoints(points int) int {
	if points < 0 {
		return 0
	}
	if points > domain.MaxChartScore {
		return domain.MaxChartScore
	}
	return points
}

// MergeAttempt folds one attempt into the best-known record for the
// attempt's chart. Best fields are replaced when the attempt's points are
// greater than or equal to the stored best (ties favor the newest attempt),
// and the medal is recomputed only on replacement so it never regresses.
// The per-chart play/clear/fc/ex counters come from the client and are
// stored verbatim, guarded against going backwards.
func (l *Ledger) MergeAttempt(ctx context.Context, playerID string, attempt domain.Attempt) (*domain.ScoreRecord, bool, error) {
	record, err := l.store.GetScore(ctx, playerID, attempt.Chart)
	if err != nil {
		if !errors.Is(err, domain.ErrScoreNotFound) {
			return nil, false, fmt.Errorf("getting score record: %w", err)
		}
		record = &domain.ScoreRecord{
			PlayerID: playerID,
			Chart:    attempt.Chart,
		}
	}

	points := clampPoints(attempt.Points)

	record.PlayCount = maxInt(record.PlayCount, attempt.PlayCount)
	record.ClearCount = maxInt(record.ClearCount, attempt.ClearCount)
	record.FullCombos = maxInt(record.FullCombos, attempt.FullCombos)
	record.Excellents = maxInt(record.Excellents, attempt.Excellents)

	newBest := points >= record.BestPoints
	if newBest {
		record.BestPoints = points
		record.BestReplay = attempt.Replay
		record.MusicRate = attempt.MusicRate
	}
	// The medal tracks the best clear quality ever achieved, independent of
	// the score that earned it.
	if medal := domain.ClassifyMedal(attempt.Flags); medal > record.ClearMedal {
		record.ClearMedal = medal
	}
	record.UpdatedAt = attempt.Timestamp

	if err := l.store.PutScore(ctx, record); err != nil {
		return nil, false, fmt.Errorf("putting score record: %w", err)
	}
	return record, newBest, nil
}

// PlayerStats aggregates a player's records across every chart.
func (l *Ledger) PlayerStats(ctx context.Context, playerID string) (*domain.PlayerStats, error) {
	records, err := l.store.ListScores(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing score records: %w", err)
	}

	stats := &domain.PlayerStats{PlayerID: playerID}
	for _, record := range records {
		stats.ChartsKnown++
		stats.TotalPlays += record.PlayCount
		stats.TotalClears += record.ClearCount
		stats.FullCombos += record.FullCombos
		stats.Excellents += record.Excellents
		if record.BestPoints > stats.TopPoints {
			stats.TopPoints = record.BestPoints
		}
	}
	return stats, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
