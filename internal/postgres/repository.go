// Package postgres implements the durable stores behind the ledger, the
// progress evaluator, the scheduler, and the profile read path.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scorecore/internal/config"
	"github.com/scorecore/internal/domain"
)

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			player_id VARCHAR(64) NOT NULL,
			song_id INT NOT NULL,
			chart_type SMALLINT NOT NULL,
			best_points INT NOT NULL DEFAULT 0,
			play_count INT NOT NULL DEFAULT 0,
			clear_count INT NOT NULL DEFAULT 0,
			full_combo_count INT NOT NULL DEFAULT 0,
			excellent_count INT NOT NULL DEFAULT 0,
			clear_medal SMALLINT NOT NULL DEFAULT 0,
			best_replay BYTEA,
			best_music_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (player_id, song_id, chart_type)
		)`,
		`CREATE TABLE IF NOT EXISTS course_progress (
			player_id VARCHAR(64) NOT NULL,
			course_id INT NOT NULL,
			seen BOOLEAN NOT NULL DEFAULT FALSE,
			played BOOLEAN NOT NULL DEFAULT FALSE,
			cleared BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (player_id, course_id)
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			player_id VARCHAR(64) NOT NULL,
			version SMALLINT NOT NULL,
			tune_cnt INT NOT NULL DEFAULT 0,
			save_cnt INT NOT NULL DEFAULT 0,
			clear_cnt INT NOT NULL DEFAULT 0,
			fc_cnt INT NOT NULL DEFAULT 0,
			ex_cnt INT NOT NULL DEFAULT 0,
			match_cnt INT NOT NULL DEFAULT 0,
			beat_cnt INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (player_id, version)
		)`,
		`CREATE TABLE IF NOT EXISTS songs (
			id INT NOT NULL,
			version SMALLINT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			PRIMARY KEY (id, version)
		)`,
		`CREATE TABLE IF NOT EXISTS schedule_markers (
			scope VARCHAR(64) NOT NULL,
			period_start TIMESTAMP NOT NULL,
			claimed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (scope, period_start)
		)`,
		`CREATE TABLE IF NOT EXISTS challenge_schedules (
			period_start TIMESTAMP PRIMARY KEY,
			period_end TIMESTAMP NOT NULL,
			today_song INT NOT NULL,
			bonus_song INT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS schedule_events (
			id VARCHAR(64) PRIMARY KEY,
			version SMALLINT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_course_progress_player ON course_progress(player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_songs_version_active ON songs(version) WHERE active`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// GetScore retrieves the best-known record for a (player, chart) pair
func (r *Repository) GetScore(ctx context.Context, playerID string, chart domain.ChartKey) (*domain.ScoreRecord, error) {
	storage, err := chart.Storage()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT best_points, play_count, clear_count, full_combo_count, excellent_count,
		       clear_medal, best_replay, best_music_rate, updated_at
		FROM scores
		WHERE player_id = $1 AND song_id = $2 AND chart_type = $3
	`
	record := domain.ScoreRecord{PlayerID: playerID, Chart: chart}
	err = r.pool.QueryRow(ctx, query, playerID, chart.SongID, int(storage)).Scan(
		&record.BestPoints,
		&record.PlayCount,
		&record.ClearCount,
		&record.FullCombos,
		&record.Excellents,
		&record.ClearMedal,
		&record.BestReplay,
		&record.MusicRate,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScoreNotFound
		}
		return nil, fmt.Errorf("getting score: %w", err)
	}
	return &record, nil
}

// PutScore upserts a score record
func (r *Repository) PutScore(ctx context.Context, record *domain.ScoreRecord) error {
	storage, err := record.Chart.Storage()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scores (player_id, song_id, chart_type, best_points, play_count, clear_count,
		                    full_combo_count, excellent_count, clear_medal, best_replay, best_music_rate, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (player_id, song_id, chart_type)
		DO UPDATE SET
			best_points = GREATEST(scores.best_points, $4),
			play_count = GREATEST(scores.play_count, $5),
			clear_count = GREATEST(scores.clear_count, $6),
			full_combo_count = GREATEST(scores.full_combo_count, $7),
			excellent_count = GREATEST(scores.excellent_count, $8),
			clear_medal = $9,
			best_replay = $10,
			best_music_rate = $11,
			updated_at = $12
	`
	_, err = r.pool.Exec(ctx, query,
		record.PlayerID,
		record.Chart.SongID,
		int(storage),
		record.BestPoints,
		record.PlayCount,
		record.ClearCount,
		record.FullCombos,
		record.Excellents,
		int(record.ClearMedal),
		record.BestReplay,
		record.MusicRate,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("putting score: %w", err)
	}
	return nil
}

// ListScores retrieves all score records for a player
func (r *Repository) ListScores(ctx context.Context, playerID string) ([]domain.ScoreRecord, error) {
	query := `
		SELECT song_id, chart_type, best_points, play_count, clear_count, full_combo_count,
		       excellent_count, clear_medal, best_replay, best_music_rate, updated_at
		FROM scores
		WHERE player_id = $1
		ORDER BY song_id, chart_type
	`
	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing scores: %w", err)
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		record := domain.ScoreRecord{PlayerID: playerID}
		var chartType int
		err := rows.Scan(
			&record.Chart.SongID,
			&chartType,
			&record.BestPoints,
			&record.PlayCount,
			&record.ClearCount,
			&record.FullCombos,
			&record.Excellents,
			&record.ClearMedal,
			&record.BestReplay,
			&record.MusicRate,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		tier, mode, err := domain.FromStorageChart(domain.StorageChart(chartType))
		if err != nil {
			r.logger.Warn("skipping score row with unknown chart type", "chart_type", chartType)
			continue
		}
		record.Chart.Tier = tier
		record.Chart.Mode = mode
		records = append(records, record)
	}
	return records, nil
}

// GetCourseProgress retrieves the progress row for a (player, course) pair
func (r *Repository) GetCourseProgress(ctx context.Context, playerID string, courseID int) (*domain.CourseProgress, error) {
	query := `
		SELECT seen, played, cleared
		FROM course_progress
		WHERE player_id = $1 AND course_id = $2
	`
	progress := domain.CourseProgress{PlayerID: playerID, CourseID: courseID}
	err := r.pool.QueryRow(ctx, query, playerID, courseID).Scan(
		&progress.Seen,
		&progress.Played,
		&progress.Cleared,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProgressNotFound
		}
		return nil, fmt.Errorf("getting course progress: %w", err)
	}
	return &progress, nil
}

// PutCourseProgress upserts a progress row. Flags only ever turn on at the
// storage level too, so racing submissions cannot unset a bit.
func (r *Repository) PutCourseProgress(ctx context.Context, progress *domain.CourseProgress) error {
	query := `
		INSERT INTO course_progress (player_id, course_id, seen, played, cleared, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (player_id, course_id)
		DO UPDATE SET
			seen = course_progress.seen OR $3,
			played = course_progress.played OR $4,
			cleared = course_progress.cleared OR $5,
			updated_at = $6
	`
	_, err := r.pool.Exec(ctx, query,
		progress.PlayerID,
		progress.CourseID,
		progress.Seen,
		progress.Played,
		progress.Cleared,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("putting course progress: %w", err)
	}
	return nil
}

// ListCourseProgress retrieves all progress rows for a player
func (r *Repository) ListCourseProgress(ctx context.Context, playerID string) ([]domain.CourseProgress, error) {
	query := `
		SELECT course_id, seen, played, cleared
		FROM course_progress
		WHERE player_id = $1
		ORDER BY course_id
	`
	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing course progress: %w", err)
	}
	defer rows.Close()

	var all []domain.CourseProgress
	for rows.Next() {
		progress := domain.CourseProgress{PlayerID: playerID}
		if err := rows.Scan(&progress.CourseID, &progress.Seen, &progress.Played, &progress.Cleared); err != nil {
			return nil, fmt.Errorf("scanning course progress: %w", err)
		}
		all = append(all, progress)
	}
	return all, nil
}

// GetProfile retrieves the profile row for a (player, version) pair
func (r *Repository) GetProfile(ctx context.Context, playerID string, version domain.GameVersion) (*domain.Profile, error) {
	query := `
		SELECT tune_cnt, save_cnt, clear_cnt, fc_cnt, ex_cnt, match_cnt, beat_cnt, updated_at
		FROM profiles
		WHERE player_id = $1 AND version = $2
	`
	profile := domain.Profile{PlayerID: playerID, Version: version}
	err := r.pool.QueryRow(ctx, query, playerID, int(version)).Scan(
		&profile.TuneCount,
		&profile.SaveCount,
		&profile.ClearCount,
		&profile.FullCombos,
		&profile.Excellents,
		&profile.MatchCount,
		&profile.BeatCount,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &profile, nil
}

// PutProfile upserts a profile row, storing the client counters verbatim
func (r *Repository) PutProfile(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (player_id, version, tune_cnt, save_cnt, clear_cnt, fc_cnt, ex_cnt, match_cnt, beat_cnt, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (player_id, version)
		DO UPDATE SET
			tune_cnt = $3, save_cnt = $4, clear_cnt = $5, fc_cnt = $6,
			ex_cnt = $7, match_cnt = $8, beat_cnt = $9, updated_at = $10
	`
	_, err := r.pool.Exec(ctx, query,
		profile.PlayerID,
		int(profile.Version),
		profile.TuneCount,
		profile.SaveCount,
		profile.ClearCount,
		profile.FullCombos,
		profile.Excellents,
		profile.MatchCount,
		profile.BeatCount,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("putting profile: %w", err)
	}
	return nil
}

// AllActiveSongIDs lists the active song catalog for a revision
func (r *Repository) AllActiveSongIDs(ctx context.Context, version domain.GameVersion) ([]int, error) {
	query := `SELECT id FROM songs WHERE version = $1 AND active ORDER BY id`
	rows, err := r.pool.Query(ctx, query, int(version))
	if err != nil {
		return nil, fmt.Errorf("listing active songs: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning song id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// TryClaim atomically claims the (scope, period) pair. The conditional
// insert is the whole idempotency story: exactly one racing process gets a
// row inserted, everyone else sees a conflict.
func (r *Repository) TryClaim(ctx context.Context, scope string, periodStart time.Time) (bool, error) {
	query := `
		INSERT INTO schedule_markers (scope, period_start)
		VALUES ($1, $2)
		ON CONFLICT (scope, period_start) DO NOTHING
	`
	result, err := r.pool.Exec(ctx, query, scope, periodStart)
	if err != nil {
		return false, fmt.Errorf("claiming schedule marker: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// PutSchedule persists a challenge schedule for its period
func (r *Repository) PutSchedule(ctx context.Context, schedule *domain.ChallengeSchedule) error {
	if len(schedule.SongIDs) < 2 {
		return domain.ErrInvalidRequest
	}
	query := `
		INSERT INTO challenge_schedules (period_start, period_end, today_song, bonus_song)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (period_start) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		schedule.PeriodStart,
		schedule.PeriodEnd,
		schedule.SongIDs[0],
		schedule.SongIDs[1],
	)
	if err != nil {
		return fmt.Errorf("putting challenge schedule: %w", err)
	}
	return nil
}

// CurrentSchedule retrieves the challenge schedule covering now
func (r *Repository) CurrentSchedule(ctx context.Context, now time.Time) (*domain.ChallengeSchedule, error) {
	query := `
		SELECT period_start, period_end, today_song, bonus_song
		FROM challenge_schedules
		WHERE period_start <= $1 AND period_end > $1
		ORDER BY period_start DESC
		LIMIT 1
	`
	var schedule domain.ChallengeSchedule
	var today, bonus int
	err := r.pool.QueryRow(ctx, query, now).Scan(
		&schedule.PeriodStart,
		&schedule.PeriodEnd,
		&today,
		&bonus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting current schedule: %w", err)
	}
	schedule.SongIDs = []int{today, bonus}
	return &schedule, nil
}

// RecordScheduleEvent records a schedule event for downstream consumers
func (r *Repository) RecordScheduleEvent(ctx context.Context, event *domain.ScheduleEvent, payload []byte) error {
	query := `INSERT INTO schedule_events (id, version, payload) VALUES ($1, $2, $3)`
	_, err := r.pool.Exec(ctx, query, event.ID, int(event.Version), payload)
	if err != nil {
		return fmt.Errorf("recording schedule event: %w", err)
	}
	return nil
}
