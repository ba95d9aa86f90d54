// Package redis keeps the hot read paths out of PostgreSQL: per-chart
// leaderboards as sorted sets and the current challenge schedule as a hash.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scorecore/internal/config"
	"github.com/scorecore/internal/domain"
)

// CacheService provides Redis-based leaderboard and schedule caching
type CacheService struct {
	client *redis.Client
	logger *slog.Logger
}

// NewCacheService creates a new Redis cache service
func NewCacheService(cfg *config.RedisConfig, logger *slog.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &CacheService{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (s *CacheService) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client
func (s *CacheService) Client() *redis.Client {
	return s.client
}

// chartKey returns the Redis key for a chart's leaderboard sorted set
func (s *CacheService) chartKey(chart domain.ChartKey) string {
	return fmt.Sprintf("chart:%s:ranking", chart.String())
}

// scheduleKey returns the Redis key for a period's challenge schedule
func (s *CacheService) scheduleKey(periodStart time.Time) string {
	return fmt.Sprintf("challenge:%d", periodStart.Unix())
}

// SetScoreIfBetter records a player's points on a chart leaderboard only if
// they beat the cached best. Higher always wins here; ties are not rewritten
// because the sorted set carries no replay or medal to refresh.
func (s *CacheService) SetScoreIfBetter(ctx context.Context, chart domain.ChartKey, playerID string, points int) (bool, error) {
	key := s.chartKey(chart)

	current, err := s.client.ZScore(ctx, key, playerID).Result()
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("getting current score: %w", err)
	}

	if err != redis.Nil && float64(points) <= current {
		return false, nil
	}

	err = s.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(points),
		Member: playerID,
	}).Err()
	if err != nil {
		return false, fmt.Errorf("setting score: %w", err)
	}
	return true, nil
}

// TopN returns the top N players on a chart (descending by points)
func (s *CacheService) TopN(ctx context.Context, chart domain.ChartKey, n int) ([]domain.RankEntry, error) {
	key := s.chartKey(chart)
	results, err := s.client.ZRevRangeWithScores(ctx, key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top n: %w", err)
	}

	entries := make([]domain.RankEntry, len(results))
	for i, result := range results {
		entries[i] = domain.RankEntry{
			Rank:     int64(i + 1),
			PlayerID: result.Member.(string),
			Points:   int(result.Score),
		}
	}
	return entries, nil
}

// PlayerRank returns a player's rank and points on a chart
func (s *CacheService) PlayerRank(ctx context.Context, chart domain.ChartKey, playerID string) (*domain.RankEntry, error) {
	key := s.chartKey(chart)

	pipe := s.client.Pipeline()
	rankCmd := pipe.ZRevRank(ctx, key, playerID)
	scoreCmd := pipe.ZScore(ctx, key, playerID)
	_, err := pipe.Exec(ctx)

	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrScoreNotFound
		}
		return nil, fmt.Errorf("getting player rank: %w", err)
	}

	rank, err := rankCmd.Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrScoreNotFound
		}
		return nil, fmt.Errorf("getting rank result: %w", err)
	}

	score, err := scoreCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("getting score result: %w", err)
	}

	return &domain.RankEntry{
		Rank:     rank + 1, // Convert 0-indexed to 1-indexed
		PlayerID: playerID,
		Points:   int(score),
	}, nil
}

// ChartCount returns the number of ranked players on a chart
func (s *CacheService) ChartCount(ctx context.Context, chart domain.ChartKey) (int64, error) {
	key := s.chartKey(chart)
	count, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("getting count: %w", err)
	}
	return count, nil
}

// CacheSchedule stores a challenge schedule with a TTL ending shortly after
// the period so stale entries expire on their own.
func (s *CacheService) CacheSchedule(ctx context.Context, schedule *domain.ChallengeSchedule) error {
	if len(schedule.SongIDs) < 2 {
		return domain.ErrInvalidRequest
	}
	key := s.scheduleKey(schedule.PeriodStart)

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key,
		"period_start", schedule.PeriodStart.Unix(),
		"period_end", schedule.PeriodEnd.Unix(),
		"today", schedule.SongIDs[0],
		"bonus", schedule.SongIDs[1],
	)
	ttl := time.Until(schedule.PeriodEnd) + time.Hour
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("caching schedule: %w", err)
	}
	return nil
}

// CachedSchedule retrieves the cached schedule for the period containing
// now. A miss returns (nil, nil); the caller falls back to the database.
func (s *CacheService) CachedSchedule(ctx context.Context, periodStart time.Time) (*domain.ChallengeSchedule, error) {
	key := s.scheduleKey(periodStart)
	result, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("getting cached schedule: %w", err)
	}
	if len(result) == 0 {
		return nil, nil
	}

	start, _ := strconv.ParseInt(result["period_start"], 10, 64)
	end, _ := strconv.ParseInt(result["period_end"], 10, 64)
	today, _ := strconv.Atoi(result["today"])
	bonus, _ := strconv.Atoi(result["bonus"])

	return &domain.ChallengeSchedule{
		PeriodStart: time.Unix(start, 0).UTC(),
		PeriodEnd:   time.Unix(end, 0).UTC(),
		SongIDs:     []int{today, bonus},
	}, nil
}
