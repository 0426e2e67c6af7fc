package data

import (
	"context"
	"fmt"
	"time"

	"dday/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	awaitedRankingKey = "rank:movies:awaited"
	// the ZSet is rebuilt from the database at least this often, so a lost
	// increment is corrected on the next rebuild
	awaitedRankingTTL = 10 * time.Minute
)

type rankingRepo struct {
	data *Data
	log  *log.Helper
}

// NewRankingRepo creates a new ranking repository
func NewRankingRepo(data *Data, logger log.Logger) biz.RankingRepo {
	return &rankingRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// IncrAwaited bumps the movie in the Redis ZSet when the ZSet is built. A
// missing ZSet is left alone: the next TopAwaited seeds it from the database,
// which already holds the committed row. Without Redis it is a no-op.
func (r *rankingRepo) IncrAwaited(ctx context.Context, movieID string) error {
	if r.data.rdb == nil {
		return nil
	}
	exists, err := r.data.rdb.Exists(ctx, awaitedRankingKey).Result()
	if err != nil {
		return fmt.Errorf("failed to check awaited ranking: %w", err)
	}
	if exists == 0 {
		return nil
	}
	if err := r.data.rdb.ZIncrBy(ctx, awaitedRankingKey, 1, movieID).Err(); err != nil {
		// drop the ZSet so it is rebuilt instead of undercounting
		r.data.rdb.Del(ctx, awaitedRankingKey)
		return fmt.Errorf("failed to update awaited ranking: %w", err)
	}
	return nil
}

func (r *rankingRepo) TopAwaited(ctx context.Context, limit int) ([]*biz.AwaitedMovie, error) {
	counts, err := r.topFromRedis(ctx, limit)
	if err != nil {
		r.log.Warnf("failed to read awaited ranking from redis: %v", err)
		counts = nil
	}
	if counts == nil {
		if counts, err = r.topFromDB(ctx, limit); err != nil {
			return nil, err
		}
	}

	ids := make([]string, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.MovieID)
	}

	var movies []Movie
	if len(ids) > 0 {
		if err := r.data.DB(ctx).Where("id IN ?", ids).Find(&movies).Error; err != nil {
			return nil, fmt.Errorf("failed to load ranked movies: %w", err)
		}
	}
	byID := make(map[string]*Movie, len(movies))
	for i := range movies {
		byID[movies[i].ID] = &movies[i]
	}

	result := make([]*biz.AwaitedMovie, 0, len(counts))
	for _, c := range counts {
		m, ok := byID[c.MovieID]
		if !ok {
			continue
		}
		result = append(result, &biz.AwaitedMovie{
			Movie:        movieToBiz(m),
			WaitingUsers: c.Count,
		})
	}
	return result, nil
}

// topFromRedis reads the ZSet, seeding it from the database when it is
// missing. It returns nil without error when Redis is not configured.
func (r *rankingRepo) topFromRedis(ctx context.Context, limit int) ([]waitingCount, error) {
	if r.data.rdb == nil {
		return nil, nil
	}
	exists, err := r.data.rdb.Exists(ctx, awaitedRankingKey).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		if err := r.seedRanking(ctx); err != nil {
			return nil, err
		}
	}
	entries, err := r.data.rdb.ZRevRangeWithScores(ctx, awaitedRankingKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return zToCounts(entries), nil
}

// seedRanking rebuilds the ZSet from every movie's committed dday count.
func (r *rankingRepo) seedRanking(ctx context.Context) error {
	counts, err := r.topFromDB(ctx, -1)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}
	members := make([]redis.Z, 0, len(counts))
	for _, c := range counts {
		members = append(members, redis.Z{Score: float64(c.Count), Member: c.MovieID})
	}
	_, err = r.data.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, awaitedRankingKey)
		pipe.ZAdd(ctx, awaitedRankingKey, members...)
		pipe.Expire(ctx, awaitedRankingKey, awaitedRankingTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed awaited ranking: %w", err)
	}
	return nil
}

func zToCounts(entries []redis.Z) []waitingCount {
	counts := make([]waitingCount, 0, len(entries))
	for _, e := range entries {
		member, ok := e.Member.(string)
		if !ok {
			continue
		}
		counts = append(counts, waitingCount{MovieID: member, Count: int64(e.Score)})
	}
	return counts
}

func (r *rankingRepo) topFromDB(ctx context.Context, limit int) ([]waitingCount, error) {
	var counts []waitingCount
	err := r.data.DB(ctx).
		Model(&UserDDay{}).
		Select("movie_id, COUNT(*) AS count").
		Group("movie_id").
		Order("count DESC, movie_id").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate awaited ranking: %w", err)
	}
	return counts, nil
}
