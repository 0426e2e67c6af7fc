package data

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"dday/internal/biz"
	"dday/internal/conf"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestData(t *testing.T) *Data {
	t.Helper()
	return openTestData(t, nil)
}

// newTestDataWithRedis backs the cache with an in-process redis server.
func newTestDataWithRedis(t *testing.T) (*Data, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	d := openTestData(t, &conf.Data_Redis{Addr: mr.Addr()})
	require.NotNil(t, d.rdb)
	return d, mr
}

func openTestData(t *testing.T, rc *conf.Data_Redis) *Data {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	d, cleanup, err := NewData(&conf.Data{
		Database: &conf.Data_Database{
			Driver:      "sqlite",
			Source:      fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name),
			AutoMigrate: true,
		},
		Redis: rc,
	}, log.DefaultLogger)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return d
}

func testMovie(title, externalID string, release time.Time) *biz.Movie {
	m := &biz.Movie{
		Title:       title,
		ReleaseDate: release,
		ContentType: biz.ContentTypeMovie,
		Cast:        strPtr("Jodie Comer, Aaron Taylor-Johnson"),
	}
	if externalID != "" {
		m.Source = strPtr("tmdb")
		m.ExternalID = strPtr(externalID)
	}
	return m
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOpenDialectorRejectsUnknownDriver(t *testing.T) {
	_, _, err := openDialector(&conf.Data_Database{Driver: "oracle", Source: "x"})
	assert.Error(t, err)
	_, _, err = openDialector(&conf.Data_Database{Driver: "sqlite"})
	assert.Error(t, err)
}

func TestCreateMovieDeduplicatesProvenance(t *testing.T) {
	d := newTestData(t)
	repo := NewMovieRepo(d, log.DefaultLogger)
	ctx := context.Background()

	first, err := repo.CreateMovie(ctx, testMovie("28년 후", "1100988", day(2025, time.June, 19)))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.LastUpdated.IsZero())

	_, err = repo.CreateMovie(ctx, testMovie("28 Years Later", "1100988", day(2025, time.June, 20)))
	assert.ErrorIs(t, err, biz.ErrConstraintViolation)

	var count int64
	require.NoError(t, d.db.Model(&Movie{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindMovieByProvenance(ctx, strPtr("tmdb"), strPtr("1100988"))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "28년 후", found.Title)
	assert.Equal(t, []string{"Jodie Comer", "Aaron Taylor-Johnson"}, biz.SplitList(found.Cast))
}

func TestMoviesWithoutProvenanceAreNeverMatched(t *testing.T) {
	d := newTestData(t)
	repo := NewMovieRepo(d, log.DefaultLogger)
	ctx := context.Background()

	_, err := repo.CreateMovie(ctx, testMovie("독립영화", "", day(2025, time.May, 1)))
	require.NoError(t, err)
	_, err = repo.CreateMovie(ctx, testMovie("독립영화", "", day(2025, time.May, 1)))
	require.NoError(t, err)

	found, err := repo.FindMovieByProvenance(ctx, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, found)

	byTitle, err := repo.FindMovieByTitle(ctx, "독립영화")
	require.NoError(t, err)
	assert.NotNil(t, byTitle)

	missing, err := repo.FindMovieByTitle(ctx, "없는 영화")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestConstraintViolationInsideTransactionCanBeReRead(t *testing.T) {
	d := newTestData(t)
	repo := NewMovieRepo(d, log.DefaultLogger)
	ctx := context.Background()

	winner, err := repo.CreateMovie(ctx, testMovie("28년 후", "1100988", day(2025, time.June, 19)))
	require.NoError(t, err)

	err = d.InTx(ctx, func(ctx context.Context) error {
		_, err := repo.CreateMovie(ctx, testMovie("28년 후", "1100988", day(2025, time.June, 19)))
		require.ErrorIs(t, err, biz.ErrConstraintViolation)

		found, err := repo.FindMovieByProvenance(ctx, strPtr("tmdb"), strPtr("1100988"))
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, winner.ID, found.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestUserDDayLifecycle(t *testing.T) {
	d := newTestData(t)
	movies := NewMovieRepo(d, log.DefaultLogger)
	ddays := NewUserDDayRepo(d, log.DefaultLogger)
	ctx := context.Background()

	movie, err := movies.CreateMovie(ctx, testMovie("28년 후", "1100988", day(2025, time.June, 19)))
	require.NoError(t, err)

	created, err := ddays.CreateUserDDay(ctx, "user-1", movie.ID, "28년후", "D-10")
	require.NoError(t, err)
	assert.Equal(t, "28년후", created.QueryName)
	assert.Equal(t, "D-10", created.DDayLabel)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = ddays.CreateUserDDay(ctx, "user-1", movie.ID, "28 years later", "D-10")
	assert.ErrorIs(t, err, biz.ErrConstraintViolation)

	found, err := ddays.FindUserDDay(ctx, "user-1", movie.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := ddays.FindUserDDay(ctx, "user-2", movie.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = ddays.CreateUserDDay(ctx, "user-2", movie.ID, "28년 후", "D-10")
	require.NoError(t, err)

	count, err := ddays.CountWaitingUsers(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestListUserDDaysOrdersByReleaseDate(t *testing.T) {
	d := newTestData(t)
	movies := NewMovieRepo(d, log.DefaultLogger)
	ddays := NewUserDDayRepo(d, log.DefaultLogger)
	ctx := context.Background()

	releases := []struct {
		title    string
		id       string
		released time.Time
	}{
		{"Avatar: Fire and Ash", "83533", day(2025, time.December, 17)},
		{"28년 후", "1100988", day(2025, time.June, 19)},
		{"Zootopia 2", "1084242", day(2025, time.November, 26)},
	}
	for _, r := range releases {
		m, err := movies.CreateMovie(ctx, testMovie(r.title, r.id, r.released))
		require.NoError(t, err)
		_, err = ddays.CreateUserDDay(ctx, "user-1", m.ID, r.title, "D-1")
		require.NoError(t, err)
	}
	other, err := movies.CreateMovie(ctx, testMovie("Other", "1", day(2020, time.January, 1)))
	require.NoError(t, err)
	_, err = ddays.CreateUserDDay(ctx, "user-2", other.ID, "other", "D+1")
	require.NoError(t, err)

	list, err := ddays.ListUserDDays(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "28년 후", list[0].Movie.Title)
	assert.Equal(t, "Zootopia 2", list[1].Movie.Title)
	assert.Equal(t, "Avatar: Fire and Ash", list[2].Movie.Title)
	assert.Equal(t, list[0].Movie.ID, list[0].DDay.MovieID)
	assert.True(t, list[0].Movie.ReleaseDate.Equal(day(2025, time.June, 19)))
}

func TestDeletingMovieCascadesToUserDDays(t *testing.T) {
	d := newTestData(t)
	movies := NewMovieRepo(d, log.DefaultLogger)
	ddays := NewUserDDayRepo(d, log.DefaultLogger)
	ctx := context.Background()

	movie, err := movies.CreateMovie(ctx, testMovie("28년 후", "1100988", day(2025, time.June, 19)))
	require.NoError(t, err)
	_, err = ddays.CreateUserDDay(ctx, "user-1", movie.ID, "28년후", "D-10")
	require.NoError(t, err)

	require.NoError(t, d.db.Delete(&Movie{ID: movie.ID}).Error)

	count, err := ddays.CountWaitingUsers(ctx, movie.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTopAwaitedFallsBackToDatabase(t *testing.T) {
	d := newTestData(t)
	movies := NewMovieRepo(d, log.DefaultLogger)
	ddays := NewUserDDayRepo(d, log.DefaultLogger)
	rankings := NewRankingRepo(d, log.DefaultLogger)
	ctx := context.Background()

	popular, err := movies.CreateMovie(ctx, testMovie("28년 후", "1100988", day(2025, time.June, 19)))
	require.NoError(t, err)
	niche, err := movies.CreateMovie(ctx, testMovie("Zootopia 2", "1084242", day(2025, time.November, 26)))
	require.NoError(t, err)

	for _, user := range []string{"a", "b", "c"} {
		_, err := ddays.CreateUserDDay(ctx, user, popular.ID, "28년후", "D-10")
		require.NoError(t, err)
	}
	_, err = ddays.CreateUserDDay(ctx, "a", niche.ID, "zootopia", "D-170")
	require.NoError(t, err)

	// without redis this is a no-op
	require.NoError(t, rankings.IncrAwaited(ctx, popular.ID))

	top, err := rankings.TopAwaited(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, popular.ID, top[0].Movie.ID)
	assert.Equal(t, int64(3), top[0].WaitingUsers)
	assert.Equal(t, int64(1), top[1].WaitingUsers)

	top, err = rankings.TopAwaited(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestTopAwaitedSeedsRedisFromDatabase(t *testing.T) {
	d, mr := newTestDataWithRedis(t)
	movies := NewMovieRepo(d, log.DefaultLogger)
	ddays := NewUserDDayRepo(d, log.DefaultLogger)
	rankings := NewRankingRepo(d, log.DefaultLogger)
	ctx := context.Background()

	popular, err := movies.CreateMovie(ctx, testMovie("28년 후", "1100988", day(2025, time.June, 19)))
	require.NoError(t, err)
	niche, err := movies.CreateMovie(ctx, testMovie("Zootopia 2", "1084242", day(2025, time.November, 26)))
	require.NoError(t, err)

	// rows committed while the ZSet does not exist yet
	for _, user := range []string{"a", "b"} {
		_, err := ddays.CreateUserDDay(ctx, user, popular.ID, "28년후", "D-10")
		require.NoError(t, err)
		require.NoError(t, rankings.IncrAwaited(ctx, popular.ID))
	}
	assert.False(t, mr.Exists(awaitedRankingKey))

	top, err := rankings.TopAwaited(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, popular.ID, top[0].Movie.ID)
	assert.Equal(t, int64(2), top[0].WaitingUsers)
	require.True(t, mr.Exists(awaitedRankingKey))
	assert.Positive(t, mr.TTL(awaitedRankingKey))

	score, err := mr.ZScore(awaitedRankingKey, popular.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(2), score)

	_, err = ddays.CreateUserDDay(ctx, "a", niche.ID, "zootopia", "D-170")
	require.NoError(t, err)
	require.NoError(t, rankings.IncrAwaited(ctx, niche.ID))

	top, err = rankings.TopAwaited(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(1), top[1].WaitingUsers)
}

func TestTopAwaitedRecoversFromLostIncrement(t *testing.T) {
	d, mr := newTestDataWithRedis(t)
	movies := NewMovieRepo(d, log.DefaultLogger)
	ddays := NewUserDDayRepo(d, log.DefaultLogger)
	rankings := NewRankingRepo(d, log.DefaultLogger)
	ctx := context.Background()

	movie, err := movies.CreateMovie(ctx, testMovie("28년 후", "1100988", day(2025, time.June, 19)))
	require.NoError(t, err)
	_, err = ddays.CreateUserDDay(ctx, "a", movie.ID, "28년후", "D-10")
	require.NoError(t, err)

	top, err := rankings.TopAwaited(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(1), top[0].WaitingUsers)

	// a committed row whose increment never reached redis
	_, err = ddays.CreateUserDDay(ctx, "b", movie.ID, "28년후", "D-10")
	require.NoError(t, err)

	top, err = rankings.TopAwaited(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), top[0].WaitingUsers)

	mr.FastForward(awaitedRankingTTL)

	top, err = rankings.TopAwaited(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(2), top[0].WaitingUsers)
}

func TestIncrAwaitedDropsRankingOnFailure(t *testing.T) {
	d, mr := newTestDataWithRedis(t)
	rankings := NewRankingRepo(d, log.DefaultLogger)
	ctx := context.Background()

	// a non-ZSet value makes ZINCRBY fail
	require.NoError(t, mr.Set(awaitedRankingKey, "broken"))

	assert.Error(t, rankings.IncrAwaited(ctx, "movie-1"))
	assert.False(t, mr.Exists(awaitedRankingKey))
}

func TestInvalidateWaitingUsersClearsCachedCount(t *testing.T) {
	d, mr := newTestDataWithRedis(t)
	movies := NewMovieRepo(d, log.DefaultLogger)
	ddays := NewUserDDayRepo(d, log.DefaultLogger)
	ctx := context.Background()

	movie, err := movies.CreateMovie(ctx, testMovie("28년 후", "1100988", day(2025, time.June, 19)))
	require.NoError(t, err)
	_, err = ddays.CreateUserDDay(ctx, "a", movie.ID, "28년후", "D-10")
	require.NoError(t, err)

	count, err := ddays.CountWaitingUsers(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.True(t, mr.Exists(waitingCacheKey(movie.ID)))

	_, err = ddays.CreateUserDDay(ctx, "b", movie.ID, "28년후", "D-10")
	require.NoError(t, err)

	// creating the row alone leaves the cached count in place
	count, err = ddays.CountWaitingUsers(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, ddays.InvalidateWaitingUsers(ctx, movie.ID))
	assert.False(t, mr.Exists(waitingCacheKey(movie.ID)))

	count, err = ddays.CountWaitingUsers(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestInvalidateWaitingUsersWithoutRedis(t *testing.T) {
	d := newTestData(t)
	ddays := NewUserDDayRepo(d, log.DefaultLogger)

	assert.NoError(t, ddays.InvalidateWaitingUsers(context.Background(), "movie-1"))
}
