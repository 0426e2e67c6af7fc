package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// TrackResult is the outcome of tracking a query for a user.
type TrackResult struct {
	DDay         *UserDDay
	Movie        *Movie
	WaitingUsers int64
	// Created is false when the user already tracked the movie.
	Created bool
}

// Preview is a resolved movie with its label, not persisted.
type Preview struct {
	Movie     *CanonicalMovie
	DDayLabel string
}

// DDayUseCase persists user countdowns on top of the lookup orchestrator.
type DDayUseCase struct {
	lookup   *LookupUseCase
	movies   MovieRepo
	ddays    UserDDayRepo
	rankings RankingRepo
	tx       Transaction
	loc      *time.Location
	now      func() time.Time
	log      *log.Helper
}

// NewDDayUseCase creates a new DDayUseCase instance
func NewDDayUseCase(lookup *LookupUseCase, movies MovieRepo, ddays UserDDayRepo, rankings RankingRepo, tx Transaction, loc *time.Location, logger log.Logger) *DDayUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DDayUseCase{
		lookup:   lookup,
		movies:   movies,
		ddays:    ddays,
		rankings: rankings,
		tx:       tx,
		loc:      loc,
		now:      time.Now,
		log:      log.NewHelper(logger),
	}
}

// Today is the current calendar date in the configured timezone.
func (uc *DDayUseCase) Today() time.Time {
	return uc.now().In(uc.loc)
}

// BuildMovie turns a canonical movie into persistence fields and computes
// the label for today.
func BuildMovie(movie *CanonicalMovie, today time.Time) (*Movie, string) {
	m := &Movie{
		Title:       movie.Title,
		Distributor: movie.Distributor,
		ReleaseDate: movie.ReleaseDate,
		Director:    movie.Director,
		Cast:        movie.CastAsString(),
		Genre:       movie.GenreAsString(),
		PosterURL:   movie.PosterURL,
		Source:      movie.Source,
		ExternalID:  movie.ExternalID,
		IsRerelease: movie.IsRerelease,
		ContentType: movie.ContentType,
	}
	if m.ContentType == "" {
		m.ContentType = ContentTypeMovie
	}
	return m, CalculateLabel(movie.ReleaseDate, today)
}

// Preview resolves a query without persisting anything.
func (uc *DDayUseCase) Preview(ctx context.Context, query string) (*Preview, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidQuery)
	}
	movie, err := uc.lookup.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Movie:     movie,
		DDayLabel: CalculateLabel(movie.ReleaseDate, uc.Today()),
	}, nil
}

// Track resolves the query and subscribes the user to the resulting movie.
// Tracking the same movie twice returns the existing row with Created false.
func (uc *DDayUseCase) Track(ctx context.Context, userID, query string) (*TrackResult, error) {
	query = strings.TrimSpace(query)
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidQuery)
	}
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidQuery)
	}

	canonical, err := uc.lookup.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	params, label := BuildMovie(canonical, uc.Today())

	result := &TrackResult{}
	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		movie, err := uc.ensureMovie(ctx, params)
		if err != nil {
			return err
		}
		result.Movie = movie

		dday, created, err := uc.ensureUserDDay(ctx, userID, movie.ID, query, label)
		if err != nil {
			return err
		}
		result.DDay = dday
		result.Created = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Created {
		if err := uc.ddays.InvalidateWaitingUsers(ctx, result.Movie.ID); err != nil {
			uc.log.Warnf("failed to invalidate waiting users for movie %s: %v", result.Movie.ID, err)
		}
		if err := uc.rankings.IncrAwaited(ctx, result.Movie.ID); err != nil {
			uc.log.Warnf("failed to update awaited ranking for movie %s: %v", result.Movie.ID, err)
		}
	}

	count, err := uc.ddays.CountWaitingUsers(ctx, result.Movie.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count waiting users: %w", err)
	}
	result.WaitingUsers = count

	return result, nil
}

// ensureMovie reuses the shared row for the provenance pair. Without
// provenance a new row is always created, since such rows are never matched.
// A concurrent insert of the same pair surfaces as ErrConstraintViolation and
// is resolved by reading the winner's row.
func (uc *DDayUseCase) ensureMovie(ctx context.Context, params *Movie) (*Movie, error) {
	if !hasProvenance(params) {
		created, err := uc.movies.CreateMovie(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to create movie: %w", err)
		}
		return created, nil
	}

	existing, err := uc.findByProvenance(ctx, params)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := uc.movies.CreateMovie(ctx, params)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, ErrConstraintViolation) {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	uc.log.Infof("movie %q already created concurrently, re-reading", params.Title)
	existing, err = uc.findByProvenance(ctx, params)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("movie %q vanished after conflict: %w", params.Title, ErrConstraintViolation)
	}
	return existing, nil
}

func (uc *DDayUseCase) findByProvenance(ctx context.Context, params *Movie) (*Movie, error) {
	movie, err := uc.movies.FindMovieByProvenance(ctx, params.Source, params.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find movie by provenance: %w", err)
	}
	return movie, nil
}

func hasProvenance(m *Movie) bool {
	return m.Source != nil && *m.Source != "" && m.ExternalID != nil && *m.ExternalID != ""
}

func (uc *DDayUseCase) ensureUserDDay(ctx context.Context, userID, movieID, query, label string) (*UserDDay, bool, error) {
	existing, err := uc.ddays.FindUserDDay(ctx, userID, movieID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find user dday: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	created, err := uc.ddays.CreateUserDDay(ctx, userID, movieID, query, label)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, ErrConstraintViolation) {
		return nil, false, fmt.Errorf("failed to create user dday: %w", err)
	}

	existing, err = uc.ddays.FindUserDDay(ctx, userID, movieID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find user dday: %w", err)
	}
	if existing == nil {
		return nil, false, fmt.Errorf("user dday vanished after conflict: %w", ErrConstraintViolation)
	}
	return existing, false, nil
}

// List returns the user's ddays ordered by release date.
func (uc *DDayUseCase) List(ctx context.Context, userID string) ([]*TrackedDDay, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidQuery)
	}
	ddays, err := uc.ddays.ListUserDDays(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ddays: %w", err)
	}
	return ddays, nil
}

// WaitingUsers counts how many users track the movie.
func (uc *DDayUseCase) WaitingUsers(ctx context.Context, movieID string) (int64, error) {
	if movieID == "" {
		return 0, fmt.Errorf("%w: missing movie id", ErrInvalidQuery)
	}
	movie, err := uc.movies.FindMovieByID(ctx, movieID)
	if err != nil {
		return 0, fmt.Errorf("failed to find movie: %w", err)
	}
	if movie == nil {
		return 0, fmt.Errorf("movie %s: %w", movieID, ErrTitleNotFound)
	}
	count, err := uc.ddays.CountWaitingUsers(ctx, movieID)
	if err != nil {
		return 0, fmt.Errorf("failed to count waiting users: %w", err)
	}
	return count, nil
}

// TopAwaited returns the most tracked movies.
func (uc *DDayUseCase) TopAwaited(ctx context.Context, limit int) ([]*AwaitedMovie, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	top, err := uc.rankings.TopAwaited(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get awaited ranking: %w", err)
	}
	return top, nil
}
