package biz

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ContentType distinguishes movies from TV series.
type ContentType string

const (
	ContentTypeMovie ContentType = "movie"
	ContentTypeTV    ContentType = "tv"
)

// Error taxonomy
var (
	// ErrTitleNotFound means the catalog had no match for the resolved query.
	ErrTitleNotFound = errors.New("title not found")
	// ErrUpstreamUnavailable means the catalog could not be reached.
	ErrUpstreamUnavailable = errors.New("catalog unavailable")
	// ErrConstraintViolation means a uniqueness invariant was hit on insert.
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidQuery        = errors.New("invalid query")
)

// CanonicalMovie is the catalog-confirmed metadata for one title.
type CanonicalMovie struct {
	Title       string
	Distributor *string
	ReleaseDate time.Time
	Director    *string
	Cast        []string
	Genre       []string
	PosterURL   *string
	Source      *string
	ExternalID  *string
	IsRerelease bool
	ContentType ContentType
}

// CastAsString joins the billed cast for storage.
func (m *CanonicalMovie) CastAsString() *string {
	return joinList(m.Cast)
}

// GenreAsString joins the genre names for storage.
func (m *CanonicalMovie) GenreAsString() *string {
	return joinList(m.Genre)
}

const listSeparator = ", "

func joinList(items []string) *string {
	if len(items) == 0 {
		return nil
	}
	s := strings.Join(items, listSeparator)
	return &s
}

// SplitList is the inverse of the storage encoding used for cast and genre.
func SplitList(s *string) []string {
	if s == nil || *s == "" {
		return nil
	}
	return strings.Split(*s, listSeparator)
}

// Movie is a persisted canonical movie shared by every user tracking it.
type Movie struct {
	ID          string
	Title       string
	Distributor *string
	ReleaseDate time.Time
	Director    *string
	Cast        *string
	Genre       *string
	PosterURL   *string
	Source      *string
	ExternalID  *string
	IsRerelease bool
	ContentType ContentType
	LastUpdated time.Time
}

// UserDDay is one user's subscription to a movie countdown.
type UserDDay struct {
	ID        string
	UserID    string
	MovieID   string
	QueryName string
	DDayLabel string
	CreatedAt time.Time
}

// TrackedDDay pairs a user's dday with the movie it references.
type TrackedDDay struct {
	DDay  *UserDDay
	Movie *Movie
}

// AwaitedMovie is one entry of the most-awaited ranking.
type AwaitedMovie struct {
	Movie        *Movie
	WaitingUsers int64
}

// MovieRepo persists shared movie rows.
type MovieRepo interface {
	// FindMovieByProvenance returns nil when source or externalID is empty or nothing matches.
	FindMovieByProvenance(ctx context.Context, source, externalID *string) (*Movie, error)
	// FindMovieByTitle returns nil when nothing matches.
	FindMovieByTitle(ctx context.Context, title string) (*Movie, error)
	FindMovieByID(ctx context.Context, id string) (*Movie, error)
	// CreateMovie assigns the ID and returns ErrConstraintViolation on a duplicate provenance pair.
	CreateMovie(ctx context.Context, movie *Movie) (*Movie, error)
}

// UserDDayRepo persists per-user tracking rows.
type UserDDayRepo interface {
	// FindUserDDay returns nil when the user does not track the movie.
	FindUserDDay(ctx context.Context, userID, movieID string) (*UserDDay, error)
	// CreateUserDDay returns ErrConstraintViolation when the user already tracks the movie.
	CreateUserDDay(ctx context.Context, userID, movieID, queryName, label string) (*UserDDay, error)
	ListUserDDays(ctx context.Context, userID string) ([]*TrackedDDay, error)
	CountWaitingUsers(ctx context.Context, movieID string) (int64, error)
	// InvalidateWaitingUsers drops any cached count. Call it after the
	// transaction that added the dday has committed.
	InvalidateWaitingUsers(ctx context.Context, movieID string) error
}

// RankingRepo keeps the most-awaited movie ranking.
type RankingRepo interface {
	IncrAwaited(ctx context.Context, movieID string) error
	TopAwaited(ctx context.Context, limit int) ([]*AwaitedMovie, error)
}

// Transaction runs fn inside one database transaction carried by ctx.
type Transaction interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
