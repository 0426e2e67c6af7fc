package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/text/unicode/norm"

	v1 "dday/api/dday/v1"
	"dday/internal/biz"
)

type userIDKey struct{}

// NewUserContext stores the caller's user id in ctx.
func NewUserContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user id set by the user middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// DDayService implements the DDayService API
type DDayService struct {
	uc  *biz.DDayUseCase
	log *log.Helper
}

// NewDDayService creates a new DDayService
func NewDDayService(uc *biz.DDayUseCase, logger log.Logger) *DDayService {
	return &DDayService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// TrackDDay resolves the query and subscribes the caller to the movie.
func (s *DDayService) TrackDDay(ctx context.Context, req *v1.TrackDDayRequest) (*v1.TrackDDayReply, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized("UNAUTHORIZED", "missing X-User-Id header")
	}
	query := normalizeQuery(req.Query)
	if query == "" {
		return nil, errors.New(422, "UNPROCESSABLE_ENTITY", "query is required")
	}

	result, err := s.uc.Track(ctx, userID, query)
	if err != nil {
		return nil, s.toAPIError(err)
	}

	return &v1.TrackDDayReply{
		DDay:         ddayToAPI(result.DDay),
		Movie:        movieToAPI(result.Movie),
		WaitingUsers: result.WaitingUsers,
		Created:      result.Created,
	}, nil
}

// ListDDays returns the caller's ddays ordered by release date.
func (s *DDayService) ListDDays(ctx context.Context, _ *v1.ListDDaysRequest) (*v1.ListDDaysReply, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized("UNAUTHORIZED", "missing X-User-Id header")
	}

	tracked, err := s.uc.List(ctx, userID)
	if err != nil {
		return nil, s.toAPIError(err)
	}

	reply := &v1.ListDDaysReply{
		Items: make([]*v1.TrackedDDay, 0, len(tracked)),
	}
	for _, t := range tracked {
		reply.Items = append(reply.Items, &v1.TrackedDDay{
			DDay:  ddayToAPI(t.DDay),
			Movie: movieToAPI(t.Movie),
		})
	}
	return reply, nil
}

// Lookup resolves a query and computes its label without persisting.
func (s *DDayService) Lookup(ctx context.Context, req *v1.LookupRequest) (*v1.LookupReply, error) {
	query := normalizeQuery(req.Q)
	if query == "" {
		return nil, errors.New(422, "UNPROCESSABLE_ENTITY", "q is required")
	}

	preview, err := s.uc.Preview(ctx, query)
	if err != nil {
		return nil, s.toAPIError(err)
	}

	m := preview.Movie
	return &v1.LookupReply{
		Movie: &v1.Movie{
			Title:       m.Title,
			Distributor: m.Distributor,
			ReleaseDate: m.ReleaseDate.Format(time.DateOnly),
			Director:    m.Director,
			Cast:        m.Cast,
			Genre:       m.Genre,
			PosterURL:   m.PosterURL,
			Source:      m.Source,
			ExternalID:  m.ExternalID,
			IsRerelease: m.IsRerelease,
			ContentType: string(m.ContentType),
		},
		DDayLabel: preview.DDayLabel,
	}, nil
}

// GetWaitingUsers counts the users tracking a movie.
func (s *DDayService) GetWaitingUsers(ctx context.Context, req *v1.GetWaitingUsersRequest) (*v1.GetWaitingUsersReply, error) {
	count, err := s.uc.WaitingUsers(ctx, strings.TrimSpace(req.MovieID))
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &v1.GetWaitingUsersReply{
		MovieID:      req.MovieID,
		WaitingUsers: count,
	}, nil
}

// ListAwaited returns the most tracked movies.
func (s *DDayService) ListAwaited(ctx context.Context, req *v1.ListAwaitedRequest) (*v1.ListAwaitedReply, error) {
	top, err := s.uc.TopAwaited(ctx, int(req.Limit))
	if err != nil {
		return nil, s.toAPIError(err)
	}

	reply := &v1.ListAwaitedReply{
		Items: make([]*v1.AwaitedMovie, 0, len(top)),
	}
	for _, a := range top {
		reply.Items = append(reply.Items, &v1.AwaitedMovie{
			MovieID:      a.Movie.ID,
			Title:        a.Movie.Title,
			ReleaseDate:  a.Movie.ReleaseDate.Format(time.DateOnly),
			WaitingUsers: a.WaitingUsers,
		})
	}
	return reply, nil
}

func (s *DDayService) Health(context.Context, *v1.HealthRequest) (*v1.HealthReply, error) {
	return &v1.HealthReply{Status: "ok"}, nil
}

// toAPIError maps domain errors to HTTP errors. Anything unknown is logged
// and reported as an internal error.
func (s *DDayService) toAPIError(err error) error {
	switch {
	case stderrors.Is(err, biz.ErrTitleNotFound):
		return errors.NotFound("TITLE_NOT_FOUND", "no movie matches the query")
	case stderrors.Is(err, biz.ErrUpstreamUnavailable):
		return errors.ServiceUnavailable("CATALOG_UNAVAILABLE", "movie catalog is unavailable")
	case stderrors.Is(err, biz.ErrInvalidQuery):
		return errors.New(422, "UNPROCESSABLE_ENTITY", err.Error())
	}
	s.log.Errorf("request failed: %v", err)
	return errors.InternalServer("INTERNAL", "internal error")
}

// normalizeQuery composes Hangul jamo so NFD input from some clients matches
// stored titles.
func normalizeQuery(q string) string {
	return norm.NFC.String(strings.TrimSpace(q))
}

func movieToAPI(m *biz.Movie) *v1.Movie {
	if m == nil {
		return nil
	}
	return &v1.Movie{
		ID:          m.ID,
		Title:       m.Title,
		Distributor: m.Distributor,
		ReleaseDate: m.ReleaseDate.Format(time.DateOnly),
		Director:    m.Director,
		Cast:        biz.SplitList(m.Cast),
		Genre:       biz.SplitList(m.Genre),
		PosterURL:   m.PosterURL,
		Source:      m.Source,
		ExternalID:  m.ExternalID,
		IsRerelease: m.IsRerelease,
		ContentType: string(m.ContentType),
	}
}

func ddayToAPI(d *biz.UserDDay) *v1.DDay {
	if d == nil {
		return nil
	}
	return &v1.DDay{
		ID:        d.ID,
		UserID:    d.UserID,
		MovieID:   d.MovieID,
		QueryName: d.QueryName,
		DDayLabel: d.DDayLabel,
		CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339),
	}
}
