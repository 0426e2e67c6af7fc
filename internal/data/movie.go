package data

import (
	"context"
	"errors"
	"fmt"

	"dday/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type movieRepo struct {
	data *Data
	log  *log.Helper
}

// NewMovieRepo creates a new movie repository
func NewMovieRepo(data *Data, logger log.Logger) biz.MovieRepo {
	return &movieRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *movieRepo) FindMovieByProvenance(ctx context.Context, source, externalID *string) (*biz.Movie, error) {
	if source == nil || *source == "" || externalID == nil || *externalID == "" {
		return nil, nil
	}

	var dbMovie Movie
	err := r.data.DB(ctx).
		Where("source = ? AND external_id = ?", *source, *externalID).
		Take(&dbMovie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find movie by provenance: %w", err)
	}
	return r.modelToBiz(&dbMovie), nil
}

func (r *movieRepo) FindMovieByTitle(ctx context.Context, title string) (*biz.Movie, error) {
	var dbMovies []Movie
	err := r.data.DB(ctx).
		Where("title = ?", title).
		Order("last_updated DESC").
		Limit(1).
		Find(&dbMovies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find movie by title: %w", err)
	}
	if len(dbMovies) == 0 {
		return nil, nil
	}
	return r.modelToBiz(&dbMovies[0]), nil
}

func (r *movieRepo) FindMovieByID(ctx context.Context, id string) (*biz.Movie, error) {
	var dbMovie Movie
	err := r.data.DB(ctx).Where("id = ?", id).Take(&dbMovie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find movie: %w", err)
	}
	return r.modelToBiz(&dbMovie), nil
}

// CreateMovie inserts inside a savepoint so a duplicate does not poison the
// caller's transaction and the winner can be re-read.
func (r *movieRepo) CreateMovie(ctx context.Context, movie *biz.Movie) (*biz.Movie, error) {
	// UUID v7: time-ordered, distributed-friendly
	movieID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate movie ID: %w", err)
	}

	dbMovie := r.bizToModel(movie)
	dbMovie.ID = movieID.String()

	err = r.data.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(dbMovie).Error
	})
	if err != nil {
		return nil, translateWriteError("failed to create movie", err)
	}

	return r.modelToBiz(dbMovie), nil
}

// Helper: Convert biz.Movie to data.Movie
func (r *movieRepo) bizToModel(m *biz.Movie) *Movie {
	return &Movie{
		ID:          m.ID,
		Title:       m.Title,
		Distributor: m.Distributor,
		ReleaseDate: m.ReleaseDate,
		Director:    m.Director,
		Cast:        m.Cast,
		Genre:       m.Genre,
		PosterURL:   m.PosterURL,
		Source:      emptyToNil(m.Source),
		ExternalID:  emptyToNil(m.ExternalID),
		IsRerelease: m.IsRerelease,
		ContentType: string(m.ContentType),
	}
}

// Helper: Convert data.Movie to biz.Movie
func (r *movieRepo) modelToBiz(m *Movie) *biz.Movie {
	return movieToBiz(m)
}

func movieToBiz(m *Movie) *biz.Movie {
	return &biz.Movie{
		ID:          m.ID,
		Title:       m.Title,
		Distributor: m.Distributor,
		ReleaseDate: m.ReleaseDate,
		Director:    m.Director,
		Cast:        m.Cast,
		Genre:       m.Genre,
		PosterURL:   m.PosterURL,
		Source:      m.Source,
		ExternalID:  m.ExternalID,
		IsRerelease: m.IsRerelease,
		ContentType: biz.ContentType(m.ContentType),
		LastUpdated: m.LastUpdated,
	}
}

// emptyToNil keeps blank provenance out of the unique index.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
