package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"dday/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const waitingCacheTTL = 15 * time.Minute

type userDDayRepo struct {
	data *Data
	log  *log.Helper
}

// NewUserDDayRepo creates a new user dday repository
func NewUserDDayRepo(data *Data, logger log.Logger) biz.UserDDayRepo {
	return &userDDayRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func waitingCacheKey(movieID string) string {
	return fmt.Sprintf("dday:waiting:%s", movieID)
}

func (r *userDDayRepo) FindUserDDay(ctx context.Context, userID, movieID string) (*biz.UserDDay, error) {
	var row UserDDay
	err := r.data.DB(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user dday: %w", err)
	}
	return ddayToBiz(&row), nil
}

// CreateUserDDay inserts in a savepoint and re-reads the row so created_at
// comes from the database default. The cached count is left alone; see
// InvalidateWaitingUsers.
func (r *userDDayRepo) CreateUserDDay(ctx context.Context, userID, movieID, queryName, label string) (*biz.UserDDay, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate dday ID: %w", err)
	}

	row := &UserDDay{
		ID:        id.String(),
		UserID:    userID,
		MovieID:   movieID,
		QueryName: queryName,
		DDayLabel: label,
	}

	err = r.data.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", row.ID).Take(row).Error
	})
	if err != nil {
		return nil, translateWriteError("failed to create user dday", err)
	}

	return ddayToBiz(row), nil
}

// InvalidateWaitingUsers must run after the creating transaction commits.
func (r *userDDayRepo) InvalidateWaitingUsers(ctx context.Context, movieID string) error {
	if r.data.rdb == nil {
		return nil
	}
	if err := r.data.rdb.Del(ctx, waitingCacheKey(movieID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate waiting users: %w", err)
	}
	return nil
}

func (r *userDDayRepo) ListUserDDays(ctx context.Context, userID string) ([]*biz.TrackedDDay, error) {
	var rows []UserDDay
	err := r.data.DB(ctx).
		Joins("Movie").
		Where("user_ddays.user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Movie", Name: "release_date"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "user_ddays", Name: "created_at"}}).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user ddays: %w", err)
	}

	result := make([]*biz.TrackedDDay, 0, len(rows))
	for i := range rows {
		result = append(result, &biz.TrackedDDay{
			DDay:  ddayToBiz(&rows[i]),
			Movie: movieToBiz(&rows[i].Movie),
		})
	}
	return result, nil
}

func (r *userDDayRepo) CountWaitingUsers(ctx context.Context, movieID string) (int64, error) {
	// Try cache first if Redis is available
	if r.data.rdb != nil {
		cached, err := r.data.rdb.Get(ctx, waitingCacheKey(movieID)).Result()
		if err == nil {
			if n, err := strconv.ParseInt(cached, 10, 64); err == nil {
				r.log.Debugf("cache hit for waiting users: %s", movieID)
				return n, nil
			}
		}
	}

	var count int64
	err := r.data.DB(ctx).
		Model(&UserDDay{}).
		Where("movie_id = ?", movieID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count waiting users: %w", err)
	}

	// Cache result if Redis is available
	if r.data.rdb != nil {
		r.data.rdb.Set(ctx, waitingCacheKey(movieID), count, waitingCacheTTL)
	}

	return count, nil
}

func ddayToBiz(d *UserDDay) *biz.UserDDay {
	return &biz.UserDDay{
		ID:        d.ID,
		UserID:    d.UserID,
		MovieID:   d.MovieID,
		QueryName: d.QueryName,
		DDayLabel: d.DDayLabel,
		CreatedAt: d.CreatedAt,
	}
}
