package data

import (
	"time"
)

// Movie represents the movies table. Rows are shared by every user tracking
// the title and are unique per (source, external_id).
type Movie struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Title       string    `gorm:"not null;size:255;index:idx_movies_title"`
	Distributor *string   `gorm:"size:255"`
	ReleaseDate time.Time `gorm:"not null;type:date;index:idx_movies_release_date"`
	Director    *string   `gorm:"size:255"`
	Cast        *string   `gorm:"column:cast_members;type:text"`
	Genre       *string   `gorm:"size:255"`
	PosterURL   *string   `gorm:"column:poster_url;size:512"`
	Source      *string   `gorm:"size:64;uniqueIndex:uq_movies_source_external"`
	ExternalID  *string   `gorm:"column:external_id;size:128;uniqueIndex:uq_movies_source_external"`
	IsRerelease bool      `gorm:"column:is_re_release;not null;default:false"`
	ContentType string    `gorm:"not null;size:32;default:movie"`
	LastUpdated time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName overrides the table name
func (Movie) TableName() string {
	return "movies"
}

// UserDDay represents the user_ddays table
type UserDDay struct {
	ID        string `gorm:"primaryKey;size:64"`
	UserID    string `gorm:"not null;size:128;uniqueIndex:uq_user_movie_dday;index:idx_user_ddays_user_id"`
	MovieID   string `gorm:"not null;size:64;uniqueIndex:uq_user_movie_dday;index:idx_user_ddays_movie_id"`
	QueryName string `gorm:"not null;size:255"`
	DDayLabel string `gorm:"column:dday_label;not null;size:32"`
	// CreatedAt is filled by the database default and read back after insert.
	CreatedAt time.Time `gorm:"<-:false;not null;default:CURRENT_TIMESTAMP"`

	// Foreign key
	Movie Movie `gorm:"foreignKey:MovieID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name
func (UserDDay) TableName() string {
	return "user_ddays"
}

// waitingCount is one row of the awaited ranking query.
type waitingCount struct {
	MovieID string
	Count   int64
}
