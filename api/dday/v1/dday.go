// Package v1 holds the request and reply messages of the D-Day HTTP API.
package v1

import "net/http"

type Movie struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Distributor *string  `json:"distributor,omitempty"`
	ReleaseDate string   `json:"release_date"`
	Director    *string  `json:"director,omitempty"`
	Cast        []string `json:"cast,omitempty"`
	Genre       []string `json:"genre,omitempty"`
	PosterURL   *string  `json:"poster_url,omitempty"`
	Source      *string  `json:"source,omitempty"`
	ExternalID  *string  `json:"external_id,omitempty"`
	IsRerelease bool     `json:"is_re_release"`
	ContentType string   `json:"content_type"`
}

type DDay struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	MovieID   string `json:"movie_id"`
	QueryName string `json:"query_name"`
	DDayLabel string `json:"dday_label"`
	CreatedAt string `json:"created_at"`
}

type TrackDDayRequest struct {
	Query string `json:"query"`
}

type TrackDDayReply struct {
	DDay         *DDay  `json:"dday"`
	Movie        *Movie `json:"movie"`
	WaitingUsers int64  `json:"waiting_users"`
	Created      bool   `json:"created"`
}

// HTTPStatus is 201 for a new dday and 200 when the user already tracked it.
func (r *TrackDDayReply) HTTPStatus() int {
	if r.Created {
		return http.StatusCreated
	}
	return http.StatusOK
}

type ListDDaysRequest struct{}

type TrackedDDay struct {
	DDay  *DDay  `json:"dday"`
	Movie *Movie `json:"movie"`
}

type ListDDaysReply struct {
	Items []*TrackedDDay `json:"items"`
}

type LookupRequest struct {
	Q string `json:"q"`
}

type LookupReply struct {
	Movie     *Movie `json:"movie"`
	DDayLabel string `json:"dday_label"`
}

type GetWaitingUsersRequest struct {
	MovieID string `json:"movie_id"`
}

type GetWaitingUsersReply struct {
	MovieID      string `json:"movie_id"`
	WaitingUsers int64  `json:"waiting_users"`
}

type ListAwaitedRequest struct {
	Limit int32 `json:"limit"`
}

type AwaitedMovie struct {
	MovieID      string `json:"movie_id"`
	Title        string `json:"title"`
	ReleaseDate  string `json:"release_date"`
	WaitingUsers int64  `json:"waiting_users"`
}

type ListAwaitedReply struct {
	Items []*AwaitedMovie `json:"items"`
}

type HealthRequest struct{}

type HealthReply struct {
	Status string `json:"status"`
}
