package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dday/internal/biz"
	"dday/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sourcegraph/conc"
	"golang.org/x/time/rate"
)

const (
	defaultCatalogURL      = "https://api.themoviedb.org/3"
	defaultCatalogLanguage = "ko-KR"
	tmdbImageBaseURL       = "https://image.tmdb.org/t/p/w500"

	sourceTMDbMovie = "tmdb"
	sourceTMDbTV    = "tmdb_tv"

	castLimit = 5

	// TMDb release types
	releaseTypeLimited    = 2
	releaseTypeTheatrical = 3

	rereleaseGap = 365 * 24 * time.Hour
)

type catalogClient struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	language string
	region   string
	limiter  *rate.Limiter
	log      *log.Helper
}

// NewCatalogClient creates a new TMDb catalog client
func NewCatalogClient(c *conf.Catalog, logger log.Logger) biz.CatalogClient {
	timeout := c.Timeout.AsDuration()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(c.BaseUrl, "/")
	if baseURL == "" {
		baseURL = defaultCatalogURL
	}
	language := c.Language
	if language == "" {
		language = defaultCatalogLanguage
	}

	limit := rate.Inf
	if c.RateLimit > 0 {
		limit = rate.Limit(c.RateLimit)
	}
	burst := int(c.Burst)
	if burst <= 0 {
		burst = 1
	}

	return &catalogClient{
		client:   &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		apiKey:   strings.TrimSpace(c.ApiKey),
		language: language,
		region:   strings.ToUpper(c.Region),
		limiter:  rate.NewLimiter(limit, burst),
		log:      log.NewHelper(logger),
	}
}

func (c *catalogClient) DefaultRegion() string {
	return c.region
}

// SearchTitle searches movies and series in parallel and maps the first hit,
// preferring movies. No retries: a failed call is reported as unavailable.
func (c *catalogClient) SearchTitle(ctx context.Context, q *biz.CatalogQuery) (*biz.CanonicalMovie, error) {
	lang := q.Language
	if lang == "" {
		lang = c.language
	}
	region := q.Region
	if region == "" {
		region = c.region
	}

	var (
		wg                conc.WaitGroup
		movieHits, tvHits []tmdbSearchResult
		movieErr, tvErr   error
	)
	wg.Go(func() {
		movieHits, movieErr = c.search(ctx, "movie", q.Title, q.Year, lang, region)
	})
	wg.Go(func() {
		tvHits, tvErr = c.search(ctx, "tv", q.Title, q.Year, lang, region)
	})
	wg.Wait()

	switch {
	case len(movieHits) > 0:
		return c.movieDetails(ctx, movieHits[0].ID, lang, region)
	case movieErr != nil:
		return nil, movieErr
	case len(tvHits) > 0:
		return c.tvDetails(ctx, tvHits[0].ID, lang)
	case tvErr != nil:
		return nil, tvErr
	}
	return nil, fmt.Errorf("no catalog match for %q: %w", q.Title, biz.ErrTitleNotFound)
}

type tmdbSearchResponse struct {
	Results []tmdbSearchResult `json:"results"`
}

type tmdbSearchResult struct {
	ID int64 `json:"id"`
}

type tmdbNamed struct {
	Name string `json:"name"`
}

type tmdbCredits struct {
	Cast []struct {
		Name  string `json:"name"`
		Order int    `json:"order"`
	} `json:"cast"`
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

type tmdbReleaseDates struct {
	Results []struct {
		ISO31661     string `json:"iso_3166_1"`
		ReleaseDates []struct {
			ReleaseDate string `json:"release_date"`
			Type        int    `json:"type"`
			Note        string `json:"note"`
		} `json:"release_dates"`
	} `json:"results"`
}

type tmdbMovieDetails struct {
	ID                  int64            `json:"id"`
	Title               string           `json:"title"`
	ReleaseDate         string           `json:"release_date"`
	PosterPath          string           `json:"poster_path"`
	Genres              []tmdbNamed      `json:"genres"`
	ProductionCompanies []tmdbNamed      `json:"production_companies"`
	Credits             tmdbCredits      `json:"credits"`
	ReleaseDates        tmdbReleaseDates `json:"release_dates"`
}

type tmdbTVDetails struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	FirstAirDate string      `json:"first_air_date"`
	PosterPath   string      `json:"poster_path"`
	Genres       []tmdbNamed `json:"genres"`
	Networks     []tmdbNamed `json:"networks"`
	CreatedBy    []tmdbNamed `json:"created_by"`
	Credits      tmdbCredits `json:"credits"`
}

func (c *catalogClient) search(ctx context.Context, kind, title string, year *int, lang, region string) ([]tmdbSearchResult, error) {
	params := url.Values{}
	params.Set("query", title)
	params.Set("language", lang)
	params.Set("include_adult", "false")
	if kind == "movie" {
		if region != "" {
			params.Set("region", region)
		}
		if year != nil {
			params.Set("year", strconv.Itoa(*year))
		}
	} else if year != nil {
		params.Set("first_air_date_year", strconv.Itoa(*year))
	}

	var resp tmdbSearchResponse
	if err := c.get(ctx, "/search/"+kind, params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *catalogClient) movieDetails(ctx context.Context, id int64, lang, region string) (*biz.CanonicalMovie, error) {
	params := url.Values{}
	params.Set("language", lang)
	params.Set("append_to_response", "credits,release_dates")

	var d tmdbMovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params, &d); err != nil {
		return nil, err
	}

	original, hasOriginal := parseTMDBDate(d.ReleaseDate)
	regional, hasRegional := regionalRelease(d.ReleaseDates, region)

	releaseDate := original
	if hasRegional {
		releaseDate = regional
	}
	if !hasOriginal && !hasRegional {
		return nil, fmt.Errorf("movie %d has no release date: %w", id, biz.ErrTitleNotFound)
	}

	movie := &biz.CanonicalMovie{
		Title:       d.Title,
		ReleaseDate: releaseDate,
		Cast:        castNames(d.Credits),
		Genre:       names(d.Genres),
		PosterURL:   posterURL(d.PosterPath),
		Source:      strPtr(sourceTMDbMovie),
		ExternalID:  strPtr(strconv.FormatInt(d.ID, 10)),
		IsRerelease: hasOriginal && hasRegional && regional.Sub(original) > rereleaseGap,
		ContentType: biz.ContentTypeMovie,
	}
	if len(d.ProductionCompanies) > 0 {
		movie.Distributor = strPtr(d.ProductionCompanies[0].Name)
	}
	for _, crew := range d.Credits.Crew {
		if crew.Job == "Director" {
			movie.Director = strPtr(crew.Name)
			break
		}
	}
	return movie, nil
}

func (c *catalogClient) tvDetails(ctx context.Context, id int64, lang string) (*biz.CanonicalMovie, error) {
	params := url.Values{}
	params.Set("language", lang)
	params.Set("append_to_response", "credits")

	var d tmdbTVDetails
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), params, &d); err != nil {
		return nil, err
	}

	firstAir, ok := parseTMDBDate(d.FirstAirDate)
	if !ok {
		return nil, fmt.Errorf("series %d has no air date: %w", id, biz.ErrTitleNotFound)
	}

	show := &biz.CanonicalMovie{
		Title:       d.Name,
		ReleaseDate: firstAir,
		Cast:        castNames(d.Credits),
		Genre:       names(d.Genres),
		PosterURL:   posterURL(d.PosterPath),
		Source:      strPtr(sourceTMDbTV),
		ExternalID:  strPtr(strconv.FormatInt(d.ID, 10)),
		ContentType: biz.ContentTypeTV,
	}
	if len(d.Networks) > 0 {
		show.Distributor = strPtr(d.Networks[0].Name)
	}
	if len(d.CreatedBy) > 0 {
		show.Director = strPtr(d.CreatedBy[0].Name)
	}
	return show, nil
}

func (c *catalogClient) get(ctx context.Context, path string, params url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("catalog rate limiter: %v: %w", err, biz.ErrUpstreamUnavailable)
	}

	// v4 read access tokens are JWTs and go in the header; v3 keys go in the query
	bearer := strings.HasPrefix(c.apiKey, "eyJ")
	if !bearer && c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request %s failed: %v: %w", path, err, biz.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("catalog %s: %w", path, biz.ErrTitleNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog %s: unexpected status code %d: %w", path, resp.StatusCode, biz.ErrUpstreamUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("catalog %s: failed to decode response: %v: %w", path, err, biz.ErrUpstreamUnavailable)
	}
	return nil
}

// regionalRelease is the earliest theatrical or limited release in region.
func regionalRelease(dates tmdbReleaseDates, region string) (time.Time, bool) {
	var (
		earliest time.Time
		found    bool
	)
	for _, country := range dates.Results {
		if !strings.EqualFold(country.ISO31661, region) {
			continue
		}
		for _, entry := range country.ReleaseDates {
			if entry.Type != releaseTypeTheatrical && entry.Type != releaseTypeLimited {
				continue
			}
			t, ok := parseTMDBDate(entry.ReleaseDate)
			if !ok {
				continue
			}
			if !found || t.Before(earliest) {
				earliest, found = t, true
			}
		}
	}
	return earliest, found
}

// parseTMDBDate accepts "2006-01-02" and RFC3339 timestamps and keeps the date.
func parseTMDBDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, s[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func castNames(credits tmdbCredits) []string {
	out := make([]string, 0, castLimit)
	for _, member := range credits.Cast {
		if len(out) == castLimit {
			break
		}
		if member.Name != "" {
			out = append(out, member.Name)
		}
	}
	return out
}

func names(items []tmdbNamed) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Name != "" {
			out = append(out, item.Name)
		}
	}
	return out
}

func posterURL(p string) *string {
	p = strings.TrimSpace(p)
	if p == "" {
		return nil
	}
	return strPtr(tmdbImageBaseURL + "/" + strings.TrimPrefix(p, "/"))
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
