package biz

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/text/language"
)

//go:generate mockgen -source=lookup.go -destination=mock_lookup_test.go -package=biz

// MovieSearchTool is the structured capability the assistant must call.
const MovieSearchTool = "movie_search"

// CatalogQuery is what reaches the catalog. Empty Language and Region mean
// "use the catalog defaults".
type CatalogQuery struct {
	Title    string
	Year     *int
	Language string
	Region   string
}

// CatalogClient resolves a query to canonical metadata. It returns
// ErrTitleNotFound when nothing matches and ErrUpstreamUnavailable on
// transport failures.
type CatalogClient interface {
	SearchTitle(ctx context.Context, query *CatalogQuery) (*CanonicalMovie, error)
	DefaultRegion() string
}

// ToolInvocation is a named structured call embedded in an assistant reply.
// Arguments is the raw JSON payload as sent by the assistant.
type ToolInvocation struct {
	Name      string
	Arguments string
}

// TitleNormalizer asks a language model to clean up a user query.
type TitleNormalizer interface {
	Enabled() bool
	Normalize(ctx context.Context, query string) ([]ToolInvocation, error)
}

// LookupUseCase resolves noisy user queries to canonical movies.
type LookupUseCase struct {
	catalog    CatalogClient
	normalizer TitleNormalizer
	log        *log.Helper
}

// NewLookupUseCase creates a new LookupUseCase instance
func NewLookupUseCase(catalog CatalogClient, normalizer TitleNormalizer, logger log.Logger) *LookupUseCase {
	return &LookupUseCase{
		catalog:    catalog,
		normalizer: normalizer,
		log:        log.NewHelper(logger),
	}
}

// Resolve never fails because of the assistant: every assistant problem
// degrades to searching the raw query. Catalog failures are returned as is.
func (uc *LookupUseCase) Resolve(ctx context.Context, userQuery string) (*CanonicalMovie, error) {
	args := uc.normalize(ctx, userQuery)

	query := &CatalogQuery{
		Title:    userQuery,
		Year:     args.Year,
		Language: args.Language,
		Region:   args.Country,
	}
	if args.Title != "" {
		query.Title = args.Title
	}
	if query.Region == "" && args.present {
		query.Region = uc.catalog.DefaultRegion()
	}

	return uc.catalog.SearchTitle(ctx, query)
}

func (uc *LookupUseCase) normalize(ctx context.Context, userQuery string) movieSearchArgs {
	if uc.normalizer == nil || !uc.normalizer.Enabled() {
		return movieSearchArgs{}
	}

	invocations, err := uc.normalizer.Normalize(ctx, userQuery)
	if err != nil {
		uc.log.Warnf("title normalization failed, falling back to direct catalog lookup: %v", err)
		return movieSearchArgs{}
	}

	call := findInvocation(invocations, MovieSearchTool)
	if call == nil {
		uc.log.Debugf("assistant did not call %s for query '%s'", MovieSearchTool, userQuery)
		return movieSearchArgs{present: true}
	}

	args, err := parseMovieSearchArgs(call.Arguments)
	if err != nil {
		uc.log.Warnf("failed to parse tool arguments %q: %v", call.Arguments, err)
		return movieSearchArgs{}
	}
	args.present = true
	return args
}

func findInvocation(invocations []ToolInvocation, name string) *ToolInvocation {
	for i := range invocations {
		if invocations[i].Name == name {
			return &invocations[i]
		}
	}
	return nil
}

// movieSearchArgs are the decoded movie_search arguments. present is set when
// the assistant answered, so the configured region applies.
type movieSearchArgs struct {
	Title    string
	Year     *int
	Country  string
	Language string

	present bool
}

type rawMovieSearchArgs struct {
	Title    string          `json:"title"`
	Year     json.RawMessage `json:"year"`
	Country  string          `json:"country"`
	Language string          `json:"language"`
}

func parseMovieSearchArgs(payload string) (movieSearchArgs, error) {
	if strings.TrimSpace(payload) == "" {
		payload = "{}"
	}

	var raw rawMovieSearchArgs
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return movieSearchArgs{}, err
	}

	return movieSearchArgs{
		Title:    strings.TrimSpace(raw.Title),
		Year:     parseYear(raw.Year),
		Country:  canonicalRegion(raw.Country),
		Language: canonicalLanguage(raw.Language),
	}, nil
}

// parseYear accepts 2025 and "2025"; anything else drops the year only.
func parseYear(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return positive(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return positive(n)
		}
	}
	return nil
}

func positive(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

func canonicalRegion(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	region, err := language.ParseRegion(s)
	if err != nil {
		return ""
	}
	return region.String()
}

func canonicalLanguage(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return ""
	}
	return tag.String()
}
