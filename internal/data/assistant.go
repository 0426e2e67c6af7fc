package data

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"dday/internal/biz"
	"dday/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const defaultAssistantModel = "gpt-4o-mini"

const normalizePrompt = "You help users coordinate shared movie release D-Days. " +
	"Always normalize the movie title (fix missing spaces like '28년후' -> '28년 후'," +
	" correct casing, prefer official Korean titles) before calling the movie_search" +
	" tool, and always call that tool before answering."

var movieSearchTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        biz.MovieSearchTool,
		Description: "Search TMDb for a movie release date and metadata.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"title": {
					Type:        jsonschema.String,
					Description: "Movie title to search for",
				},
				"year": {
					Type:        jsonschema.Integer,
					Description: "Optional release year for disambiguation",
				},
				"country": {
					Type:        jsonschema.String,
					Description: "ISO country code (KR, US, etc.)",
				},
				"language": {
					Type:        jsonschema.String,
					Description: "Language/locale hint (ko-KR, en-US)",
				},
			},
			Required: []string{"title"},
		},
	},
}

// titleNormalizer holds one lazily created OpenAI client shared by every
// request. The client is stateless, so sharing it is safe.
type titleNormalizer struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration

	once   sync.Once
	client *openai.Client
	log    *log.Helper
}

// NewTitleNormalizer creates the chat-completion backed normalizer. Without an
// API key it reports itself disabled.
func NewTitleNormalizer(c *conf.Assistant, logger log.Logger) biz.TitleNormalizer {
	model := c.Model
	if model == "" {
		model = defaultAssistantModel
	}
	timeout := c.Timeout.AsDuration()
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &titleNormalizer{
		apiKey:  strings.TrimSpace(c.ApiKey),
		model:   model,
		baseURL: strings.TrimRight(c.BaseUrl, "/"),
		timeout: timeout,
		log:     log.NewHelper(logger),
	}
}

func (n *titleNormalizer) Enabled() bool {
	return n.apiKey != ""
}

func (n *titleNormalizer) openAI() *openai.Client {
	n.once.Do(func() {
		cfg := openai.DefaultConfig(n.apiKey)
		if n.baseURL != "" {
			cfg.BaseURL = n.baseURL
		}
		cfg.HTTPClient = &http.Client{Timeout: n.timeout}
		n.client = openai.NewClientWithConfig(cfg)
	})
	return n.client
}

// Normalize returns every tool call of the first choice. A reply without
// choices yields no invocations and no error.
func (n *titleNormalizer) Normalize(ctx context.Context, query string) ([]biz.ToolInvocation, error) {
	resp, err := n.openAI().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: normalizePrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		Tools:      []openai.Tool{movieSearchTool},
		ToolChoice: "auto",
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, nil
	}

	calls := resp.Choices[0].Message.ToolCalls
	invocations := make([]biz.ToolInvocation, 0, len(calls))
	for _, call := range calls {
		invocations = append(invocations, biz.ToolInvocation{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	n.log.Debugf("assistant returned %d tool call(s) for query '%s'", len(invocations), query)
	return invocations, nil
}
