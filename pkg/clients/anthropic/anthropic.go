package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/paintstock/internal/domain/models"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	messagesPath   = "/v1/messages"
	apiVersion     = "2023-06-01"
	defaultModel   = "claude-3-haiku-20240307"
	maxTokens      = 1024
	maxTips        = 3
)

// ErrMalformedInsight is returned when the model answer does not have the
// expected alerts/trend/tips shape.
var ErrMalformedInsight = errors.New("malformed insight response")

// Client analyzes the inventory and returns purchase alerts, a movement trend
// and optimization tips.
type Client interface {
	Analyze(ctx context.Context, items []models.StockItem, txs []models.Transaction) (models.Insight, error)
}

type anthropicClient struct {
	httpClient *resty.Client
	model      string
}

// Option customizes the client.
type Option func(*anthropicClient)

// WithBaseURL points the client at another API host.
func WithBaseURL(url string) Option {
	return func(c *anthropicClient) { c.httpClient.SetBaseURL(strings.TrimSuffix(url, "/")) }
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *anthropicClient) {
		if model != "" {
			c.model = model
		}
	}
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string, opts ...Option) Client {
	httpClient := resty.New().
		SetBaseURL(defaultBaseURL).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(30 * time.Second)

	c := &anthropicClient{httpClient: httpClient, model: defaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You analyze the stock of a paint shop. You receive the current catalog and the recent stock movements as JSON.
Items whose quantity is at or below min_stock are critical. Movements of type OUT consume stock; IN and RETURN add stock.

Answer with ONLY a JSON object of this exact shape:
{
  "alerts": ["item names that need an immediate purchase, with a short reason"],
  "trend": "one sentence describing whether consumption is rising or falling",
  "tips": ["at most two storage or purchasing optimization tips"]
}
Do not wrap the JSON in markdown. Escape newlines inside strings.`

// Analyze sends the catalog and ledger to the Messages API and decodes the insight.
func (c *anthropicClient) Analyze(ctx context.Context, items []models.StockItem, txs []models.Transaction) (models.Insight, error) {
	payload, err := json.Marshal(struct {
		Stock        []models.StockItem   `json:"stock"`
		Transactions []models.Transaction `json:"transactions"`
	}{Stock: items, Transactions: txs})
	if err != nil {
		return models.Insight{}, fmt.Errorf("encode inventory: %w", err)
	}

	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []message{
			{Role: "user", Content: string(payload)},
			// Prefill the assistant turn to force a JSON answer.
			{Role: "assistant", Content: "{"},
		},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(messagesPath)
	if err != nil {
		return models.Insight{}, fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return models.Insight{}, fmt.Errorf("anthropic api error: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	if len(respBody.Content) == 0 {
		return models.Insight{}, fmt.Errorf("empty response from ai: %w", ErrMalformedInsight)
	}

	return parseInsight("{" + respBody.Content[0].Text)
}

func parseInsight(text string) (models.Insight, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{```") {
		text = strings.TrimPrefix(text, "{")
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw struct {
		Alerts []string `json:"alerts"`
		Trend  *string  `json:"trend"`
		Tips   []string `json:"tips"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return models.Insight{}, fmt.Errorf("decode insight: %v: %w", err, ErrMalformedInsight)
	}
	if raw.Trend == nil || strings.TrimSpace(*raw.Trend) == "" {
		return models.Insight{}, fmt.Errorf("missing trend: %w", ErrMalformedInsight)
	}

	insight := models.Insight{
		Alerts: nonEmpty(raw.Alerts),
		Trend:  strings.TrimSpace(*raw.Trend),
		Tips:   nonEmpty(raw.Tips),
	}
	if len(insight.Tips) > maxTips {
		insight.Tips = insight.Tips[:maxTips]
	}
	return insight, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
