package quizgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds connection details for the generative-model service.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls the external generative-model service that produces the text
// of individual quizzes and summaries. The aggregation core never calls
// this; it only reads what this client stores.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
	quizURL    string
	summaryURL string
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
		logger:     logger.With().Str("component", "quizgen_client").Logger(),
		quizURL:    base + "/v1/quiz",
		summaryURL: base + "/v1/summary",
	}
}

// QuizRequest asks the model service for a quiz over one video's captions.
// The service resolves the transcript itself from the video id.
type QuizRequest struct {
	VideoID       int64  `json:"video_id,string"`
	VideoTitle    string `json:"video_title"`
	Language      string `json:"language"`
	QuestionCount int    `json:"question_count,omitempty"`
}

type quizResponse struct {
	Model     string          `json:"model"`
	Questions json.RawMessage `json:"questions"`
}

// SummaryRequest asks the model service for a prose summary.
type SummaryRequest struct {
	VideoID    int64  `json:"video_id,string"`
	VideoTitle string `json:"video_title"`
	Language   string `json:"language"`
}

type summaryResponse struct {
	Model   string `json:"model"`
	Summary string `json:"summary"`
}

// GenerateQuiz returns the raw question list exactly as the model service
// produced it. The payload is stored verbatim; answer-field naming quirks
// are normalized downstream by the combiner, not here.
func (c *Client) GenerateQuiz(ctx context.Context, req QuizRequest) (json.RawMessage, string, error) {
	if c.config.BaseURL == "" {
		return nil, "", fmt.Errorf("quiz generator endpoint not configured")
	}

	var resp quizResponse
	if err := c.post(ctx, c.quizURL, req, &resp); err != nil {
		return nil, "", err
	}
	// Questions is raw JSON, so an empty or null array still carries bytes;
	// decode the list to count actual entries.
	var entries []json.RawMessage
	if len(resp.Questions) > 0 {
		if err := json.Unmarshal(resp.Questions, &entries); err != nil {
			return nil, "", fmt.Errorf("decode generator questions: %w", err)
		}
	}
	if len(entries) == 0 {
		return nil, "", fmt.Errorf("generator returned empty question set")
	}
	model := resp.Model
	if model == "" {
		model = c.config.Model
	}
	return resp.Questions, model, nil
}

// GenerateSummary returns the model-produced summary text.
func (c *Client) GenerateSummary(ctx context.Context, req SummaryRequest) (string, string, error) {
	if c.config.BaseURL == "" {
		return "", "", fmt.Errorf("summary generator endpoint not configured")
	}

	var resp summaryResponse
	if err := c.post(ctx, c.summaryURL, req, &resp); err != nil {
		return "", "", err
	}
	if resp.Summary == "" {
		return "", "", fmt.Errorf("generator returned empty summary")
	}
	model := resp.Model
	if model == "" {
		model = c.config.Model
	}
	return resp.Summary, model, nil
}

func (c *Client) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	if c.config.Model != "" {
		httpReq.Header.Set("X-Model", c.config.Model)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("generator returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode generator payload: %w", err)
	}
	return nil
}
