// Package watsonx integrates the agent with watsonx.ai. The integration is
// optional: when no API key is configured, or any call fails, callers fall
// back to their deterministic paths.
package watsonx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"orchestrateiq/internal/common/config"
	"orchestrateiq/internal/common/logger"
	"orchestrateiq/internal/common/metrics"
	"orchestrateiq/internal/common/validation"
)

var (
	ErrNotAvailable        = errors.New("MODEL_NOT_AVAILABLE")
	ErrTokenFetchFailed    = errors.New("TOKEN_FETCH_FAILED")
	ErrModelCallFailed     = errors.New("MODEL_CALL_FAILED")
	ErrModelTimeout        = errors.New("MODEL_TIMEOUT")
	ErrIntentParsingFailed = errors.New("INTENT_PARSING_FAILED")
)

const tokenCacheKey = "watsonx:access_token"

// IntentPayload is the validated intent classification returned by the model.
type IntentPayload struct {
	Intent  string   `json:"intent"`
	Sectors []string `json:"sectors"`
}

// CorrelationPayload is the model's reading of a cross-sector correlation.
type CorrelationPayload struct {
	Correlation string  `json:"correlation"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Client talks to the watsonx.ai text generation API. The IAM access token
// is cached in-struct until expiry and, when configured, mirrored in Redis
// so replicas share it. Refetching is always safe.
type Client struct {
	cfg        config.WatsonxConfig
	httpClient *http.Client
	redis      *redis.Client
	logger     logger.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient builds a watsonx client. rdb may be nil; it is only used when
// cfg.ShareToken is set.
func NewClient(cfg config.WatsonxConfig, rdb *redis.Client, log logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: config.GetDuration(cfg.Timeout)},
		redis:      rdb,
		logger:     log.WithFields(map[string]interface{}{"component": "watsonx"}),
	}
}

// Available reports whether the integration is configured.
func (c *Client) Available() bool {
	return c.cfg.APIKey != ""
}

// getAccessToken fetches an IAM token via the apikey grant, caching it until
// shortly before expiry. The Redis mirror is best effort in both directions.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.tokenExpiry.After(time.Now()) {
		return c.accessToken, nil
	}

	if c.cfg.ShareToken && c.redis != nil {
		if cached, err := c.redis.Get(ctx, tokenCacheKey).Result(); err == nil && cached != "" {
			ttl, err := c.redis.TTL(ctx, tokenCacheKey).Result()
			if err == nil && ttl > 0 {
				c.accessToken = cached
				c.tokenExpiry = time.Now().Add(ttl)
				return c.accessToken, nil
			}
		}
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ibm:params:oauth:grant-type:apikey")
	form.Set("apikey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenFetchFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", ErrTokenFetchFailed, resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenFetchFailed, err)
	}

	// Refresh one minute early so in-flight calls never carry a stale token.
	ttl := time.Duration(tok.ExpiresIn) * time.Second
	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(ttl - time.Minute)

	if c.cfg.ShareToken && c.redis != nil {
		if err := c.redis.Set(ctx, tokenCacheKey, tok.AccessToken, ttl-time.Minute).Err(); err != nil {
			c.logger.Warn("token mirror write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return c.accessToken, nil
}

// generate sends one prompt to the text generation endpoint and returns the
// generated text. Retries use exponential backoff.
func (c *Client) generate(ctx context.Context, operation, prompt string) (string, error) {
	if !c.Available() {
		return "", ErrNotAvailable
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		text, err := c.generateOnce(ctx, prompt)
		if err == nil {
			metrics.AICalls.WithLabelValues(operation, "success").Inc()
			return text, nil
		}
		lastErr = err

		if errors.Is(err, ErrModelTimeout) || ctx.Err() != nil {
			break
		}
		if attempt < c.cfg.MaxRetries {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.AICalls.WithLabelValues(operation, "timeout").Inc()
				return "", ErrModelTimeout
			}
		}
	}

	metrics.AICalls.WithLabelValues(operation, "error").Inc()
	return "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return "", err
	}

	reqBody := map[string]interface{}{
		"model_id":   c.cfg.ModelID,
		"project_id": c.cfg.ProjectID,
		"input":      prompt,
		"parameters": map[string]interface{}{
			"decoding_method": "greedy",
			"max_new_tokens":  300,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelCallFailed, err)
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/ml/v1/text/generation?version=2024-05-31"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelCallFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrModelTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrModelCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", ErrModelCallFailed, resp.StatusCode, string(body))
	}

	var parsed struct {
		Results []struct {
			GeneratedText string `json:"generated_text"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelCallFailed, err)
	}
	if len(parsed.Results) == 0 {
		return "", fmt.Errorf("%w: empty results", ErrModelCallFailed)
	}

	return parsed.Results[0].GeneratedText, nil
}

// RecognizeIntent asks the model to classify a query. The payload is schema
// validated before it is trusted; anything malformed is an error the caller
// degrades on.
func (c *Client) RecognizeIntent(ctx context.Context, query string, knownSectors []string) (*IntentPayload, error) {
	prompt := fmt.Sprintf(
		"Classify the following business query into an intent and the involved sectors.\n"+
			"Known sectors: %s.\n"+
			"Respond with JSON only: {\"intent\": \"...\", \"sectors\": [\"...\"]}\n\n"+
			"Query: %s",
		strings.Join(knownSectors, ", "), query,
	)

	text, err := c.generate(ctx, "recognize_intent", prompt)
	if err != nil {
		return nil, err
	}

	raw := extractJSON(text)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object in model output", ErrIntentParsingFailed)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntentParsingFailed, err)
	}

	result, err := validation.ValidateAgainstSchema(doc, validation.IntentPayloadSchema())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntentParsingFailed, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrIntentParsingFailed, strings.Join(result.Errors, "; "))
	}

	var payload IntentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntentParsingFailed, err)
	}
	return &payload, nil
}

// GenerateInsight asks the model for a narrative reading of an analysis.
// An empty string means the caller keeps its template text.
func (c *Client) GenerateInsight(ctx context.Context, query string, analysis interface{}, extra map[string]interface{}) (string, error) {
	summary, err := json.Marshal(analysis)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelCallFailed, err)
	}

	prompt := fmt.Sprintf(
		"Summarize the key finding of this analysis in one or two sentences for a business user.\n\n"+
			"Query: %s\nAnalysis: %s",
		query, string(summary),
	)
	if len(extra) > 0 {
		if ctxJSON, err := json.Marshal(extra); err == nil {
			prompt += fmt.Sprintf("\nContext: %s", string(ctxJSON))
		}
	}

	text, err := c.generate(ctx, "generate_insight", prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// AnalyzeCorrelation asks the model to characterize the relation between two
// sector analyses.
func (c *Client) AnalyzeCorrelation(ctx context.Context, first, second interface{}) (*CorrelationPayload, error) {
	a, err := json.Marshal(first)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelCallFailed, err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelCallFailed, err)
	}

	prompt := fmt.Sprintf(
		"Characterize the correlation between these two sector analyses.\n"+
			"Respond with JSON only: {\"correlation\": \"positive|negative|neutral\", \"confidence\": 0.0, \"description\": \"...\"}\n\n"+
			"First: %s\nSecond: %s",
		string(a), string(b),
	)

	text, err := c.generate(ctx, "analyze_correlation", prompt)
	if err != nil {
		return nil, err
	}

	raw := extractJSON(text)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object in model output", ErrModelCallFailed)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelCallFailed, err)
	}
	result, err := validation.ValidateAgainstSchema(doc, validation.CorrelationPayloadSchema())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelCallFailed, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrModelCallFailed, strings.Join(result.Errors, "; "))
	}

	var payload CorrelationPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelCallFailed, err)
	}
	return &payload, nil
}

// extractJSON pulls the first balanced JSON object out of model output that
// may wrap it in prose or code fences.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
