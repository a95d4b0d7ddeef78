package openai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sashabaranov/go-openai"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"gatehouse-hq/keystone/pkg/extract"
	"gatehouse-hq/keystone/pkg/telemetry/metrics"
)

// malformedOutputNote is recorded on the absent result when the model's reply
// could not be used as structured output.
const malformedOutputNote = "No structured output returned."

// extractionTemperature keeps the model focused on literal extraction rather
// than paraphrase.
const extractionTemperature = 0.1

// Config contains configuration for the OpenAI extraction sensor.
type Config struct {
	// APIKey authenticates against the API. Required.
	APIKey string

	// BaseURL overrides the API endpoint, for gateways and tests.
	// Empty uses the public endpoint.
	BaseURL string

	// Timeout bounds one extraction call.
	// Default: 30 seconds
	Timeout time.Duration

	// RateLimit is the sustained request rate in requests per second.
	// Zero disables client-side rate limiting.
	RateLimit float64

	// Burst is the rate limiter burst size.
	// Default: 1
	Burst int

	// CacheTTL is how long an extraction result is reused for a byte-identical
	// submission. Zero disables the cache.
	CacheTTL time.Duration

	// Metrics records sensor telemetry. Nil disables it.
	Metrics *metrics.Collector

	// Logger is the parent logger. Defaults to slog.Default.
	Logger *slog.Logger
}

// Sensor calls a chat completions API and sanitizes its reply into extraction
// claims. It satisfies extract.Sensor and is safe for concurrent use.
type Sensor struct {
	client  *openai.Client
	schema  *jsonschema.Schema
	limiter *rate.Limiter
	cache   *gocache.Cache
	timeout time.Duration
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewSensor creates an OpenAI-backed extraction sensor.
func NewSensor(cfg Config) (*Sensor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Sensor{
		client:  openai.NewClientWithConfig(clientConfig),
		schema:  schema,
		timeout: cfg.Timeout,
		metrics: cfg.Metrics,
		logger:  cfg.Logger.With("component", "sensor.openai"),
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if cfg.CacheTTL > 0 {
		s.cache = gocache.New(cfg.CacheTTL, cfg.CacheTTL)
	}

	return s, nil
}

// Extract asks the model for candidates and applies the trust boundary to
// whatever comes back. An unusable reply degrades to the all-absent result;
// an error is returned only for transport-level failures.
func (s *Sensor) Extract(ctx context.Context, rawText, model string) (*extract.Result, error) {
	key := cacheKey(model, rawText)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			s.metrics.RecordSensorCacheHit()
			return v.(*extract.Result), nil
		}
		s.metrics.RecordSensorCacheMiss()
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	requestID := uuid.NewString()
	s.metrics.RecordSensorRequest(model)
	s.logger.Debug("requesting extraction",
		"request_id", requestID,
		"model", model,
		"raw_bytes", len(rawText),
	)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(rawText)},
		},
		Temperature: extractionTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		s.logger.Warn("model returned no choices",
			"request_id", requestID,
			"model", model,
		)
		return extract.AbsentResult(model, malformedOutputNote), nil
	}

	s.logger.Debug("extraction response received",
		"request_id", requestID,
		"model", model,
		"tokens_used", resp.Usage.TotalTokens,
	)

	result := s.sanitizeReply(rawText, model, requestID, resp.Choices[0].Message.Content)
	if s.cache != nil {
		s.cache.Set(key, result, gocache.DefaultExpiration)
	}
	return result, nil
}

// sanitizeReply turns the model's text reply into a Result. Every failure
// mode lands on the all-absent result; a reply that cannot be trusted
// contributes nothing.
func (s *Sensor) sanitizeReply(rawText, model, requestID, content string) *extract.Result {
	content = trimFence(content)

	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		s.logger.Warn("model reply is not JSON",
			"request_id", requestID,
			"error", err,
		)
		return extract.AbsentResult(model, malformedOutputNote)
	}
	if err := s.schema.Validate(v); err != nil {
		s.logger.Warn("model reply failed schema validation",
			"request_id", requestID,
			"error", err,
		)
		return extract.AbsentResult(model, malformedOutputNote)
	}

	var claims extract.Claims
	if err := json.Unmarshal([]byte(content), &claims); err != nil {
		s.logger.Warn("model reply does not decode into claims",
			"request_id", requestID,
			"error", err,
		)
		return extract.AbsentResult(model, malformedOutputNote)
	}

	return extract.Sanitize(rawText, model, &claims)
}

// trimFence strips a markdown code fence. Some gateways wrap JSON replies in
// one even when a JSON response format was requested.
func trimFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func cacheKey(model, rawText string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + rawText))
	return hex.EncodeToString(sum[:])
}
