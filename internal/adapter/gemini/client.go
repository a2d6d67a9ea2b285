package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/couchcryptid/astroweather-service/internal/observability"
	"google.golang.org/genai"
)

// Guidance kinds, used as metric labels and cache key prefixes.
const (
	KindClothing = domain.GuidanceClothing
	KindActivity = domain.GuidanceActivity
	KindEco      = domain.GuidanceEco
)

// ErrEmptyResponse is returned when the model produced no usable candidate.
var ErrEmptyResponse = errors.New("gemini returned no content")

// Client implements domain.Advisor using the Gemini generateContent API.
type Client struct {
	genai   *genai.Client
	model   string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a Gemini guidance client. Every request is bounded by timeout.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) (*Client, error) {
	return newClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}, model, metrics, logger)
}

func newClient(ctx context.Context, cc *genai.ClientConfig, model string, metrics *observability.Metrics, logger *slog.Logger) (*Client, error) {
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{genai: gc, model: model, metrics: metrics, logger: logger}, nil
}

// ClothingAndSafety recommends clothing and safety items for the readings.
func (c *Client) ClothingAndSafety(ctx context.Context, in domain.ClothingAndSafetyInput) (domain.ClothingAndSafetyOutput, error) {
	var out domain.ClothingAndSafetyOutput
	prompt, err := render(clothingPrompt, in)
	if err != nil {
		return out, err
	}
	err = c.generate(ctx, KindClothing, prompt, clothingSchema, &out)
	return out, err
}

// SuggestActivity suggests one outdoor activity for the user's mood and the readings.
func (c *Client) SuggestActivity(ctx context.Context, in domain.ActivityInput) (domain.ActivityOutput, error) {
	var out domain.ActivityOutput
	prompt, err := render(activityPrompt, in)
	if err != nil {
		return out, err
	}
	err = c.generate(ctx, KindActivity, prompt, activitySchema, &out)
	return out, err
}

// EcoAwareness describes local flora and fauna and offers an eco tip.
func (c *Client) EcoAwareness(ctx context.Context, in domain.EcoAwarenessInput) (domain.EcoAwarenessOutput, error) {
	var out domain.EcoAwarenessOutput
	prompt, err := render(ecoPrompt, in)
	if err != nil {
		return out, err
	}
	err = c.generate(ctx, KindEco, prompt, ecoSchema, &out)
	return out, err
}

func (c *Client) generate(ctx context.Context, kind, prompt string, responseSchema *genai.Schema, out any) error {
	start := time.Now()
	err := c.doRequest(ctx, prompt, responseSchema, out)
	c.metrics.GuidanceAPIDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.GuidanceRequests.WithLabelValues(kind, "error").Inc()
		c.logger.Warn("gemini request failed", "kind", kind, "model", c.model, "error", err)
		return fmt.Errorf("%s guidance: %w", kind, err)
	}
	c.metrics.GuidanceRequests.WithLabelValues(kind, "success").Inc()
	return nil
}

func (c *Client) doRequest(ctx context.Context, prompt string, responseSchema *genai.Schema, out any) error {
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}
