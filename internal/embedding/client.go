// Package embedding computes text embeddings through an OpenAI-compatible
// endpoint (Ollama's /v1 by default) and backfills them into the store.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/runnerr0/awrecall/internal/config"
)

// ErrDisabled is returned by NewClient when embeddings are turned off.
var ErrDisabled = errors.New("embeddings disabled")

// Client embeds text with a single model, throttled to a fixed request rate.
type Client struct {
	api     *openai.Client
	model   string
	limiter *rate.Limiter
}

// NewClient builds a client from config. A non-positive request rate
// disables throttling.
func NewClient(cfg config.EmbeddingsConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if cfg.Model == "" {
		return nil, errors.New("embeddings.model is required")
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		// Ollama ignores the key but the client always sends one.
		apiKey = "ollama"
	}
	oc := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		api:     openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// Model is the embedding model name recorded alongside stored vectors.
func (c *Client) Model() string { return c.model }

// Embed returns one vector per input, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("create embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("create embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
