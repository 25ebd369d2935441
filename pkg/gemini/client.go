package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dhruvbhatia/bizdesk-backend/pkg/config"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/metrics"
	"google.golang.org/genai"
)

// Client wraps the Gemini API for text generation and embeddings. Both the
// chat assistant and the document index go through this type, so failures
// here surface as dependency errors upstream.
type Client struct {
	api     *genai.Client
	model   string
	embed   string
	dim     int32
	metrics *metrics.ModelCallMetrics
}

// New dials the Gemini API with the configured key.
func New(ctx context.Context, cfg config.GeminiConfig, m *metrics.ModelCallMetrics) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive")
	}

	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Client{
		api:     api,
		model:   cfg.Model,
		embed:   cfg.EmbeddingModel,
		dim:     int32(cfg.EmbeddingDim),
		metrics: m,
	}, nil
}

// Dimension returns the configured embedding vector width.
func (c *Client) Dimension() int {
	return int(c.dim)
}

// GenerateText sends the prompt with an optional system instruction and
// returns the model response verbatim.
func (c *Client) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	start := time.Now()
	resp, err := c.api.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	c.metrics.ObserveDuration("generate", time.Since(start))
	if err != nil {
		c.metrics.IncFailure("generate")
		return "", fmt.Errorf("generate content: %w", err)
	}
	c.metrics.IncSuccess("generate")

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty model response")
	}
	return text, nil
}

// EmbedTexts computes one embedding per input text, in input order.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	dim := c.dim
	start := time.Now()
	resp, err := c.api.Models.EmbedContent(ctx, c.embed, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	c.metrics.ObserveDuration("embed", time.Since(start))
	if err != nil {
		c.metrics.IncFailure("embed")
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		c.metrics.IncFailure("embed")
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	c.metrics.IncSuccess("embed")

	vectors := make([][]float32, 0, len(resp.Embeddings))
	for i, embedding := range resp.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("empty embedding at position %d", i)
		}
		vectors = append(vectors, embedding.Values)
	}
	return vectors, nil
}
