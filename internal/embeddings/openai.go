package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/concordsec/concord/internal/config"
	"github.com/concordsec/concord/pkg/backoff"
)

// openAIProvider calls an OpenAI-compatible /embeddings endpoint.
type openAIProvider struct {
	baseURL  string
	token    string
	model    string
	maxChars int
	retry    backoff.Policy
	client   *http.Client
}

// NewProvider creates a Provider backed by an OpenAI-compatible REST endpoint.
func NewProvider(cfg *config.EmbeddingsConfig) Provider {
	return &openAIProvider{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		model:    cfg.Model,
		maxChars: cfg.MaxChars,
		retry:    backoff.Default,
		client:   &http.Client{Timeout: cfg.TimeoutDuration()},
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (p *openAIProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *openAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = Truncate(t, p.maxChars)
	}

	body, err := json.Marshal(embeddingRequest{Model: p.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	var parsed embeddingResponse
	err = p.retry.Retry(ctx, func(ctx context.Context) error {
		return p.post(ctx, body, &parsed)
	})
	if err != nil {
		return nil, fmt.Errorf("embedding call: %w", err)
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response size mismatch: got %d, want %d", len(parsed.Data), len(texts))
	}

	// Providers may return results out of submission order.
	sort.Slice(parsed.Data, func(i, j int) bool {
		return parsed.Data[i].Index < parsed.Data[j].Index
	})

	vectors := make([][]float64, len(parsed.Data))
	for i, d := range parsed.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (p *openAIProvider) post(ctx context.Context, body []byte, out *embeddingResponse) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		p.baseURL+"/embeddings",
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("embedding endpoint returned %d: %s", resp.StatusCode, data)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
