package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/Cyclone1070/fraudinv/internal/config"
)

// Embedder turns text into fixed-width vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOpenAIURL   = "https://api.openai.com"
	defaultOllamaModel = "nomic-embed-text"
	defaultAPIModel    = "text-embedding-3-small"
)

// NewEmbedder builds the embedder named by cfg.Provider. apiKey is only used by "api".
func NewEmbedder(cfg config.EmbeddingConfig, apiKey string) (Embedder, error) {
	switch cfg.Provider {
	case "", "hash":
		return NewHashEmbedder(cfg.Dimension), nil
	case "api", "ollama":
		return NewHTTPEmbedder(HTTPEmbedderConfig{
			Flavor:    cfg.Provider,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			APIKey:    apiKey,
			Dimension: cfg.Dimension,
			Timeout:   time.Duration(cfg.TimeoutMs) * time.Millisecond,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// HashEmbedder is a deterministic feature-hashing embedder: unigrams and bigrams
// are hashed into signed buckets and the result is L2-normalised. It needs no
// network and gives stable rankings for lexical overlap.
type HashEmbedder struct {
	dim int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 256
	}
	return &HashEmbedder{dim: dim}
}

func (h *HashEmbedder) Dimension() int { return h.dim }

func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, ErrEmptyText
	}

	vec := make([]float64, h.dim)
	add := func(feature string, weight float64) {
		hasher := fnv.New64a()
		_, _ = hasher.Write([]byte(feature))
		sum := hasher.Sum64()
		idx := int(sum % uint64(h.dim))
		if sum&(1<<63) != 0 {
			weight = -weight
		}
		vec[idx] += weight
	}
	for i, tok := range tokens {
		add(tok, 1)
		if i > 0 {
			add(tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, h.dim)
	if norm == 0 {
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func (h *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := h.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// HTTPEmbedderConfig configures an HTTPEmbedder.
type HTTPEmbedderConfig struct {
	Flavor    string // "api" (OpenAI-compatible) or "ollama"
	BaseURL   string
	Model     string
	APIKey    string
	Dimension int
	Timeout   time.Duration
}

// HTTPEmbedder calls a remote embedding endpoint.
type HTTPEmbedder struct {
	cfg    HTTPEmbedderConfig
	client *http.Client
}

func NewHTTPEmbedder(cfg HTTPEmbedderConfig) *HTTPEmbedder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseURL == "" {
		if cfg.Flavor == "ollama" {
			cfg.BaseURL = defaultOllamaURL
		} else {
			cfg.BaseURL = defaultOpenAIURL
		}
	}
	if cfg.Model == "" {
		if cfg.Flavor == "ollama" {
			cfg.Model = defaultOllamaModel
		} else {
			cfg.Model = defaultAPIModel
		}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPEmbedder{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (e *HTTPEmbedder) Dimension() int { return e.cfg.Dimension }

func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

type apiEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type apiEmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type ollamaEmbeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("text %d: %w", i, ErrEmptyText)
		}
	}

	endpoint := e.cfg.BaseURL + "/v1/embeddings"
	if e.cfg.Flavor == "ollama" {
		endpoint = e.cfg.BaseURL + "/api/embed"
	}

	reqBody, err := json.Marshal(apiEmbeddingRequest{Model: e.cfg.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var vecs [][]float32
	if e.cfg.Flavor == "ollama" {
		var out ollamaEmbeddingResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("error decoding response: %w", err)
		}
		vecs = out.Embeddings
	} else {
		var out apiEmbeddingResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("error decoding response: %w", err)
		}
		if out.Error != nil {
			return nil, fmt.Errorf("embedding API error (%s): %s", out.Error.Type, out.Error.Message)
		}
		sort.Slice(out.Data, func(i, j int) bool { return out.Data[i].Index < out.Data[j].Index })
		for _, d := range out.Data {
			vecs = append(vecs, d.Embedding)
		}
	}

	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d inputs", len(vecs), len(texts))
	}
	for i, v := range vecs {
		if e.cfg.Dimension > 0 && len(v) != e.cfg.Dimension {
			return nil, fmt.Errorf("vector %d: %w: got %d, want %d", i, ErrDimensionMismatch, len(v), e.cfg.Dimension)
		}
	}
	return vecs, nil
}
