// Package claude extracts trade document fields with the Anthropic Messages API.
package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"tradelens/internal/config"
	"tradelens/internal/domain"
	"tradelens/internal/parser"
	"tradelens/internal/port"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
	maxTokens    = 4096

	// statusOverloaded is Anthropic's non-standard "overloaded" status.
	statusOverloaded = 529
)

// retryBackoff is the delay before the first retry; it doubles per attempt.
var retryBackoff = 500 * time.Millisecond

// Extractor implements port.DocumentExtractor using the Anthropic Messages API.
type Extractor struct {
	apiKey     string
	model      string
	endpoint   string
	maxRetries int
	schema     parser.Schema
	client     *http.Client
}

// Factory adapts NewExtractor to parser.ProviderFactory.
func Factory(cfg *config.ParserProviderConfig, schema parser.Schema) (port.DocumentExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("claude: api key is required")
	}
	return NewExtractor(cfg, schema), nil
}

// NewExtractor creates a Claude-based extractor from a provider config.
func NewExtractor(cfg *config.ParserProviderConfig, schema parser.Schema) *Extractor {
	return NewExtractorWithEndpoint(cfg, schema, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ParserProviderConfig, schema parser.Schema, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Extractor{
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   endpoint,
		maxRetries: retries,
		schema:     schema,
		client:     &http.Client{Timeout: timeout},
	}
}

type source struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type contentBlock struct {
	Type   string  `json:"type"`
	Source *source `json:"source,omitempty"`
	Text   string  `json:"text,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractedDocument, error) {
	fileBlock, err := documentBlock(input)
	if err != nil {
		return nil, err
	}
	prompt := parser.BuildExtractionPrompt(input.DocumentType, e.schema.Fields(input.DocumentType))

	body, err := json.Marshal(messagesRequest{
		Model:     e.model,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{fileBlock, {Type: "text", Text: prompt}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	respBody, err := e.send(ctx, body)
	if err != nil {
		return nil, err
	}
	return parseResponse(respBody, input.DocumentType)
}

// send posts body, retrying server errors and overload up to maxRetries times.
// Rate limits are returned immediately so FallbackExtractor can open its circuit.
func (e *Extractor) send(ctx context.Context, body []byte) ([]byte, error) {
	backoff := retryBackoff
	for attempt := 0; ; attempt++ {
		status, header, respBody, err := e.post(ctx, body)
		if err != nil {
			return nil, err
		}
		switch {
		case status == http.StatusOK:
			return respBody, nil
		case status == http.StatusTooManyRequests:
			baseErr := fmt.Errorf("anthropic API error (status %d): %s", status, respBody)
			return nil, parser.NewRateLimitError("claude", baseErr, parser.ParseRetryAfterHeader(header.Get("Retry-After")))
		case (status >= 500 || status == statusOverloaded) && attempt < e.maxRetries:
			log.Printf("claude.Extractor: status %d, retrying in %s (attempt %d/%d)", status, backoff, attempt+1, e.maxRetries)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		default:
			return nil, fmt.Errorf("anthropic API error (status %d): %s", status, respBody)
		}
	}
}

func (e *Extractor) post(ctx context.Context, body []byte) (int, http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, resp.Header, respBody, nil
}

func documentBlock(input port.ExtractInput) (contentBlock, error) {
	src := &source{
		Type:      "base64",
		MediaType: input.ContentType,
		Data:      base64.StdEncoding.EncodeToString(input.FileBytes),
	}
	switch input.ContentType {
	case "application/pdf":
		return contentBlock{Type: "document", Source: src}, nil
	case "image/jpeg", "image/png":
		return contentBlock{Type: "image", Source: src}, nil
	default:
		return contentBlock{}, fmt.Errorf("unsupported content type for extraction: %s", input.ContentType)
	}
}

func parseResponse(body []byte, docType domain.DocumentType) (*domain.ExtractedDocument, error) {
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from API")
	}
	return parser.DecodeDocument(docType, []byte(text.String()))
}
