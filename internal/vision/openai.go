// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/audit-engine/internal/httputil"
	"github.com/pdiddy/audit-engine/pkg/types"
)

// visionPrompt instructs the model to transcribe one report page. The
// reports are table-dense scans, so the prompt pins it to tables.
const visionPrompt = "Convert this PDF page to clean Markdown. Reproduce every table " +
	"with all rows and columns intact. Keep financial figures exactly as printed, " +
	"including commas and parentheses. Do not summarize or omit rows."

// HTTPBackend calls a vision model behind an OpenAI-compatible chat
// completions endpoint (vLLM or similar).
type HTTPBackend struct {
	cfg    types.VisionConfig
	client *http.Client
}

// NewHTTPBackend returns a backend for cfg. The HTTP client applies
// cfg.Timeout per request.
func NewHTTPBackend(cfg types.VisionConfig) *HTTPBackend {
	return &HTTPBackend{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractPage sends one page image to the vision endpoint. A response
// indicating the model is still loading gets exactly one retry after
// cfg.WarmupBackoff; anything else fails immediately.
func (b *HTTPBackend) ExtractPage(ctx context.Context, img types.PageImage) (types.ExtractionResult, error) {
	body, err := json.Marshal(b.request(img))
	if err != nil {
		return types.ExtractionResult{}, fmt.Errorf("marshaling request: %w", err)
	}

	md, warming, err := b.call(ctx, body)
	if warming {
		select {
		case <-ctx.Done():
			return types.ExtractionResult{}, ctx.Err()
		case <-time.After(b.cfg.WarmupBackoff):
		}
		md, _, err = b.call(ctx, body)
	}
	if err != nil {
		return types.ExtractionResult{}, fmt.Errorf("page %d: %w", img.Page, err)
	}
	return types.ExtractionResult{Page: img.Page, Markdown: md, Confidence: 0.95}, nil
}

func (b *HTTPBackend) request(img types.PageImage) chatRequest {
	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.PNG)
	return chatRequest{
		Model: b.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: visionPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURI}},
			},
		}},
		MaxTokens:   4096,
		Temperature: 0.1,
	}
}

// call performs one request. The second return value reports a
// model-still-loading response, which the caller may retry once.
func (b *HTTPBackend) call(ctx context.Context, body []byte) (string, bool, error) {
	endpoint := strings.TrimSuffix(b.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", b.cfg.UserAgent)
	}
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("calling vision API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet := httputil.Snippet(resp.Body, 200)
		warming := resp.StatusCode == http.StatusServiceUnavailable ||
			strings.Contains(strings.ToLower(snippet), "loading")
		return "", warming, fmt.Errorf("vision API returned %d: %s", resp.StatusCode, snippet)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", false, fmt.Errorf("decoding vision response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", false, fmt.Errorf("vision API returned no choices")
	}
	return cr.Choices[0].Message.Content, false, nil
}
