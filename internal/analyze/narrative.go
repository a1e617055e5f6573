// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/audit-engine/internal/httputil"
	"github.com/pdiddy/audit-engine/pkg/types"
)

// Narrative is the annotation layer on top of the deterministic verdict:
// a prose summary, integrity sub-scores, role-targeted recommendations,
// and anomalies worth a human look.
type Narrative struct {
	Summary         string                `json:"summary"`
	Integrity       types.IntegrityScores `json:"integrity"`
	Recommendations types.Recommendations `json:"recommendations"`
	Anomalies       []string              `json:"anomalies"`
}

// NarrativeBackend produces a Narrative for a banded record. Tests and
// offline runs supply nil or a mock.
type NarrativeBackend interface {
	Narrate(ctx context.Context, rec types.FinancialRecord, m types.DerivedMetrics, risk types.RiskAssessment) (Narrative, error)
}

var narrativePromptTmpl = template.Must(template.New("narrative").Parse(`You are a public finance auditor reviewing a Kenyan county budget implementation report. The risk band below was decided by a fixed rule set; do not dispute it, explain it.

County: {{.County}}, FY {{.FiscalYear}}
Risk band: {{.Band}} (score {{.Score}}/100)
Figures (JSON, null means the report did not state the figure):
{{.Figures}}

Return ONLY a JSON object with this structure. Integrity scores are 0-100 integers.

{"summary": "two to four sentences on the county's fiscal position", "integrity": {"transparency": 0, "compliance": 0, "fiscal_health": 0, "overall": 0}, "recommendations": {"executive": [], "assembly": [], "treasury": []}, "anomalies": []}
`))

// HTTPNarrativeBackend calls a text model behind an OpenAI-compatible
// chat completions endpoint in JSON mode.
type HTTPNarrativeBackend struct {
	cfg    types.AnalysisConfig
	client *http.Client
}

// NewHTTPNarrativeBackend returns a backend for cfg.
func NewHTTPNarrativeBackend(cfg types.AnalysisConfig) *HTTPNarrativeBackend {
	return &HTTPNarrativeBackend{cfg: cfg, client: &http.Client{Timeout: 2 * time.Minute}}
}

type narrativeChatRequest struct {
	Model          string                 `json:"model"`
	Messages       []narrativeChatMessage `json:"messages"`
	MaxTokens      int                    `json:"max_tokens"`
	Temperature    float64                `json:"temperature"`
	ResponseFormat *narrativeFormat       `json:"response_format,omitempty"`
}

type narrativeChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type narrativeFormat struct {
	Type string `json:"type"`
}

type narrativeChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Narrate renders the prompt, calls the model and decodes its JSON
// annotation.
func (b *HTTPNarrativeBackend) Narrate(ctx context.Context, rec types.FinancialRecord, m types.DerivedMetrics, risk types.RiskAssessment) (Narrative, error) {
	figures, err := json.Marshal(struct {
		Record  types.FinancialRecord `json:"record"`
		Metrics types.DerivedMetrics  `json:"metrics"`
	}{rec, m})
	if err != nil {
		return Narrative{}, fmt.Errorf("marshaling figures: %w", err)
	}

	var prompt bytes.Buffer
	err = narrativePromptTmpl.Execute(&prompt, struct {
		County, FiscalYear string
		Band               types.RiskBand
		Score              int
		Figures            string
	}{rec.County, rec.FiscalYear, risk.Band, risk.Score, string(figures)})
	if err != nil {
		return Narrative{}, fmt.Errorf("rendering prompt: %w", err)
	}

	body, err := json.Marshal(narrativeChatRequest{
		Model:          b.cfg.Model,
		Messages:       []narrativeChatMessage{{Role: "user", Content: prompt.String()}},
		MaxTokens:      1024,
		Temperature:    0,
		ResponseFormat: &narrativeFormat{Type: "json_object"},
	})
	if err != nil {
		return Narrative{}, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := strings.TrimSuffix(b.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Narrative{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.client, req, b.cfg.MaxRetries)
	if err != nil {
		return Narrative{}, fmt.Errorf("calling narrative API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Narrative{}, fmt.Errorf("narrative API returned %d: %s", resp.StatusCode, httputil.Snippet(resp.Body, 200))
	}

	var cr narrativeChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Narrative{}, fmt.Errorf("decoding narrative response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return Narrative{}, fmt.Errorf("narrative API returned no choices")
	}

	var n Narrative
	if err := json.Unmarshal([]byte(httputil.StripFences(cr.Choices[0].Message.Content)), &n); err != nil {
		return Narrative{}, fmt.Errorf("parsing narrative JSON: %w", err)
	}
	return n, nil
}
