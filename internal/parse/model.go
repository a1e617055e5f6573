// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/audit-engine/internal/httputil"
	"github.com/pdiddy/audit-engine/pkg/types"
)

// AIBackend abstracts the learned parser so tests can supply a mock.
type AIBackend interface {
	ParseRecord(ctx context.Context, markdown, county string) (types.FinancialRecord, error)
}

// parsePromptTmpl pins the model to the output schema. Missing figures
// must come back as null so absence stays distinguishable from zero.
var parsePromptTmpl = template.Must(template.New("parse").Parse(`You are a fiscal data extraction system. The markdown below was transcribed from a county budget implementation review report. Extract the figures for {{.County}} county only; ignore rows and sections for other counties.

Return ONLY a JSON object with this exact structure. All amounts are Kenyan shillings as plain numbers, rates are percentages. Use null for any figure not present in the text. Never guess and never substitute 0 for a missing figure.

{"fiscal_year": "2024/25", "revenue": {"target": null, "actual": null, "performance": null, "equitable_share": null}, "expenditure": {"total": null, "recurrent": null, "development": null, "total_budget": null, "recurrent_budget": null, "development_budget": null, "personnel_emoluments": null, "overall_absorption": null, "development_absorption": null}, "debt": {"pending_bills": null, "revenue_arrears": null, "ageing": {"under_one_year": null, "one_to_two_years": null, "two_to_three_years": null, "over_three_years": null}}, "health_fund": {"approved": null, "paid": null, "payment_rate": null}}

Markdown:
{{.Markdown}}
`))

// HTTPBackend calls a text model behind an OpenAI-compatible chat
// completions endpoint, in JSON mode at temperature zero so identical
// input yields identical output.
type HTTPBackend struct {
	cfg    types.ParserConfig
	client *http.Client
}

// NewHTTPBackend returns a backend for cfg.
func NewHTTPBackend(cfg types.ParserConfig) *HTTPBackend {
	return &HTTPBackend{cfg: cfg, client: &http.Client{Timeout: 2 * time.Minute}}
}

type parseChatRequest struct {
	Model          string             `json:"model"`
	Messages       []parseChatMessage `json:"messages"`
	MaxTokens      int                `json:"max_tokens"`
	Temperature    float64            `json:"temperature"`
	ResponseFormat *responseFormat    `json:"response_format,omitempty"`
}

type parseChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type parseChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// wireRecord is the model's JSON answer. Pointers keep null and zero
// apart; all numbers decode as float64 to survive decimals.
type wireRecord struct {
	FiscalYear string `json:"fiscal_year"`
	Revenue    struct {
		Target         *float64 `json:"target"`
		Actual         *float64 `json:"actual"`
		Performance    *float64 `json:"performance"`
		EquitableShare *float64 `json:"equitable_share"`
	} `json:"revenue"`
	Expenditure struct {
		Total                 *float64 `json:"total"`
		Recurrent             *float64 `json:"recurrent"`
		Development           *float64 `json:"development"`
		TotalBudget           *float64 `json:"total_budget"`
		RecurrentBudget       *float64 `json:"recurrent_budget"`
		DevelopmentBudget     *float64 `json:"development_budget"`
		PersonnelEmoluments   *float64 `json:"personnel_emoluments"`
		OverallAbsorption     *float64 `json:"overall_absorption"`
		DevelopmentAbsorption *float64 `json:"development_absorption"`
	} `json:"expenditure"`
	Debt struct {
		PendingBills   *float64 `json:"pending_bills"`
		RevenueArrears *float64 `json:"revenue_arrears"`
		Ageing         struct {
			UnderOneYear    *float64 `json:"under_one_year"`
			OneToTwoYears   *float64 `json:"one_to_two_years"`
			TwoToThreeYears *float64 `json:"two_to_three_years"`
			OverThreeYears  *float64 `json:"over_three_years"`
		} `json:"ageing"`
	} `json:"debt"`
	HealthFund struct {
		Approved    *float64 `json:"approved"`
		Paid        *float64 `json:"paid"`
		PaymentRate *float64 `json:"payment_rate"`
	} `json:"health_fund"`
}

// ParseRecord sends the markdown to the model and decodes its JSON
// answer into a typed record.
func (b *HTTPBackend) ParseRecord(ctx context.Context, markdown, county string) (types.FinancialRecord, error) {
	var prompt bytes.Buffer
	if err := parsePromptTmpl.Execute(&prompt, struct{ County, Markdown string }{county, markdown}); err != nil {
		return types.FinancialRecord{}, fmt.Errorf("rendering prompt: %w", err)
	}

	body, err := json.Marshal(parseChatRequest{
		Model:          b.cfg.Model,
		Messages:       []parseChatMessage{{Role: "user", Content: prompt.String()}},
		MaxTokens:      2048,
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return types.FinancialRecord{}, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := strings.TrimSuffix(b.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return types.FinancialRecord{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.client, req, b.cfg.MaxRetries)
	if err != nil {
		return types.FinancialRecord{}, fmt.Errorf("calling parser API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.FinancialRecord{}, fmt.Errorf("parser API returned %d: %s", resp.StatusCode, httputil.Snippet(resp.Body, 200))
	}

	var cr parseChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return types.FinancialRecord{}, fmt.Errorf("decoding parser response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return types.FinancialRecord{}, fmt.Errorf("parser API returned no choices")
	}

	var wire wireRecord
	if err := json.Unmarshal([]byte(httputil.StripFences(cr.Choices[0].Message.Content)), &wire); err != nil {
		return types.FinancialRecord{}, fmt.Errorf("parsing model JSON: %w", err)
	}
	return wire.toRecord(county), nil
}

func (w wireRecord) toRecord(county string) types.FinancialRecord {
	rec := types.FinancialRecord{County: county, FiscalYear: w.FiscalYear}
	if rec.FiscalYear == "" {
		rec.FiscalYear = DefaultFiscalYear
	}

	rec.Revenue.Target = amt(w.Revenue.Target)
	rec.Revenue.Actual = amt(w.Revenue.Actual)
	rec.Revenue.Performance = pct(w.Revenue.Performance)
	rec.Revenue.EquitableShare = amt(w.Revenue.EquitableShare)

	rec.Expenditure.Total = amt(w.Expenditure.Total)
	rec.Expenditure.Recurrent = amt(w.Expenditure.Recurrent)
	rec.Expenditure.Development = amt(w.Expenditure.Development)
	rec.Expenditure.TotalBudget = amt(w.Expenditure.TotalBudget)
	rec.Expenditure.RecurrentBudget = amt(w.Expenditure.RecurrentBudget)
	rec.Expenditure.DevelopmentBudget = amt(w.Expenditure.DevelopmentBudget)
	rec.Expenditure.PersonnelEmoluments = amt(w.Expenditure.PersonnelEmoluments)
	rec.Expenditure.OverallAbsorption = pct(w.Expenditure.OverallAbsorption)
	rec.Expenditure.DevelopmentAbsorption = pct(w.Expenditure.DevelopmentAbsorption)

	rec.Debt.PendingBills = amt(w.Debt.PendingBills)
	rec.Debt.RevenueArrears = amt(w.Debt.RevenueArrears)
	rec.Debt.Ageing.UnderOneYear = amt(w.Debt.Ageing.UnderOneYear)
	rec.Debt.Ageing.OneToTwoYears = amt(w.Debt.Ageing.OneToTwoYears)
	rec.Debt.Ageing.TwoToThreeYears = amt(w.Debt.Ageing.TwoToThreeYears)
	rec.Debt.Ageing.OverThreeYears = amt(w.Debt.Ageing.OverThreeYears)

	rec.HealthFund.Approved = amt(w.HealthFund.Approved)
	rec.HealthFund.Paid = amt(w.HealthFund.Paid)
	rec.HealthFund.PaymentRate = pct(w.HealthFund.PaymentRate)
	return rec
}

func amt(v *float64) types.Amount {
	if v == nil {
		return types.Amount{}
	}
	return types.Ksh(int64(math.Round(*v)))
}

func pct(v *float64) types.Percent {
	if v == nil {
		return types.Percent{}
	}
	return types.Pct(*v)
}
