// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/audit-engine/pkg/types"
)

type mockNarrative struct {
	n       Narrative
	err     error
	gotRisk types.RiskAssessment
	calls   int
}

func (m *mockNarrative) Narrate(_ context.Context, _ types.FinancialRecord, _ types.DerivedMetrics, risk types.RiskAssessment) (Narrative, error) {
	m.calls++
	m.gotRisk = risk
	return m.n, m.err
}

func weakRecord() types.FinancialRecord {
	rec := types.FinancialRecord{County: "Mombasa", FiscalYear: "2024/25"}
	rec.Revenue.Target = types.Ksh(1_000)
	rec.Revenue.Actual = types.Ksh(450)
	rec.Expenditure.Total = types.Ksh(4_000)
	rec.Expenditure.TotalBudget = types.Ksh(10_000)
	rec.Debt.PendingBills = types.Ksh(4_500)
	return rec
}

func TestAssessBackendAnnotates(t *testing.T) {
	rec := weakRecord()
	m := Derive(rec)
	backend := &mockNarrative{n: Narrative{
		Summary:   "A county under fiscal stress.",
		Integrity: types.IntegrityScores{Transparency: 60, Compliance: 55, FiscalHealth: 30, Overall: 48},
		Anomalies: []string{"pending bills close to half the budget"},
	}}

	got := Assess(context.Background(), backend, rec, m, thresholds())

	if got.Degraded {
		t.Fatal("Degraded set with a working backend")
	}
	if got.Summary != "A county under fiscal stress." {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.Risk.Band != types.RiskHigh {
		t.Errorf("band = %s, want High", got.Risk.Band)
	}
	if backend.gotRisk.Band != got.Risk.Band {
		t.Errorf("backend saw band %s, result carries %s", backend.gotRisk.Band, got.Risk.Band)
	}
	if len(got.Anomalies) != 1 {
		t.Errorf("Anomalies = %v", got.Anomalies)
	}
}

func TestAssessBackendFailureDegrades(t *testing.T) {
	rec := weakRecord()
	m := Derive(rec)
	backend := &mockNarrative{err: fmt.Errorf("service down")}

	got := Assess(context.Background(), backend, rec, m, thresholds())

	if !got.Degraded {
		t.Fatal("Degraded not set after backend failure")
	}
	if got.Risk.Band != types.RiskHigh {
		t.Errorf("band = %s, want deterministic High", got.Risk.Band)
	}
	if !strings.Contains(got.Summary, "Mombasa") || !strings.Contains(got.Summary, "High") {
		t.Errorf("fallback summary missing county or band: %q", got.Summary)
	}
	if len(got.Recommendations.Treasury) == 0 {
		t.Errorf("expected treasury recommendations for weak revenue, got %+v", got.Recommendations)
	}
	for name, score := range map[string]int{
		"transparency":  got.Integrity.Transparency,
		"compliance":    got.Integrity.Compliance,
		"fiscal_health": got.Integrity.FiscalHealth,
		"overall":       got.Integrity.Overall,
	} {
		if score < 0 || score > 100 {
			t.Errorf("%s score %d out of range", name, score)
		}
	}
}

func TestAssessNilBackendDegrades(t *testing.T) {
	rec := weakRecord()
	got := Assess(context.Background(), nil, rec, Derive(rec), thresholds())
	if !got.Degraded {
		t.Fatal("Degraded not set for nil backend")
	}
	if got.Risk.Band != types.RiskHigh {
		t.Errorf("band = %s, want High", got.Risk.Band)
	}
}

func TestAssessFallbackSummaryMarksAbsent(t *testing.T) {
	rec := types.FinancialRecord{County: "Isiolo", FiscalYear: "2024/25"}
	got := Assess(context.Background(), nil, rec, Derive(rec), thresholds())
	if got.Risk.Band != types.RiskModerate {
		t.Fatalf("band = %s, want Moderate for empty record", got.Risk.Band)
	}
	if !strings.Contains(got.Summary, "n/a") {
		t.Errorf("fallback summary should mark absent figures: %q", got.Summary)
	}
}

func analysisCfg(url string) types.AnalysisConfig {
	cfg := types.DefaultConfig().Analysis
	cfg.BaseURL = url
	cfg.Model = "test-model"
	cfg.APIKey = "test-key"
	cfg.MaxRetries = 0
	return cfg
}

func narrativeBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"content": content}}},
	})
	return string(b)
}

func TestHTTPNarrativeBackendNarrate(t *testing.T) {
	var gotReq narrativeChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, narrativeBody(`{"summary": "Steady position.", "integrity": {"transparency": 80, "compliance": 75, "fiscal_health": 70, "overall": 75}, "recommendations": {"executive": ["keep momentum"], "assembly": [], "treasury": []}, "anomalies": []}`))
	}))
	defer srv.Close()

	backend := NewHTTPNarrativeBackend(analysisCfg(srv.URL))
	rec := weakRecord()
	risk := types.RiskAssessment{Band: types.RiskModerate, Score: 55}

	n, err := backend.Narrate(context.Background(), rec, Derive(rec), risk)
	require.NoError(t, err)

	assert.Equal(t, "test-model", gotReq.Model)
	assert.Zero(t, gotReq.Temperature)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "Mombasa")
	assert.Contains(t, gotReq.Messages[0].Content, "Moderate")
	assert.Contains(t, gotReq.Messages[0].Content, "do not dispute it")

	assert.Equal(t, "Steady position.", n.Summary)
	assert.Equal(t, 75, n.Integrity.Overall)
	assert.Equal(t, []string{"keep momentum"}, n.Recommendations.Executive)
}

func TestHTTPNarrativeBackendStripsFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, narrativeBody("```json\n{\"summary\": \"fenced\"}\n```"))
	}))
	defer srv.Close()

	backend := NewHTTPNarrativeBackend(analysisCfg(srv.URL))
	rec := weakRecord()
	n, err := backend.Narrate(context.Background(), rec, Derive(rec), types.RiskAssessment{Band: types.RiskHigh, Score: 70})
	require.NoError(t, err)
	assert.Equal(t, "fenced", n.Summary)
}

func TestHTTPNarrativeBackendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	backend := NewHTTPNarrativeBackend(analysisCfg(srv.URL))
	rec := weakRecord()
	_, err := backend.Narrate(context.Background(), rec, Derive(rec), types.RiskAssessment{Band: types.RiskHigh, Score: 70})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
