// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/audit-engine/pkg/types"
)

// Assess runs the deterministic banding and attaches the narrative
// layer. A nil or failing backend degrades to the templated narrative;
// the band itself never changes and the call never returns an error.
func Assess(ctx context.Context, backend NarrativeBackend, rec types.FinancialRecord, m types.DerivedMetrics, th types.RiskThresholds) types.AnalysisResult {
	risk := BandFor(m, rec, th)

	if backend != nil {
		n, err := backend.Narrate(ctx, rec, m, risk)
		if err == nil {
			return types.AnalysisResult{
				Risk:            risk,
				Integrity:       n.Integrity,
				Summary:         n.Summary,
				Recommendations: n.Recommendations,
				Anomalies:       n.Anomalies,
			}
		}
	}

	return types.AnalysisResult{
		Risk:            risk,
		Integrity:       fallbackIntegrity(rec, risk),
		Summary:         fallbackSummary(rec, m, risk),
		Recommendations: fallbackRecommendations(rec, m, th),
		Degraded:        true,
	}
}

// fallbackSummary renders the templated verdict used when the narrative
// service is unavailable.
func fallbackSummary(rec types.FinancialRecord, m types.DerivedMetrics, risk types.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s County, FY %s\n", rec.County, rec.FiscalYear)
	fmt.Fprintf(&b, "Risk: %s (score %d/100)\n", risk.Band, risk.Score)
	fmt.Fprintf(&b, "Revenue: target %s, actual %s (%s)\n",
		formatKsh(rec.Revenue.Target), formatKsh(rec.Revenue.Actual), formatPct(m.RevenuePerformance))
	fmt.Fprintf(&b, "Expenditure: %s of a %s budget (overall %s, development %s)\n",
		formatKsh(rec.Expenditure.Total), formatKsh(rec.Expenditure.TotalBudget),
		formatPct(m.OverallAbsorption), formatPct(m.DevelopmentAbsorption))
	fmt.Fprintf(&b, "Pending bills: %s\n", formatKsh(rec.Debt.PendingBills))
	if len(risk.Flags) > 0 {
		fmt.Fprintf(&b, "Flags: %s\n", strings.Join(risk.Flags, "; "))
	}
	return b.String()
}

// fallbackRecommendations derives role-targeted advice from the same
// cutoffs the banding uses.
func fallbackRecommendations(rec types.FinancialRecord, m types.DerivedMetrics, th types.RiskThresholds) types.Recommendations {
	var r types.Recommendations

	if m.DevelopmentAbsorption.Valid && m.DevelopmentAbsorption.Value <= th.LowDevAbsorption {
		r.Executive = append(r.Executive, "Accelerate implementation of stalled development projects")
	}
	if m.OverallAbsorption.Valid && m.OverallAbsorption.Value <= th.StrongAbsorption {
		r.Executive = append(r.Executive, "Improve budget execution and expenditure monitoring")
	}

	if m.RevenuePerformance.Valid && m.RevenuePerformance.Value <= th.LowRevenuePerformance {
		r.Treasury = append(r.Treasury, "Review and improve own-source revenue collection strategies")
	}
	bills := billsBudgetRatio(rec)
	if bills.Valid && bills.Value > th.PendingBillsBudgetShare*100/2 {
		r.Treasury = append(r.Treasury, "Prioritize settlement of pending bills in the next budget")
	}

	if completeness(rec) < 50 {
		r.Assembly = append(r.Assembly, "Demand full disclosure of the figures missing from the report")
	}
	if len(r.Executive) > 0 || len(r.Treasury) > 0 {
		r.Assembly = append(r.Assembly, "Strengthen oversight of quarterly budget implementation reporting")
	}
	return r
}

// fallbackIntegrity derives sub-scores without a model: transparency is
// data completeness, fiscal health is the inverse of the risk score, and
// compliance sits between the two.
func fallbackIntegrity(rec types.FinancialRecord, risk types.RiskAssessment) types.IntegrityScores {
	transparency := completeness(rec)
	fiscal := 100 - risk.Score
	compliance := (transparency + fiscal) / 2
	return types.IntegrityScores{
		Transparency: transparency,
		Compliance:   compliance,
		FiscalHealth: fiscal,
		Overall:      (transparency + compliance + fiscal) / 3,
	}
}

// completeness is the percentage of record fields the parser found.
func completeness(rec types.FinancialRecord) int {
	amounts := []types.Amount{
		rec.Revenue.Target, rec.Revenue.Actual, rec.Revenue.EquitableShare,
		rec.Expenditure.Total, rec.Expenditure.Recurrent, rec.Expenditure.Development,
		rec.Expenditure.TotalBudget, rec.Expenditure.RecurrentBudget, rec.Expenditure.DevelopmentBudget,
		rec.Expenditure.PersonnelEmoluments,
		rec.Debt.PendingBills, rec.Debt.RevenueArrears,
		rec.Debt.Ageing.UnderOneYear, rec.Debt.Ageing.OneToTwoYears,
		rec.Debt.Ageing.TwoToThreeYears, rec.Debt.Ageing.OverThreeYears,
		rec.HealthFund.Approved, rec.HealthFund.Paid,
	}
	percents := []types.Percent{
		rec.Revenue.Performance,
		rec.Expenditure.OverallAbsorption, rec.Expenditure.DevelopmentAbsorption,
		rec.HealthFund.PaymentRate,
	}
	present := 0
	for _, a := range amounts {
		if a.Valid {
			present++
		}
	}
	for _, p := range percents {
		if p.Valid {
			present++
		}
	}
	return present * 100 / (len(amounts) + len(percents))
}

// formatKsh renders an amount in short form, "n/a" when absent.
func formatKsh(a types.Amount) string {
	if !a.Valid {
		return "n/a"
	}
	v := a.Kshs
	neg := ""
	if v < 0 {
		neg = "-"
		v = -v
	}
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%sKsh %.2fB", neg, float64(v)/1e9)
	case v >= 1_000_000:
		return fmt.Sprintf("%sKsh %.2fM", neg, float64(v)/1e6)
	default:
		return fmt.Sprintf("%sKsh %d", neg, v)
	}
}

// formatPct renders a percentage, "n/a" when absent.
func formatPct(p types.Percent) string {
	if !p.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", p.Value)
}
