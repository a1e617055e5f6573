// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze turns a parsed financial record into derived metrics,
// a deterministic risk band, and a narrative assessment. The band is
// decided by the decision table alone; the narrative layer annotates it
// and is allowed to fail without failing the analysis.
package analyze

import (
	"fmt"

	"github.com/pdiddy/audit-engine/pkg/types"
)

// Derive computes ratio metrics from a record. Every metric prefers the
// value computed from its components and falls back to the figure the
// document itself reports; when neither is available the metric stays
// absent. An absent input never contributes a zero.
func Derive(rec types.FinancialRecord) types.DerivedMetrics {
	var m types.DerivedMetrics

	rev := rec.Revenue
	if rev.Actual.Valid && rev.Target.Valid {
		m.RevenueVariance = types.Ksh(rev.Actual.Kshs - rev.Target.Kshs)
	}
	m.RevenuePerformance = ratio(rev.Actual, rev.Target)
	if !m.RevenuePerformance.Valid {
		m.RevenuePerformance = rev.Performance
	}

	exp := rec.Expenditure
	m.OverallAbsorption = ratio(exp.Total, exp.TotalBudget)
	if !m.OverallAbsorption.Valid {
		m.OverallAbsorption = exp.OverallAbsorption
	}
	m.DevelopmentAbsorption = ratio(exp.Development, exp.DevelopmentBudget)
	if !m.DevelopmentAbsorption.Valid {
		m.DevelopmentAbsorption = exp.DevelopmentAbsorption
	}

	m.CompensationShare = ratio(exp.PersonnelEmoluments, totalRevenue(rec))
	return m
}

// ratio returns num/den as a percentage, absent unless both inputs are
// present and the denominator is nonzero.
func ratio(num, den types.Amount) types.Percent {
	if !num.Valid || !den.Valid || den.Kshs == 0 {
		return types.Percent{}
	}
	return types.Pct(float64(num.Kshs) / float64(den.Kshs) * 100)
}

// totalRevenue is equitable share plus own-source collections. Both
// components must be present; a county never runs on own-source revenue
// alone, so a partial sum would understate the base.
func totalRevenue(rec types.FinancialRecord) types.Amount {
	if !rec.Revenue.EquitableShare.Valid || !rec.Revenue.Actual.Valid {
		return types.Amount{}
	}
	return types.Ksh(rec.Revenue.EquitableShare.Kshs + rec.Revenue.Actual.Kshs)
}

// BandFor applies the banding decision table to the derived metrics.
// High wins over Moderate wins over Low, so a county sitting exactly on
// a cutoff lands in the riskier band. When no metric can be evaluated
// at all the verdict defaults to Moderate and says so in the flags.
func BandFor(m types.DerivedMetrics, rec types.FinancialRecord, th types.RiskThresholds) types.RiskAssessment {
	perf := m.RevenuePerformance
	devAbs := m.DevelopmentAbsorption
	overall := m.OverallAbsorption
	bills := billsBudgetRatio(rec)

	if !perf.Valid && !devAbs.Valid && !overall.Valid && !bills.Valid {
		return types.RiskAssessment{
			Band:  types.RiskModerate,
			Score: 50,
			Flags: []string{"insufficient data: no risk metric could be evaluated"},
		}
	}

	score, flags := scoreRecord(m, bills, th)

	var band types.RiskBand
	switch {
	case perf.Valid && perf.Value < th.CriticalRevenuePerformance,
		devAbs.Valid && devAbs.Value < th.CriticalDevAbsorption,
		bills.Valid && bills.Value > th.PendingBillsBudgetShare*100:
		band = types.RiskHigh
	case perf.Valid && perf.Value <= th.LowRevenuePerformance,
		devAbs.Valid && devAbs.Value <= th.LowDevAbsorption:
		band = types.RiskModerate
	case perf.Valid && perf.Value > th.StrongRevenuePerformance &&
		overall.Valid && overall.Value > th.StrongAbsorption:
		band = types.RiskLow
	default:
		band = types.RiskModerate
	}

	return types.RiskAssessment{Band: band, Score: clampScore(score, band), Flags: flags}
}

// billsBudgetRatio is pending bills as a percentage of the total budget.
func billsBudgetRatio(rec types.FinancialRecord) types.Percent {
	return ratio(rec.Debt.PendingBills, rec.Expenditure.TotalBudget)
}

// scoreRecord accumulates the additive 0-100 risk score and the flags
// explaining it. Flags name the condition and the observed figure.
func scoreRecord(m types.DerivedMetrics, bills types.Percent, th types.RiskThresholds) (int, []string) {
	score := 0
	var flags []string
	add := func(points int, format string, args ...any) {
		score += points
		flags = append(flags, fmt.Sprintf(format, args...))
	}

	if m.RevenuePerformance.Valid {
		v := m.RevenuePerformance.Value
		if v < th.CriticalRevenuePerformance {
			add(40, "critical revenue performance (%.1f%%)", v)
		} else if v <= th.LowRevenuePerformance {
			add(20, "low revenue performance (%.1f%%)", v)
		}
	}

	if m.DevelopmentAbsorption.Valid {
		v := m.DevelopmentAbsorption.Value
		if v < th.CriticalDevAbsorption {
			add(30, "critical development absorption (%.1f%%)", v)
		} else if v <= th.LowDevAbsorption {
			add(15, "low development absorption (%.1f%%)", v)
		}
	}

	if bills.Valid {
		v := bills.Value
		high := th.PendingBillsBudgetShare * 100
		if v > high {
			add(30, "pending bills exceed %.0f%% of the budget (%.1f%%)", high, v)
		} else if v > high/2 {
			add(15, "high pending bills relative to budget (%.1f%%)", v)
		} else if v > 10 {
			add(5, "notable pending bills relative to budget (%.1f%%)", v)
		}
	}

	if m.OverallAbsorption.Valid {
		v := m.OverallAbsorption.Value
		if v < 50 {
			add(20, "very low overall absorption (%.1f%%)", v)
		} else if v <= th.StrongAbsorption {
			add(10, "low overall absorption (%.1f%%)", v)
		}
	}

	if m.CompensationShare.Valid && m.CompensationShare.Value > 35 {
		add(10, "wage bill above 35%% of revenue (%.1f%%)", m.CompensationShare.Value)
	}

	if score > 100 {
		score = 100
	}
	return score, flags
}

// clampScore forces the additive score into its band's numeric range so
// the number and the label never disagree.
func clampScore(score int, band types.RiskBand) int {
	switch band {
	case types.RiskHigh:
		if score < 71 {
			return 71
		}
	case types.RiskModerate:
		if score < 40 {
			return 40
		}
		if score > 70 {
			return 70
		}
	case types.RiskLow:
		if score > 39 {
			return 39
		}
	}
	return score
}
