// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"strings"
	"testing"

	"github.com/pdiddy/audit-engine/pkg/types"
)

func thresholds() types.RiskThresholds {
	return types.DefaultConfig().Analysis.Thresholds
}

func metrics(perf, devAbs, overall types.Percent) types.DerivedMetrics {
	return types.DerivedMetrics{
		RevenuePerformance:    perf,
		DevelopmentAbsorption: devAbs,
		OverallAbsorption:     overall,
	}
}

func TestDeriveComputesRatios(t *testing.T) {
	rec := types.FinancialRecord{}
	rec.Revenue.Target = types.Ksh(1_000)
	rec.Revenue.Actual = types.Ksh(740)
	rec.Revenue.Performance = types.Pct(50) // report disagrees, computed wins
	rec.Revenue.EquitableShare = types.Ksh(9_000)
	rec.Expenditure.Total = types.Ksh(6_800)
	rec.Expenditure.TotalBudget = types.Ksh(10_000)
	rec.Expenditure.Development = types.Ksh(820)
	rec.Expenditure.DevelopmentBudget = types.Ksh(2_000)
	rec.Expenditure.PersonnelEmoluments = types.Ksh(3_896)

	m := Derive(rec)

	if !m.RevenueVariance.Valid || m.RevenueVariance.Kshs != -260 {
		t.Errorf("RevenueVariance = %+v, want -260", m.RevenueVariance)
	}
	if !m.RevenuePerformance.Valid || m.RevenuePerformance.Value != 74 {
		t.Errorf("RevenuePerformance = %+v, want 74", m.RevenuePerformance)
	}
	if !m.OverallAbsorption.Valid || m.OverallAbsorption.Value != 68 {
		t.Errorf("OverallAbsorption = %+v, want 68", m.OverallAbsorption)
	}
	if !m.DevelopmentAbsorption.Valid || m.DevelopmentAbsorption.Value != 41 {
		t.Errorf("DevelopmentAbsorption = %+v, want 41", m.DevelopmentAbsorption)
	}
	// personnel over equitable share + own-source actual = 3896/9740
	if !m.CompensationShare.Valid || m.CompensationShare.Value != 40 {
		t.Errorf("CompensationShare = %+v, want 40", m.CompensationShare)
	}
}

func TestDeriveFallsBackToReportedFigures(t *testing.T) {
	rec := types.FinancialRecord{}
	rec.Revenue.Performance = types.Pct(74)
	rec.Expenditure.OverallAbsorption = types.Pct(68)
	rec.Expenditure.DevelopmentAbsorption = types.Pct(41)

	m := Derive(rec)

	if !m.RevenuePerformance.Valid || m.RevenuePerformance.Value != 74 {
		t.Errorf("RevenuePerformance = %+v, want reported 74", m.RevenuePerformance)
	}
	if !m.OverallAbsorption.Valid || m.OverallAbsorption.Value != 68 {
		t.Errorf("OverallAbsorption = %+v, want reported 68", m.OverallAbsorption)
	}
	if m.RevenueVariance.Valid {
		t.Errorf("RevenueVariance = %+v, want absent", m.RevenueVariance)
	}
}

func TestDeriveZeroDenominatorStaysAbsent(t *testing.T) {
	rec := types.FinancialRecord{}
	rec.Revenue.Target = types.Ksh(0)
	rec.Revenue.Actual = types.Ksh(500)
	rec.Revenue.Performance = types.Pct(74)

	m := Derive(rec)
	if !m.RevenuePerformance.Valid || m.RevenuePerformance.Value != 74 {
		t.Errorf("RevenuePerformance = %+v, want reported fallback 74", m.RevenuePerformance)
	}
}

func TestDeriveAbsentInputsAbsentMetrics(t *testing.T) {
	m := Derive(types.FinancialRecord{})
	for name, valid := range map[string]bool{
		"RevenueVariance":       m.RevenueVariance.Valid,
		"RevenuePerformance":    m.RevenuePerformance.Valid,
		"OverallAbsorption":     m.OverallAbsorption.Valid,
		"DevelopmentAbsorption": m.DevelopmentAbsorption.Valid,
		"CompensationShare":     m.CompensationShare.Valid,
	} {
		if valid {
			t.Errorf("%s present for empty record", name)
		}
	}
}

func TestBandForBoundaries(t *testing.T) {
	billsRec := func(bills, budget int64) types.FinancialRecord {
		var rec types.FinancialRecord
		rec.Debt.PendingBills = types.Ksh(bills)
		rec.Expenditure.TotalBudget = types.Ksh(budget)
		return rec
	}

	tests := []struct {
		name string
		m    types.DerivedMetrics
		rec  types.FinancialRecord
		want types.RiskBand
	}{
		{"critical revenue performance", metrics(types.Pct(49.9), types.Pct(70), types.Pct(80)), types.FinancialRecord{}, types.RiskHigh},
		{"performance exactly at critical cutoff", metrics(types.Pct(50), types.Pct(70), types.Pct(80)), types.FinancialRecord{}, types.RiskModerate},
		{"performance at low cutoff", metrics(types.Pct(70), types.Pct(70), types.Pct(80)), types.FinancialRecord{}, types.RiskModerate},
		{"performance between moderate and strong", metrics(types.Pct(75), types.Pct(70), types.Pct(80)), types.FinancialRecord{}, types.RiskModerate},
		{"performance exactly at strong cutoff", metrics(types.Pct(80), types.Pct(70), types.Pct(80)), types.FinancialRecord{}, types.RiskModerate},
		{"strong performance and absorption", metrics(types.Pct(81), types.Pct(70), types.Pct(71)), types.FinancialRecord{}, types.RiskLow},
		{"absorption exactly at strong cutoff blocks low", metrics(types.Pct(81), types.Pct(70), types.Pct(70)), types.FinancialRecord{}, types.RiskModerate},
		{"critical development absorption", metrics(types.Pct(90), types.Pct(29.9), types.Pct(80)), types.FinancialRecord{}, types.RiskHigh},
		{"development absorption at critical cutoff", metrics(types.Pct(90), types.Pct(30), types.Pct(80)), types.FinancialRecord{}, types.RiskModerate},
		{"development absorption at low cutoff ties down", metrics(types.Pct(90), types.Pct(60), types.Pct(80)), types.FinancialRecord{}, types.RiskModerate},
		{"pending bills above budget share", metrics(types.Pct(90), types.Pct(70), types.Pct(80)), billsRec(4_100, 10_000), types.RiskHigh},
		{"pending bills exactly at budget share", metrics(types.Pct(90), types.Pct(70), types.Pct(80)), billsRec(4_000, 10_000), types.RiskLow},
		{"only pending bills evaluable", types.DerivedMetrics{}, billsRec(4_100, 10_000), types.RiskHigh},
	}
	th := thresholds()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BandFor(tt.m, tt.rec, th)
			if got.Band != tt.want {
				t.Fatalf("band = %s, want %s (flags %v)", got.Band, tt.want, got.Flags)
			}
			switch got.Band {
			case types.RiskHigh:
				if got.Score < 71 || got.Score > 100 {
					t.Errorf("score %d outside High range", got.Score)
				}
			case types.RiskModerate:
				if got.Score < 40 || got.Score > 70 {
					t.Errorf("score %d outside Moderate range", got.Score)
				}
			case types.RiskLow:
				if got.Score < 0 || got.Score > 39 {
					t.Errorf("score %d outside Low range", got.Score)
				}
			}
		})
	}
}

func TestClampScoreKeepsBandRangesDisjoint(t *testing.T) {
	if got := clampScore(30, types.RiskHigh); got != 71 {
		t.Errorf("clampScore(30, High) = %d, want 71", got)
	}
	if got := clampScore(85, types.RiskModerate); got != 70 {
		t.Errorf("clampScore(85, Moderate) = %d, want 70", got)
	}
	if got := clampScore(70, types.RiskModerate); got != 70 {
		t.Errorf("clampScore(70, Moderate) = %d, want 70", got)
	}
}

func TestBandForNoEvaluableMetrics(t *testing.T) {
	got := BandFor(types.DerivedMetrics{}, types.FinancialRecord{}, thresholds())
	if got.Band != types.RiskModerate {
		t.Fatalf("band = %s, want Moderate", got.Band)
	}
	if len(got.Flags) != 1 || !strings.Contains(got.Flags[0], "insufficient data") {
		t.Errorf("flags = %v, want single insufficient-data flag", got.Flags)
	}
}

func TestBandForFlagsNameTheFigure(t *testing.T) {
	got := BandFor(metrics(types.Pct(42.5), types.Percent{}, types.Percent{}), types.FinancialRecord{}, thresholds())
	if got.Band != types.RiskHigh {
		t.Fatalf("band = %s, want High", got.Band)
	}
	found := false
	for _, f := range got.Flags {
		if strings.Contains(f, "critical revenue performance") && strings.Contains(f, "42.5") {
			found = true
		}
	}
	if !found {
		t.Errorf("flags %v missing critical revenue performance with figure", got.Flags)
	}
}
