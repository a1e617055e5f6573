// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DerivedMetrics are ratios computed from a FinancialRecord. A metric
// whose inputs are absent is itself absent; it is never treated as zero.
type DerivedMetrics struct {
	// RevenueVariance is actual minus target own-source revenue.
	RevenueVariance Amount `json:"revenue_variance" yaml:"revenue_variance"`

	// RevenuePerformance is actual/target own-source revenue.
	RevenuePerformance Percent `json:"revenue_performance" yaml:"revenue_performance"`

	// OverallAbsorption is total expenditure over total budget.
	OverallAbsorption Percent `json:"overall_absorption" yaml:"overall_absorption"`

	// DevelopmentAbsorption is development expenditure over development budget.
	DevelopmentAbsorption Percent `json:"development_absorption" yaml:"development_absorption"`

	// CompensationShare is personnel emoluments over total revenue.
	CompensationShare Percent `json:"compensation_share" yaml:"compensation_share"`
}

// RiskBand classifies a county's fiscal risk.
type RiskBand string

const (
	RiskHigh     RiskBand = "High"
	RiskModerate RiskBand = "Moderate"
	RiskLow      RiskBand = "Low"
)

// RiskAssessment is the deterministic banding verdict.
type RiskAssessment struct {
	Band  RiskBand `json:"band" yaml:"band"`
	Score int      `json:"score" yaml:"score"`
	Flags []string `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// IntegrityScores are the 0-100 sub-scores produced by the narrative layer.
type IntegrityScores struct {
	Transparency int `json:"transparency" yaml:"transparency"`
	Compliance   int `json:"compliance" yaml:"compliance"`
	FiscalHealth int `json:"fiscal_health" yaml:"fiscal_health"`
	Overall      int `json:"overall" yaml:"overall"`
}

// Recommendations groups advice by the audience able to act on it.
type Recommendations struct {
	Executive []string `json:"executive,omitempty" yaml:"executive,omitempty"`
	Assembly  []string `json:"assembly,omitempty" yaml:"assembly,omitempty"`
	Treasury  []string `json:"treasury,omitempty" yaml:"treasury,omitempty"`
}

// AnalysisResult combines the deterministic risk band with the narrative
// layer's annotations. Degraded is set when the narrative layer was
// unavailable and only the deterministic parts could be produced.
type AnalysisResult struct {
	Risk            RiskAssessment  `json:"risk" yaml:"risk"`
	Integrity       IntegrityScores `json:"integrity" yaml:"integrity"`
	Summary         string          `json:"summary" yaml:"summary"`
	Recommendations Recommendations `json:"recommendations" yaml:"recommendations"`
	Anomalies       []string        `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
	Degraded        bool            `json:"degraded" yaml:"degraded"`
}
