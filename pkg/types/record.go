// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of the analysis
// pipeline: the financial record and its present/absent value types,
// stage configurations, and the run result surface.
package types

// Amount is a monetary value in Kenyan shillings. Valid is false when the
// figure was never found in the source document; a reported zero carries
// Valid=true, so absence and zero stay distinguishable.
type Amount struct {
	Kshs  int64 `json:"kshs" yaml:"kshs"`
	Valid bool  `json:"valid" yaml:"valid"`
}

// Ksh returns a present Amount.
func Ksh(v int64) Amount { return Amount{Kshs: v, Valid: true} }

// Percent is a percentage figure with the same present/absent semantics
// as Amount.
type Percent struct {
	Value float64 `json:"value" yaml:"value"`
	Valid bool    `json:"valid" yaml:"valid"`
}

// Pct returns a present Percent.
func Pct(v float64) Percent { return Percent{Value: v, Valid: true} }

// Revenue holds a county's own-source revenue figures.
type Revenue struct {
	// Target is the annual own-source revenue target.
	Target Amount `json:"target" yaml:"target"`

	// Actual is own-source revenue collected in the period.
	Actual Amount `json:"actual" yaml:"actual"`

	// Performance is actual collection as a share of the target.
	Performance Percent `json:"performance" yaml:"performance"`

	// EquitableShare is the national equitable-share transfer.
	EquitableShare Amount `json:"equitable_share" yaml:"equitable_share"`
}

// Expenditure holds budget and spending figures.
type Expenditure struct {
	Total       Amount `json:"total" yaml:"total"`
	Recurrent   Amount `json:"recurrent" yaml:"recurrent"`
	Development Amount `json:"development" yaml:"development"`

	// Budget allocations matching the expenditure lines above.
	TotalBudget       Amount `json:"total_budget" yaml:"total_budget"`
	RecurrentBudget   Amount `json:"recurrent_budget" yaml:"recurrent_budget"`
	DevelopmentBudget Amount `json:"development_budget" yaml:"development_budget"`

	// PersonnelEmoluments is spending on compensation of employees.
	PersonnelEmoluments Amount `json:"personnel_emoluments" yaml:"personnel_emoluments"`

	// Absorption rates as reported by the document itself, when present.
	OverallAbsorption     Percent `json:"overall_absorption" yaml:"overall_absorption"`
	DevelopmentAbsorption Percent `json:"development_absorption" yaml:"development_absorption"`
}

// AgeingBuckets breaks pending bills down by age. Unmatched age labels in
// the source are dropped rather than guessed into a bucket.
type AgeingBuckets struct {
	UnderOneYear    Amount `json:"under_one_year" yaml:"under_one_year"`
	OneToTwoYears   Amount `json:"one_to_two_years" yaml:"one_to_two_years"`
	TwoToThreeYears Amount `json:"two_to_three_years" yaml:"two_to_three_years"`
	OverThreeYears  Amount `json:"over_three_years" yaml:"over_three_years"`
}

// Debt holds pending bills and revenue arrears.
type Debt struct {
	PendingBills   Amount        `json:"pending_bills" yaml:"pending_bills"`
	RevenueArrears Amount        `json:"revenue_arrears" yaml:"revenue_arrears"`
	Ageing         AgeingBuckets `json:"ageing" yaml:"ageing"`
}

// HealthFund holds Facility Improvement Fund payment figures.
type HealthFund struct {
	Approved    Amount  `json:"approved" yaml:"approved"`
	Paid        Amount  `json:"paid" yaml:"paid"`
	PaymentRate Percent `json:"payment_rate" yaml:"payment_rate"`
}

// FinancialRecord is the typed result of parsing a county's section of
// the budget implementation report.
type FinancialRecord struct {
	County     string `json:"county" yaml:"county"`
	FiscalYear string `json:"fiscal_year" yaml:"fiscal_year"`

	Revenue     Revenue     `json:"revenue" yaml:"revenue"`
	Expenditure Expenditure `json:"expenditure" yaml:"expenditure"`
	Debt        Debt        `json:"debt" yaml:"debt"`
	HealthFund  HealthFund  `json:"health_fund" yaml:"health_fund"`
}

// Empty reports whether no field of the record was found.
func (r FinancialRecord) Empty() bool {
	for _, a := range []Amount{
		r.Revenue.Target, r.Revenue.Actual, r.Revenue.EquitableShare,
		r.Expenditure.Total, r.Expenditure.Recurrent, r.Expenditure.Development,
		r.Expenditure.TotalBudget, r.Expenditure.RecurrentBudget, r.Expenditure.DevelopmentBudget,
		r.Expenditure.PersonnelEmoluments,
		r.Debt.PendingBills, r.Debt.RevenueArrears,
		r.Debt.Ageing.UnderOneYear, r.Debt.Ageing.OneToTwoYears,
		r.Debt.Ageing.TwoToThreeYears, r.Debt.Ageing.OverThreeYears,
		r.HealthFund.Approved, r.HealthFund.Paid,
	} {
		if a.Valid {
			return false
		}
	}
	for _, p := range []Percent{
		r.Revenue.Performance,
		r.Expenditure.OverallAbsorption, r.Expenditure.DevelopmentAbsorption,
		r.HealthFund.PaymentRate,
	} {
		if p.Valid {
			return false
		}
	}
	return true
}
