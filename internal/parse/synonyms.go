// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"regexp"
	"strings"

	"github.com/pdiddy/audit-engine/pkg/types"
)

// field identifies one slot of a FinancialRecord for the rule parser.
type field int

const (
	fieldNone field = iota
	fieldRevenueTarget
	fieldRevenueActual
	fieldRevenuePerformance
	fieldEquitableShare
	fieldExpTotal
	fieldExpRecurrent
	fieldExpDevelopment
	fieldTotalBudget
	fieldRecurrentBudget
	fieldDevelopmentBudget
	fieldPersonnel
	fieldOverallAbsorption
	fieldDevAbsorption
	fieldPendingBills
	fieldRevenueArrears
	fieldHealthApproved
	fieldHealthPaid
	fieldHealthRate
)

// labelSynonyms maps each record field to the label spellings the
// reports (and the vision model's renditions of them) use for it.
// Matching is on normalized text, longest synonym wins.
var labelSynonyms = map[field][]string{
	fieldRevenueTarget: {
		"osr target", "own source revenue target", "ordinary osr target",
		"annual osr target", "total osr target", "revenue target",
	},
	fieldRevenueActual: {
		"osr actual", "own source revenue actual", "actual osr",
		"osr collected", "own source revenue collection", "total osr actual",
		"actual revenue collection", "revenue collected", "osr collection",
	},
	fieldRevenuePerformance: {
		"osr performance", "revenue performance", "collection performance",
		"performance against target",
	},
	fieldEquitableShare: {
		"equitable share", "equitable share allocation", "equitable share disbursement",
	},
	fieldExpTotal: {
		"total expenditure", "overall expenditure", "cumulative expenditure", "total exp",
	},
	fieldExpRecurrent: {
		"recurrent expenditure", "recurrent exp", "recurrent spending",
	},
	fieldExpDevelopment: {
		"development expenditure", "dev expenditure", "dev exp", "capital expenditure",
	},
	fieldTotalBudget: {
		"total budget", "approved budget", "overall budget", "annual approved budget",
	},
	fieldRecurrentBudget: {
		"recurrent budget", "recurrent allocation", "recurrent exchequer",
	},
	fieldDevelopmentBudget: {
		"development budget", "development allocation", "development exchequer", "dev budget",
	},
	fieldPersonnel: {
		"personnel emoluments", "compensation of employees", "employee compensation",
		"wage bill", "salaries and wages", "personnel costs",
	},
	fieldOverallAbsorption: {
		"overall absorption", "absorption rate", "budget absorption",
		"overall absorption rate",
	},
	fieldDevAbsorption: {
		"development absorption", "dev absorption", "development absorption rate",
	},
	fieldPendingBills: {
		"pending bills", "outstanding bills", "unpaid bills",
		"accumulated pending bills", "total pending bills",
	},
	fieldRevenueArrears: {
		"revenue arrears", "outstanding revenue", "uncollected revenue",
	},
	fieldHealthApproved: {
		"fif approved", "facility improvement fund approved", "fif budget",
	},
	fieldHealthPaid: {
		"fif paid", "facility improvement fund paid", "fif disbursed",
	},
	fieldHealthRate: {
		"fif payment rate", "facility improvement fund payment rate",
	},
}

// percentFields holds the fields whose values are rates, not amounts.
var percentFields = map[field]bool{
	fieldRevenuePerformance: true,
	fieldOverallAbsorption:  true,
	fieldDevAbsorption:      true,
	fieldHealthRate:         true,
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeLabel lowercases and strips punctuation so "Dev. Absorption
// (%)" and "dev absorption" compare equal.
func normalizeLabel(s string) string {
	s = nonAlnumRe.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(s)
}

// matchField resolves a label to the record field it names. Ambiguity
// resolves toward the longest matching synonym, so "development
// absorption rate" beats the shorter "absorption rate".
func matchField(label string) (field, bool) {
	norm := normalizeLabel(label)
	if norm == "" {
		return fieldNone, false
	}
	best := fieldNone
	bestLen := 0
	for f, syns := range labelSynonyms {
		for _, syn := range syns {
			if len(syn) > bestLen && strings.Contains(norm, syn) {
				best, bestLen = f, len(syn)
			}
		}
	}
	return best, best != fieldNone
}

// setField writes a parsed value into its record slot, keeping an
// earlier value if one is already present.
func setField(rec *types.FinancialRecord, f field, amt types.Amount, pct types.Percent) {
	setA := func(dst *types.Amount) {
		if !dst.Valid && amt.Valid {
			*dst = amt
		}
	}
	setP := func(dst *types.Percent) {
		if !dst.Valid && pct.Valid {
			*dst = pct
		}
	}
	switch f {
	case fieldRevenueTarget:
		setA(&rec.Revenue.Target)
	case fieldRevenueActual:
		setA(&rec.Revenue.Actual)
	case fieldRevenuePerformance:
		setP(&rec.Revenue.Performance)
	case fieldEquitableShare:
		setA(&rec.Revenue.EquitableShare)
	case fieldExpTotal:
		setA(&rec.Expenditure.Total)
	case fieldExpRecurrent:
		setA(&rec.Expenditure.Recurrent)
	case fieldExpDevelopment:
		setA(&rec.Expenditure.Development)
	case fieldTotalBudget:
		setA(&rec.Expenditure.TotalBudget)
	case fieldRecurrentBudget:
		setA(&rec.Expenditure.RecurrentBudget)
	case fieldDevelopmentBudget:
		setA(&rec.Expenditure.DevelopmentBudget)
	case fieldPersonnel:
		setA(&rec.Expenditure.PersonnelEmoluments)
	case fieldOverallAbsorption:
		setP(&rec.Expenditure.OverallAbsorption)
	case fieldDevAbsorption:
		setP(&rec.Expenditure.DevelopmentAbsorption)
	case fieldPendingBills:
		setA(&rec.Debt.PendingBills)
	case fieldRevenueArrears:
		setA(&rec.Debt.RevenueArrears)
	case fieldHealthApproved:
		setA(&rec.HealthFund.Approved)
	case fieldHealthPaid:
		setA(&rec.HealthFund.Paid)
	case fieldHealthRate:
		setP(&rec.HealthFund.PaymentRate)
	}
}
