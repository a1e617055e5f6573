// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse turns extracted markdown into a typed financial record.
// A learned parser runs first; a deterministic rule parser takes over
// when the model errors, returns garbage, or finds nothing.
package parse

import (
	"context"
	"fmt"

	"github.com/pdiddy/audit-engine/pkg/types"
)

// Outcome is a tagged parse result: the record, the parser path that
// produced it, and any warnings gathered on the way. Path is
// ParserNone when even the rule parser found nothing; the record is
// then all-absent rather than an error.
type Outcome struct {
	Record   types.FinancialRecord
	Path     types.ParserPath
	Warnings []string
}

// Parse runs the learned parser and falls back to rules. A nil backend
// skips straight to the rule parser. The ageing sub-routine applies to
// both paths, so a model answer without age buckets still gets them
// when the text carries an ageing table.
func Parse(ctx context.Context, backend AIBackend, markdown, county string) Outcome {
	var warnings []string

	if backend != nil {
		rec, err := backend.ParseRecord(ctx, markdown, county)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("model parser: %v", err))
		case rec.Empty():
			warnings = append(warnings, "model parser returned an empty record")
		default:
			warnings = append(warnings, fillAgeing(&rec, markdown)...)
			return Outcome{Record: rec, Path: types.ParserModel, Warnings: warnings}
		}
	}

	rec := ParseRules(markdown, county)
	warnings = append(warnings, fillAgeing(&rec, markdown)...)

	path := types.ParserRules
	if rec.Empty() {
		path = types.ParserNone
		warnings = append(warnings, "no parser produced any figure")
	}
	return Outcome{Record: rec, Path: path, Warnings: warnings}
}

// fillAgeing runs the age-bucket sub-routine when the record carries no
// buckets yet.
func fillAgeing(rec *types.FinancialRecord, markdown string) []string {
	a := rec.Debt.Ageing
	if a.UnderOneYear.Valid || a.OneToTwoYears.Valid || a.TwoToThreeYears.Valid || a.OverThreeYears.Valid {
		return nil
	}
	buckets, warnings := ParseAgeing(markdown)
	rec.Debt.Ageing = buckets
	return warnings
}
