// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the county analysis stages: locate, render,
// extract, parse, analyze. Only the first two can fail the run; from
// extraction onward every problem degrades the result instead.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/audit-engine/internal/analyze"
	"github.com/pdiddy/audit-engine/internal/document"
	"github.com/pdiddy/audit-engine/internal/layout"
	"github.com/pdiddy/audit-engine/internal/locate"
	"github.com/pdiddy/audit-engine/internal/parse"
	"github.com/pdiddy/audit-engine/internal/render"
	"github.com/pdiddy/audit-engine/internal/vision"
	"github.com/pdiddy/audit-engine/pkg/types"
)

// State names a pipeline stage. The run moves strictly forward; Failed
// is reachable only from Locating and Rendering.
type State string

const (
	StateLocating   State = "locating"
	StateRendering  State = "rendering"
	StateExtracting State = "extracting"
	StateParsing    State = "parsing"
	StateAnalyzing  State = "analyzing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Pipeline wires the stage implementations together. The AI backends
// may be nil; each stage that uses one has a deterministic degradation.
type Pipeline struct {
	cfg      types.PipelineConfig
	renderer render.Renderer
	vision   vision.Backend
	parser   parse.AIBackend
	narrator analyze.NarrativeBackend
	progress io.Writer

	// OnState, when set, observes every state transition.
	OnState func(State)
}

// New returns a pipeline writing progress to the given writer.
func New(cfg types.PipelineConfig, renderer render.Renderer, visionBackend vision.Backend, parserBackend parse.AIBackend, narrator analyze.NarrativeBackend, progress io.Writer) *Pipeline {
	if progress == nil {
		progress = io.Discard
	}
	return &Pipeline{
		cfg:      cfg,
		renderer: renderer,
		vision:   visionBackend,
		parser:   parserBackend,
		narrator: narrator,
		progress: progress,
	}
}

func (p *Pipeline) setState(s State) {
	if p.OnState != nil {
		p.OnState(s)
	}
	fmt.Fprintf(p.progress, "pipeline: %s\n", s)
}

// Run analyzes one county of an already-indexed document. Location and
// rendering failures abort the run; extraction, parsing and narrative
// failures degrade the result and are recorded in Quality.Warnings.
func (p *Pipeline) Run(ctx context.Context, doc document.Document, idx *layout.Index, county string) (types.RunResult, error) {
	res := types.RunResult{County: county}
	var warnings []string

	p.setState(StateLocating)
	loc, err := locate.County(doc, idx, county, p.cfg.Locator)
	if err != nil {
		p.setState(StateFailed)
		return res, fmt.Errorf("locating county section: %w", err)
	}
	summary := locate.Summary(doc, p.cfg.Summary)
	res.CountyPages = loc.Pages
	res.SummaryPages = summary.Pages
	if !loc.Validated {
		warnings = append(warnings, "county header never matched on the located pages")
	}
	for _, id := range summary.Missing {
		warnings = append(warnings, fmt.Sprintf("summary table %q not found", id))
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	p.setState(StateRendering)
	pages := loc.Pages.Union(summary.Pages)
	images, err := p.renderer.Render(ctx, doc.Path(), pages)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		p.setState(StateFailed)
		return res, fmt.Errorf("rendering pages: %w", err)
	}

	p.setState(StateExtracting)
	extractions, err := vision.ExtractAll(ctx, p.vision, images, p.cfg.Vision.Concurrency, p.progress)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		warnings = append(warnings, fmt.Sprintf("extraction: %v", err))
		extractions = nil
	}
	sort.Slice(extractions, func(i, j int) bool { return extractions[i].Page < extractions[j].Page })
	res.Extractions = extractions

	if err := ctx.Err(); err != nil {
		return res, err
	}
	p.setState(StateParsing)
	outcome := parse.Parse(ctx, p.parser, assembleMarkdown(extractions, loc.Pages, county), county)
	res.Record = outcome.Record
	warnings = append(warnings, outcome.Warnings...)

	if err := ctx.Err(); err != nil {
		return res, err
	}
	p.setState(StateAnalyzing)
	res.Metrics = analyze.Derive(res.Record)
	res.Analysis = analyze.Assess(ctx, p.narrator, res.Record, res.Metrics, p.cfg.Analysis.Thresholds)
	if res.Analysis.Degraded {
		warnings = append(warnings, "narrative layer unavailable, deterministic summary used")
	}

	res.Quality = quality(loc, len(pages), vision.Extracted(extractions), outcome.Path, warnings)
	p.setState(StateDone)
	return res, nil
}

// assembleMarkdown joins the extracted pages into one parser input. The
// county's own pages are sliced down to the county's section so a
// neighbour sharing a page cannot contaminate the parse; summary-table
// pages pass through whole because their county rows carry the filter.
func assembleMarkdown(extractions []types.ExtractionResult, countyPages types.PageRange, county string) string {
	inCounty := make(map[int]bool, len(countyPages))
	for _, p := range countyPages {
		inCounty[p] = true
	}
	var countyRes, summaryRes []types.ExtractionResult
	for _, e := range extractions {
		if inCounty[e.Page] {
			countyRes = append(countyRes, e)
		} else {
			summaryRes = append(summaryRes, e)
		}
	}

	countyMD := vision.IsolateCounty(vision.Combine(countyRes), county)
	summaryMD := vision.Combine(summaryRes)
	return strings.TrimSpace(countyMD + "\n\n" + summaryMD)
}

// methodConfidence weighs how the section was found. The TOC formula is
// trusted; each fallback step is worth less, and a range no header ever
// confirmed is worth half.
func methodConfidence(loc locate.Location) float64 {
	w := map[types.LocationMethod]float64{
		types.LocateFormula:    1.0,
		types.LocateExpanded:   0.9,
		types.LocateStatic:     0.75,
		types.LocateBruteForce: 0.6,
		types.LocateDefault:    0.3,
	}[loc.Method]
	if !loc.Validated {
		w /= 2
	}
	return w
}

func parserConfidence(path types.ParserPath) float64 {
	switch path {
	case types.ParserModel:
		return 1.0
	case types.ParserRules:
		return 0.8
	default:
		return 0
	}
}

func quality(loc locate.Location, requested, extracted int, path types.ParserPath, warnings []string) types.Quality {
	fraction := 0.0
	if requested > 0 {
		fraction = float64(extracted) / float64(requested)
	}
	return types.Quality{
		Confidence:     methodConfidence(loc) * fraction * parserConfidence(path),
		LocationMethod: loc.Method,
		PagesRequested: requested,
		PagesExtracted: extracted,
		ParserPath:     path,
		Warnings:       warnings,
	}
}
