// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/audit-engine/internal/analyze"
	"github.com/pdiddy/audit-engine/internal/document"
	"github.com/pdiddy/audit-engine/internal/parse"
	"github.com/pdiddy/audit-engine/internal/pipeline"
	"github.com/pdiddy/audit-engine/internal/render"
	"github.com/pdiddy/audit-engine/internal/vision"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one county's section of a budget report",
	Long: `Analyze runs the full pipeline for a single county: locate its section
pages, render them, extract their tables through the vision service,
parse a financial record, and derive the risk assessment.

Progress goes to stderr; the result object goes to stdout as YAML
(or JSON with --out json).`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("pdf", "", "path to the budget report PDF (required)")
	analyzeCmd.Flags().String("county", "", "county name, e.g. Mombasa (required)")
	analyzeCmd.Flags().String("out", "yaml", "output format: yaml or json")
	analyzeCmd.Flags().Bool("no-cache", false, "skip the layout cache")
	analyzeCmd.Flags().Bool("offline", false, "skip the parser and narrative models, deterministic paths only")
	_ = analyzeCmd.MarkFlagRequired("pdf")
	_ = analyzeCmd.MarkFlagRequired("county")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	pdfPath, _ := cmd.Flags().GetString("pdf")
	county, _ := cmd.Flags().GetString("county")
	outFormat, _ := cmd.Flags().GetString("out")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	offline, _ := cmd.Flags().GetBool("offline")

	if outFormat != "yaml" && outFormat != "json" {
		return fmt.Errorf("unknown output format %q: use yaml or json", outFormat)
	}

	cfg := pipelineConfig()
	if cfg.Vision.BaseURL == "" {
		return fmt.Errorf("vision service not configured: set vision.base_url in the config file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	doc, err := document.Open(pdfPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	idx, err := loadIndex(doc, cfg, !noCache, false)
	if err != nil {
		return err
	}

	var parserBackend parse.AIBackend
	var narrator analyze.NarrativeBackend
	if !offline {
		if cfg.Parser.BaseURL != "" {
			parserBackend = parse.NewHTTPBackend(cfg.Parser)
		}
		if cfg.Analysis.BaseURL != "" {
			narrator = analyze.NewHTTPNarrativeBackend(cfg.Analysis)
		}
	}

	p := pipeline.New(
		cfg,
		render.NewPDFRenderer(cfg.Render, os.Stderr),
		vision.NewHTTPBackend(cfg.Vision),
		parserBackend,
		narrator,
		os.Stderr,
	)

	res, err := p.Run(ctx, doc, idx, county)
	if err != nil {
		return err
	}

	if outFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
