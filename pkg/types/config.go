// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that call
// external services.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "audit-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// BaseURL is the OpenAI-compatible endpoint root.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model identifier served at BaseURL.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// LocatorConfig holds settings for the county page locator. Defaults
// describe the August 2025 budget implementation review report; other
// report formats override them here rather than in code.
type LocatorConfig struct {
	// TOCFirstPage and TOCLastPage bound the table-of-contents scan (default 2-20).
	TOCFirstPage int `json:"toc_first_page" yaml:"toc_first_page"`
	TOCLastPage  int `json:"toc_last_page" yaml:"toc_last_page"`

	// MinCounties is the minimum TOC entries required before the index
	// is trusted (default 40 of the 47 counties).
	MinCounties int `json:"min_counties" yaml:"min_counties"`

	// SectionLength is the number of pages each county section occupies
	// after its start page (default 4).
	SectionLength int `json:"section_length" yaml:"section_length"`

	// ExpandStep and ExpandLimit control header re-validation around a
	// candidate start page: the search widens by ExpandStep pages per
	// round, up to ExpandLimit pages either side (defaults 2 and 6).
	ExpandStep  int `json:"expand_step" yaml:"expand_step"`
	ExpandLimit int `json:"expand_limit" yaml:"expand_limit"`

	// ScanFirstPage and ScanLastPage bound the brute-force header scan;
	// the window covers the county chapters, never the whole document
	// (defaults 100-560).
	ScanFirstPage int `json:"scan_first_page" yaml:"scan_first_page"`
	ScanLastPage  int `json:"scan_last_page" yaml:"scan_last_page"`

	// DefaultStartPage anchors the last-resort page range returned when
	// every other strategy fails (default 324).
	DefaultStartPage int `json:"default_start_page" yaml:"default_start_page"`
}

// SummaryConfig holds settings for the national summary table locator.
type SummaryConfig struct {
	// WindowFirstPage and WindowLastPage bound the scan for national
	// summary tables (default 40-100).
	WindowFirstPage int `json:"window_first_page" yaml:"window_first_page"`
	WindowLastPage  int `json:"window_last_page" yaml:"window_last_page"`

	// MaxPages caps the union of matched pages (default 15).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// TableIDs lists the table headings to find (default Tables 2.1, 2.5, 2.9).
	TableIDs []string `json:"table_ids" yaml:"table_ids"`
}

// RenderConfig holds settings for page rendering.
type RenderConfig struct {
	// DPI is the target rendering resolution (default 200, chosen for
	// OCR legibility).
	DPI int `json:"dpi" yaml:"dpi"`
}

// VisionConfig holds settings for the vision table-extraction service.
type VisionConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`

	// Concurrency bounds simultaneous extraction calls (default 3; the
	// service's rate limits dominate, keep it low).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// WarmupBackoff is the single-retry delay after a "warming up"
	// response (default 20s).
	WarmupBackoff time.Duration `json:"warmup_backoff" yaml:"warmup_backoff"`
}

// ParserConfig holds settings for the structured parser's learned path.
type ParserConfig struct {
	AIConfig `yaml:",inline"`
}

// RiskThresholds are the percentage cutoffs of the banding decision
// table. Document-format-specific; configuration, not invariants.
type RiskThresholds struct {
	// CriticalRevenuePerformance: below this, High risk (default 50).
	CriticalRevenuePerformance float64 `json:"critical_revenue_performance" yaml:"critical_revenue_performance"`

	// LowRevenuePerformance: up to this, Moderate risk (default 70).
	LowRevenuePerformance float64 `json:"low_revenue_performance" yaml:"low_revenue_performance"`

	// StrongRevenuePerformance: above this (with strong absorption), Low risk (default 80).
	StrongRevenuePerformance float64 `json:"strong_revenue_performance" yaml:"strong_revenue_performance"`

	// CriticalDevAbsorption: below this, High risk (default 30).
	CriticalDevAbsorption float64 `json:"critical_dev_absorption" yaml:"critical_dev_absorption"`

	// LowDevAbsorption: up to this, Moderate risk (default 60).
	LowDevAbsorption float64 `json:"low_dev_absorption" yaml:"low_dev_absorption"`

	// StrongAbsorption: overall absorption above this supports Low risk (default 70).
	StrongAbsorption float64 `json:"strong_absorption" yaml:"strong_absorption"`

	// PendingBillsBudgetShare: pending bills above this fraction of the
	// total budget is High risk (default 0.40).
	PendingBillsBudgetShare float64 `json:"pending_bills_budget_share" yaml:"pending_bills_budget_share"`
}

// AnalysisConfig holds settings for the analysis engine.
type AnalysisConfig struct {
	AIConfig `yaml:",inline"`

	Thresholds RiskThresholds `json:"thresholds" yaml:"thresholds"`
}

// CacheConfig holds settings for the layout index cache.
type CacheConfig struct {
	// Path is the SQLite database file (default "layout-cache.db").
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Locator  LocatorConfig  `json:"locator" yaml:"locator"`
	Summary  SummaryConfig  `json:"summary" yaml:"summary"`
	Render   RenderConfig   `json:"render" yaml:"render"`
	Vision   VisionConfig   `json:"vision" yaml:"vision"`
	Parser   ParserConfig   `json:"parser" yaml:"parser"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
}

// DefaultConfig returns the configuration for the August 2025 report
// format.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		Locator: LocatorConfig{
			TOCFirstPage:     2,
			TOCLastPage:      20,
			MinCounties:      40,
			SectionLength:    4,
			ExpandStep:       2,
			ExpandLimit:      6,
			ScanFirstPage:    100,
			ScanLastPage:     560,
			DefaultStartPage: 324,
		},
		Summary: SummaryConfig{
			WindowFirstPage: 40,
			WindowLastPage:  100,
			MaxPages:        15,
			TableIDs:        []string{"Table 2.1", "Table 2.5", "Table 2.9"},
		},
		Render: RenderConfig{DPI: 200},
		Vision: VisionConfig{
			AIConfig:      AIConfig{MaxRetries: 1},
			HTTPConfig:    HTTPConfig{Timeout: 2 * time.Minute, UserAgent: "audit-engine/0.1"},
			Concurrency:   3,
			WarmupBackoff: 20 * time.Second,
		},
		Parser: ParserConfig{AIConfig: AIConfig{MaxRetries: 3}},
		Analysis: AnalysisConfig{
			AIConfig: AIConfig{MaxRetries: 2},
			Thresholds: RiskThresholds{
				CriticalRevenuePerformance: 50,
				LowRevenuePerformance:      70,
				StrongRevenuePerformance:   80,
				CriticalDevAbsorption:      30,
				LowDevAbsorption:           60,
				StrongAbsorption:           70,
				PendingBillsBudgetShare:    0.40,
			},
		},
		Cache: CacheConfig{Path: "layout-cache.db"},
	}
}
