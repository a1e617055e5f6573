// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the audit-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/audit-engine/internal/secrets"
	"github.com/pdiddy/audit-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the audit-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "audit-engine",
	Short: "County budget report analysis",
	Long: `audit-engine analyzes county budget implementation review reports. Given
a report PDF and a county name it locates the county's section, renders
those pages, extracts their tables through a vision model, parses the
figures into a typed record, and derives a risk assessment.

Each step degrades rather than fails where it can: a missing table or an
unreachable model narrows the result instead of aborting the run.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./audit-engine.yaml or ~/.config/audit-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("audit-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "audit-engine"))
		}
	}

	viper.SetEnvPrefix("AUDIT_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the effective configuration: report-format
// defaults, then the config file, then environment overrides for the
// model endpoints, then key files.
func pipelineConfig() types.PipelineConfig {
	cfg := types.DefaultConfig()

	if file := viper.ConfigFileUsed(); file != "" {
		data, err := os.ReadFile(file)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				fmt.Fprintf(os.Stderr, "warning: ignoring malformed config %s: %v\n", file, err)
				cfg = types.DefaultConfig()
			}
		}
	}

	overrides := []struct {
		key    string
		target *string
	}{
		{"vision.base_url", &cfg.Vision.BaseURL},
		{"vision.model", &cfg.Vision.Model},
		{"vision.api_key", &cfg.Vision.APIKey},
		{"parser.base_url", &cfg.Parser.BaseURL},
		{"parser.model", &cfg.Parser.Model},
		{"parser.api_key", &cfg.Parser.APIKey},
		{"analysis.base_url", &cfg.Analysis.BaseURL},
		{"analysis.model", &cfg.Analysis.Model},
		{"analysis.api_key", &cfg.Analysis.APIKey},
	}
	for _, o := range overrides {
		if v := viper.GetString(o.key); v != "" {
			*o.target = v
		}
	}

	secrets.Apply(&cfg, loadedSecrets)
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
