// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory is one secret: the filename is the key name
// and the file contents (trimmed) are the value.
//
// Supported key files: vision-api-key, parser-api-key, narrative-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/audit-engine/pkg/types"
)

// Well-known key file names, matched to the stage that uses the key.
const (
	VisionKeyFile    = "vision-api-key"
	ParserKeyFile    = "parser-api-key"
	NarrativeKeyFile = "narrative-api-key"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply fills the API key of each stage config from the loaded secrets.
// Keys already set in the config, for example from the environment, win
// over key files.
func Apply(cfg *types.PipelineConfig, secrets map[string]string) {
	if cfg.Vision.APIKey == "" {
		cfg.Vision.APIKey = secrets[VisionKeyFile]
	}
	if cfg.Parser.APIKey == "" {
		cfg.Parser.APIKey = secrets[ParserKeyFile]
	}
	if cfg.Analysis.APIKey == "" {
		cfg.Analysis.APIKey = secrets[NarrativeKeyFile]
	}
}
