// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proxy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/pdiddy/issue-builder/pkg/types"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvAPIKey         = "UPSTREAM_API_KEY"
	EnvLegacyAPIKey   = "THIRTY_TWO_AI_API_KEY"
	EnvAllowedOrigins = "ALLOWED_ORIGINS"
	EnvUpstreamURL    = "UPSTREAM_URL"
	EnvModel          = "UPSTREAM_MODEL"
)

// LoadEnv loads .env style files into the process environment. Missing
// files are skipped; variables already set are not overridden.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ConfigFromEnv fills the fields of cfg that are still empty from the
// environment.
func ConfigFromEnv(cfg types.ProxyConfig) types.ProxyConfig {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(EnvAPIKey)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(EnvLegacyAPIKey)
	}
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = os.Getenv(EnvAllowedOrigins)
	}
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = os.Getenv(EnvUpstreamURL)
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = os.Getenv(EnvModel)
	}
	return cfg
}
