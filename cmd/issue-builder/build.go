// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/issue-builder/internal/assemble"
	"github.com/pdiddy/issue-builder/internal/outline"
	"github.com/pdiddy/issue-builder/internal/secrets"
	"github.com/pdiddy/issue-builder/internal/summarize"
	"github.com/pdiddy/issue-builder/pkg/types"
)

// envClientOrigin overrides the Origin header sent to the summarization endpoint.
const envClientOrigin = "ISSUE_BUILDER_CLIENT_ORIGIN"

var buildCmd = &cobra.Command{
	Use:   "build [markdown files...]",
	Short: "Build one issue from an outline and its OCR transcripts",
	Long: `Build segments the OCR transcript of one issue into articles using the
editorial outline, then writes data/markdown/{id}.md and data/issues/{id}.json
under the output directory.

Transcript files are given with --md-files or as arguments, in page order.
When --summarize-endpoint is set, the articles of each transcript file are
sent to the summarization service as one group and the returned summary and
insight are merged into the issue JSON. Failed groups are reported and leave
those articles without an analysis.

An invalid outline exits with status 2.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd, args)

	var s assemble.Summarizer
	if cfg.Summarize.Endpoint != "" {
		client := summarize.NewClient(cfg.Summarize)
		s = summarize.NewEnricher(client, summarize.Options{
			Workers:  cfg.Summarize.Workers,
			Interval: cfg.Summarize.Interval,
			Timeout:  cfg.Summarize.Timeout,
		}, logger)
	}

	res, err := assemble.Build(cmd.Context(), cfg, s, os.Stdout, logger)
	if err != nil {
		if errors.Is(err, outline.ErrInvalidOutline) {
			return &exitError{code: 2, err: err}
		}
		return err
	}
	if res.Summarized && res.Summary.Failed > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d summarization group(s) failed\n", res.Summary.Failed)
	}
	return nil
}

func buildConfig(cmd *cobra.Command, args []string) types.BuildConfig {
	files := stringSliceSetting(cmd, "md-files")
	files = append(files, args...)

	origin := stringSetting(cmd, "origin")
	if origin == "" {
		origin = os.Getenv(envClientOrigin)
	}

	return types.BuildConfig{
		IssueID:       stringSetting(cmd, "issue-id"),
		IssueTitle:    stringSetting(cmd, "issue-title"),
		PublishDate:   stringSetting(cmd, "publish-date"),
		PDFPath:       stringSetting(cmd, "pdf"),
		MarkdownFiles: files,
		OutlinePath:   stringSetting(cmd, "outline"),
		OutputDir:     stringSetting(cmd, "output-dir"),
		OSSBaseURL:    stringSetting(cmd, "oss-base-url"),
		PromptFile:    stringSetting(cmd, "prompt-file"),
		Summarize: types.SummarizeConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   durationSetting(cmd, "timeout"),
				UserAgent: "issue-builder/" + version,
			},
			Endpoint:   stringSetting(cmd, "summarize-endpoint"),
			APIKey:     secrets.Resolve(loadedSecrets, stringSetting(cmd, "summarize-api-key"), secrets.SummarizeAPIKey),
			Origin:     origin,
			MaxRetries: intSetting(cmd, "max-retries"),
			Workers:    intSetting(cmd, "workers"),
			Interval:   durationSetting(cmd, "interval"),
		},
	}
}

func init() {
	f := buildCmd.Flags()
	f.String("issue-id", "", "issue identifier, e.g. 2025-40 (required)")
	f.String("issue-title", "", "issue title (default: outline issueTitle, then the issue id)")
	f.String("publish-date", "", "publication date as YYYY-MM-DD")
	f.String("pdf", "", "issue PDF to list in the upload checklist")
	f.StringSlice("md-files", nil, "transcript Markdown files in page order")
	f.String("outline", "", "outline JSON or YAML file (required)")
	f.String("output-dir", ".", "directory that receives data/issues and data/markdown")
	f.String("oss-base-url", "", "public base URL the data/ tree is uploaded under")
	f.String("summarize-endpoint", "", "summarization service URL (empty disables summarization)")
	f.String("summarize-api-key", "", "bearer token for the summarization service (default: .secrets/summarize-api-key)")
	f.String("prompt-file", "", "file whose contents are sent as the summarization prompt")
	f.String("origin", "", "Origin header for summarization requests (default: $"+envClientOrigin+" or "+summarize.DefaultOrigin+")")
	f.Int("workers", 1, "summarization groups sent concurrently")
	f.Duration("interval", 0, "minimum spacing between summarization calls")
	f.Duration("timeout", summarize.DefaultTimeout, "timeout for one summarization call")
	f.Int("max-retries", 3, "retries on 429 and 503 summarization replies")

	rootCmd.AddCommand(buildCmd)
}
