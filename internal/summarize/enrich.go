// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pdiddy/issue-builder/internal/logging"
	"github.com/pdiddy/issue-builder/pkg/types"
)

// Options tunes how groups are sent to the backend.
type Options struct {
	// Workers bounds concurrent calls. Values below 1 mean one at a time.
	Workers int
	// Interval is the minimum spacing between call starts. Zero disables pacing.
	Interval time.Duration
	// Timeout bounds each call. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// Enricher sends AI input groups to a Backend, one call per group.
type Enricher struct {
	backend Backend
	opts    Options
	logger  *slog.Logger
}

// NewEnricher creates an Enricher. A nil logger discards diagnostics.
func NewEnricher(backend Backend, opts Options, logger *slog.Logger) *Enricher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Enricher{backend: backend, opts: opts, logger: logger}
}

// EnrichResult holds the analyses keyed by article ID and per-group counts.
type EnrichResult struct {
	Analyses  map[string]types.ArticleAnalysis
	Succeeded int
	Failed    int
}

// Enrich summarizes every group. A failed group is reported and skipped;
// its articles get no analysis. Enrich never returns an error: only a
// cancelled context stops it early, and the remaining groups count as failed.
func (e *Enricher) Enrich(ctx context.Context, issueID string, groups []types.AIInputGroup, prompt string, w io.Writer) EnrichResult {
	replies := make([]*types.SummaryResponse, len(groups))

	var limiter *rate.Limiter
	if e.opts.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(e.opts.Interval), 1)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.opts.Workers)

	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			name := filepath.Base(g.SourcePath)
			if limiter != nil {
				if err := limiter.Wait(egCtx); err != nil {
					e.logger.Warn("summarization skipped", "source", name, "error", err)
					return nil
				}
			}

			callCtx, cancel := context.WithTimeout(egCtx, e.opts.Timeout)
			defer cancel()

			e.logger.Info("summarizing group", "source", name, "articles", len(g.Articles))
			resp, err := e.backend.Summarize(callCtx, types.SummaryRequest{
				IssueID:  issueID,
				Articles: g.Articles,
				Prompt:   prompt,
			})
			if err != nil {
				e.logger.Warn("summarization failed", "source", name, "error", err)
				return nil
			}
			replies[i] = &resp
			return nil
		})
	}
	_ = eg.Wait()

	result := EnrichResult{Analyses: make(map[string]types.ArticleAnalysis)}
	for i, g := range groups {
		name := filepath.Base(g.SourcePath)
		if replies[i] == nil {
			fmt.Fprintf(w, "failed:    %s (%d articles)\n", name, len(g.Articles))
			result.Failed++
			continue
		}
		for _, a := range replies[i].Articles {
			result.Analyses[a.ID] = a
		}
		fmt.Fprintf(w, "summarized: %s (%d analyses)\n", name, len(replies[i].Articles))
		result.Succeeded++
	}
	return result
}

// Apply copies summary and insight onto the articles whose ID has an
// analysis and returns how many were updated.
func Apply(articles []types.Article, analyses map[string]types.ArticleAnalysis) int {
	n := 0
	for i := range articles {
		a, ok := analyses[articles[i].ID]
		if !ok {
			continue
		}
		articles[i].Summary = a.Summary
		articles[i].Insight = a.Insight
		n++
	}
	return n
}
