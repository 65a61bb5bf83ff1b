// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/pdiddy/issue-builder/internal/logging"
	"github.com/pdiddy/issue-builder/internal/outline"
	"github.com/pdiddy/issue-builder/internal/summarize"
	"github.com/pdiddy/issue-builder/internal/transcript"
	"github.com/pdiddy/issue-builder/pkg/types"
)

const (
	dataDir     = "data"
	issuesDir   = "issues"
	markdownDir = "markdown"
	pdfsDir     = "pdfs"
	lockName    = ".issue-builder.lock"
)

// ErrLocked reports that another build holds the output directory.
var ErrLocked = errors.New("output directory is locked by another build")

// Summarizer fills in summaries for AI input groups.
type Summarizer interface {
	Enrich(ctx context.Context, issueID string, groups []types.AIInputGroup, prompt string, w io.Writer) summarize.EnrichResult
}

// BuildResult describes what Build wrote.
type BuildResult struct {
	Issue        types.Issue
	IssuePath    string
	MarkdownPath string
	PDFPath      string
	Missing      []string

	// Summarized is false when no summarizer ran.
	Summarized bool
	Summary    summarize.EnrichResult
}

// IssuePath returns where the issue JSON for id is written under outDir.
func IssuePath(outDir, id string) string {
	return filepath.Join(outDir, dataDir, issuesDir, id+".json")
}

// MarkdownPath returns where the issue Markdown for id is written under outDir.
func MarkdownPath(outDir, id string) string {
	return filepath.Join(outDir, dataDir, markdownDir, id+".md")
}

// PDFURL returns the public URL of the issue PDF.
func PDFURL(ossBase, id string) string {
	return fmt.Sprintf("%s/%s/%s/%s.pdf", strings.TrimRight(ossBase, "/"), dataDir, pdfsDir, id)
}

// Build runs the whole pipeline for one issue: load the outline and
// transcript, segment, write the Markdown, summarize each group when s is
// non-nil, and write the issue JSON. Only unreadable inputs, an invalid
// outline, and write failures are errors; segmentation misses and
// summarization failures leave gaps in the output.
func Build(ctx context.Context, cfg types.BuildConfig, s Summarizer, w io.Writer, logger *slog.Logger) (BuildResult, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.IssueID == "" {
		return BuildResult{}, errors.New("issue id is required")
	}

	o, err := outline.Load(cfg.OutlinePath)
	if err != nil {
		return BuildResult{}, err
	}
	sources, err := transcript.Load(cfg.MarkdownFiles)
	if err != nil {
		return BuildResult{}, err
	}

	for _, d := range []string{
		filepath.Join(cfg.OutputDir, dataDir, issuesDir),
		filepath.Join(cfg.OutputDir, dataDir, markdownDir),
	} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return BuildResult{}, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	lock := flock.New(filepath.Join(cfg.OutputDir, dataDir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return BuildResult{}, fmt.Errorf("acquiring output lock: %w", err)
	}
	if !ok {
		return BuildResult{}, ErrLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", "error", err)
		}
	}()

	fmt.Fprintf(w, "segmenting: %d articles from %d files\n", len(o.Entries), len(sources))
	a := Assemble(cfg.IssueID, o, sources, logger)

	res := BuildResult{
		IssuePath:    IssuePath(cfg.OutputDir, cfg.IssueID),
		MarkdownPath: MarkdownPath(cfg.OutputDir, cfg.IssueID),
		PDFPath:      cfg.PDFPath,
		Missing:      a.Missing(),
	}
	for _, t := range res.Missing {
		fmt.Fprintf(w, "missing:   %s\n", t)
	}

	if err := os.WriteFile(res.MarkdownPath, []byte(a.Markdown()), 0o644); err != nil {
		return BuildResult{}, fmt.Errorf("writing markdown: %w", err)
	}
	fmt.Fprintf(w, "wrote:     %s\n", res.MarkdownPath)

	if s != nil && len(a.Groups) > 0 {
		prompt := readPrompt(cfg.PromptFile, logger)
		total := 0
		for _, g := range a.Groups {
			total += len(g.Articles)
		}
		fmt.Fprintf(w, "summarizing: %d articles in %d groups\n", total, len(a.Groups))
		res.Summary = s.Enrich(ctx, cfg.IssueID, a.Groups, prompt, w)
		res.Summarized = true
		summarize.Apply(a.Articles, res.Summary.Analyses)
	}

	res.Issue = types.Issue{
		ID:          cfg.IssueID,
		Title:       outline.IssueTitle(cfg.IssueTitle, o, cfg.IssueID),
		PublishDate: cfg.PublishDate,
		PDFURL:      PDFURL(cfg.OSSBaseURL, cfg.IssueID),
		Articles:    a.Articles,
	}
	if err := WriteIssue(res.IssuePath, res.Issue); err != nil {
		return BuildResult{}, err
	}
	fmt.Fprintf(w, "wrote:     %s\n", res.IssuePath)

	PrintChecklist(w, res)
	return res, nil
}

// readPrompt returns the prompt file's contents, or "" when path is empty
// or unreadable. An unreadable prompt file is only a warning.
func readPrompt(path string, logger *slog.Logger) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("cannot read prompt file, using service default", "path", path, "error", err)
		return ""
	}
	return string(data)
}

// WriteIssue writes the issue as indented JSON with non-ASCII and HTML
// characters left unescaped.
func WriteIssue(path string, issue types.Issue) error {
	if issue.Articles == nil {
		issue.Articles = []types.Article{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(issue); err != nil {
		return fmt.Errorf("encoding issue %s: %w", issue.ID, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing issue %s: %w", path, err)
	}
	return nil
}

// PrintChecklist prints the files to upload under the public data/ tree.
func PrintChecklist(w io.Writer, res BuildResult) {
	id := res.Issue.ID
	fmt.Fprintf(w, "\nUpload to /%s/:\n", dataDir)
	fmt.Fprintf(w, "  - %s/%s.json\n", issuesDir, id)
	fmt.Fprintf(w, "  - %s/%s.md (optional)\n", markdownDir, id)
	fmt.Fprintf(w, "  - %s/%s.pdf (upload the PDF by hand)\n", pdfsDir, id)
	fmt.Fprintf(w, "\nLocal files:\n")
	fmt.Fprintf(w, "  Issue JSON: %s\n", res.IssuePath)
	fmt.Fprintf(w, "  Markdown:   %s\n", res.MarkdownPath)
	if res.PDFPath != "" {
		fmt.Fprintf(w, "  PDF:        %s\n", res.PDFPath)
	}
	fmt.Fprintf(w, "  PDF URL:    %s\n", res.Issue.PDFURL)

	matched := len(res.Issue.Articles) - len(res.Missing)
	fmt.Fprintf(w, "\nBuild summary: %d of %d articles segmented", matched, len(res.Issue.Articles))
	if res.Summarized {
		fmt.Fprintf(w, ", %d groups summarized, %d failed", res.Summary.Succeeded, res.Summary.Failed)
	}
	fmt.Fprintln(w)
}
