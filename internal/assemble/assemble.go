// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble turns an outline and its OCR transcript into the
// published issue: article records, per-file summarization groups, the
// issue JSON, and a companion Markdown rendering.
package assemble

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/issue-builder/internal/logging"
	"github.com/pdiddy/issue-builder/internal/segment"
	"github.com/pdiddy/issue-builder/internal/transcript"
	"github.com/pdiddy/issue-builder/pkg/types"
)

// Assembly is the segmented form of one issue. Articles, Results and the
// outline share indices.
type Assembly struct {
	Articles []types.Article
	Results  []segment.Result

	// Groups holds one summarization batch per source file, in the order
	// the files were first needed.
	Groups []types.AIInputGroup
}

// ArticleID returns the stable join key for the outline entry at index.
func ArticleID(issueID string, index int) string {
	return fmt.Sprintf("%s-%d", issueID, index)
}

// Assemble segments the joined sources against the outline and builds one
// article per outline entry, in outline order. Titles that neither pass
// finds still get a record with empty content; they are logged at warn.
func Assemble(issueID string, o types.Outline, sources []transcript.Source, logger *slog.Logger) Assembly {
	if logger == nil {
		logger = logging.Discard()
	}

	titles := o.Titles()
	for i, t := range titles {
		titles[i] = transcript.Normalize(t)
	}
	results := segment.Resolve(transcript.Join(sources), titles)

	a := Assembly{
		Articles: make([]types.Article, len(o.Entries)),
		Results:  results,
	}
	groupIndex := make(map[string]int)

	for i, entry := range o.Entries {
		r := results[i]
		switch r.Resolution {
		case segment.Unresolved:
			logger.Warn("no section found", "title", entry.Title, "order", i)
		case segment.FallbackMatched:
			logger.Info("section found by fallback", "title", entry.Title, "order", i)
		}

		id := ArticleID(issueID, i)
		a.Articles[i] = types.Article{
			ID:         id,
			Title:      entry.Title,
			PageNumber: entry.PageNumber,
			Order:      i,
			CoverImage: r.Section.Image,
			Disclaimer: r.Section.Disclaimer,
		}

		if r.Section.Content == "" {
			continue
		}
		path := transcript.Locate(sources, entry.Title)
		gi, ok := groupIndex[path]
		if !ok {
			gi = len(a.Groups)
			groupIndex[path] = gi
			a.Groups = append(a.Groups, types.AIInputGroup{SourcePath: path})
		}
		a.Groups[gi].Articles = append(a.Groups[gi].Articles, types.SummaryArticle{
			ID:      id,
			Title:   entry.Title,
			Content: r.Section.Content,
		})
	}
	return a
}

// Missing returns the titles that neither segmentation pass found.
func (a Assembly) Missing() []string {
	var out []string
	for _, r := range a.Results {
		if r.Resolution == segment.Unresolved {
			out = append(out, r.Title)
		}
	}
	return out
}

// Markdown renders every article as a "## title" block followed by its
// cover image, content and a horizontal rule.
func (a Assembly) Markdown() string {
	var b strings.Builder
	for i, art := range a.Articles {
		b.WriteString("## ")
		b.WriteString(art.Title)
		b.WriteString("\n")
		if art.CoverImage != "" {
			fmt.Fprintf(&b, "![](%s)\n\n", art.CoverImage)
		}
		b.WriteString(a.Results[i].Section.Content)
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}
