// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/issue-builder/pkg/types"
)

// QueryOptions holds parameters for catalog searches.
type QueryOptions struct {
	// Query is matched as a substring of title, summary or insight. Each
	// whitespace-separated term must match.
	Query string

	// IssueID restricts results to one issue.
	IssueID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return strings.TrimSpace(q.Query) == "" && q.IssueID == ""
}

// Result is an article with the issue it belongs to.
type Result struct {
	types.Article `yaml:",inline"`
	IssueID       string `json:"issueId" yaml:"issueId"`
	IssueTitle    string `json:"issueTitle" yaml:"issueTitle"`
	PublishDate   string `json:"publishDate" yaml:"publishDate"`
}

// likeEscaper escapes LIKE wildcards so terms match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search finds articles, newest issue first and in outline order within
// an issue.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT a.id, a.title, a.page_number, a.ord, a.cover_image,
			a.summary, a.insight, a.disclaimer,
			i.id, i.title, i.publish_date
		FROM articles a
		JOIN issues i ON a.issue_id = i.id
		WHERE 1=1`)

	for _, term := range strings.Fields(opts.Query) {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		qb.WriteString(` AND (a.title LIKE ? ESCAPE '\' OR a.summary LIKE ? ESCAPE '\' OR a.insight LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	if opts.IssueID != "" {
		qb.WriteString(` AND i.id = ?`)
		args = append(args, opts.IssueID)
	}

	qb.WriteString(` ORDER BY i.publish_date DESC, i.id DESC, a.ord LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.ID, &r.Title, &r.PageNumber, &r.Order, &r.CoverImage,
			&r.Summary, &r.Insight, &r.Disclaimer,
			&r.IssueID, &r.IssueTitle, &r.PublishDate,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
