// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/issue-builder/pkg/types"
)

const (
	issueListFile = "issues.json"
	exportFile    = "export.yaml"
	exportLimit   = 100000
)

// Issues lists every cataloged issue, newest first. CoverImage is the
// first article cover in outline order.
func (s *Store) Issues(ctx context.Context) ([]types.IssueListing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.title, i.publish_date, i.pdf_url,
			COALESCE((SELECT a.cover_image FROM articles a
				WHERE a.issue_id = i.id AND a.cover_image != ''
				ORDER BY a.ord LIMIT 1), '')
		FROM issues i
		ORDER BY i.publish_date DESC, i.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	defer rows.Close()

	listings := []types.IssueListing{}
	for rows.Next() {
		l := types.IssueListing{Articles: []types.Article{}}
		if err := rows.Scan(&l.ID, &l.Title, &l.PublishDate, &l.PDFURL, &l.CoverImage); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// ExportIssueList writes dataDir/issues.json and returns its path.
func (s *Store) ExportIssueList(ctx context.Context) (string, error) {
	listings, err := s.Issues(ctx)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(listings); err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}

	path := filepath.Join(s.dataDir, issueListFile)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ExportYAML writes matching articles to indexDir/export.yaml and returns
// its path. It supports the same filters as Search.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	opts.MaxResults = exportLimit
	results, err := s.Search(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}
	if results == nil {
		results = []Result{}
	}

	data, err := yaml.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.indexDir, exportFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
