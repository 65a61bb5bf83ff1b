// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library catalogs built issues in SQLite so that articles can be
// searched across issues, and writes the front-end issue list.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/issue-builder/pkg/types"
)

const (
	issuesDir       = "issues"
	defaultIndexDir = "index"
	dbFile          = "library.db"
)

// Store manages the issue catalog database.
type Store struct {
	db         *sql.DB
	dataDir    string
	indexDir   string
	maxResults int
}

// NewStore opens or creates the catalog at indexDir/library.db and
// creates the schema if it does not exist.
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	indexDir := cfg.IndexDir
	if indexDir == "" {
		indexDir = defaultIndexDir
	}
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		indexDir:   indexDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS issues (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			publish_date TEXT,
			pdf_url TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			issue_id TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			page_number INTEGER,
			ord INTEGER,
			cover_image TEXT,
			summary TEXT,
			insight TEXT,
			disclaimer TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_issue_id ON articles(issue_id)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			issue_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from a catalog indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of issue files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads dataDir/issues/*.json and loads new or changed issues.
// A file whose modification time matches the last run is skipped. After
// any change the front-end issue list is rewritten.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	dir := filepath.Join(s.dataDir, issuesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading issues directory %s: %w", dir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE issue_id = ?`, name,
		).Scan(&storedModTime)
		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		var issue types.Issue
		if err := json.Unmarshal(data, &issue); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", name, err)
			summary.Failed++
			continue
		}
		if issue.ID == "" {
			issue.ID = name
		}

		if err := s.ingestIssue(ctx, name, &issue, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d articles)\n", name, len(issue.Articles))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d articles)\n", name, len(issue.Articles))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if _, err := s.ExportIssueList(ctx); err != nil {
			fmt.Fprintf(w, "warning: issues.json write failed: %v\n", err)
		}
	}

	return summary, nil
}

// ingestIssue replaces everything stored for one issue file. statusKey is
// the file name, which normally equals the issue ID.
func (s *Store) ingestIssue(ctx context.Context, statusKey string, issue *types.Issue, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE issue_id = ?`, issue.ID); err != nil {
		return fmt.Errorf("deleting old articles: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO issues (id, title, publish_date, pdf_url)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, publish_date=excluded.publish_date, pdf_url=excluded.pdf_url`,
		issue.ID, issue.Title, issue.PublishDate, issue.PDFURL,
	)
	if err != nil {
		return fmt.Errorf("upserting issue: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO articles
			(id, issue_id, title, page_number, ord, cover_image, summary, insight, disclaimer)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range issue.Articles {
		_, err := stmt.ExecContext(ctx,
			a.ID, issue.ID, a.Title, a.PageNumber, a.Order,
			a.CoverImage, a.Summary, a.Insight, a.Disclaimer,
		)
		if err != nil {
			return fmt.Errorf("inserting article %s: %w", a.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (issue_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(issue_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		statusKey, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
