// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert produces transcript Markdown from issue PDFs. The OCR
// itself runs in a container; this package only drives it and lays out
// the output under the input directory as {id}/{id}.md.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Converter transforms a PDF file into Markdown text.
type Converter interface {
	// Convert reads a PDF at pdfPath and returns the Markdown content.
	Convert(ctx context.Context, pdfPath string) (string, error)
}

// Status is the outcome of converting one PDF.
type Status int

const (
	Converted Status = iota
	Skipped
	Failed
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int

	// Outputs lists the Markdown files written or already present.
	Outputs []string
}

// Total returns the total number of PDFs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any PDF failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// IssueID derives an issue ID from a PDF file name: the base name without
// extension, with runs of whitespace replaced by "-".
func IssueID(pdfPath string) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return strings.Join(strings.Fields(base), "-")
}

// OutputPath returns where the transcript for issueID is written.
func OutputPath(inputDir, issueID string) string {
	return filepath.Join(inputDir, issueID, issueID+".md")
}

// ConvertIssue converts one PDF to inputDir/{id}/{id}.md. An existing
// output is kept unless force is set.
func ConvertIssue(ctx context.Context, c Converter, issueID, pdfPath, inputDir string, force bool, w io.Writer) (Status, string) {
	mdPath := OutputPath(inputDir, issueID)

	if !force {
		if _, err := os.Stat(mdPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", issueID)
			return Skipped, mdPath
		}
	}

	if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", issueID, err)
		return Failed, ""
	}

	md, err := c.Convert(ctx, pdfPath)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", issueID, err)
		return Failed, ""
	}

	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", issueID, err)
		return Failed, ""
	}

	fmt.Fprintf(w, "converted: %s -> %s\n", issueID, mdPath)
	return Converted, mdPath
}

// ConvertPaths converts every PDF, deriving each issue ID from its file
// name, and prints per-file status and a summary to w.
func ConvertPaths(ctx context.Context, c Converter, pdfPaths []string, inputDir string, force bool, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range pdfPaths {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", IssueID(p), ctx.Err())
			result.Failed++
			continue
		}
		status, out := ConvertIssue(ctx, c, IssueID(p), p, inputDir, force, w)
		switch status {
		case Converted:
			result.Converted++
		case Skipped:
			result.Skipped++
		case Failed:
			result.Failed++
		}
		if out != "" {
			result.Outputs = append(result.Outputs, out)
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
