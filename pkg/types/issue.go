// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the issue-builder pipeline:
// outline entries, article and issue records, and the request and response
// shapes exchanged with the summarization service.
package types

// OutlineEntry is one article listed in the editorial outline.
type OutlineEntry struct {
	// Title is the article title as printed in the table of contents.
	Title string `json:"title" yaml:"title"`

	// PageNumber is the first page of the article (1-based).
	PageNumber int `json:"pageNumber" yaml:"pageNumber"`

	// Order is the declared position in the outline.
	Order int `json:"order" yaml:"order"`
}

// Outline is the authoritative list of articles for one issue.
type Outline struct {
	// IssueTitle is the optional display title of the issue.
	IssueTitle string `json:"issueTitle,omitempty" yaml:"issueTitle,omitempty"`

	// Entries lists the articles in outline order.
	Entries []OutlineEntry `json:"outline" yaml:"outline"`
}

// Titles returns the entry titles in outline order.
func (o Outline) Titles() []string {
	titles := make([]string, len(o.Entries))
	for i, e := range o.Entries {
		titles[i] = e.Title
	}
	return titles
}

// Article is the published record for one outline entry.
type Article struct {
	// ID is "{issueID}-{index}" where index is the 0-based outline position.
	ID string `json:"id" yaml:"id"`

	Title      string `json:"title" yaml:"title"`
	PageNumber int    `json:"pageNumber" yaml:"pageNumber"`
	Order      int    `json:"order" yaml:"order"`

	// CoverImage is the first image found in the article body.
	CoverImage string `json:"coverImage" yaml:"coverImage"`

	// Summary and Insight are filled in by the summarization service.
	Summary string `json:"summary" yaml:"summary"`
	Insight string `json:"insight" yaml:"insight"`

	// Disclaimer is the publisher's notice extracted from the body.
	Disclaimer string `json:"disclaimer" yaml:"disclaimer"`
}

// Issue is the top-level JSON document written for one magazine issue.
type Issue struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	PublishDate string    `json:"publishDate" yaml:"publishDate"`
	PDFURL      string    `json:"pdfUrl" yaml:"pdfUrl"`
	Articles    []Article `json:"articles" yaml:"articles"`
}

// IssueListing is one entry of the front-end issue list (data/issues.json).
// Articles is always empty; readers load the issue file for details.
type IssueListing struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	PublishDate string    `json:"publishDate" yaml:"publishDate"`
	PDFURL      string    `json:"pdfUrl" yaml:"pdfUrl"`
	CoverImage  string    `json:"coverImage,omitempty" yaml:"coverImage,omitempty"`
	Articles    []Article `json:"articles" yaml:"articles"`
}
