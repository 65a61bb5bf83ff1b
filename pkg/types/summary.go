// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SummaryArticle is one article sent for summarization.
type SummaryArticle struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AIInputGroup batches the articles whose content came from one source
// Markdown file. One summarization call handles one group.
type AIInputGroup struct {
	// SourcePath is the Markdown file the articles were found in.
	SourcePath string
	Articles   []SummaryArticle
}

// SummaryRequest is the body posted to the summarization endpoint.
type SummaryRequest struct {
	IssueID  string           `json:"issueId"`
	Articles []SummaryArticle `json:"articles"`
	Prompt   string           `json:"prompt,omitempty"`
}

// ArticleAnalysis is the generated summary and insight for one article.
type ArticleAnalysis struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Insight string `json:"insight"`
}

// SummaryResponse is the reply from the summarization endpoint.
type SummaryResponse struct {
	IssueID  string            `json:"issueId"`
	Articles []ArticleAnalysis `json:"articles"`
}
