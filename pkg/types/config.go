// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "issue-builder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SummarizeConfig holds settings for calls to the summarization endpoint.
type SummarizeConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the summarization URL. Empty disables summarization.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// APIKey is sent as a bearer token when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Origin is sent in the Origin header (default "http://localhost:5173").
	Origin string `json:"origin" yaml:"origin"`

	// MaxRetries bounds retries on 429/503 responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Workers is the number of groups summarized concurrently (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// Interval is the minimum spacing between call starts. Zero disables pacing.
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// BuildConfig holds settings for building one issue.
type BuildConfig struct {
	// IssueID identifies the issue (e.g. "2025-40").
	IssueID string `json:"issue_id" yaml:"issue_id"`

	// IssueTitle overrides the outline's issueTitle.
	IssueTitle string `json:"issue_title" yaml:"issue_title"`

	// PublishDate is the publication date as YYYY-MM-DD.
	PublishDate string `json:"publish_date" yaml:"publish_date"`

	// PDFPath is the issue PDF; only its existence in the upload set matters.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// MarkdownFiles are the transcript sources in page order.
	MarkdownFiles []string `json:"markdown_files" yaml:"markdown_files"`

	// OutlinePath is the outline JSON or YAML file.
	OutlinePath string `json:"outline_path" yaml:"outline_path"`

	// OutputDir receives data/issues/ and data/markdown/.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// OSSBaseURL is the public base URL the data/ tree is uploaded under.
	OSSBaseURL string `json:"oss_base_url" yaml:"oss_base_url"`

	// PromptFile optionally overrides the summarization prompt.
	PromptFile string `json:"prompt_file,omitempty" yaml:"prompt_file,omitempty"`

	Summarize SummarizeConfig `json:"summarize" yaml:"summarize"`
}

// ProxyConfig holds settings for the summarization proxy service.
type ProxyConfig struct {
	// Addr is the listen address (e.g. ":9000").
	Addr string `json:"addr" yaml:"addr"`

	// AllowedOrigins is "*" or a comma-separated origin allow-list.
	AllowedOrigins string `json:"allowed_origins" yaml:"allowed_origins"`

	// UpstreamURL is the chat-completion endpoint.
	UpstreamURL string `json:"upstream_url" yaml:"upstream_url"`

	// APIKey authenticates against the upstream.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// DefaultModel is used when a request names no model.
	DefaultModel string `json:"default_model" yaml:"default_model"`

	// Timeout bounds each upstream call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// CacheTTL keeps parsed batch answers for identical requests. Zero disables it.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// LibraryConfig holds settings for the issue catalog.
type LibraryConfig struct {
	// DataDir is the published data tree (contains issues/, issues.json).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// IndexDir holds the catalog database and the YAML export. It stays
	// outside DataDir so it is never uploaded.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ConversionConfig holds settings for PDF-to-transcript conversion.
type ConversionConfig struct {
	// Image is the OCR container image that reads a PDF on stdin and writes Markdown.
	Image string `json:"image" yaml:"image"`

	// InputDir receives {issueID}/{issueID}.md.
	InputDir string `json:"input_dir" yaml:"input_dir"`
}
