// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline loads the editorial outline that lists an issue's
// articles. The outline is either a JSON object with an "outline" array
// (plus an optional "issueTitle"), a bare JSON array, or the same shapes
// in YAML.
package outline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/issue-builder/pkg/types"
)

// ErrInvalidOutline reports an outline that cannot be used to build an issue.
var ErrInvalidOutline = errors.New("invalid outline")

// rawEntry accepts page numbers and orders written as numbers or numeric strings.
type rawEntry struct {
	Title      *string     `json:"title"`
	PageNumber json.Number `json:"pageNumber"`
	Order      json.Number `json:"order"`
}

type rawOutline struct {
	IssueTitle string          `json:"issueTitle"`
	Outline    json.RawMessage `json:"outline"`
}

// Load reads and validates the outline at path. Files ending in .yaml or
// .yml are parsed as YAML, everything else as JSON.
func Load(path string) (types.Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Outline{}, fmt.Errorf("reading outline %s: %w", path, err)
	}

	var o types.Outline
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		o, err = ParseYAML(data)
	default:
		o, err = Parse(data)
	}
	if err != nil {
		return types.Outline{}, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// Parse decodes a JSON outline and validates it.
func Parse(data []byte) (types.Outline, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return types.Outline{}, fmt.Errorf("%w: empty document", ErrInvalidOutline)
	}

	var (
		o       types.Outline
		entries json.RawMessage
	)
	switch trimmed[0] {
	case '[':
		entries = trimmed
	case '{':
		var raw rawOutline
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return types.Outline{}, fmt.Errorf("%w: %v", ErrInvalidOutline, err)
		}
		o.IssueTitle = raw.IssueTitle
		entries = bytes.TrimSpace(raw.Outline)
		if len(entries) == 0 || entries[0] != '[' {
			return types.Outline{}, fmt.Errorf("%w: missing outline array", ErrInvalidOutline)
		}
	default:
		return types.Outline{}, fmt.Errorf("%w: expected object or array", ErrInvalidOutline)
	}

	var raws []rawEntry
	if err := json.Unmarshal(entries, &raws); err != nil {
		return types.Outline{}, fmt.Errorf("%w: %v", ErrInvalidOutline, err)
	}

	o.Entries = make([]types.OutlineEntry, len(raws))
	for i, r := range raws {
		e, err := r.entry(i)
		if err != nil {
			return types.Outline{}, err
		}
		o.Entries[i] = e
	}

	if err := Validate(o); err != nil {
		return types.Outline{}, err
	}
	return o, nil
}

func (r rawEntry) entry(i int) (types.OutlineEntry, error) {
	if r.Title == nil {
		return types.OutlineEntry{}, fmt.Errorf("%w: entry %d: missing title", ErrInvalidOutline, i)
	}
	page, err := r.PageNumber.Int64()
	if err != nil {
		return types.OutlineEntry{}, fmt.Errorf("%w: entry %d: pageNumber %q", ErrInvalidOutline, i, r.PageNumber)
	}
	order := int64(i)
	if r.Order != "" {
		if order, err = r.Order.Int64(); err != nil {
			return types.OutlineEntry{}, fmt.Errorf("%w: entry %d: order %q", ErrInvalidOutline, i, r.Order)
		}
	}
	return types.OutlineEntry{Title: *r.Title, PageNumber: int(page), Order: int(order)}, nil
}

// ParseYAML decodes a YAML outline, either a mapping with an "outline"
// sequence or a bare sequence, and validates it.
func ParseYAML(data []byte) (types.Outline, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return types.Outline{}, fmt.Errorf("%w: %v", ErrInvalidOutline, err)
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return types.Outline{}, fmt.Errorf("%w: empty document", ErrInvalidOutline)
	}

	var o types.Outline
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&o.Entries); err != nil {
			return types.Outline{}, fmt.Errorf("%w: %v", ErrInvalidOutline, err)
		}
	case yaml.MappingNode:
		if err := root.Decode(&o); err != nil {
			return types.Outline{}, fmt.Errorf("%w: %v", ErrInvalidOutline, err)
		}
		if o.Entries == nil {
			return types.Outline{}, fmt.Errorf("%w: missing outline sequence", ErrInvalidOutline)
		}
	default:
		return types.Outline{}, fmt.Errorf("%w: expected mapping or sequence", ErrInvalidOutline)
	}

	if err := Validate(o); err != nil {
		return types.Outline{}, err
	}
	return o, nil
}

// Validate checks that every entry has a title and a page number of at least 1.
func Validate(o types.Outline) error {
	for i, e := range o.Entries {
		if strings.TrimSpace(e.Title) == "" {
			return fmt.Errorf("%w: entry %d: empty title", ErrInvalidOutline, i)
		}
		if e.PageNumber < 1 {
			return fmt.Errorf("%w: entry %d (%s): pageNumber %d", ErrInvalidOutline, i, e.Title, e.PageNumber)
		}
	}
	return nil
}

// IssueTitle picks the display title: an explicit override, then the
// outline's issueTitle, then the issue ID.
func IssueTitle(override string, o types.Outline, issueID string) string {
	switch {
	case override != "":
		return override
	case o.IssueTitle != "":
		return o.IssueTitle
	default:
		return issueID
	}
}
