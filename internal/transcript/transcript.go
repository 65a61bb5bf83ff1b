// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcript reads the OCR Markdown files of an issue and joins
// them into one transcript, remembering which file each part came from.
package transcript

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// separator joins consecutive source files.
const separator = "\n\n"

// Source is one Markdown file of the transcript.
type Source struct {
	Path    string
	Content string

	// folded is Content with spaces removed and bars unified, for Locate.
	folded string
}

// NewSource builds a Source from in-memory content. Content is NFC
// normalized so that composed and decomposed characters compare equal.
func NewSource(path, content string) Source {
	content = Normalize(content)
	return Source{Path: path, Content: content, folded: fold(content)}
}

// Normalize returns s in Unicode NFC. Anything compared against source
// content, such as outline titles, goes through it first.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// Load reads every path in order. Any unreadable file is an error.
func Load(paths []string) ([]Source, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading transcript %s: %w", p, err)
		}
		sources = append(sources, NewSource(p, string(data)))
	}
	return sources, nil
}

// Join concatenates the sources with a blank line between each.
func Join(sources []Source) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = s.Content
	}
	return strings.Join(parts, separator)
}

// Locate returns the path of the first source whose text contains title,
// ignoring spaces and full-width bars. It returns the first source's path
// when none matches, and "" when there are no sources.
func Locate(sources []Source, title string) string {
	if len(sources) == 0 {
		return ""
	}
	want := fold(Normalize(title))
	for _, s := range sources {
		folded := s.folded
		if folded == "" && s.Content != "" {
			folded = fold(s.Content)
		}
		if strings.Contains(folded, want) {
			return s.Path
		}
	}
	return sources[0].Path
}

func fold(s string) string {
	return strings.NewReplacer(" ", "", "｜", "|").Replace(s)
}
