// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"regexp"
	"strings"
)

var (
	// headingRe matches H1 and H2 heading lines anywhere in the transcript.
	headingRe = regexp.MustCompile(`(?m)^#{1,2}\s+(.+)$`)
	// headingLineRe matches a single line that is an H1 or H2 heading.
	headingLineRe = regexp.MustCompile(`^#{1,2}\s+(.+)$`)

	htmlImageRe = regexp.MustCompile(`(?i)<img[^>]*?src="([^"]+)"`)
	mdImageRe   = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)
)

// Section is the body extracted for one article.
type Section struct {
	// Content is the article text without its heading or disclaimer.
	Content string
	// Image is the first image reference in the body, if any.
	Image string
	// Disclaimer is the extracted legal notice, if any.
	Disclaimer string
}

// boundary marks where a matched article heading starts in the transcript.
type boundary struct {
	offset int
	title  string
}

// Segment slices transcript into sections keyed by normalized outline
// title. Headings that match no outline title are ignored. When a title
// appears more than once only its first heading is a boundary; later
// repeats stay inside whichever section precedes them. A matched heading
// on the last line with no newline after it yields empty content; the
// heading text is never kept as body.
//
// Titles with no matching heading are absent from the result.
func Segment(transcript string, m *Matcher) map[string]Section {
	bounds := primaryBoundaries(transcript, m)

	sections := make(map[string]Section, len(bounds))
	for i, b := range bounds {
		end := len(transcript)
		if i+1 < len(bounds) {
			end = bounds[i+1].offset
		}
		sections[b.title] = newSection(stripHeadingLine(transcript[b.offset:end]))
	}
	return sections
}

// primaryBoundaries returns the first matching heading of each outline
// title, in document order.
func primaryBoundaries(transcript string, m *Matcher) []boundary {
	seen := make(map[string]bool)
	var bounds []boundary
	for _, loc := range headingRe.FindAllStringSubmatchIndex(transcript, -1) {
		title, ok := m.BestMatch(transcript[loc[2]:loc[3]])
		if !ok || seen[title] {
			continue
		}
		seen[title] = true
		bounds = append(bounds, boundary{offset: loc[0], title: title})
	}
	return bounds
}

// stripHeadingLine drops the first line of body when it is a heading.
func stripHeadingLine(body string) string {
	first, rest, found := strings.Cut(body, "\n")
	if !headingLineRe.MatchString(first) {
		return body
	}
	if !found {
		return ""
	}
	return rest
}

// newSection extracts the image reference and disclaimer from body.
func newSection(body string) Section {
	content, disclaimer := ExtractDisclaimer(body)
	return Section{
		Content:    content,
		Image:      firstImage(body),
		Disclaimer: disclaimer,
	}
}

// firstImage returns the src of the first HTML img tag in body, or else
// the target of the first Markdown image link.
func firstImage(body string) string {
	if m := htmlImageRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	if m := mdImageRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}
