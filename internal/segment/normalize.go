// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment partitions an OCR-derived Markdown transcript into
// per-article sections, using the editorial outline as the authoritative
// list of article titles.
//
// Matching happens in two passes. The primary pass walks every H1/H2
// heading, keeps the first heading that matches each outline title, and
// slices the transcript between those boundaries. The fallback pass runs
// for titles the primary pass missed; it accepts H2 headings that contain
// the title and stops at the next heading recognized by the outline.
package segment

import "strings"

// fullWidthBar is the full-width vertical line that OCR emits in place of
// the ASCII pipe used by the outline.
const fullWidthBar = "｜"

// NormalizeTitle canonicalizes a heading for comparison: whitespace runs
// collapse to one space, the full-width bar becomes "|", and a title that
// is its own text repeated twice collapses to a single copy.
//
// The collapse repeats until the halves differ, so NormalizeTitle is
// idempotent.
func NormalizeTitle(raw string) string {
	words := strings.Fields(strings.ReplaceAll(raw, fullWidthBar, "|"))
	for len(words) > 0 && len(words)%2 == 0 {
		mid := len(words) / 2
		if strings.Join(words[:mid], " ") != strings.Join(words[mid:], " ") {
			break
		}
		words = words[:mid]
	}
	return strings.Join(words, " ")
}

// compact removes the spaces left by NormalizeTitle so titles with
// inconsistent internal spacing compare equal.
func compact(normalized string) string {
	return strings.ReplaceAll(normalized, " ", "")
}

// CompactTitle returns the space-free normalized form of raw.
func CompactTitle(raw string) string {
	return compact(NormalizeTitle(raw))
}
