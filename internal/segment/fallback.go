// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import "strings"

// h2Prefix is the only heading level the fallback pass considers.
const h2Prefix = "## "

type h2Heading struct {
	line    int
	compact string
}

// FindSection locates target when Segment could not. It scans H2
// headings for one whose compact form equals or contains the compact
// target, then captures every line up to the next H2 heading that m
// recognizes as an outline title. Unrecognized headings in between stay
// in the body.
func FindSection(transcript, target string, m *Matcher) (Section, bool) {
	want := CompactTitle(target)
	if want == "" {
		return Section{}, false
	}

	lines := strings.Split(transcript, "\n")
	headings := h2Headings(lines)

	start := -1
	for i, h := range headings {
		if h.compact == want || strings.Contains(h.compact, want) {
			start = i
			break
		}
	}
	if start < 0 {
		return Section{}, false
	}

	endLine := len(lines)
	for _, h := range headings[start+1:] {
		if m.known[h.compact] {
			endLine = h.line
			break
		}
	}

	body := strings.Join(lines[headings[start].line+1:endLine], "\n")
	return newSection(body), true
}

func h2Headings(lines []string) []h2Heading {
	var out []h2Heading
	for i, ln := range lines {
		if !strings.HasPrefix(ln, h2Prefix) {
			continue
		}
		out = append(out, h2Heading{
			line:    i,
			compact: CompactTitle(strings.TrimSpace(ln[len(h2Prefix):])),
		})
	}
	return out
}
