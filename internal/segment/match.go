// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

// Matcher maps raw transcript headings onto outline titles. It holds the
// normalized outline in outline order; the first title that matches wins.
type Matcher struct {
	titles  []string
	compact []string
	known   map[string]bool
}

// NewMatcher normalizes the outline titles once for repeated matching.
func NewMatcher(outlineTitles []string) *Matcher {
	m := &Matcher{
		titles:  make([]string, len(outlineTitles)),
		compact: make([]string, len(outlineTitles)),
		known:   make(map[string]bool, len(outlineTitles)),
	}
	for i, t := range outlineTitles {
		n := NormalizeTitle(t)
		m.titles[i] = n
		m.compact[i] = compact(n)
		m.known[m.compact[i]] = true
	}
	return m
}

// BestMatch returns the normalized outline title for heading. A heading
// matches when its normalized form equals an outline title, or when both
// are equal after removing spaces.
func (m *Matcher) BestMatch(heading string) (string, bool) {
	h := NormalizeTitle(heading)
	hc := compact(h)
	for i, o := range m.titles {
		if h == o || hc == m.compact[i] {
			return o, true
		}
	}
	return "", false
}

// Recognizes reports whether heading, in any spacing, is an outline title.
func (m *Matcher) Recognizes(heading string) bool {
	return m.known[CompactTitle(heading)]
}

// Titles returns the normalized outline titles in outline order.
func (m *Matcher) Titles() []string {
	out := make([]string, len(m.titles))
	copy(out, m.titles)
	return out
}
