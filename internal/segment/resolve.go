// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

// Resolution records how an outline title was placed in the transcript.
type Resolution int

const (
	// Unresolved means neither pass found the title.
	Unresolved Resolution = iota
	// PrimaryMatched means the title had an exactly matching heading.
	PrimaryMatched
	// FallbackMatched means only the containment scan found the title.
	FallbackMatched
)

func (r Resolution) String() string {
	switch r {
	case PrimaryMatched:
		return "primary"
	case FallbackMatched:
		return "fallback"
	default:
		return "unresolved"
	}
}

// Result is the segmentation outcome for one outline title.
type Result struct {
	// Title is the outline title as given.
	Title string
	// Key is the normalized title.
	Key        string
	Resolution Resolution
	// Section is the zero value when Resolution is Unresolved.
	Section Section
}

// Resolve segments transcript for every title, in outline order. Titles
// the primary pass misses go through FindSection. Resolve has no side
// effects; duplicate outline titles resolve to the same section.
func Resolve(transcript string, titles []string) []Result {
	m := NewMatcher(titles)
	primary := Segment(transcript, m)

	results := make([]Result, len(titles))
	for i, title := range titles {
		r := Result{Title: title, Key: NormalizeTitle(title)}
		if sec, ok := primary[r.Key]; ok {
			r.Resolution = PrimaryMatched
			r.Section = sec
		} else if sec, ok := FindSection(transcript, title, m); ok {
			r.Resolution = FallbackMatched
			r.Section = sec
		}
		results[i] = r
	}
	return results
}
