// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import "strings"

// DisclaimerMarker opens the legal notice that the publisher asks to be
// prepended to every summary ("please prepend this notice to the summary").
const DisclaimerMarker = "请务必在总结开头增加这段话"

const (
	// disclaimerWindow bounds how far past the marker line a blank line is
	// searched for.
	disclaimerWindow = 8
	// disclaimerFallbackLines is the block length used when no blank line
	// falls inside the window.
	disclaimerFallbackLines = 3
)

// ExtractDisclaimer removes the disclaimer block from text. It returns the
// trimmed remaining text and the disclaimer lines joined by newlines. The
// disclaimer is empty when text does not contain DisclaimerMarker.
func ExtractDisclaimer(text string) (rest, disclaimer string) {
	if !strings.Contains(text, DisclaimerMarker) {
		return strings.TrimSpace(text), ""
	}

	lines := splitLines(text)
	start := -1
	for i, ln := range lines {
		if strings.Contains(ln, DisclaimerMarker) {
			start = i
			break
		}
	}
	if start < 0 {
		return strings.TrimSpace(text), ""
	}

	end := -1
	for k := start; k < min(len(lines), start+disclaimerWindow); k++ {
		if strings.TrimSpace(lines[k]) == "" {
			end = k
			break
		}
	}
	if end < 0 {
		end = min(len(lines), start+disclaimerFallbackLines)
	}

	var block []string
	for _, ln := range lines[start:end] {
		if strings.TrimSpace(ln) != "" {
			block = append(block, ln)
		}
	}

	remaining := make([]string, 0, len(lines)-(end-start))
	remaining = append(remaining, lines[:start]...)
	remaining = append(remaining, lines[end:]...)

	return strings.TrimSpace(strings.Join(remaining, "\n")), strings.TrimSpace(strings.Join(block, "\n"))
}

// splitLines splits text into lines, accepting "\r\n" endings. A final
// line terminator does not start another, empty line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
