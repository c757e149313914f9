// Package normalize canonicalizes raw text before it reaches the pipeline.
//
// All functions are pure. Text is idempotent: Text(Text(s)) == Text(s).
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var punctuation = strings.NewReplacer(
	// Line endings
	"\r\n", "\n",
	"\r", "\n",

	// Bullets and check marks
	"•", "-", "◦", "-", "●", "-", "○", "-", "■", "-", "□", "-", "▪", "-", "▫", "-",
	"▸", "-", "▹", "-", "►", "-", "▻", "-", "◆", "-", "◇", "-", "★", "-", "☆", "-",
	"✓", "-", "✔", "-", "✗", "-", "✘", "-", "✦", "-", "✧", "-",

	// Dashes
	"–", "-", "—", "-", "―", "-", "‐", "-", "‑", "-", "‒", "-",

	// Quotes
	"‘", "'", "’", "'", "‚", "'", "‛", "'", "`", "'", "´", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "«", `"`, "»", `"`,

	// Ellipsis
	"…", "...",
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Text returns the canonical form of s: unified punctuation, quotes, dashes
// and whitespace, at most one blank line between paragraphs, trimmed.
func Text(s string) string {
	s = punctuation.Replace(s)
	s = strings.Map(mapRune, s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	s = strings.Join(lines, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// Inline is Text with every newline folded into a single space.
// Used for questions and search queries.
func Inline(s string) string {
	return strings.Join(strings.Fields(Text(s)), " ")
}

// mapRune drops decorative symbols and maps exotic spaces to a plain space.
// Newlines pass through untouched.
func mapRune(r rune) rune {
	switch {
	case r == '\n':
		return r
	case r >= 0x1F300 && r <= 0x1F9FF: // emoji and pictographs
		return -1
	case r == 0x200C || r == 0x200D || r == 0xFEFF || r == 0x2060: // zero-width joiners
		return -1
	case r == 0x00A0 || (r >= 0x2000 && r <= 0x200B) || r == 0x202F || r == 0x205F || r == 0x3000:
		return ' '
	case strings.ContainsRune("§¶†‡©®™", r):
		return -1
	case unicode.IsSpace(r):
		return ' '
	case unicode.IsControl(r):
		return -1
	}
	return r
}
