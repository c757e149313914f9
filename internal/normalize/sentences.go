package normalize

import "strings"

// Sentences splits normalized text into sentences on terminal punctuation
// followed by whitespace, and on line breaks. Empty pieces are dropped.
func Sentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Look ahead so decimals like 3.14 stay in one piece
			if i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\t' || runes[i+1] == '\n') {
				flush()
			}
		}
	}
	flush()

	return sentences
}
