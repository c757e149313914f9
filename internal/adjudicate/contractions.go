package adjudicate

import (
	"regexp"
	"strings"
)

var contractions = map[string]string{
	"can't":     "cannot",
	"won't":     "will not",
	"shan't":    "shall not",
	"ain't":     "is not",
	"let's":     "let us",
	"it's":      "it is",
	"that's":    "that is",
	"there's":   "there is",
	"here's":    "here is",
	"what's":    "what is",
	"who's":     "who is",
	"he's":      "he is",
	"she's":     "she is",
	"i'm":       "I am",
	"couldn't":  "could not",
	"wouldn't":  "would not",
	"shouldn't": "should not",
	"mustn't":   "must not",
	"needn't":   "need not",
	"mightn't":  "might not",
}

var (
	contractionRe = regexp.MustCompile(`(?i)\b[a-z]+(?:'|’)(?:t|s|re|ve|ll|d|m)\b`)
	suffixes      = []struct{ short, long string }{
		{"n't", " not"},
		{"'re", " are"},
		{"'ve", " have"},
		{"'ll", " will"},
		{"'d", " would"},
	}
)

// ExpandContractions rewrites informal contractions so explanations read
// in a consistent register. Possessives ("Earth's") are left alone.
func ExpandContractions(s string) string {
	return contractionRe.ReplaceAllStringFunc(s, func(word string) string {
		normalized := strings.ReplaceAll(word, "’", "'")
		lower := strings.ToLower(normalized)

		if long, ok := contractions[lower]; ok {
			return matchCase(word, long)
		}
		for _, sfx := range suffixes {
			if strings.HasSuffix(lower, sfx.short) && len(lower) > len(sfx.short) {
				return normalized[:len(normalized)-len(sfx.short)] + sfx.long
			}
		}
		return word
	})
}

// matchCase capitalizes the expansion when the original was capitalized
func matchCase(original, expansion string) string {
	if original != "" && original[0] >= 'A' && original[0] <= 'Z' {
		return strings.ToUpper(expansion[:1]) + expansion[1:]
	}
	return expansion
}
