package normalize

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup removes HTML tags and decodes entities, then folds the result
// with Inline. Backend snippets often carry <cite> or <b> fragments.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return Inline(s)
	}

	var buf strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return Inline(buf.String())
		case html.StartTagToken:
			if isHidden(z) {
				skip++
			}
		case html.EndTagToken:
			if isHidden(z) && skip > 0 {
				skip--
			}
			buf.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				buf.Write(z.Text())
			}
		case html.SelfClosingTagToken:
			buf.WriteByte(' ')
		}
	}
}

// isHidden reports whether the current tag encloses non-visible content
func isHidden(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style", "noscript", "iframe":
		return true
	}
	return false
}
