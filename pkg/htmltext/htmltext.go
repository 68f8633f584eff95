package htmltext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// blockTags are elements that terminate a line when flattening markup.
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "li": {}, "tr": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"blockquote": {}, "pre": {}, "hr": {},
}

// skipTags are elements whose text content never belongs in output.
var skipTags = map[string]struct{}{
	"script": {}, "style": {}, "head": {}, "title": {},
}

// Flatten converts an HTML fragment into plain text. Block-level elements
// become newlines, inline markup is dropped, and entities are decoded.
// Input that contains no markup passes through with whitespace normalized.
func Flatten(s string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	var skipDepth int
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return normalize(b.String())
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if _, ok := skipTags[tag]; ok {
				switch tt {
				case html.StartTagToken:
					skipDepth++
				case html.EndTagToken:
					if skipDepth > 0 {
						skipDepth--
					}
				}
				continue
			}
			if _, ok := blockTags[tag]; ok && skipDepth == 0 {
				b.WriteByte('\n')
			}
		}
	}
}

// Summarize flattens the fragment and truncates the result to at most
// maxLen runes, appending an ellipsis when content was cut. A non-positive
// maxLen returns the full flattened text.
func Summarize(s string, maxLen int) string {
	text := Flatten(s)
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxLen])) + "…"
}

// normalize collapses runs of spaces and blank lines left behind by
// removed markup.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
