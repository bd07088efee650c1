// Package sanitize cleans text fetched from GitHub before it is handed
// to a model. Issue titles, comment bodies, and release notes are
// attacker-controlled, so invisible characters and active HTML are
// stripped while ordinary markdown is left alone.
package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// Text runs the full cleaning pipeline on a single string.
func Text(input string) string {
	if input == "" {
		return input
	}
	return stripHTML(StripInvisible(input))
}

// StripInvisible removes characters that render as nothing but can
// smuggle instructions past a reader: Unicode tag characters, BiDi
// controls, and zero-width modifiers.
func StripInvisible(input string) string {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if !isInvisible(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

func isInvisible(r rune) bool {
	switch r {
	case 0x200B, // zero width space
		0x200C, // zero width non-joiner
		0x200E, // left-to-right mark
		0x200F, // right-to-left mark
		0x00AD, // soft hyphen
		0xFEFF, // zero width no-break space
		0x180E, // mongolian vowel separator
		0xE0001: // language tag
		return true
	}
	switch {
	case r >= 0xE0020 && r <= 0xE007F: // unicode tags
		return true
	case r >= 0x202A && r <= 0x202E: // bidi embeddings and overrides
		return true
	case r >= 0x2066 && r <= 0x2069: // bidi isolates
		return true
	case r >= 0x2060 && r <= 0x2064: // word joiner and friends
		return true
	}
	return false
}

func stripHTML(input string) string {
	return markdownPolicy().Sanitize(input)
}

// markdownPolicy allows the elements GitHub-flavored markdown renders
// to and nothing else. Scripts, styles, and event handlers are gone.
func markdownPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.StrictPolicy()

		p.AllowElements(
			"a", "b", "blockquote", "br", "code", "em",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"hr", "i", "img", "li", "ol", "p", "pre",
			"strong", "sub", "sup", "table", "tbody",
			"td", "th", "thead", "tr", "ul",
		)

		p.AllowAttrs("href").OnElements("a")
		p.AllowURLSchemes("http", "https")
		p.RequireParseableURLs(true)
		p.RequireNoFollowOnLinks(true)
		p.RequireNoReferrerOnLinks(true)

		p.AllowImages()
		p.AllowAttrs("src", "alt", "title").OnElements("img")

		policy = p
	})
	return policy
}
