package textutil

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize lowercases, trims, and collapses runs of whitespace.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRe.ReplaceAllString(s, " ")
}

// StripMarkup extracts plain text from an HTML fragment. RSS summaries often
// arrive with embedded markup; scoring runs on the text content only.
func StripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// Tokenize splits normalized text into word tokens.
func Tokenize(s string) []string {
	normalized := Normalize(s)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// SortTokens returns the tokens of s sorted and re-joined, the canonical
// form used by token-sort fuzzy matching.
func SortTokens(s string) string {
	tokens := Tokenize(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
