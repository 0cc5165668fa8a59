package criteria

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/contentfinder/internal/domain/locale"
)

const sectionToken = `[a-z0-9]+(?:-[a-z0-9]+)*-section(?:-[a-z0-9]+)*`

var (
	sectionKeyPattern = regexp.MustCompile(`(?i)\b(` + sectionToken + `)\b`)

	// "<role> for|of|in [the] <section>", e.g. "headline for accordion-section".
	rolePattern = regexp.MustCompile(`(?i)\b([a-z][a-z0-9-]*)\s+(?:for|of|in)\s+(?:the\s+)?` + sectionToken + `\b`)

	pageParamPattern = regexp.MustCompile(`(?i)\bpage(?:[_-]?id)?[:=]([a-z0-9/][a-z0-9_./-]*)`)
)

// Words that precede "for <section>" in requests without naming a field.
var roleStopwords = map[string]struct{}{
	"show": {}, "find": {}, "get": {}, "give": {}, "list": {}, "all": {},
	"the": {}, "a": {}, "an": {}, "me": {}, "search": {}, "what": {}, "which": {},
	"content": {}, "text": {},
}

// ExtractSectionKey returns the first section-shaped identifier in text.
func ExtractSectionKey(text string) string {
	m := sectionKeyPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return Slugify(m[1])
}

// ExtractRole returns the field name from phrasings like "headline for hero-section".
func ExtractRole(text string) string {
	for _, m := range rolePattern.FindAllStringSubmatch(text, -1) {
		word := strings.ToLower(m[1])
		if _, stop := roleStopwords[word]; stop {
			continue
		}
		if strings.HasSuffix(word, "-section") {
			continue
		}
		return Slugify(word)
	}
	return ""
}

// ExtractPageID finds a page identifier in a page:/pageId= parameter or a
// path-like token. Locale-shaped tokens (en_US, ko-KR) are never page ids.
func ExtractPageID(text string) string {
	if m := pageParamPattern.FindStringSubmatch(text); m != nil {
		if id := pageFromPath(m[1]); id != "" {
			return id
		}
	}
	for _, tok := range strings.Fields(text) {
		tok = strings.Trim(tok, `"'()[]<>,;!?`)
		if !strings.HasPrefix(tok, "/") {
			continue
		}
		if id := pageFromPath(tok); id != "" {
			return id
		}
	}
	return ""
}

// pageFromPath returns the last path segment that is not a locale or a bare
// market code, slugified and without an .html suffix.
func pageFromPath(path string) string {
	path = strings.TrimRight(path, ".")
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.TrimSuffix(strings.TrimSpace(segments[i]), ".html")
		if seg == "" || locale.IsLocaleToken(seg) || isMarketSegment(seg) {
			continue
		}
		return Slugify(seg)
	}
	return ""
}

// isMarketSegment reports two-letter path segments such as "kr" in /kr/ipad-pro.
func isMarketSegment(seg string) bool {
	return len(seg) == 2 && locale.Default().IsCountry(seg)
}

// Slugify lower-cases, strips diacritics and collapses every run of
// non-alphanumeric characters into a single hyphen.
func Slugify(s string) string {
	return strings.ReplaceAll(locale.Fold(s), " ", "-")
}
