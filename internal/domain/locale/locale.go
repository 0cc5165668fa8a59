// Package locale holds the process-wide language/country lookup tables.
//
// Tables are built once on first use and never mutated afterwards, so a
// *Tables value is safe for concurrent reads without locking.
package locale

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Locale is a decomposed lang_COUNTRY pair.
type Locale struct {
	Language string
	Country  string
}

// String returns the canonical lang_COUNTRY form, or "" when either half is missing.
func (l Locale) String() string {
	if l.Language == "" || l.Country == "" {
		return ""
	}
	return l.Language + "_" + l.Country
}

var wellFormed = regexp.MustCompile(`^([A-Za-z]{2})[_-]([A-Za-z]{2})$`)

// Parse decomposes a well-formed locale string (xx_YY or xx-YY, any case).
// It does not consult the tables: every well-formed string decomposes.
func Parse(s string) (Locale, bool) {
	m := wellFormed.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Locale{}, false
	}
	return Locale{Language: strings.ToLower(m[1]), Country: strings.ToUpper(m[2])}, true
}

// IsLocaleToken reports whether s looks like a locale (used to keep locales out of page ids).
func IsLocaleToken(s string) bool {
	return wellFormed.MatchString(strings.TrimSpace(s))
}

// Tables are the immutable lookup indices.
type Tables struct {
	languages     map[string]struct{}
	countries     map[string]struct{}
	languageIndex map[string]string // folded name/alias -> ISO 639-1
	countryIndex  map[string]string // folded name/alias -> ISO 3166-1 alpha-2
	ambiguous     map[string]struct{}
	maxPhrase     int
}

var defaultTables = sync.OnceValue(build)

// Default returns the process-wide tables.
func Default() *Tables {
	return defaultTables()
}

func build() *Tables {
	t := &Tables{
		languages:     make(map[string]struct{}, len(languageNames)),
		countries:     make(map[string]struct{}, len(countryAliases)),
		languageIndex: make(map[string]string, len(languageNames)+len(languageAliases)),
		countryIndex:  make(map[string]string, len(countryAliases)*3),
		ambiguous:     make(map[string]struct{}, len(ambiguousPhrases)),
	}
	for code, name := range languageNames {
		t.languages[code] = struct{}{}
		t.addLanguage(name, code)
	}
	for alias, code := range languageAliases {
		t.addLanguage(alias, code)
	}
	for code, aliases := range countryAliases {
		t.countries[code] = struct{}{}
		for _, a := range aliases {
			key := Fold(a)
			t.countryIndex[key] = code
			t.trackPhrase(key)
		}
	}
	for _, p := range ambiguousPhrases {
		key := Fold(p)
		t.ambiguous[key] = struct{}{}
		t.trackPhrase(key)
	}
	return t
}

func (t *Tables) addLanguage(alias, code string) {
	key := Fold(alias)
	t.languageIndex[key] = code
	t.trackPhrase(key)
}

func (t *Tables) trackPhrase(key string) {
	if n := len(strings.Fields(key)); n > t.maxPhrase {
		t.maxPhrase = n
	}
}

// IsLanguage reports whether code is a known ISO 639-1 code.
func (t *Tables) IsLanguage(code string) bool {
	_, ok := t.languages[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// IsCountry reports whether code is a known ISO 3166-1 alpha-2 code.
func (t *Tables) IsCountry(code string) bool {
	_, ok := t.countries[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// ResolveCountry maps an ISO2 code, country name or alias to an ISO2 code.
// Unknown or ambiguous input yields ("", false).
func (t *Tables) ResolveCountry(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if len(token) == 2 && t.IsCountry(token) {
		return strings.ToUpper(token), true
	}
	code, ok := t.countryIndex[Fold(token)]
	return code, ok
}

// ResolveLanguage maps an ISO 639-1 code, language name or alias to a code.
func (t *Tables) ResolveLanguage(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if len(token) == 2 && t.IsLanguage(token) {
		return strings.ToLower(token), true
	}
	code, ok := t.languageIndex[Fold(token)]
	return code, ok
}

// FindCountry scans free text for the first country name or alias.
// Bare ISO codes are not matched here: in prose they collide with ordinary words.
func (t *Tables) FindCountry(text string) (string, bool) {
	return t.scan(text, t.countryIndex)
}

// FindLanguage scans free text for the first language name or alias.
func (t *Tables) FindLanguage(text string) (string, bool) {
	return t.scan(text, t.languageIndex)
}

// scan walks the folded words left to right and tries the longest phrase first
// at each position. An ambiguous phrase consumes its words and resolves nothing.
func (t *Tables) scan(text string, index map[string]string) (string, bool) {
	words := strings.Fields(Fold(text))
	for i := 0; i < len(words); {
		advanced := false
		for n := min(t.maxPhrase, len(words)-i); n >= 1; n-- {
			phrase := strings.Join(words[i:i+n], " ")
			if _, ok := t.ambiguous[phrase]; ok {
				i += n
				advanced = true
				break
			}
			if code, ok := index[phrase]; ok {
				return code, true
			}
		}
		if !advanced {
			i++
		}
	}
	return "", false
}

var inlineLocale = regexp.MustCompile(`\b([a-z]{2})_([A-Z]{2})\b`)

// FindLocale returns the first lang_COUNTRY token in free text whose halves are
// both known. Only the canonical underscore form is recognised in prose.
func (t *Tables) FindLocale(text string) (Locale, bool) {
	for _, m := range inlineLocale.FindAllStringSubmatch(text, -1) {
		if t.IsLanguage(m[1]) && t.IsCountry(m[2]) {
			return Locale{Language: m[1], Country: m[2]}, true
		}
	}
	return Locale{}, false
}

// PrimaryLanguage returns the dominant language of a single-language market.
func (t *Tables) PrimaryLanguage(country string) (string, bool) {
	lang, ok := primaryLanguage[strings.ToUpper(country)]
	return lang, ok
}

// PrimaryCountry returns the only market whose primary language is lang.
func (t *Tables) PrimaryCountry(lang string) (string, bool) {
	country, ok := primaryCountry[strings.ToLower(lang)]
	return country, ok
}

// Fold lower-cases, strips diacritics and collapses every run of
// non-alphanumeric characters into one space.
func Fold(s string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s,
	)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
