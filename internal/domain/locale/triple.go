package locale

import "strings"

// Triple is a locale/language/country set. The Derived flags mark values that
// were inferred rather than supplied.
type Triple struct {
	Locale   string
	Language string
	Country  string

	DerivedLocale   bool
	DerivedLanguage bool
	DerivedCountry  bool
}

// IsEmpty reports whether no member is set.
func (tr Triple) IsEmpty() bool {
	return tr.Locale == "" && tr.Language == "" && tr.Country == ""
}

// Normalize resolves raw locale/language/country inputs into canonical codes
// without inferring anything. Unknown language or country tokens are dropped.
// A locale that contradicts a supplied language or country is dropped too:
// the narrower field was stated more directly.
func (t *Tables) Normalize(rawLocale, rawLanguage, rawCountry string) Triple {
	var tr Triple
	if code, ok := t.ResolveLanguage(rawLanguage); ok {
		tr.Language = code
	}
	if code, ok := t.ResolveCountry(rawCountry); ok {
		tr.Country = code
	}
	if loc, ok := Parse(rawLocale); ok {
		conflict := (tr.Language != "" && tr.Language != loc.Language) ||
			(tr.Country != "" && tr.Country != loc.Country)
		if !conflict {
			tr.Locale = loc.String()
		}
	}
	return tr
}

// FromLocale fills a missing language or country by decomposing the locale.
// Nothing else is inferred.
func (tr Triple) FromLocale() Triple {
	loc, ok := Parse(tr.Locale)
	if !ok {
		return tr
	}
	if tr.Language == "" {
		tr.Language, tr.DerivedLanguage = loc.Language, true
	}
	if tr.Country == "" {
		tr.Country, tr.DerivedCountry = loc.Country, true
	}
	return tr
}

// Complete fills the missing members of tr from the others where the tables
// make the answer unambiguous. Supplied members are never overwritten.
func (t *Tables) Complete(tr Triple) Triple {
	if _, ok := Parse(tr.Locale); ok {
		return tr.FromLocale()
	}

	if tr.Language == "" && tr.Country != "" {
		if lang, ok := t.PrimaryLanguage(tr.Country); ok {
			tr.Language, tr.DerivedLanguage = lang, true
		}
	}
	if tr.Country == "" && tr.Language != "" {
		if country, ok := t.PrimaryCountry(tr.Language); ok {
			tr.Country, tr.DerivedCountry = country, true
		}
	}
	if tr.Language != "" && tr.Country != "" {
		tr.Locale = Locale{Language: strings.ToLower(tr.Language), Country: strings.ToUpper(tr.Country)}.String()
		tr.DerivedLocale = true
	}
	return tr
}
