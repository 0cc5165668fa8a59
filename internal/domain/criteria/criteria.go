// Package criteria turns a raw query request into immutable search criteria.
package criteria

import (
	"slices"

	"github.com/kailas-cloud/contentfinder/internal/domain/contextmap"
)

// Query parameter limits.
const (
	DefaultLimit = 15
	MaxLimit     = 200
)

// Context keys that carry scoping filters.
const (
	KeyLocale     = "locale"
	KeyLanguage   = "language"
	KeyCountry    = "country"
	KeyPageID     = "page_id"
	KeySectionKey = "section_key"
	KeyRole       = "role"
	KeyTenant     = "tenant"
)

// Request is the raw caller input. Only Message is required.
type Request struct {
	Message     string
	SectionKey  string
	Role        string
	Locale      string
	Language    string
	Country     string
	PageID      string
	Tags        []string
	Keywords    []string
	Context     contextmap.Map
	Limit       int
	MaxDistance float64
}

// Hints is the advisory record produced by query interpretation.
type Hints struct {
	SectionKey string
	Role       string
	Locale     string
	Language   string
	Country    string
	PageID     string
	Tags       []string
	Keywords   []string
	Context    contextmap.Map
}

// Filters are the hard scoping filters: values the caller supplied explicitly.
// Empty fields do not filter.
type Filters struct {
	Role     string
	Locale   string
	Language string
	Country  string
	PageID   string
	Tenant   string
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool { return f == Filters{} }

// Criteria is the immutable, normalized form of a request.
type Criteria struct {
	message     string
	sectionKey  string
	role        string
	locale      string
	language    string
	country     string
	pageID      string
	tags        []string
	keywords    []string
	context     contextmap.Map
	limit       int
	maxDistance float64
	filters     Filters
}

// Message returns the trimmed message text.
func (c Criteria) Message() string { return c.message }

// SectionKey returns the section key, explicit or extracted.
func (c Criteria) SectionKey() string { return c.sectionKey }

// Role returns the role, explicit or advisory.
func (c Criteria) Role() string { return c.role }

// Locale returns the locale, supplied or found in the message.
func (c Criteria) Locale() string { return c.locale }

// Language returns the language, supplied or decomposed from the locale.
func (c Criteria) Language() string { return c.language }

// Country returns the country, supplied or decomposed from the locale.
func (c Criteria) Country() string { return c.country }

// PageID returns the resolved page identifier (hard or soft).
func (c Criteria) PageID() string { return c.pageID }

// Tags returns the normalized tag set.
func (c Criteria) Tags() []string { return slices.Clone(c.tags) }

// Keywords returns the normalized keyword set.
func (c Criteria) Keywords() []string { return slices.Clone(c.keywords) }

// Context returns the merged effective context.
func (c Criteria) Context() contextmap.Map { return c.context }

// Limit returns the maximum number of records to return.
func (c Criteria) Limit() int { return c.limit }

// MaxDistance returns the similarity distance threshold; 0 means none.
func (c Criteria) MaxDistance() float64 { return c.maxDistance }

// Filters returns the hard scoping filters.
func (c Criteria) Filters() Filters { return c.filters }

// HasRoleFilter reports whether an explicit role filter is set.
func (c Criteria) HasRoleFilter() bool { return c.filters.Role != "" }

// HasContextFilter reports whether a hard locale, country, language or page
// filter is set. Tenant is never relaxed and does not count.
func (c Criteria) HasContextFilter() bool {
	f := c.filters
	return f.Locale != "" || f.Language != "" || f.Country != "" || f.PageID != ""
}

// Tenant returns the hard tenant from the request context, if any.
func (c Criteria) Tenant() string { return c.filters.Tenant }

// WithoutRole drops the role filter. The role stays available as an advisory term.
func (c Criteria) WithoutRole() Criteria {
	c.filters.Role = ""
	return c
}

// WithoutContext drops the locale, country, language and page filters and
// empties the context. The tenant filter stays.
func (c Criteria) WithoutContext() Criteria {
	c.locale, c.language, c.country, c.pageID = "", "", "", ""
	c.filters.Locale, c.filters.Language, c.filters.Country, c.filters.PageID = "", "", "", ""
	c.context = contextmap.New()
	return c
}
