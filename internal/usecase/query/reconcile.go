package query

import (
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/contentfinder/internal/domain/content"
	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
	"github.com/kailas-cloud/contentfinder/internal/domain/locale"
	"github.com/kailas-cloud/contentfinder/internal/domain/search/result"
)

// sequencePrefix starts every per-response record identifier.
const sequencePrefix = "cf"

// candidate pairs a stored row with the record it becomes.
type candidate struct {
	row *content.Record
	out result.Record
}

// reconcile merges both sources into the final list. Semantic rows are inserted
// first in rank order, then metadata rows; on a DedupKey collision the first
// row wins. Rows conflicting with a hard filter are dropped, the rest is
// truncated to the limit and numbered cf1..cfN.
func (s *Service) reconcile(crit criteria.Criteria, r *retrieval) []result.Record {
	seen := make(map[content.DedupKey]struct{}, len(r.semantic)+len(r.metadata))
	merged := make([]candidate, 0, len(r.semantic)+len(r.metadata))
	insert := func(row *content.Record, out result.Record) {
		key := content.KeyOf(row)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		merged = append(merged, candidate{row: row, out: out})
	}

	for i := range r.semantic {
		insert(&r.semantic[i].Record, result.FromScored(&r.semantic[i]))
	}
	for i := range r.metadata {
		insert(&r.metadata[i], result.FromContent(&r.metadata[i], result.SourceMetadata))
	}

	filters := crit.Filters()
	out := make([]result.Record, 0, min(len(merged), crit.Limit()))
	for _, c := range merged {
		if !matchesCriteria(s.tables, c.row, filters) {
			continue
		}
		if len(out) == crit.Limit() {
			break
		}
		rec := c.out
		rec.SequenceID = sequencePrefix + strconv.Itoa(len(out)+1)
		rec.MatchTerms = matchTerms(crit, c.row, r.sectionKeys)
		out = append(out, rec)
	}
	return out
}

// matchesCriteria reports whether row is compatible with the hard filters.
// A row that omits a field never conflicts on it, except tenant: a
// tenant-scoped query only keeps rows of that tenant.
func matchesCriteria(tables *locale.Tables, row *content.Record, f criteria.Filters) bool {
	if f.IsEmpty() {
		return true
	}
	if f.Tenant != "" && !strings.EqualFold(row.Field("tenant"), f.Tenant) {
		return false
	}
	if f.Role != "" {
		if role := row.Field("content_role"); role != "" && criteria.Slugify(role) != f.Role {
			return false
		}
	}
	if f.PageID != "" {
		if page := row.Field("page_id"); page != "" && criteria.Slugify(page) != f.PageID {
			return false
		}
	}

	want := locale.Triple{Locale: f.Locale, Language: f.Language, Country: f.Country}.FromLocale()
	have := tables.Normalize(row.Field("locale"), row.Field("language"), row.Field("country")).FromLocale()

	switch {
	case conflicts(want.Locale, have.Locale):
		return false
	case conflicts(want.Language, have.Language):
		return false
	case conflicts(want.Country, have.Country):
		return false
	}
	return true
}

func conflicts(want, have string) bool {
	return want != "" && have != "" && want != have
}

// matchTerms lists, for diagnostics, what tied row to the query: the driving
// section key, shared tags and keywords, the row's role and page id.
func matchTerms(crit criteria.Criteria, row *content.Record, sectionKeys []string) []string {
	var terms []string
	for _, key := range sectionKeys {
		if content.SameSection(key, row.Section) || content.SameSection(key, row.ContextSection) {
			terms = append(terms, key)
			break
		}
	}
	terms = appendShared(terms, crit.Tags(), row.Tags)
	terms = appendShared(terms, crit.Keywords(), row.Keywords)
	if role := row.Field("content_role"); role != "" {
		terms = append(terms, role)
	}
	if page := row.Field("page_id"); page != "" {
		terms = append(terms, page)
	}
	return terms
}

// appendShared appends every wanted value that also appears in have.
func appendShared(terms, wanted, have []string) []string {
	if len(wanted) == 0 || len(have) == 0 {
		return terms
	}
	slugs := make([]string, 0, len(have))
	for _, h := range have {
		slugs = append(slugs, criteria.Slugify(h))
	}
	for _, w := range wanted {
		if w = strings.TrimSpace(w); w != "" && slices.Contains(slugs, criteria.Slugify(w)) {
			terms = append(terms, w)
		}
	}
	return terms
}
