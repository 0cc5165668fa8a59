package criteria

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/contentfinder/internal/domain"
	"github.com/kailas-cloud/contentfinder/internal/domain/contextmap"
	"github.com/kailas-cloud/contentfinder/internal/domain/locale"
)

// Builder turns requests into Criteria. It is stateless and safe for concurrent use.
type Builder struct {
	tables *locale.Tables
}

// NewBuilder creates a Builder over the given lookup tables.
func NewBuilder(tables *locale.Tables) *Builder {
	if tables == nil {
		tables = locale.Default()
	}
	return &Builder{tables: tables}
}

// Build normalizes req, filling gaps from hints (may be nil) and then from
// the message text. Explicit request fields always win and are the only hard filters.
func (b *Builder) Build(req Request, hints *Hints) (Criteria, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return Criteria{}, fmt.Errorf("message is required: %w", domain.ErrInvalidRequest)
	}
	if hints == nil {
		hints = &Hints{}
	}
	reqCtx := req.Context

	c := Criteria{
		message:     msg,
		limit:       clampLimit(req.Limit),
		maxDistance: max(0, req.MaxDistance),
	}

	c.sectionKey = firstSlug(req.SectionKey, reqCtx.String(KeySectionKey), hints.SectionKey, ExtractSectionKey(msg))

	if role := firstSlug(req.Role, reqCtx.String(KeyRole)); role != "" {
		c.role = role
		c.filters.Role = role
	} else {
		c.role = firstSlug(hints.Role, ExtractRole(msg))
	}

	if page := firstSlug(req.PageID, reqCtx.String(KeyPageID)); page != "" {
		c.pageID = page
		c.filters.PageID = page
	} else {
		c.pageID = firstSlug(pageFromPath(hints.PageID), ExtractPageID(msg))
	}

	tr := b.resolveLocale(req, hints, msg).FromLocale()
	c.locale, c.language, c.country = tr.Locale, tr.Language, tr.Country

	hard := b.tables.Normalize(
		firstNonBlank(req.Locale, reqCtx.String(KeyLocale)),
		firstNonBlank(req.Language, reqCtx.String(KeyLanguage)),
		firstNonBlank(req.Country, reqCtx.String(KeyCountry)),
	)
	c.filters.Locale, c.filters.Language, c.filters.Country = hard.Locale, hard.Language, hard.Country

	c.tags = normalizeSet(req.Tags, hints.Tags)
	c.keywords = normalizeSet(req.Keywords, hints.Keywords)

	c.context = contextmap.Merge(
		reqCtx,
		contextmap.Soften(hints.Context),
		c.derivedContext(b.tables.Complete(tr)),
	)
	c.filters.Tenant = c.context.HardScalars()[KeyTenant]
	return c, nil
}

// resolveLocale starts from the explicit triple and fills the gaps from hints and
// then from the message text, skipping values that contradict what is already
// known. Nothing is inferred through the tables here.
func (b *Builder) resolveLocale(req Request, hints *Hints, msg string) locale.Triple {
	ctx := req.Context
	tr := b.tables.Normalize(
		firstNonBlank(req.Locale, ctx.String(KeyLocale)),
		firstNonBlank(req.Language, ctx.String(KeyLanguage)),
		firstNonBlank(req.Country, ctx.String(KeyCountry)),
	)

	hinted := b.tables.Normalize(hints.Locale, hints.Language, hints.Country)
	fillTriple(&tr, hinted)

	var found locale.Triple
	if loc, ok := b.tables.FindLocale(msg); ok {
		found.Locale = loc.String()
	}
	if code, ok := b.tables.FindLanguage(msg); ok {
		found.Language = code
	}
	if code, ok := b.tables.FindCountry(msg); ok {
		found.Country = code
	}
	fillTriple(&tr, found)
	return tr
}

// fillTriple copies members of cand into empty members of tr, marking them
// derived, when they agree with what tr already holds.
func fillTriple(tr *locale.Triple, cand locale.Triple) {
	if tr.Language == "" && cand.Language != "" && agrees(tr.Locale, cand.Language, "") {
		tr.Language, tr.DerivedLanguage = cand.Language, true
	}
	if tr.Country == "" && cand.Country != "" && agrees(tr.Locale, "", cand.Country) {
		tr.Country, tr.DerivedCountry = cand.Country, true
	}
	if tr.Locale == "" && cand.Locale != "" && agrees(cand.Locale, tr.Language, tr.Country) {
		tr.Locale, tr.DerivedLocale = cand.Locale, true
	}
}

// agrees reports whether a locale is consistent with a language and country.
// Empty values agree with everything.
func agrees(loc, language, country string) bool {
	parsed, ok := locale.Parse(loc)
	if !ok {
		return true
	}
	if language != "" && parsed.Language != language {
		return false
	}
	if country != "" && parsed.Country != country {
		return false
	}
	return true
}

// derivedContext exposes the criteria fields as the lowest-precedence context
// source. Values the caller did not supply explicitly are soft.
func (c Criteria) derivedContext(tr locale.Triple) contextmap.Map {
	m := contextmap.New()
	put := func(key, value string, hard bool) {
		if value == "" {
			return
		}
		if hard {
			m = m.With(contextmap.Scalar(value), key)
		} else {
			m = m.WithSoft(contextmap.Scalar(value), key)
		}
	}
	put(KeySectionKey, c.sectionKey, false)
	put(KeyRole, c.role, c.filters.Role != "")
	put(KeyPageID, c.pageID, c.filters.PageID != "")
	put(KeyLocale, tr.Locale, c.filters.Locale != "")
	put(KeyLanguage, tr.Language, c.filters.Language != "")
	put(KeyCountry, tr.Country, c.filters.Country != "")
	return m
}

func clampLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return min(n, MaxLimit)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstSlug(values ...string) string {
	for _, v := range values {
		if s := Slugify(v); s != "" {
			return s
		}
	}
	return ""
}

// normalizeSet slugifies and unions the given lists in first-seen order.
func normalizeSet(lists ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, v := range list {
			s := Slugify(v)
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
