package content

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/contentfinder/internal/db"
	domcontent "github.com/kailas-cloud/contentfinder/internal/domain/content"
	"github.com/kailas-cloud/contentfinder/internal/domain/contextmap"
)

// entryToRecord converts a hash search hit into a content record.
func entryToRecord(entry *db.SearchEntry, rowPrefix string) domcontent.Record {
	f := entry.Fields
	rec := domcontent.Record{
		ID:             strings.TrimPrefix(entry.Key, rowPrefix),
		Section:        f[FieldSection],
		SectionPath:    f[FieldSectionPath],
		SectionURI:     f[FieldSectionURI],
		CleansedText:   f[FieldText],
		ContentRole:    f[FieldRole],
		Tenant:         f[FieldTenant],
		PageID:         f[FieldPageID],
		Locale:         f[FieldLocale],
		Country:        f[FieldCountry],
		Language:       f[FieldLanguage],
		ContextSection: f[FieldContextSection],
		Tags:           splitList(f[FieldTags]),
		Keywords:       splitList(f[FieldKeywords]),
		LastModified:   f[FieldLastModified],
	}
	if raw := f[FieldContext]; raw != "" {
		var ctx contextmap.Map
		if err := json.Unmarshal([]byte(raw), &ctx); err == nil {
			rec.Context = ctx
		}
	}
	if ms, err := strconv.ParseInt(f[FieldSavedAt], 10, 64); err == nil {
		rec.SavedAt = time.UnixMilli(ms).UTC()
	}
	return rec
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, listSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
