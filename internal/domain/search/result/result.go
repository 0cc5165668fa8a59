package result

import "github.com/kailas-cloud/contentfinder/internal/domain/content"

// Source records which retrieval path produced a row.
type Source string

// Retrieval sources.
const (
	SourceSemantic Source = "semantic"
	SourceMetadata Source = "metadata"
)

// Record is a single reconciled hit returned to the caller.
// SequenceID and MatchTerms are assigned by the reconciler.
type Record struct {
	Section      string
	SequenceID   string
	SectionPath  string
	SectionURI   string
	CleansedText string
	ContentRole  string
	Source       Source
	MatchTerms   []string
	Tenant       string
	PageID       string
	Locale       string
	Country      string
	Language     string
	LastModified string
	Distance     *float64 // semantic rows only
}

// FromContent maps a stored row to a result record. Scoping fields fall back
// to the row's context tree when the column is empty.
func FromContent(r *content.Record, src Source) Record {
	return Record{
		Section:      r.Section,
		SectionPath:  r.SectionPath,
		SectionURI:   r.SectionURI,
		CleansedText: r.CleansedText,
		ContentRole:  r.Field("content_role"),
		Source:       src,
		Tenant:       r.Field("tenant"),
		PageID:       r.Field("page_id"),
		Locale:       r.Field("locale"),
		Country:      r.Field("country"),
		Language:     r.Field("language"),
		LastModified: r.LastModified,
	}
}

// FromScored maps a similarity hit, keeping its distance.
func FromScored(s *content.Scored) Record {
	rec := FromContent(&s.Record, SourceSemantic)
	d := s.Distance
	rec.Distance = &d
	return rec
}
