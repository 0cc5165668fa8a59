// Package content holds the stored content row and its deduplication key.
package content

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"

	"github.com/kailas-cloud/contentfinder/internal/domain/contextmap"
)

// Record is one stored content row as returned by the retrieval collaborators.
type Record struct {
	ID             string
	Section        string
	SectionPath    string
	SectionURI     string
	CleansedText   string
	ContentRole    string
	Tenant         string
	PageID         string
	Locale         string
	Country        string
	Language       string
	ContextSection string
	Tags           []string
	Keywords       []string
	Context        contextmap.Map
	LastModified   string // ISO-8601 as stored
	SavedAt        time.Time
}

// Scored is a Record returned by similarity search with its raw distance
// (lower is closer).
type Scored struct {
	Record
	Distance float64
}

// Field reads a scoping field from the row, falling back to its context tree
// when the top-level column is empty.
func (r *Record) Field(name string) string {
	var v string
	switch name {
	case "content_role", "role":
		v = r.ContentRole
	case "page_id", "pageId":
		v = r.PageID
	case "locale":
		v = r.Locale
	case "country":
		v = r.Country
	case "language":
		v = r.Language
	case "tenant":
		v = r.Tenant
	}
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return r.Context.String(name)
}

// DedupKey identifies the same logical unit of content across retrieval sources.
type DedupKey struct {
	SectionPath string
	ContentRole string
	TextHash    string
}

// KeyOf derives the DedupKey of r.
func KeyOf(r *Record) DedupKey {
	return DedupKey{
		SectionPath: r.SectionPath,
		ContentRole: r.ContentRole,
		TextHash:    HashText(r.CleansedText),
	}
}

// HashText returns a 128-bit BLAKE2b digest of text, hex encoded.
func HashText(text string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits; error only for invalid sizes
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
