package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/contentfinder/internal/db"
)

// Hash field names of a stored content row.
const (
	FieldSection        = "section"
	FieldSectionPath    = "section_path"
	FieldSectionURI     = "section_uri"
	FieldRole           = "content_role"
	FieldText           = "cleansed_text"
	FieldMetadata       = "metadata"
	FieldTenant         = "tenant"
	FieldPageID         = "page_id"
	FieldLocale         = "locale"
	FieldCountry        = "country"
	FieldLanguage       = "language"
	FieldContextSection = "context_section"
	FieldTags           = "tags"
	FieldKeywords       = "keywords"
	FieldContext        = "context"
	FieldLastModified   = "last_modified"
	FieldSavedAt        = "saved_at"
	FieldVector         = "vector"
)

// listSeparator joins multi-value TAG fields.
const listSeparator = ","

// returnFields are loaded for every hit; the vector is never returned.
var returnFields = []string{
	FieldSection, FieldSectionPath, FieldSectionURI, FieldRole, FieldText,
	FieldTenant, FieldPageID, FieldLocale, FieldCountry, FieldLanguage,
	FieldContextSection, FieldTags, FieldKeywords, FieldContext,
	FieldLastModified, FieldSavedAt,
}

// IndexConfig describes the content index.
type IndexConfig struct {
	KeyPrefix   string // e.g. "contentfinder:"
	VectorDim   int
	Algorithm   db.VectorAlgorithm
	Distance    db.DistanceMetric
	M           int
	EFConstruct int
}

func (c IndexConfig) rowPrefix() string { return c.KeyPrefix + "content:" }

func (c IndexConfig) indexName() string { return c.KeyPrefix + "content:idx" }

// buildIndex creates the FT index definition over content rows.
func buildIndex(cfg IndexConfig) (*db.IndexDefinition, error) {
	b := db.NewIndex(cfg.indexName()).
		Prefix(cfg.rowPrefix()).
		Tag(FieldSection).
		Tag(FieldSectionPath).
		Tag(FieldRole).
		Text(FieldMetadata).
		Tag(FieldTenant).
		Tag(FieldPageID).
		Tag(FieldLocale).
		Tag(FieldCountry).
		Tag(FieldLanguage).
		Tag(FieldContextSection).
		TagWithSeparator(FieldTags, listSeparator).
		TagWithSeparator(FieldKeywords, listSeparator).
		SortableNumeric(FieldSavedAt)

	distance := cfg.Distance
	if distance == "" {
		distance = db.DistanceCosine
	}
	if cfg.Algorithm == db.VectorFlat {
		b = b.VectorFlat(FieldVector, cfg.VectorDim, distance)
	} else {
		b = b.VectorHNSW(FieldVector, cfg.VectorDim, distance, cfg.M, cfg.EFConstruct)
	}

	def, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("content index: %w", err)
	}
	return def, nil
}

// EnsureIndex creates the content index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := buildIndex(r.cfg)
	if err != nil {
		return err
	}
	exists, err := r.store.IndexExists(ctx, def.Name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", def.Name, err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// HealthCheck reports whether the content index is queryable.
func (r *Repo) HealthCheck(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.cfg.indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if !exists {
		return fmt.Errorf("index %s: %w", r.cfg.indexName(), db.ErrIndexNotFound)
	}
	return nil
}
