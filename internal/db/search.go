package db

import "github.com/kailas-cloud/contentfinder/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search. Results come back
// closest first; Score holds the raw distance reported by the engine.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for full-text search over the given TEXT fields.
// Terms are matched any-of.
type TextQuery struct {
	IndexName    string
	Terms        []string
	Fields       []string // TEXT fields to search; empty searches all
	Filters      filter.Expression
	SortBy       *SortBy // nil keeps relevance order
	Limit        int
	ReturnFields []string
}

// ListQuery is a filter-only search (no text, no vector).
type ListQuery struct {
	IndexName    string
	Filters      filter.Expression
	SortBy       *SortBy
	Offset       int
	Limit        int
	ReturnFields []string
}

// SortBy orders results by a SORTABLE field.
type SortBy struct {
	Field string
	Desc  bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
