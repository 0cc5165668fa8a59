package contentfinder

// Stage is the relaxation stage a query was answered in.
type Stage string

// Relaxation stages, from strictest to an empty answer.
const (
	StageStrict         Stage = "strict"
	StageRoleRelaxed    Stage = "role_relaxed"
	StageContextRelaxed Stage = "context_relaxed"
	StageEmpty          Stage = "empty"
)

// Source tells which retrieval produced a record.
type Source string

// Retrieval sources.
const (
	SourceSemantic Source = "semantic"
	SourceMetadata Source = "metadata"
)

// QueryRequest is a natural-language query plus optional hints.
// Context is a free-form object; its locale, page and section hints are merged
// with the explicit fields, explicit fields winning.
type QueryRequest struct {
	Message     string
	SectionKey  string
	Role        string
	Locale      string
	Language    string
	Country     string
	PageID      string
	Tags        []string
	Keywords    []string
	Context     map[string]any
	Limit       int     // 0 = default
	MaxDistance float64 // 0 = client default
}

// Record is one reconciled content row.
type Record struct {
	SequenceID   string
	Section      string
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

// QueryResult is the answer to a QueryRequest.
type QueryResult struct {
	Items []Record
	Total int
	Stage Stage
}
