package chi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/contentfinder/internal/domain/contextmap"
)

// ErrorResponseCode is the machine-readable error code of an ErrorResponse.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeTimeout          ErrorResponseCode = "timeout"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Message     string         `json:"message"`
	SectionKey  *string        `json:"section_key,omitempty"`
	Role        *string        `json:"role,omitempty"`
	Locale      *string        `json:"locale,omitempty"`
	Language    *string        `json:"language,omitempty"`
	Country     *string        `json:"country,omitempty"`
	PageID      *string        `json:"page_id,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Keywords    []string       `json:"keywords,omitempty"`
	Context     contextmap.Map `json:"context,omitempty"`
	Limit       *int           `json:"limit,omitempty"`
	MaxDistance *float64       `json:"max_distance,omitempty"`
}

// QueryParams are the query-string parameters of GET /api/v1/query.
type QueryParams struct {
	Message     string    `form:"message" json:"message"`
	SectionKey  *string   `form:"section_key,omitempty" json:"section_key,omitempty"`
	Role        *string   `form:"role,omitempty" json:"role,omitempty"`
	Locale      *string   `form:"locale,omitempty" json:"locale,omitempty"`
	Language    *string   `form:"language,omitempty" json:"language,omitempty"`
	Country     *string   `form:"country,omitempty" json:"country,omitempty"`
	PageID      *string   `form:"page_id,omitempty" json:"page_id,omitempty"`
	Tags        *[]string `form:"tags,omitempty" json:"tags,omitempty"`
	Keywords    *[]string `form:"keywords,omitempty" json:"keywords,omitempty"`
	Limit       *int      `form:"limit,omitempty" json:"limit,omitempty"`
	MaxDistance *float64  `form:"max_distance,omitempty" json:"max_distance,omitempty"`
}

// ResultItem is one reconciled record.
type ResultItem struct {
	SequenceID   string   `json:"sequence_id"`
	Section      string   `json:"section"`
	SectionPath  string   `json:"section_path"`
	SectionURI   string   `json:"section_uri"`
	CleansedText string   `json:"cleansed_text"`
	ContentRole  *string  `json:"content_role,omitempty"`
	Source       string   `json:"source"`
	MatchTerms   []string `json:"match_terms"`
	Tenant       *string  `json:"tenant,omitempty"`
	PageID       *string  `json:"page_id,omitempty"`
	Locale       *string  `json:"locale,omitempty"`
	Country      *string  `json:"country,omitempty"`
	Language     *string  `json:"language,omitempty"`
	LastModified *string  `json:"last_modified,omitempty"`
	Distance     *float64 `json:"distance,omitempty"`
}

// QueryResponse is the reply of both query routes.
type QueryResponse struct {
	Items      []ResultItem `json:"items"`
	Total      int          `json:"total"`
	Relaxation string       `json:"relaxation"`
}

// UsageParams are the query-string parameters of GET /api/v1/usage.
type UsageParams struct {
	Period *string `form:"period,omitempty" json:"period,omitempty"`
}

// BudgetStatus is the token budget part of a UsageResponse.
type BudgetStatus struct {
	TokensLimit     int64     `json:"tokens_limit"`
	TokensUsed      int64     `json:"tokens_used"`
	TokensRemaining int64     `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}

// UsageResponse is the reply of GET /api/v1/usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	PeriodStartAt time.Time    `json:"period_start_at"`
	PeriodEndAt   time.Time    `json:"period_end_at"`
	Budget        BudgetStatus `json:"budget"`
}

// HealthResponse is the reply of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ServerInterface is the set of handlers mounted by Handler.
type ServerInterface interface {
	// POST /api/v1/query
	PostQuery(w http.ResponseWriter, r *http.Request)
	// GET /api/v1/query
	GetQuery(w http.ResponseWriter, r *http.Request, params QueryParams)
	// GET /api/v1/usage
	GetUsage(w http.ResponseWriter, r *http.Request, params UsageParams)
	// GET /health
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configure Handler.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler mounts si on a new chi router.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions mounts si on options.BaseRouter (a new router when nil).
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		}
	}
	wrapper := serverInterfaceWrapper{handler: si, errorHandlerFunc: options.ErrorHandlerFunc}

	r.Post("/api/v1/query", si.PostQuery)
	r.Get("/api/v1/query", wrapper.GetQuery)
	r.Get("/api/v1/usage", wrapper.GetUsage)
	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)
	return r
}

type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// GetQuery binds the query string and forwards to the handler.
func (siw *serverInterfaceWrapper) GetQuery(w http.ResponseWriter, r *http.Request) {
	var params QueryParams
	q := r.URL.Query()

	binds := []struct {
		name     string
		required bool
		dest     any
	}{
		{"message", true, &params.Message},
		{"section_key", false, &params.SectionKey},
		{"role", false, &params.Role},
		{"locale", false, &params.Locale},
		{"language", false, &params.Language},
		{"country", false, &params.Country},
		{"page_id", false, &params.PageID},
		{"tags", false, &params.Tags},
		{"keywords", false, &params.Keywords},
		{"limit", false, &params.Limit},
		{"max_distance", false, &params.MaxDistance},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, b.required, b.name, q, b.dest); err != nil {
			siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return
		}
	}

	siw.handler.GetQuery(w, r, params)
}

// GetUsage binds the query string and forwards to the handler.
func (siw *serverInterfaceWrapper) GetUsage(w http.ResponseWriter, r *http.Request) {
	var params UsageParams
	if err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &params.Period); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "period", Err: err})
		return
	}

	siw.handler.GetUsage(w, r, params)
}
