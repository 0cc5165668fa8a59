package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/contentfinder/internal/domain"
	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
	"github.com/kailas-cloud/contentfinder/internal/domain/search/result"
	domusage "github.com/kailas-cloud/contentfinder/internal/domain/usage"
	healthuc "github.com/kailas-cloud/contentfinder/internal/usecase/health"
	queryuc "github.com/kailas-cloud/contentfinder/internal/usecase/query"
)

// maxBodyBytes bounds a POST /api/v1/query body.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// QueryService answers queries.
type QueryService interface {
	Query(ctx context.Context, req criteria.Request) (queryuc.Response, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// UsageService reports embedding token usage.
type UsageService interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// Server implements ServerInterface.
type Server struct {
	query         QueryService
	health        HealthService
	usage         UsageService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(query QueryService, health HealthService, usage UsageService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		query:  query,
		health: health,
		usage:  usage,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorResponseCodeTimeout, "query timed out"),
	}
	return s
}

// PostQuery handles POST /api/v1/query.
func (s *Server) PostQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	s.answer(w, r, criteria.Request{
		Message:     req.Message,
		SectionKey:  deref(req.SectionKey),
		Role:        deref(req.Role),
		Locale:      deref(req.Locale),
		Language:    deref(req.Language),
		Country:     deref(req.Country),
		PageID:      deref(req.PageID),
		Tags:        req.Tags,
		Keywords:    req.Keywords,
		Context:     req.Context,
		Limit:       deref(req.Limit),
		MaxDistance: deref(req.MaxDistance),
	})
}

// GetQuery handles GET /api/v1/query.
func (s *Server) GetQuery(w http.ResponseWriter, r *http.Request, params QueryParams) {
	s.answer(w, r, criteria.Request{
		Message:     params.Message,
		SectionKey:  deref(params.SectionKey),
		Role:        deref(params.Role),
		Locale:      deref(params.Locale),
		Language:    deref(params.Language),
		Country:     deref(params.Country),
		PageID:      deref(params.PageID),
		Tags:        deref(params.Tags),
		Keywords:    deref(params.Keywords),
		Limit:       deref(params.Limit),
		MaxDistance: deref(params.MaxDistance),
	})
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, req criteria.Request) {
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "limit must not be negative")
		return
	}
	if req.MaxDistance < 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "max_distance must not be negative")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.query.Query(ctx, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setEmbeddingHeaders(w, usage)

	items := make([]ResultItem, len(resp.Items))
	for i := range resp.Items {
		items[i] = resultToAPI(&resp.Items[i])
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Items:      items,
		Total:      resp.Total,
		Relaxation: string(resp.Stage),
	})
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request, params UsageParams) {
	period, err := domusage.ParsePeriod(deref(params.Period))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, UsageResponse{
		Period:        string(report.Period()),
		PeriodStartAt: report.Start(),
		PeriodEndAt:   report.End(),
		Budget: BudgetStatus{
			TokensLimit:     report.TokensLimit(),
			TokensUsed:      report.TokensUsed(),
			TokensRemaining: report.TokensRemaining(),
			IsExhausted:     report.Exhausted(),
			ResetsAt:        report.End(),
		},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler reports a rejected request with the builder's own wording.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidRequest) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		// Client went away; nothing useful can be written.
		s.logger.Debug("query cancelled", zap.Error(err))
		return
	}
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func resultToAPI(rec *result.Record) ResultItem {
	terms := rec.MatchTerms
	if terms == nil {
		terms = []string{}
	}
	return ResultItem{
		SequenceID:   rec.SequenceID,
		Section:      rec.Section,
		SectionPath:  rec.SectionPath,
		SectionURI:   rec.SectionURI,
		CleansedText: rec.CleansedText,
		ContentRole:  optional(rec.ContentRole),
		Source:       string(rec.Source),
		MatchTerms:   terms,
		Tenant:       optional(rec.Tenant),
		PageID:       optional(rec.PageID),
		Locale:       optional(rec.Locale),
		Country:      optional(rec.Country),
		Language:     optional(rec.Language),
		LastModified: optional(rec.LastModified),
		Distance:     rec.Distance,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
