package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/domain"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/query"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/request"
	autocompleteuc "github.com/ravi-m-fleetenable/global-search/internal/usecase/autocomplete"
	facetuc "github.com/ravi-m-fleetenable/global-search/internal/usecase/facet"
	healthuc "github.com/ravi-m-fleetenable/global-search/internal/usecase/health"
	searchuc "github.com/ravi-m-fleetenable/global-search/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Options carries the request defaults of the HTTP surface.
type Options struct {
	Limits          request.Limits
	SuggestLimit    int
	SuggestMinChars int
	// Timeout bounds every search operation; zero disables the deadline.
	Timeout time.Duration
}

// Server implements ServerInterface.
type Server struct {
	search        *searchuc.Service
	autocomplete  *autocompleteuc.Service
	facets        *facetuc.Service
	health        *healthuc.Service
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	autocomplete *autocompleteuc.Service,
	facets *facetuc.Service,
	health *healthuc.Service,
	opts Options,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:       search,
		autocomplete: autocomplete,
		facets:       facets,
		health:       health,
		opts:         opts,
		logger:       logger,
	}
	// order matters: unknown collection wraps validation
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownCollection, http.StatusBadRequest, ErrorResponseCodeUnknownCollection),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, ErrorResponseCodeForbidden),
		sentinelHandler(domain.ErrUnauthenticated, http.StatusUnauthorized, ErrorResponseCodeUnauthorized),
	}
	return s
}

// GlobalSearch handles POST /api/v1/search/global.
func (s *Server) GlobalSearch(w http.ResponseWriter, r *http.Request) {
	var req GlobalSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	c, ok := s.caller(w, r)
	if !ok {
		return
	}

	searchReq, err := s.searchRequestFromWire(req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	env, err := s.search.Search(ctx, c, &searchReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// Autocomplete handles GET /api/v1/search/autocomplete.
func (s *Server) Autocomplete(w http.ResponseWriter, r *http.Request, params AutocompleteParams) {
	c, ok := s.caller(w, r)
	if !ok {
		return
	}

	req, err := request.NewSuggest(
		params.Q, params.Type, derefInt(params.Limit), derefInt(params.MinChars),
		s.opts.SuggestLimit, s.opts.SuggestMinChars,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	res, err := s.autocomplete.Suggest(ctx, c, &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Facets handles GET /api/v1/search/facets.
func (s *Server) Facets(w http.ResponseWriter, r *http.Request, params FacetsParams) {
	c, ok := s.caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	facets, err := s.facets.Build(ctx, c, params.Collection)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FacetsResponse{
		Success:    true,
		Collection: params.Collection,
		Facets:     facets,
	})
}

// AdvancedSearch handles POST /api/v1/search/advanced.
func (s *Server) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	var req AdvancedSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	c, ok := s.caller(w, r)
	if !ok {
		return
	}

	advReq, err := request.NewAdvanced(req.Collection, req.Limit, req.Criteria, s.opts.Limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	res, err := s.search.Advanced(ctx, c, &advReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) caller(w http.ResponseWriter, r *http.Request) (caller.Context, bool) {
	c, ok := caller.FromContext(r.Context())
	if !ok {
		s.handleDomainError(w, domain.ErrUnauthenticated)
	}
	return c, ok
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

func (s *Server) searchRequestFromWire(req GlobalSearchRequest) (request.Search, error) {
	opts := request.Options{
		IncludeHighlights: true,
		IncludeFacets:     req.IncludeFacets,
		IncludeEmpty:      req.IncludeEmpty,
	}
	if req.IncludeHighlights != nil {
		opts.IncludeHighlights = *req.IncludeHighlights
	}

	var filters request.Filters
	if req.Filters != nil {
		filters.Status = req.Filters.Status
		if dr := req.Filters.DateRange; dr != nil {
			parsed, err := request.ParseDateRange(dr.Start, dr.End)
			if err != nil {
				return request.Search{}, err //nolint:wrapcheck // already a domain error
			}
			filters.DateRange = parsed
		}
	}

	var fuzzy *query.FuzzyOverride
	if f := req.Fuzzy; f != nil {
		fuzzy = &query.FuzzyOverride{
			MaxEdits:      f.MaxEdits,
			PrefixLength:  f.PrefixLength,
			MaxExpansions: f.MaxExpansions,
		}
	}

	return request.New( //nolint:wrapcheck // already a domain error
		req.Query, req.SearchType, req.Page, req.Limit, opts, filters, fuzzy, s.opts.Limits,
	)
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

// safeDomainMessage returns a client-safe message for a domain error. Known
// domain errors carry no internals and are returned whole.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownCollection,
		domain.ErrValidation,
		domain.ErrForbidden,
		domain.ErrUnauthenticated,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler creates an errorHandler for a simple sentinel -> HTTP status mapping.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
