package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode is the machine-readable error code of an error body.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed  ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnknownCollection ErrorResponseCode = "unknown_collection"
	ErrorResponseCodeForbidden         ErrorResponseCode = "forbidden"
	ErrorResponseCodeUnauthorized      ErrorResponseCode = "unauthorized"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// StringList accepts either a JSON string or an array of strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one == "" {
			*l = nil
			return nil
		}
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("expected string or array of strings: %w", err)
	}
	*l = many
	return nil
}

// DateRange is the wire form of a created_at window.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SearchFilters are the structured filters of a global search.
type SearchFilters struct {
	Status    StringList `json:"status,omitempty"`
	DateRange *DateRange `json:"date_range,omitempty"`
}

// FuzzyOptions overrides the fuzzy defaults for one request.
type FuzzyOptions struct {
	MaxEdits      *int `json:"max_edits,omitempty"`
	PrefixLength  *int `json:"prefix_length,omitempty"`
	MaxExpansions *int `json:"max_expansions,omitempty"`
}

// GlobalSearchRequest is the body of POST /api/v1/search/global.
type GlobalSearchRequest struct {
	Query             string         `json:"query"`
	SearchType        string         `json:"search_type,omitempty"`
	Page              int            `json:"page,omitempty"`
	Limit             int            `json:"limit,omitempty"`
	IncludeHighlights *bool          `json:"include_highlights,omitempty"`
	IncludeFacets     bool           `json:"include_facets,omitempty"`
	IncludeEmpty      bool           `json:"include_empty,omitempty"`
	Filters           *SearchFilters `json:"filters,omitempty"`
	Fuzzy             *FuzzyOptions  `json:"fuzzy,omitempty"`
}

// AdvancedSearchRequest is the body of POST /api/v1/search/advanced.
type AdvancedSearchRequest struct {
	Collection string         `json:"collection,omitempty"`
	Limit      int            `json:"limit,omitempty"`
	Criteria   map[string]any `json:"criteria,omitempty"`
}

// FacetsResponse is the body of GET /api/v1/search/facets.
type FacetsResponse struct {
	Success    bool   `json:"success"`
	Collection string `json:"collection"`
	Facets     any    `json:"facets"`
}

// AutocompleteParams are the query parameters of GET /api/v1/search/autocomplete.
type AutocompleteParams struct {
	Q        string
	Type     string
	Limit    *int
	MinChars *int
}

// FacetsParams are the query parameters of GET /api/v1/search/facets.
type FacetsParams struct {
	Collection string
}

// ServerInterface is the set of HTTP operations.
type ServerInterface interface {
	// (POST /api/v1/search/global)
	GlobalSearch(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/search/autocomplete)
	Autocomplete(w http.ResponseWriter, r *http.Request, params AutocompleteParams)
	// (GET /api/v1/search/facets)
	Facets(w http.ResponseWriter, r *http.Request, params FacetsParams)
	// (POST /api/v1/search/advanced)
	AdvancedSearch(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ServerOptions configures HandlerWithOptions.
type ServerOptions struct {
	BaseRouter       chi.Router
	Middlewares      []func(http.Handler) http.Handler
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
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

// HandlerWithOptions mounts si on the base router.
func HandlerWithOptions(si ServerInterface, options ServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := serverInterfaceWrapper{
		handler:            si,
		handlerMiddlewares: options.Middlewares,
		errorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post("/api/v1/search/global", wrapper.GlobalSearch)
		r.Get("/api/v1/search/autocomplete", wrapper.Autocomplete)
		r.Get("/api/v1/search/facets", wrapper.Facets)
		r.Post("/api/v1/search/advanced", wrapper.AdvancedSearch)
		r.Get("/health", wrapper.HealthCheck)
		r.Get("/metrics", wrapper.Metrics)
	})
	return r
}

type serverInterfaceWrapper struct {
	handler            ServerInterface
	handlerMiddlewares []func(http.Handler) http.Handler
	errorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.Handler) {
	for _, mw := range siw.handlerMiddlewares {
		h = mw(h)
	}
	h.ServeHTTP(w, r)
}

func (siw *serverInterfaceWrapper) GlobalSearch(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.handler.GlobalSearch))
}

func (siw *serverInterfaceWrapper) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.handler.AdvancedSearch))
}

func (siw *serverInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.handler.HealthCheck))
}

func (siw *serverInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.handler.Metrics))
}

func (siw *serverInterfaceWrapper) Autocomplete(w http.ResponseWriter, r *http.Request) {
	var params AutocompleteParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "q", q, &params.Q); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "type", q, &params.Type); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "type", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &params.Limit); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "min_chars", q, &params.MinChars); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "min_chars", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.handler.Autocomplete(w, r, params)
	}))
}

func (siw *serverInterfaceWrapper) Facets(w http.ResponseWriter, r *http.Request) {
	var params FacetsParams

	if err := runtime.BindQueryParameter("form", true, true, "collection", r.URL.Query(), &params.Collection); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "collection", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.handler.Facets(w, r, params)
	}))
}
