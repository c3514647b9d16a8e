package globalsearch

import "github.com/ravi-m-fleetenable/global-search/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation        = domain.ErrValidation
	ErrUnknownCollection = domain.ErrUnknownCollection
	ErrForbidden         = domain.ErrForbidden
	ErrUnauthenticated   = domain.ErrUnauthenticated
)
