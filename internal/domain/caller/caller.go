// Package caller holds the authenticated identity a request runs under.
package caller

import (
	"context"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/role"
)

// Context is the read-only identity of the caller.
type Context struct {
	userID   string
	role     role.Role
	driverID string
}

// New builds a caller. driverID is only meaningful for the driver role.
func New(userID string, r role.Role, driverID string) Context {
	return Context{userID: userID, role: r, driverID: driverID}
}

// UserID returns the authenticated user id.
func (c Context) UserID() string { return c.userID }

// Role returns the caller role.
func (c Context) Role() role.Role { return c.role }

// DriverID returns the linked driver entity id, empty when none.
func (c Context) DriverID() string { return c.driverID }

type ctxKey struct{}

// WithContext stores c in ctx.
func WithContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext extracts the caller stored by WithContext.
func FromContext(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(Context)
	return c, ok
}
