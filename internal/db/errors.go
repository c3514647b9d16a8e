package db

import "errors"

var (
	// ErrKeyNotFound is returned by Get for an absent or expired key.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIndexNotFound is returned when dropping an unknown index.
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrIndexExists is returned when creating an index that is already there.
	ErrIndexExists = errors.New("db: index already exists")
)

// Command names carried by Error.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpAggregate   = "FT.AGGREGATE"
	OpJSONSet     = "JSON.SET"
	OpGet         = "GET"
	OpSet         = "SET"
)

// Error ties a store failure to the command that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "db " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
