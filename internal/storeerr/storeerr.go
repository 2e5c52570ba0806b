// Package storeerr describes database driver errors.
//
// Storage failures are never classified for handling: every one of them
// becomes a 503 envelope. What this package provides is the "raw error"
// payload forwarded to the caller, built from the MongoDB driver error types
// so that the client sees the same name, code and message the driver saw.
package storeerr
