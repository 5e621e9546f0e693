package services

import (
	"errors"
	"fmt"
)

// ErrMalformedFile marks whole-batch-fatal conditions: the upload can't be
// read as a spreadsheet at all, or it has no usable header. Everything else
// that goes wrong during an import is confined to a single row.
var ErrMalformedFile = errors.New("malformed import file")

type RowErrorKind string

const (
	RowErrMissingIdentity RowErrorKind = "missing_identity"
	RowErrPersistence     RowErrorKind = "persistence_failure"
)

// RowError is a failure confined to one spreadsheet row. Row is the
// spreadsheet row number (the header is row 1, the first data row is 2) so
// the user can open the file and fix the exact line.
type RowError struct {
	Row     int
	Kind    RowErrorKind
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

func missingIdentityErr(row int, msg string) *RowError {
	return &RowError{Row: row, Kind: RowErrMissingIdentity, Message: msg}
}

func persistenceErr(row int, err error) *RowError {
	return &RowError{Row: row, Kind: RowErrPersistence, Message: err.Error()}
}
