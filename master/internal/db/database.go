package db

import (
	"github.com/pkg/errors"
)

// ErrNotFound is returned if nothing is found.
var ErrNotFound = errors.New("not found")

// ErrDuplicateRecord is returned when trying to create a row that already exists.
var ErrDuplicateRecord = errors.New("row already exists")

// Postgres error codes, from https://www.postgresql.org/docs/current/errcodes-appendix.html.
const (
	// CodeUniqueViolation is an insert or update that violates a uniqueness constraint.
	CodeUniqueViolation = "23505"
	// CodeForeignKeyViolation is an insert or update that references a missing row.
	CodeForeignKeyViolation = "23503"
)
