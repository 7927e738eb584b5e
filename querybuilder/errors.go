package querybuilder

import (
	"github.com/go-extras/errx"

	"github.com/denisvmedia/sqlbuilder/internal/identifier"
)

// Sentinel errors returned by the builder's own argument checks and
// emission invariants. Identifier/operator/direction/limit failures are
// re-exported from internal/identifier so callers never need to import an
// internal package to compare with errors.Is.
var (
	ErrKeyLengthMismatch    = errx.NewSentinel("composite key arrays must have equal, non-zero length")
	ErrMissingCallback      = errx.NewSentinel("callback is required")
	ErrEmptyBulkInsert      = errx.NewSentinel("bulk insert requires at least one row")
	ErrBulkColumnMismatch   = errx.NewSentinel("all rows in a bulk insert must share the same set of columns")
	ErrMissingTable         = errx.NewSentinel("target table is required")
	ErrUpsertMissingUpdate  = errx.NewSentinel("upsert requires a non-empty update payload")
	ErrEmissionInvariant    = errx.NewSentinel("sql emitter invariant violated")
	ErrEmptyRaw             = errx.NewSentinel("raw expression must not be empty")
	ErrEmptySearchColumns   = errx.NewSentinel("search requires at least one column")
	ErrUnsafeJoinCondition  = errx.NewSentinel("join condition contains a disallowed token")
	ErrEmptyJoinCondition   = errx.NewSentinel("join condition must not be empty")
	ErrInvalidChunkSize     = errx.NewSentinel("chunk size must be greater than zero")
	ErrNotMutation          = errx.NewSentinel("execute requires a pending insert, update, upsert or delete")
)

var (
	ErrInvalidIdentifier = identifier.ErrInvalid
	ErrInvalidOperator   = identifier.ErrInvalidOperator
	ErrInvalidDirection  = identifier.ErrInvalidDirection
	ErrNegativeLimit     = identifier.ErrNegativeInt
)
