// Package identifier validates the structural strings (table names, column
// names, aggregate aliases, sort directions, limits) that the query builder
// splices directly into SQL text. Every such string must pass through here
// before it reaches the compiler; nothing else in this module is allowed to
// interpolate a caller-supplied string without going through this gate
// first.
package identifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-extras/errx"
	errxtrace "github.com/go-extras/errx/stacktrace"
	"github.com/jellydator/validation"
)

var (
	ErrInvalid          = errx.NewSentinel("invalid identifier")
	ErrInvalidOperator  = errx.NewSentinel("invalid operator")
	ErrInvalidDirection = errx.NewSentinel("invalid sort direction")
	ErrNegativeInt      = errx.NewSentinel("value must be non-negative")
)

// pattern matches the character class spec.md §4.1 allows for a structural
// identifier: letters, digits, underscore, dot (schema.table / table.column)
// and backtick (pre-quoted names). No spaces, parens, quotes, semicolons or
// comment markers.
var pattern = regexp.MustCompile("^[A-Za-z0-9_.`]+$")

type identRule struct{}

func (identRule) Validate(value any) error {
	s, _ := value.(string)
	if s == "" || !pattern.MatchString(s) {
		return validation.NewError("validation_invalid_identifier", "must be a non-empty structural identifier")
	}
	return nil
}

// Rule is exported so callers building their own jellydator/validation
// struct rules (e.g. for a config or relation-spec type) can reuse the same
// character-class check this package applies internally.
var Rule validation.Rule = identRule{}

// Validate checks that s is safe to splice into SQL as a table or column
// name. context labels the call site (e.g. "WHERE", "ORDER BY", "SEARCH")
// for the resulting error.
func Validate(s, context string) error {
	if err := validation.Validate(s, Rule); err != nil {
		return errxtrace.Classify(ErrInvalid, errx.Attrs("context", context, "value", s))
	}
	return nil
}

// ValidateOperator checks that op is a member of allowed.
func ValidateOperator(op string, allowed []string, context string) error {
	for _, a := range allowed {
		if op == a {
			return nil
		}
	}
	return errxtrace.Classify(ErrInvalidOperator, errx.Attrs("context", context, "operator", op))
}

// ValidateDirection normalizes and validates an ORDER BY direction.
func ValidateDirection(d string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(d)) {
	case "ASC":
		return "ASC", nil
	case "DESC":
		return "DESC", nil
	default:
		return "", errxtrace.Classify(ErrInvalidDirection, errx.Attrs("direction", d))
	}
}

// ValidateNonNegativeInt checks that n is zero or positive, as required for
// LIMIT/OFFSET and chunk page sizes.
func ValidateNonNegativeInt(n int, context string) (int, error) {
	if n < 0 {
		return 0, errxtrace.Classify(ErrNegativeInt, errx.Attrs("context", context, "value", strconv.Itoa(n)))
	}
	return n, nil
}
