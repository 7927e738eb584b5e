package querybuilder

// Raw marks a string that must be spliced into SQL verbatim instead of
// being bound as a `?` parameter. It exists for column-to-column
// comparisons (WhereColumn) and trusted formulae the caller has already
// validated; a Raw value bypasses all parameterization, so it must never be
// built from externally supplied data.
type Raw struct {
	expr string
}

// NewRaw constructs a Raw marker. The only failure mode is an empty
// expression.
func NewRaw(expr string) (Raw, error) {
	if expr == "" {
		return Raw{}, ErrEmptyRaw
	}
	return Raw{expr: expr}, nil
}

// MustRaw is NewRaw for statically-known literals where a constructor error
// return would just be dead code at the call site (e.g.
// MustRaw("updated_at = NOW()")). It panics if expr is empty.
func MustRaw(expr string) Raw {
	r, err := NewRaw(expr)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Raw) String() string { return r.expr }
