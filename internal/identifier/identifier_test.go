package identifier_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/denisvmedia/sqlbuilder/internal/identifier"
)

func TestValidate_HappyPaths(t *testing.T) {
	for _, s := range []string{"id", "users.id", "`order`", "order_items", "t1"} {
		t.Run(s, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(identifier.Validate(s, "column"), qt.IsNil)
		})
	}
}

func TestValidate_UnhappyPaths(t *testing.T) {
	testCases := []struct {
		name string
		s    string
	}{
		{"empty", ""},
		{"semicolon", "id; DROP TABLE users"},
		{"space", "id name"},
		{"comment", "id--"},
		{"quote", "id'"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := qt.New(t)
			err := identifier.Validate(tc.s, "column")
			c.Assert(err, qt.IsNotNil)
			c.Assert(err, qt.ErrorIs, identifier.ErrInvalid)
		})
	}
}

func TestValidateOperator(t *testing.T) {
	c := qt.New(t)
	allowed := []string{"=", ">", "<"}

	c.Assert(identifier.ValidateOperator(">", allowed, "where"), qt.IsNil)

	err := identifier.ValidateOperator("DROP", allowed, "where")
	c.Assert(err, qt.ErrorIs, identifier.ErrInvalidOperator)
}

func TestValidateDirection(t *testing.T) {
	c := qt.New(t)

	dir, err := identifier.ValidateDirection("asc")
	c.Assert(err, qt.IsNil)
	c.Assert(dir, qt.Equals, "ASC")

	dir, err = identifier.ValidateDirection("Desc")
	c.Assert(err, qt.IsNil)
	c.Assert(dir, qt.Equals, "DESC")

	_, err = identifier.ValidateDirection("sideways")
	c.Assert(err, qt.ErrorIs, identifier.ErrInvalidDirection)
}

func TestValidateNonNegativeInt(t *testing.T) {
	c := qt.New(t)

	n, err := identifier.ValidateNonNegativeInt(0, "limit")
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 0)

	_, err = identifier.ValidateNonNegativeInt(-1, "limit")
	c.Assert(err, qt.ErrorIs, identifier.ErrNegativeInt)
}
