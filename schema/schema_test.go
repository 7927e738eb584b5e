package schema_test

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/denisvmedia/sqlbuilder/schema"
)

func TestDDL_DeclaresCompositePrimaryKeyOnOrders(t *testing.T) {
	c := qt.New(t)
	c.Assert(schema.CreateOrders, qt.Contains, "PRIMARY KEY (id, store_id)")
}

func TestDDL_CoversAllFourTables(t *testing.T) {
	c := qt.New(t)
	for _, stmt := range []string{schema.CreateUsers, schema.CreateTransactions, schema.CreateOrders, schema.CreateOrderItems} {
		c.Assert(strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS"), qt.IsTrue)
	}
}

func TestNewExternalID_GeneratesDistinctNonEmptyValues(t *testing.T) {
	c := qt.New(t)

	a := schema.NewExternalID()
	b := schema.NewExternalID()

	c.Assert(a, qt.Not(qt.Equals), "")
	c.Assert(a, qt.Not(qt.Equals), b)
}
