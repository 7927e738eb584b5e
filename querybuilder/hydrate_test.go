package querybuilder_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	qt "github.com/frankban/quicktest"

	"github.com/denisvmedia/sqlbuilder/executor"
	"github.com/denisvmedia/sqlbuilder/querybuilder"
)

// TestScenario5_CompositeKeyHydration mirrors spec scenario 5.
func TestScenario5_CompositeKeyHydration(t *testing.T) {
	c := qt.New(t)

	exec := &fakeExecutor{tables: map[string][]executor.Row{
		"orders": {
			{"id": int64(1), "store_id": int64(1)},
			{"id": int64(2), "store_id": int64(1)},
		},
		"order_items": {
			{"id": int64(1), "order_id": int64(1), "store_id": int64(1), "sku": "WIDGET-1"},
			{"id": int64(2), "order_id": int64(1), "store_id": int64(1), "sku": "WIDGET-2"},
			{"id": int64(3), "order_id": int64(2), "store_id": int64(1), "sku": "WIDGET-1"},
		},
	}}

	b, err := querybuilder.New("orders", exec)
	c.Assert(err, qt.IsNil)

	rows, err := b.WithManyKeys("order_items", []string{"order_id", "store_id"}, []string{"id", "store_id"}).Get(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 2)

	byOrderID := map[int64][]executor.Row{}
	for _, r := range rows {
		items, ok := r["order_items"].([]executor.Row)
		c.Assert(ok, qt.IsTrue)
		byOrderID[r["id"].(int64)] = items
	}

	c.Assert(byOrderID[1], qt.HasLen, 2)
	c.Assert(byOrderID[2], qt.HasLen, 1)
	c.Assert(byOrderID[2][0]["sku"], qt.Equals, "WIDGET-1")
}

// TestScenario5_CompositeKeyHydration_OrderIndependent asserts the same
// shape as TestScenario5_CompositeKeyHydration but via cmp.Diff with
// cmpopts.SortSlices, since the hydrator groups children in fetch order and
// nothing in its contract promises a particular order within a parent's
// attached slice.
func TestScenario5_CompositeKeyHydration_OrderIndependent(t *testing.T) {
	c := qt.New(t)

	exec := &fakeExecutor{tables: map[string][]executor.Row{
		"orders": {
			{"id": int64(1), "store_id": int64(1)},
		},
		"order_items": {
			{"id": int64(2), "order_id": int64(1), "store_id": int64(1), "sku": "WIDGET-2"},
			{"id": int64(1), "order_id": int64(1), "store_id": int64(1), "sku": "WIDGET-1"},
		},
	}}

	b, err := querybuilder.New("orders", exec)
	c.Assert(err, qt.IsNil)

	rows, err := b.WithManyKeys("order_items", []string{"order_id", "store_id"}, []string{"id", "store_id"}).Get(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 1)

	items := rows[0]["order_items"].([]executor.Row)
	want := []executor.Row{
		{"id": int64(1), "order_id": int64(1), "store_id": int64(1), "sku": "WIDGET-1"},
		{"id": int64(2), "order_id": int64(1), "store_id": int64(1), "sku": "WIDGET-2"},
	}

	less := func(a, b executor.Row) bool { return a["id"].(int64) < b["id"].(int64) }
	if diff := cmp.Diff(want, items, cmpopts.SortSlices(less)); diff != "" {
		t.Fatalf("order_items mismatch (-want +got):\n%s", diff)
	}
}

func TestHasMany_NoMatchingChildren_AttachesEmptySlice(t *testing.T) {
	c := qt.New(t)

	exec := &fakeExecutor{tables: map[string][]executor.Row{
		"orders":      {{"id": int64(1), "store_id": int64(1)}},
		"order_items": {},
	}}

	b, err := querybuilder.New("orders", exec)
	c.Assert(err, qt.IsNil)

	rows, err := b.WithManyKeys("order_items", []string{"order_id", "store_id"}, []string{"id", "store_id"}).Get(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 1)

	items, ok := rows[0]["order_items"].([]executor.Row)
	c.Assert(ok, qt.IsTrue)
	c.Assert(items, qt.HasLen, 0)
}

func TestHasOne_NoMatch_AttachesNil(t *testing.T) {
	c := qt.New(t)

	exec := &fakeExecutor{tables: map[string][]executor.Row{
		"users":        {{"id": int64(1), "name": "John"}},
		"transactions": {},
	}}

	b, err := querybuilder.New("users", exec)
	c.Assert(err, qt.IsNil)

	rows, err := b.WithOne("transactions", "user_id", "id").Get(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(rows[0]["transactions"], qt.IsNil)
}
