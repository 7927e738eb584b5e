// Command qbdemo runs the end-to-end scenarios the query builder was built
// against against a real MySQL connection: it creates the illustrative
// schema, seeds a handful of rows, then walks through grouped predicates,
// correlated EXISTS, aggregate-alias filters, composite-key hydration, and
// keyset chunking, printing the results of each step (and, for scenarios 1,
// 2 and 4, the compiled SQL and parameters first).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/denisvmedia/sqlbuilder/config"
	"github.com/denisvmedia/sqlbuilder/executor"
	"github.com/denisvmedia/sqlbuilder/querybuilder"
	"github.com/denisvmedia/sqlbuilder/schema"
)

var dropFirst bool

var rootCmd = &cobra.Command{
	Use:   "qbdemo",
	Short: "Run the query builder's end-to-end scenarios against MySQL",
	Long: `qbdemo connects to a MySQL-compatible database (configured via the
QB_HOST/QB_PORT/QB_USER/QB_PASSWORD/QB_DATABASE environment variables),
(re)creates the illustrative users/transactions/orders/order_items schema,
seeds it with example rows, and runs each of the builder's end-to-end
scenarios in turn.`,
	RunE: run,
}

func main() {
	rootCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "drop the schema before recreating it")
	if err := rootCmd.Execute(); err != nil {
		slog.Error("qbdemo failed", "error", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := config.Open(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if dropFirst {
		if err := schema.DropAll(ctx, db); err != nil {
			return fmt.Errorf("dropping schema: %w", err)
		}
	}
	if err := schema.CreateAll(ctx, db); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	exec := executor.NewLimited(executor.NewPool(db), cfg.QueueLimit)

	if err := seed(ctx, exec); err != nil {
		return fmt.Errorf("seeding data: %w", err)
	}

	scenarios := []struct {
		name string
		run  func(context.Context, executor.Executor) error
	}{
		{"1. ordered/limited select", scenarioOrderedSelect},
		{"2. grouped predicate", scenarioGroupedPredicate},
		{"3. correlated existence", scenarioCorrelatedExistence},
		{"4. aggregate-alias filter", scenarioAggregateAliasFilter},
		{"5. composite-key hydration", scenarioCompositeKeyHydration},
		{"6. keyset chunking", scenarioChunking},
	}

	for _, s := range scenarios {
		fmt.Println("===", s.name, "===")
		if err := s.run(ctx, exec); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		fmt.Println()
	}

	return nil
}

func seed(ctx context.Context, exec executor.Executor) error {
	users, err := querybuilder.New("users", exec)
	if err != nil {
		return err
	}
	_, err = users.BulkInsert([]map[string]any{
		{"external_id": schema.NewExternalID(), "name": "John", "status": "active"},
		{"external_id": schema.NewExternalID(), "name": "Jane", "status": "active"},
		{"external_id": schema.NewExternalID(), "name": "Ada", "status": "inactive"},
	}).Execute(ctx)
	if err != nil {
		return err
	}

	rows, err := mustBuilder("users", exec).Select("id", "name").Get(ctx)
	if err != nil {
		return err
	}
	var johnID, janeID int64
	for _, r := range rows {
		switch r["name"] {
		case "John":
			johnID = toInt64(r["id"])
		case "Jane":
			janeID = toInt64(r["id"])
		}
	}

	tx, err := querybuilder.New("transactions", exec)
	if err != nil {
		return err
	}
	_, err = tx.BulkInsert([]map[string]any{
		{"user_id": johnID, "status": "completed", "amount": "6000.00"},
		{"user_id": johnID, "status": "completed", "amount": "5500.00"},
		{"user_id": janeID, "status": "pending", "amount": "100.00"},
	}).Execute(ctx)
	if err != nil {
		return err
	}

	orders, err := querybuilder.New("orders", exec)
	if err != nil {
		return err
	}
	_, err = orders.BulkInsert([]map[string]any{
		{"id": 1, "store_id": 1, "placed_by": johnID},
		{"id": 2, "store_id": 1, "placed_by": janeID},
	}).Execute(ctx)
	if err != nil {
		return err
	}

	items, err := querybuilder.New("order_items", exec)
	if err != nil {
		return err
	}
	_, err = items.BulkInsert([]map[string]any{
		{"order_id": 1, "store_id": 1, "sku": "WIDGET-1", "quantity": 2},
		{"order_id": 1, "store_id": 1, "sku": "WIDGET-2", "quantity": 1},
		{"order_id": 2, "store_id": 1, "sku": "WIDGET-1", "quantity": 5},
	}).Execute(ctx)
	return err
}

func scenarioOrderedSelect(ctx context.Context, exec executor.Executor) error {
	b := mustBuilder("users", exec)
	b.Select("id", "name").Where("status", "active").OrderBy("name", "ASC").Limit(2)
	sqlText, err := b.ToSQL()
	if err != nil {
		return err
	}
	fmt.Println(sqlText, b.GetParameters())

	b2 := mustBuilder("users", exec)
	rows, err := b2.Select("id", "name").Where("status", "active").OrderBy("name", "ASC").Limit(2).Get(ctx)
	if err != nil {
		return err
	}
	fmt.Println(rows)
	return nil
}

func scenarioGroupedPredicate(ctx context.Context, exec executor.Executor) error {
	b := mustBuilder("users", exec)
	b.Group(func(q *querybuilder.Builder) {
		q.Where("name", "John").OrWhere("name", "Jane")
	}).Where("status", "active")
	sqlText, err := b.ToSQL()
	if err != nil {
		return err
	}
	fmt.Println(sqlText, b.GetParameters())

	b2 := mustBuilder("users", exec)
	rows, err := b2.Group(func(q *querybuilder.Builder) {
		q.Where("name", "John").OrWhere("name", "Jane")
	}).Where("status", "active").Get(ctx)
	if err != nil {
		return err
	}
	fmt.Println(rows)
	return nil
}

func scenarioCorrelatedExistence(ctx context.Context, exec executor.Executor) error {
	b := mustBuilder("users", exec)
	rows, err := b.WhereHas("transactions", "user_id", "id", func(q *querybuilder.Builder) {
		q.Where("status", "completed")
	}).Get(ctx)
	if err != nil {
		return err
	}
	fmt.Println(rows)
	return nil
}

func scenarioAggregateAliasFilter(ctx context.Context, exec executor.Executor) error {
	b := mustBuilder("users", exec)
	b.WithSum("transactions", "user_id", "id", "amount", "total").WhereOp("total", ">", 10000)
	sqlText, err := b.ToSQL()
	if err != nil {
		return err
	}
	fmt.Println(sqlText, b.GetParameters())

	b2 := mustBuilder("users", exec)
	rows, err := b2.WithSum("transactions", "user_id", "id", "amount", "total").WhereOp("total", ">", 10000).Get(ctx)
	if err != nil {
		return err
	}
	fmt.Println(rows)
	return nil
}

func scenarioCompositeKeyHydration(ctx context.Context, exec executor.Executor) error {
	b := mustBuilder("orders", exec)
	rows, err := b.WithManyKeys("order_items", []string{"order_id", "store_id"}, []string{"id", "store_id"}).Get(ctx)
	if err != nil {
		return err
	}
	fmt.Println(rows)
	return nil
}

func scenarioChunking(ctx context.Context, exec executor.Executor) error {
	b := mustBuilder("users", exec)
	pageSizes := []int{}
	err := b.ChunkByID(ctx, 2, "id", func(rows []executor.Row, page int) querybuilder.ChunkSignal {
		pageSizes = append(pageSizes, len(rows))
		return querybuilder.ChunkContinue
	})
	if err != nil {
		return err
	}
	fmt.Println("page sizes:", pageSizes)
	return nil
}

func mustBuilder(table string, exec executor.Executor) *querybuilder.Builder {
	b, err := querybuilder.New(table, exec)
	if err != nil {
		panic(err)
	}
	return b
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
