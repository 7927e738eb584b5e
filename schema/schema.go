// Package schema creates and drops the illustrative four-table schema
// (users, transactions, orders, order_items) used by the demo CLI, and
// generates external IDs for seed rows; inserting the seed rows themselves
// is left to the caller. It mirrors the teacher's
// registry/commonsql/*_test.go setupTestRegistrySet fixture pattern.
package schema

import (
	"context"

	"github.com/google/uuid"
	errxtrace "github.com/go-extras/errx/stacktrace"
	"github.com/jmoiron/sqlx"
)

const (
	CreateUsers = `CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		external_id VARCHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		status VARCHAR(32) NOT NULL,
		PRIMARY KEY (id)
	) ENGINE=InnoDB`

	CreateTransactions = `CREATE TABLE IF NOT EXISTS transactions (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		status VARCHAR(32) NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		PRIMARY KEY (id),
		KEY idx_transactions_user_id (user_id)
	) ENGINE=InnoDB`

	// orders is keyed on (id, store_id) so scenario 5's composite foreign
	// key has a real composite primary key to reference.
	CreateOrders = `CREATE TABLE IF NOT EXISTS orders (
		id BIGINT UNSIGNED NOT NULL,
		store_id BIGINT UNSIGNED NOT NULL,
		placed_by BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (id, store_id)
	) ENGINE=InnoDB`

	CreateOrderItems = `CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		order_id BIGINT UNSIGNED NOT NULL,
		store_id BIGINT UNSIGNED NOT NULL,
		sku VARCHAR(64) NOT NULL,
		quantity INT NOT NULL,
		PRIMARY KEY (id),
		KEY idx_order_items_order (order_id, store_id)
	) ENGINE=InnoDB`
)

// CreateAll runs every CREATE TABLE statement, in dependency order.
func CreateAll(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range []string{CreateUsers, CreateTransactions, CreateOrders, CreateOrderItems} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errxtrace.Wrap("failed to create schema", err)
		}
	}
	return nil
}

// DropAll drops every table created by CreateAll, in reverse dependency
// order.
func DropAll(ctx context.Context, db *sqlx.DB) error {
	for _, table := range []string{"order_items", "orders", "transactions", "users"} {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return errxtrace.Wrap("failed to drop schema table", err)
		}
	}
	return nil
}

// NewExternalID generates a fresh identifier for seed data, the same
// uuid.New().String() convention the teacher's commonsql.generateID uses
// for primary-key-adjacent identifiers.
func NewExternalID() string {
	return uuid.New().String()
}
