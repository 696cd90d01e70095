package schema

import (
	"database/sql"
	"fmt"
)

// Statements are idempotent and safe to run on every service start.
var Statements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		restaurant_name TEXT NOT NULL DEFAULT '',
		confirmation_token TEXT,
		confirmed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL UNIQUE,
		restaurant_name TEXT NOT NULL DEFAULT '',
		restaurant_description TEXT,
		logo_url TEXT,
		subscription_plan TEXT NOT NULL DEFAULT 'basic',
		menu_theme TEXT NOT NULL DEFAULT 'default',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		name TEXT NOT NULL,
		sort_order INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
		name TEXT NOT NULL,
		description TEXT,
		price NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (price >= 0),
		available BOOLEAN NOT NULL DEFAULT true,
		image_url TEXT,
		sort_order INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS restaurant_tables (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		table_number INT NOT NULL,
		qr_code_token TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, table_number)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		restaurant_user_id UUID NOT NULL,
		table_id UUID REFERENCES restaurant_tables(id) ON DELETE SET NULL,
		table_number INT,
		status TEXT NOT NULL DEFAULT 'pending',
		payment_method TEXT NOT NULL DEFAULT 'cash',
		customer_note TEXT,
		total NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id UUID REFERENCES products(id) ON DELETE SET NULL,
		product_name TEXT NOT NULL,
		quantity INT NOT NULL CHECK (quantity >= 1),
		price NUMERIC(10,2) NOT NULL DEFAULT 0,
		line_no INT NOT NULL DEFAULT 0
	)`,
	`ALTER TABLE IF EXISTS order_items ADD COLUMN IF NOT EXISTS line_no INT NOT NULL DEFAULT 0`,
	`CREATE INDEX IF NOT EXISTS orders_owner_created_idx ON orders (restaurant_user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS products_owner_sort_idx ON products (user_id, sort_order)`,
	`CREATE INDEX IF NOT EXISTS categories_owner_sort_idx ON categories (user_id, sort_order)`,
}

func EnsureSchema(db *sql.DB) error {
	for _, stmt := range Statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}
