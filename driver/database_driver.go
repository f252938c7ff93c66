package driver

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabaseDriver stores normalization rules in Postgres.
type DatabaseDriver struct {
	pool *pgxpool.Pool
}

func NewDatabaseDriver(ctx context.Context, databaseURL string) (*DatabaseDriver, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &DriverError{Op: "NewDatabaseDriver", Err: err.Error()}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &DriverError{Op: "NewDatabaseDriver", Err: "ping failed: " + err.Error()}
	}
	return &DatabaseDriver{pool: pool}, nil
}

// EnsureSchema creates the rules table and indexes, and seeds example
// rules when the table is empty.
func (d *DatabaseDriver) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS normalization_rules (
			id SERIAL PRIMARY KEY,
			pattern VARCHAR(500) NOT NULL,
			replacement VARCHAR(500) NOT NULL,
			enabled BOOLEAN DEFAULT true,
			order_index INTEGER NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_normalization_rules_order
			ON normalization_rules(order_index)
			WHERE enabled = true`,
		`CREATE INDEX IF NOT EXISTS idx_normalization_rules_enabled
			ON normalization_rules(enabled)`,
	}

	for _, stmt := range statements {
		if _, err := d.pool.Exec(ctx, stmt); err != nil {
			return &DriverError{Op: "EnsureSchema", Err: err.Error()}
		}
	}

	var count int64
	if err := d.pool.QueryRow(ctx, `SELECT COUNT(*) FROM normalization_rules`).Scan(&count); err != nil {
		return &DriverError{Op: "EnsureSchema", Err: err.Error()}
	}
	if count == 0 {
		seed := `INSERT INTO normalization_rules (pattern, replacement, enabled, order_index) VALUES
			('https://example\.com/video/(\d+).*', 'https://example.com/video/$1', true, 1),
			('https://blog\.example\.com/(\d+).*', 'https://blog.example.com/$1', true, 2),
			('https://shop\.example\.com/product/([^/?#]+).*', 'https://shop.example.com/product/$1', true, 3)`
		if _, err := d.pool.Exec(ctx, seed); err != nil {
			return &DriverError{Op: "EnsureSchema", Err: err.Error()}
		}
	}

	return nil
}

func (d *DatabaseDriver) ListRules(ctx context.Context, enabledOnly bool) ([]RuleModel, error) {
	query := `
		SELECT id, pattern, replacement, enabled, order_index, created_at, updated_at
		FROM normalization_rules
		ORDER BY order_index ASC, id ASC`
	if enabledOnly {
		query = `
			SELECT id, pattern, replacement, enabled, order_index, created_at, updated_at
			FROM normalization_rules
			WHERE enabled = true
			ORDER BY order_index ASC`
	}

	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, &DriverError{Op: "ListRules", Err: err.Error()}
	}
	defer rows.Close()

	var rules []RuleModel
	for rows.Next() {
		var rule RuleModel
		if err := rows.Scan(&rule.ID, &rule.Pattern, &rule.Replacement, &rule.Enabled, &rule.OrderIndex, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, &DriverError{Op: "ListRules", Err: err.Error()}
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, &DriverError{Op: "ListRules", Err: err.Error()}
	}

	return rules, nil
}

func (d *DatabaseDriver) CreateRule(ctx context.Context, pattern, replacement string, enabled bool, orderIndex *int32) (*RuleModel, error) {
	index := int32(0)
	if orderIndex != nil {
		index = *orderIndex
	} else {
		// Unspecified order puts the rule last.
		var maxOrder *int32
		if err := d.pool.QueryRow(ctx, `SELECT MAX(order_index) FROM normalization_rules`).Scan(&maxOrder); err != nil {
			return nil, &DriverError{Op: "CreateRule", Err: err.Error()}
		}
		if maxOrder != nil {
			index = *maxOrder + 1
		} else {
			index = 1
		}
	}

	var rule RuleModel
	err := d.pool.QueryRow(ctx, `
		INSERT INTO normalization_rules (pattern, replacement, enabled, order_index)
		VALUES ($1, $2, $3, $4)
		RETURNING id, pattern, replacement, enabled, order_index, created_at, updated_at`,
		pattern, replacement, enabled, index,
	).Scan(&rule.ID, &rule.Pattern, &rule.Replacement, &rule.Enabled, &rule.OrderIndex, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, &DriverError{Op: "CreateRule", Err: err.Error()}
	}

	return &rule, nil
}

func (d *DatabaseDriver) UpdateRule(ctx context.Context, id int32, pattern, replacement *string, enabled *bool, orderIndex *int32) (*RuleModel, error) {
	var current RuleModel
	err := d.pool.QueryRow(ctx, `
		SELECT id, pattern, replacement, enabled, order_index, created_at, updated_at
		FROM normalization_rules WHERE id = $1`, id,
	).Scan(&current.ID, &current.Pattern, &current.Replacement, &current.Enabled, &current.OrderIndex, &current.CreatedAt, &current.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &DriverError{Op: "UpdateRule", Err: err.Error()}
	}

	if pattern != nil {
		current.Pattern = *pattern
	}
	if replacement != nil {
		current.Replacement = *replacement
	}
	if enabled != nil {
		current.Enabled = *enabled
	}
	if orderIndex != nil {
		current.OrderIndex = *orderIndex
	}

	var updated RuleModel
	err = d.pool.QueryRow(ctx, `
		UPDATE normalization_rules
		SET pattern = $1, replacement = $2, enabled = $3, order_index = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id, pattern, replacement, enabled, order_index, created_at, updated_at`,
		current.Pattern, current.Replacement, current.Enabled, current.OrderIndex, id,
	).Scan(&updated.ID, &updated.Pattern, &updated.Replacement, &updated.Enabled, &updated.OrderIndex, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		return nil, &DriverError{Op: "UpdateRule", Err: err.Error()}
	}

	return &updated, nil
}

func (d *DatabaseDriver) DeleteRule(ctx context.Context, id int32) (bool, error) {
	tag, err := d.pool.Exec(ctx, `DELETE FROM normalization_rules WHERE id = $1`, id)
	if err != nil {
		return false, &DriverError{Op: "DeleteRule", Err: err.Error()}
	}
	return tag.RowsAffected() > 0, nil
}

// Close releases the connection pool.
func (d *DatabaseDriver) Close() {
	d.pool.Close()
}
