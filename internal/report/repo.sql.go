package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads fact and target aggregates from the warehouse. All
// identifiers come from the fixed adapter table and level enum, never
// from request input; only values travel as bind parameters.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a warehouse repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ FactReader = (*Repository)(nil)
var _ TargetReader = (*Repository)(nil)

// SumFactByTerritory sums the adapter expression over the snapshot dates,
// grouped by the level's territory column.
func (r *Repository) SumFactByTerritory(ctx context.Context, q FactQuery) (map[string]float64, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("report repo not initialised")
	}
	if len(q.Dates) == 0 {
		return map[string]float64{}, nil
	}

	args := []interface{}{q.Dates}
	where := []string{"event_date = ANY($1)"}
	for _, cond := range q.Scope.Conditions() {
		args = append(args, cond.Value)
		where = append(where, fmt.Sprintf("%s = $%d", cond.Column, len(args)))
	}

	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s GROUP BY %s`,
		q.Level.Column(), q.Expr, q.Table, strings.Join(where, " AND "), q.Level.Column())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sum fact %s: %w", q.Table, classifyWarehouseErr(err))
	}
	defer rows.Close()

	sums := make(map[string]float64)
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("sum fact %s: %w", q.Table, err)
		}
		sums[name] = value
	}
	return sums, rows.Err()
}

// classifyWarehouseErr surfaces the fact that a relation is missing,
// which on this warehouse means the nightly load has not created the
// partition yet rather than a code bug.
func classifyWarehouseErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
		return fmt.Errorf("relation not loaded yet: %w", err)
	}
	return err
}

// SumTargetByTerritory sums the monthly plan column for the scope, with
// the adapter's unit-scale factor applied in SQL. Territories without a
// target row are simply absent and coalesce to zero downstream.
func (r *Repository) SumTargetByTerritory(ctx context.Context, q TargetQuery) (map[string]float64, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("report repo not initialised")
	}
	scale := q.Scale
	if scale == 0 {
		scale = 1
	}

	args := []interface{}{q.Month, scale}
	where := []string{"month = $1"}
	for _, cond := range q.Scope.Conditions() {
		args = append(args, cond.Value)
		where = append(where, fmt.Sprintf("%s = $%d", cond.Column, len(args)))
	}

	query := fmt.Sprintf(`SELECT %s, COALESCE(SUM(%s), 0) * $2 FROM %s WHERE %s GROUP BY %s`,
		q.Level.Column(), q.Column, q.Table, strings.Join(where, " AND "), q.Level.Column())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sum target %s: %w", q.Table, classifyWarehouseErr(err))
	}
	defer rows.Close()

	sums := make(map[string]float64)
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("sum target %s: %w", q.Table, err)
		}
		sums[name] = value
	}
	return sums, rows.Err()
}
