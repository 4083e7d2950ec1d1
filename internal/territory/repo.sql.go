package territory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// referenceTable is the authoritative kabupaten-to-branch mapping, loaded
// by the warehouse pipeline. One row per kabupaten with the full
// containment chain, so branch membership is never re-derived per query.
const referenceTable = "territory_reference"

// Repository reads the territory reference data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a territory repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListNodes returns the authoritative set of node names at the given
// level inside the scope, in reference order. Nodes with no fact rows
// still appear here; rollups left-join against this set.
func (r *Repository) ListNodes(ctx context.Context, level Level, scope Scope) ([]Node, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("territory repo not initialised")
	}
	if !level.Valid() {
		return nil, fmt.Errorf("territory: unknown level %q", level)
	}

	where, args := scopeClause(scope)
	var query string
	if level == LevelRegional {
		query = fmt.Sprintf(
			`SELECT regional, '' FROM %s WHERE %s GROUP BY regional ORDER BY regional`,
			referenceTable, where)
	} else {
		query = fmt.Sprintf(
			`SELECT %s, MIN(%s) AS parent FROM %s WHERE %s GROUP BY %s ORDER BY MIN(sort_order), %s`,
			level.Column(), level.Parent().Column(), referenceTable, where, level.Column(), level.Column())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		node := Node{Level: level}
		if err := rows.Scan(&node.Name, &node.Parent); err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

// NodeExists reports whether name is registered at level under the scope.
func (r *Repository) NodeExists(ctx context.Context, level Level, scope Scope, name string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, fmt.Errorf("territory repo not initialised")
	}
	if !level.Valid() {
		return false, fmt.Errorf("territory: unknown level %q", level)
	}

	where, args := scopeClause(scope)
	args = append(args, name)
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s AND %s = $%d)`,
		referenceTable, where, level.Column(), len(args))

	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// scopeClause renders the AND-composed equality predicates for a scope.
// Column identifiers come from the fixed Level enum, never from input.
func scopeClause(scope Scope) (string, []interface{}) {
	conds := scope.Conditions()
	parts := make([]string, 0, len(conds))
	args := make([]interface{}, 0, len(conds))
	for _, cond := range conds {
		args = append(args, cond.Value)
		parts = append(parts, fmt.Sprintf("%s = $%d", cond.Column, len(args)))
	}
	return strings.Join(parts, " AND "), args
}
