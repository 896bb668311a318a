package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// querier is the subset of *sql.DB and *sql.Tx used by the table helpers.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}

// formatNullTime maps a nil time to SQL NULL.
func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// exists reports whether a row with the given key exists in table.
func exists(q querier, table, column, value string) (bool, error) {
	var one int
	err := q.QueryRow(
		fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? LIMIT 1", table, column), value,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s existence: %w", table, err)
	}
	return true, nil
}

// buildWhere translates a filter into a WHERE clause using only the
// columns listed in allowed. Unknown keys and non-scalar values yield
// ErrInvalidFilter. Keys are sorted so that the generated SQL is stable.
func buildWhere(filter types.Filter, allowed map[string]bool) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		if !allowed[k] {
			return "", nil, fmt.Errorf("%w: unknown field %q", types.ErrInvalidFilter, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		switch v := filter[k].(type) {
		case string, int, int64, float64:
			args = append(args, v)
		case bool:
			args = append(args, boolToInt(v))
		default:
			return "", nil, fmt.Errorf("%w: unsupported value for %q", types.ErrInvalidFilter, k)
		}
		clauses = append(clauses, k+" = ?")
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
