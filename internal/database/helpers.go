package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"forum-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// notDeleted is the single "non-deleted rows" predicate used by every read and
// write in this package. alias is the table name or its alias in the query.
func notDeleted(alias string) string {
	return alias + ".deleted IS NULL"
}

// Mutable columns per table. Anything else in an update payload is rejected
// with models.ErrKeyImmutable.
var (
	topicMutableColumns = columnSet("title")
	postMutableColumns  = columnSet("title", "body")
	userMutableColumns  = columnSet("signature", "avatar")
)

func columnSet(columns ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		set[c] = struct{}{}
	}
	return set
}

// buildUpdateQuery validates fields against allowed and renders an UPDATE for a
// single non-deleted row. Columns are sorted so the query text is stable.
func buildUpdateQuery(table string, allowed map[string]struct{}, id int64, fields map[string]any) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, models.InvalidInputf("no fields to update")
	}

	columns := make([]string, 0, len(fields))
	for column := range fields {
		if _, ok := allowed[column]; !ok {
			return "", nil, fmt.Errorf("%w: %s.%s", models.ErrKeyImmutable, table, column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, column := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, i+1))
		args = append(args, fields[column])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND %s",
		table, strings.Join(assignments, ", "), len(args), notDeleted(table))
	return query, args, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err)
}

// mapConstraintError translates constraint violations into model errors.
// It returns nil when err is not a constraint violation.
func mapConstraintError(err error, alreadyExists error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return alreadyExists
	case pgForeignKeyViolation:
		return models.InvalidInputf("referenced record does not exist (%s)", pgErr.ConstraintName)
	}
	return nil
}
