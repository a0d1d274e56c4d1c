package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapConstraintError turns driver constraint violations into domain errors.
// A unique violation can only come from the habit name; a foreign key
// violation means the referenced habit is gone.
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.ErrDuplicateName
		case pgForeignKeyViolation:
			return domain.ErrHabitNotFound
		}
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return domain.ErrDuplicateName
		case pgForeignKeyViolation:
			return domain.ErrHabitNotFound
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return domain.ErrDuplicateName
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return domain.ErrHabitNotFound
		}
	}

	return err
}
