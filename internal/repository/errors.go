// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between failure scenarios
// without inspecting driver errors.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row.  Ownership
// scoped lookups also return it when the row belongs to someone else.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique key.
var ErrDuplicate = errors.New("duplicate record")

// ErrConflict is returned when a delete cannot be performed because
// dependent records exist, such as deleting a show that still has
// bookings.
var ErrConflict = errors.New("conflict")

// ErrTransientConflict signals a lock wait timeout or a deadlock.  The
// transaction was rolled back and may be retried as is.
var ErrTransientConflict = errors.New("transient conflict")

// MySQL server error numbers handled explicitly.
const (
	mysqlDuplicateEntry   = 1062
	mysqlLockWaitTimeout  = 1205
	mysqlDeadlock         = 1213
	mysqlRowIsReferenced  = 1451
	mysqlRowIsReferenced2 = 1217
	mysqlNoReferencedRow  = 1452
)

// mapError converts driver errors into the package sentinels.  Errors
// it does not recognise are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlLockWaitTimeout, mysqlDeadlock:
			return fmt.Errorf("%w: %s", ErrTransientConflict, me.Message)
		case mysqlDuplicateEntry:
			return fmt.Errorf("%w: %s", ErrDuplicate, me.Message)
		case mysqlRowIsReferenced, mysqlRowIsReferenced2:
			return fmt.Errorf("%w: %s", ErrConflict, me.Message)
		case mysqlNoReferencedRow:
			return fmt.Errorf("%w: referenced row missing", ErrNotFound)
		}
	}
	return err
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(mapError(err), ErrTransientConflict)
}
