// Package repository holds the MySQL data access layer.  Sentinel errors
// defined here let the service layer tell missing rows and uniqueness
// violations apart from genuine persistence failures, which are wrapped
// and returned as-is.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique index, such
// as a second ACTIVE hold for the same item or a repeated email.
var ErrDuplicate = errors.New("duplicate")

// mysqlDuplicateEntry is the server error number for ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
