package storage

import (
	"database/sql"
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict reports a unique or foreign key violation, such as a
	// duplicate name or deleting a person that still has expenses.
	ErrConflict = errors.New("conflicting record")
)

// translate maps driver errors onto the package sentinels, keeping the
// original error in the chain.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return errors.Join(ErrConflict, err)
	}
	return err
}

func affected(n int64, err error) error {
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
