package services

import (
	"errors"

	"ari-backend/wizard"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// remoteError keeps the database's code, message and hint so launch errors
// can show them. Unique violations always carry the Postgres code, also
// when the driver already translated them.
func remoteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &wizard.RemoteError{Code: pgErr.Code, Message: pgErr.Message, Hint: pgErr.Hint, Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &wizard.RemoteError{Code: wizard.CodeUniqueViolation, Message: err.Error(), Err: err}
	}
	return &wizard.RemoteError{Message: err.Error(), Err: err}
}
