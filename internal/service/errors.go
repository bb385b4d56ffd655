package service

import (
	"errors"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// notFoundOr maps an absent row to the catalog entry code and leaves every
// other error to the central handler as an internal failure.
func notFoundOr(err error, code apperrors.Code, id int) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(code, id)
	}
	return err
}
