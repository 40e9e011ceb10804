package services

import (
	"errors"

	apperrors "danaku/internal/errors"
	"danaku/internal/ledger"
)

// storeError maps an error returned by ledger.Store.Transact to an AppError.
// Domain errors raised inside the closure pass through untouched; notFound is
// the entity-specific error for a missing document.
func storeError(err error, notFound *apperrors.AppError) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ledger.ErrNotFound):
		return notFound
	case errors.Is(err, ledger.ErrConflict):
		return apperrors.Wrap(apperrors.ErrConflict, err)
	default:
		return apperrors.Wrap(apperrors.ErrTransient, err)
	}
}

// queryError maps an error from a plain read query.
func queryError(err error) error {
	return apperrors.Wrap(apperrors.ErrTransient, err)
}
