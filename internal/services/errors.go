package services

import (
	"errors"
	"fmt"

	"storefront/internal/apperrors"
	"storefront/internal/repositories"
)

// storeError classifies a repository error. Errors that already carry a kind
// pass through unchanged.
func storeError(err error, format string, args ...any) error {
	var appErr *apperrors.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound(format, args...)
	case errors.Is(err, repositories.ErrDuplicateKey), errors.Is(err, repositories.ErrStaleVersion):
		return apperrors.Conflict(err, format, args...)
	}
	return apperrors.Persistence(err, "%s", fmt.Sprintf(format, args...))
}
