package service

import (
	"errors"

	"github.com/kickoff/fantasy/internal/domain"
)

// storeError passes AppErrors through and wraps anything else as StoreUnavailable.
func storeError(msg string, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return domain.ErrStoreUnavailable(msg, err)
}
