package service

import (
	"errors"

	"github.com/fanpicks/platform/internal/domain"
)

// appOrInternal passes AppErrors through and wraps anything else as internal.
func appOrInternal(msg string, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return domain.ErrInternal(msg, err)
}
