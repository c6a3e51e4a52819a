package shared

import (
	"context"

	appErrors "Kindfund/internal/errors"

	"github.com/oklog/ulid/v2"
)

type UserCheckerService struct {
	checker UserChecker
}

func NewUserCheckerService(checker UserChecker) *UserCheckerService {
	return &UserCheckerService{checker: checker}
}

func (s *UserCheckerService) EnsureUserExists(ctx context.Context, userID ulid.ULID) error {
	if s == nil || s.checker == nil {
		return appErrors.ErrInternalServer
	}

	if err := s.checker.Exists(ctx, userID); err != nil {
		if appErr, ok := appErrors.AsAppError(err); ok && appErr.Code != appErrors.ErrDonorNotFound.Code {
			return appErr
		}
		return appErrors.ErrDonorNotFound.WithError(err)
	}

	return nil
}

type BaseService struct {
	UserChecker *UserCheckerService
}

func (b *BaseService) EnsureUserExists(ctx context.Context, userID ulid.ULID) error {
	if b.UserChecker == nil {
		return appErrors.ErrInternalServer
	}
	return b.UserChecker.EnsureUserExists(ctx, userID)
}
