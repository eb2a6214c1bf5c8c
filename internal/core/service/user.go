package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storeapi/internal/core/domain"
	"storeapi/internal/core/model/request"
	"storeapi/internal/core/port"
)

type UserService struct {
	repo port.UserRepository
}

var _ port.UserService = (*UserService)(nil)

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (us *UserService) GetUserData(ctx context.Context, email string) (domain.User, error) {
	user, err := us.repo.GetByEmail(ctx, email)

	if err != nil {
		slog.Error("User#GetUserData", "get_by_email", err)
		return domain.User{}, ErrEmailNotFound
	}

	return user, nil
}

func (us *UserService) UpdateUser(ctx context.Context, req *request.UpdateUserRequest) (domain.User, error) {
	user, err := us.repo.GetByID(ctx, req.ID)

	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, err
	}

	role := domain.UserRole(req.Role)

	if role != domain.Admin && role != domain.Customer {
		return domain.User{}, ErrInvalidRole
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = req.Email
	user.Role = role
	user.UpdatedAt = time.Now()

	updated, err := us.repo.Update(ctx, user)

	if err != nil {
		return domain.User{}, err
	}

	return updated, nil
}
