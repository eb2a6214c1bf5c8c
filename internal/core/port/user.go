package port

import (
	"context"

	"storeapi/internal/core/domain"
	"storeapi/internal/core/model/request"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	UpdatePassword(ctx context.Context, email string, passwordHash string) error
	SaveRefreshToken(ctx context.Context, userID int, token string) error
	ClearRefreshToken(ctx context.Context, userID int) error
}

type UserService interface {
	GetUserData(ctx context.Context, email string) (domain.User, error)
	UpdateUser(ctx context.Context, req *request.UpdateUserRequest) (domain.User, error)
}
