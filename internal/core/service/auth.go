package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storeapi/internal/core/domain"
	"storeapi/internal/core/model/request"
	"storeapi/internal/core/port"
	"storeapi/internal/core/util"
	"storeapi/pkg/token"
)

type AuthService struct {
	repo      port.UserRepository
	access    *token.AccessIssuer
	refresh   *token.RefreshIssuer
	reset     *token.ResetIssuer
	email     port.EmailSender
	clientURL string
}

var _ port.AuthService = (*AuthService)(nil)

func NewAuthService(
	repo port.UserRepository,
	access *token.AccessIssuer,
	refresh *token.RefreshIssuer,
	reset *token.ResetIssuer,
	email port.EmailSender,
	clientURL string,
) *AuthService {
	return &AuthService{
		repo:      repo,
		access:    access,
		refresh:   refresh,
		reset:     reset,
		email:     email,
		clientURL: clientURL,
	}
}

func (as *AuthService) Registration(ctx context.Context, req *request.RegisterRequest) (*domain.User, error) {
	oldUser, err := as.repo.GetByEmail(ctx, req.Email)

	if err == nil && oldUser.Email != "" {
		return nil, ErrEmailTaken
	}

	encrypted, err := util.GenerateEncrypt(req.Password)

	if err != nil {
		return nil, fmt.Errorf("error creating encrypted password: %w", err)
	}

	user := domain.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: encrypted,
		Role:         domain.Customer,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	savedUser, err := as.repo.Create(ctx, user)

	if err != nil {
		return nil, err
	}

	return &savedUser, nil
}

func (as *AuthService) authenticate(ctx context.Context, req *request.LoginRequest) (*domain.User, error) {
	user, err := as.repo.GetByEmail(ctx, req.Email)

	if err != nil {
		slog.Error("Auth#authenticate", "get_by_email", err)
		return nil, ErrEmailNotFound
	}

	if err := util.ComparePassword(req.Password, user.PasswordHash); err != nil {
		slog.Error("Auth#authenticate", "compare_password", err)
		return nil, ErrWrongPassword
	}

	return &user, nil
}

// Login verifies the credentials, mints both tokens and overwrites the
// user's stored refresh token, revoking whichever one was active before.
func (as *AuthService) Login(ctx context.Context, req *request.LoginRequest) (*port.LoginResult, error) {
	user, err := as.authenticate(ctx, req)

	if err != nil {
		return nil, err
	}

	accessToken, err := as.access.Issue(user.ID, string(user.Role))

	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	refreshToken, err := as.refresh.Issue(user.ID)

	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	if err := as.repo.SaveRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	user.RefreshToken = refreshToken

	return &port.LoginResult{
		User:         *user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (as *AuthService) Logout(ctx context.Context, userID int) error {
	return as.repo.ClearRefreshToken(ctx, userID)
}

// RefreshAccessToken resolves the refresh token, checks it against the value
// stored on the user record and mints a fresh access token. A rotated-away
// token still carries a valid signature but fails the equality check.
func (as *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*token.Identity, string, error) {
	userID, err := as.refresh.ResolveSubjectID(refreshToken)

	if err != nil {
		return nil, "", err
	}

	user, err := as.repo.GetByID(ctx, userID)

	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}

		return nil, "", err
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, "", ErrRefreshTokenMismatch
	}

	accessToken, err := as.access.Issue(user.ID, string(user.Role))

	if err != nil {
		return nil, "", fmt.Errorf("issuing access token: %w", err)
	}

	return &token.Identity{UserID: user.ID, Role: string(user.Role)}, accessToken, nil
}

func (as *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := as.repo.GetByEmail(ctx, email); err != nil {
		slog.Error("Auth#RequestPasswordReset", "get_by_email", err)
		return ErrEmailNotFound
	}

	resetToken, err := as.reset.Issue(email)

	if err != nil {
		return fmt.Errorf("issuing reset token: %w", err)
	}

	tokenLink := fmt.Sprintf("%s/%s", as.clientURL, resetToken)
	message := fmt.Sprintf("Click on the link to reset your password: %s", tokenLink)

	return as.email.SendEmail(ctx, email, "Reset your password", message)
}

func (as *AuthService) ChangePassword(ctx context.Context, resetToken string, newPassword string) error {
	email, err := as.reset.ResolveEmail(resetToken)

	if err != nil {
		return err
	}

	encrypted, err := util.GenerateEncrypt(newPassword)

	if err != nil {
		return fmt.Errorf("error creating encrypted password: %w", err)
	}

	if err := as.repo.UpdatePassword(ctx, email, encrypted); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return ErrEmailNotFound
		}

		return err
	}

	return nil
}
