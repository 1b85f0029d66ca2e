// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	deliverycontext "authgate/internal/delivery/context"
	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"
	"authgate/internal/domain/service"
	"authgate/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(
	txManager repository.TransactionManager,
	hasher service.PasswordHasher,
	tokenService service.TokenService,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		txManager:    txManager,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register validates the input, hashes the password and stores the new
// credential record. The password check happens before any hashing or
// storage attempt.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) error {
	if input.Password == "" {
		return domainerrors.ErrPasswordRequired.WrapMessage("registration rejected")
	}

	userID := uuid.Nil
	if input.ID != "" {
		parsed, err := uuid.Parse(input.ID)
		if err != nil {
			return domainerrors.ErrValidationFailed.WithDetails("id must be a valid UUID").
				WrapMessage("registration rejected")
		}
		userID = parsed
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", "error", err)

		return errors.Wrap(domainerrors.ErrRegistrationFailed, "failed to hash password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		newUser := &entity.User{
			ID:           userID,
			Username:     input.Username,
			PasswordHash: hashedPassword,
			Email:        input.Email,
		}

		if err := userRepo.Create(ctx, newUser); err != nil {
			// A taken username is still reported as a registration failure;
			// the diagnostic detail is for operators, not end users.
			return domainerrors.ErrRegistrationFailed.WithDetails(err.Error()).
				WrapMessage("failed to create user")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("User registration failed", "username", input.Username, "error", err.Error())

		return err
	}
	srv.log(ctx).Info("User registered", "username", input.Username)

	return nil
}

// Login verifies the presented credentials, issues an access/refresh token
// pair and records the refresh token in the registry. Unknown username and
// wrong password fail identically so callers cannot enumerate accounts.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	var accessToken, refreshToken string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		tokenRepo := repoFactory.RefreshTokenRepo()

		user, err := userRepo.FindByUsername(ctx, input.Username)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
			}

			return domainerrors.ErrLoginFailed.WithDetails(err.Error()).
				WrapMessage("failed to look up user")
		}

		if !srv.hasher.Check(input.Password, user.PasswordHash) {
			return errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		accessToken, refreshToken, err = srv.tokenService.GenerateTokenPair(user.Username)
		if err != nil {
			return domainerrors.ErrLoginFailed.WithDetails(err.Error()).
				WrapMessage("failed to generate tokens")
		}

		newRefreshToken := &entity.RefreshToken{
			TokenHash: hashToken(refreshToken),
			Username:  user.Username,
			ExpiresAt: time.Now().Add(srv.tokenService.RefreshTokenTTL()),
		}

		if err := tokenRepo.Record(ctx, newRefreshToken); err != nil {
			return domainerrors.ErrLoginFailed.WithDetails(err.Error()).
				WrapMessage("failed to record refresh token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Login failed", "username", input.Username, "error", err.Error())

		return nil, err
	}
	srv.log(ctx).Debug("User logged in", "username", input.Username)

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid, still-registered refresh token for a new
// access token. Registry membership is checked first: a revoked token must
// be rejected even when its signature and expiry would still validate.
// The refresh token itself is not rotated.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	// An empty request body leaves the bound input nil; treat it the same
	// as presenting no token at all.
	if input == nil || input.Token == "" {
		return nil, errors.Wrap(domainerrors.ErrRefreshForbidden, "no refresh token presented")
	}

	var username string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.RefreshTokenRepo()

		exists, err := tokenRepo.Exists(ctx, hashToken(input.Token))
		if err != nil {
			return domainerrors.ErrTokenExchangeFailed.WithDetails(err.Error()).
				WrapMessage("failed to check registry membership")
		}
		if !exists {
			return errors.Wrap(domainerrors.ErrRefreshForbidden, "refresh token not in registry")
		}

		claims, err := srv.tokenService.ValidateRefreshToken(input.Token)
		if err != nil {
			return errors.Wrap(domainerrors.ErrRefreshForbidden, "refresh token failed verification")
		}
		username = claims.Username

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Refresh token exchange rejected", "error", err.Error())

		return nil, err
	}

	accessToken, err := srv.tokenService.GenerateAccessToken(username)
	if err != nil {
		return nil, domainerrors.ErrTokenExchangeFailed.WithDetails(err.Error()).
			WrapMessage("failed to issue access token")
	}
	srv.log(ctx).Debug("Access token refreshed", "username", username)

	return &usecase.RefreshOutput{AccessToken: accessToken}, nil
}

// Logout revokes the presented refresh token. Revocation is idempotent:
// logging out a session that is already gone still succeeds.
func (srv *authService) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	// Revoking a token that was never presented is a no-op that still
	// succeeds, like revoking one that is already gone.
	token := ""
	if input != nil {
		token = input.Token
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.RefreshTokenRepo().Revoke(ctx, hashToken(token)); err != nil {
			return domainerrors.ErrLogoutFailed.WithDetails(err.Error()).
				WrapMessage("failed to revoke refresh token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Logout failed", "error", err.Error())

		return err
	}
	srv.log(ctx).Debug("Refresh token revoked")

	return nil
}

// hashToken derives the registry key for a token: the database stores
// SHA-256 hashes, never the raw token string.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}
