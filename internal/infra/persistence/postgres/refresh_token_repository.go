package postgres

import (
	"context"
	"time"

	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"
	"authgate/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// refreshTokenRepository implements the repository.RefreshTokenRepository interface.
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository is the constructor for refreshTokenRepository.
func NewRefreshTokenRepository(db *gorm.DB) repository.RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// Record persists a token as currently valid; called once per successful login.
func (repo *refreshTokenRepository) Record(ctx context.Context, token *entity.RefreshToken) error {
	tokenM := fromRefreshTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to record refresh token")
	}

	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// Exists reports registry membership for the given token hash.
func (repo *refreshTokenRepository) Exists(ctx context.Context, tokenHash string) (bool, error) {
	var count int64

	err := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("token_hash = ?", tokenHash).
		Count(&count).Error
	if err != nil {
		return false, errors.WithStack(err)
	}

	return count > 0, nil
}

// Revoke removes a token from the registry. Deleting an absent row is not
// an error: revocation is idempotent.
func (repo *refreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	err := repo.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Delete(&model.RefreshTokenModel{}).Error
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// RevokeExpired removes all rows whose embedded expiry has lapsed.
func (repo *refreshTokenRepository) RevokeExpired(ctx context.Context) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.RefreshTokenModel{})
	if result.Error != nil {
		return 0, errors.WithStack(result.Error)
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

// fromRefreshTokenDomain converts a domain RefreshToken entity to a GORM RefreshTokenModel.
func fromRefreshTokenDomain(data *entity.RefreshToken) *model.RefreshTokenModel {
	if data == nil {
		return nil
	}

	return &model.RefreshTokenModel{
		TokenHash: data.TokenHash,
		Username:  data.Username,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}
