package repository

import (
	"context"

	"authgate/internal/domain/entity"
)

// RefreshTokenRepository is the registry of refresh tokens that are issued
// and not yet revoked. Membership here is the authority for "not logged
// out"; the token's own signature is the authority for "not forged or
// expired". Both must hold for an exchange.
type RefreshTokenRepository interface {
	// Record persists a token as currently valid; called once per successful login.
	Record(ctx context.Context, token *entity.RefreshToken) error

	// Exists reports registry membership for the given token hash.
	Exists(ctx context.Context, tokenHash string) (bool, error)

	// Revoke removes a token from the registry. Revoking an absent token is
	// not an error: logging out an already-dead session succeeds silently.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeExpired removes all rows whose embedded expiry has lapsed and
	// returns how many were deleted. Backs the periodic registry sweep.
	RevokeExpired(ctx context.Context) (int64, error)
}
