package entity

import "time"

// RefreshToken is the registry record for a long-lived session credential.
// The token itself is a signed JWT; the registry row is what makes it
// revocable. TokenHash stores a SHA-256 hash of the raw token string so the
// database never holds a usable credential verbatim.
//
// A token is usable for exchange iff its row still exists here AND its own
// signature/expiry check passes. Deleting the row is revocation: a revoked
// token must be rejected even while its signature would still validate.
type RefreshToken struct {
	TokenHash string    // SHA-256 hash of the raw refresh token.
	Username  string    // The identity the token was issued to.
	ExpiresAt time.Time // When the token's embedded expiry lapses.
	CreatedAt time.Time // When the session was opened (login time).
}
