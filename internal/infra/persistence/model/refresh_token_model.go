package model

import "time"

// RefreshTokenModel mirrors the 'refresh_tokens' table, the registry of
// sessions that are issued and not yet revoked. The primary key is the
// SHA-256 hash of the token string; the raw token is never stored.
type RefreshTokenModel struct {
	TokenHash string    `gorm:"type:varchar(64);primaryKey"`
	Username  string    `gorm:"type:varchar(100);not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}
