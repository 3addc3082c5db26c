package model

import "time"

// Token purposes. A token only validates against the purpose it was issued
// for; matching by value alone would allow cross-purpose replay.
const (
	TokenPurposePasswordReset     = "PASSWORD_RESET"
	TokenPurposeEmailVerification = "EMAIL_VERIFICATION"
)

// AuthToken is a single-use opaque capability issued for password reset or
// email verification. ConsumedAt is set exactly once, atomically, when the
// token is claimed.
type AuthToken struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Purpose    string     `json:"purpose"`
	Token      string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
