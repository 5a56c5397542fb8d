package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultUserImageURL is assigned to users created from on-chain activity.
const DefaultUserImageURL = "https://assets.fanpicks.app/avatars/default.png"

// User is a platform account. Wallet-only users have no password hash.
type User struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	WalletAddress *string   `json:"wallet_address,omitempty"`
	ImageURL      string    `json:"image_url"`
	PasswordHash  string    `json:"-"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewWalletUser builds the default profile for a wallet seen on-chain for the first time.
func NewWalletUser(wallet string) *User {
	prefix := wallet
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	w := wallet
	return &User{
		ID:            uuid.New(),
		Username:      "user_" + prefix,
		Email:         wallet + "@wallet.local",
		WalletAddress: &w,
		ImageURL:      DefaultUserImageURL,
	}
}
