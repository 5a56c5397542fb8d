package domain

import (
	"fmt"
	"regexp"

	"github.com/mr-tron/base58"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)
)

// pubkeyLen is the byte length of an ed25519 public key.
const pubkeyLen = 32

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateUsername checks the allowed username alphabet and length.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-32 letters, digits or underscores")
	}
	return nil
}

// ValidateWalletAddress checks that s is a base58-encoded 32-byte public key.
func ValidateWalletAddress(s string) error {
	if s == "" {
		return fmt.Errorf("wallet address is required")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("wallet address is not valid base58")
	}
	if len(raw) != pubkeyLen {
		return fmt.Errorf("wallet address must decode to %d bytes, got %d", pubkeyLen, len(raw))
	}
	return nil
}
