package cli

import (
	"fmt"
	"time"

	"gharsewa/internal/auth"
	"gharsewa/internal/general/contracts"
)

// GenerateDevToken mints a short-lived HS256 token for running the reference
// clients against a dev backend. Dev/internal only; production clients
// receive their token from the login flow.
func GenerateDevToken(secret, userID, roleStr string) (string, error) {
	role, err := contracts.ParseRole(roleStr)
	if err != nil {
		return "", fmt.Errorf("invalid role %q: %w", roleStr, err)
	}

	token, err := auth.MintDevToken(secret, userID, role, 2*time.Hour)
	if err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	return token, nil
}
