package auth

import (
	"context"
	"fmt"
)

// AuthService verifies wallet session tokens on the ingestion path.
// It is stateless and verify-only: token issuance (wallet-signature login)
// lives in a separate service and hands clients an opaque bearer token.
type AuthService struct {
	config *Config
}

func NewAuthService(config *Config) *AuthService {
	return &AuthService{config: config}
}

func (s *AuthService) IsEnabled() bool {
	return s.config.Enabled
}

// VerifyToken validates a bearer token and returns the wallet identity it
// carries. The signature is an HMAC over the claims (wallet + expiry),
// checked in constant time by the JWT library; expired tokens are rejected.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	claims, err := ParseClaims(token, s.config.TokenSecret)
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("invalid session token: missing wallet")
	}

	if claims.ExpiresAt == nil {
		return "", fmt.Errorf("invalid session token: missing expiry")
	}

	return claims.Subject, nil
}
