package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"papertrail/internal/config"
	"papertrail/internal/domain"
)

// accessAudience is the audience the identity service stamps on access tokens.
const accessAudience = "access"

// Claims represents the JWT claims minted by the identity service.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64           `json:"user_id"`
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
}

// TokenVerifier validates bearer tokens. Issuing tokens is the identity
// service's job; this side only checks them.
type TokenVerifier interface {
	ValidateToken(tokenString string) (*Claims, error)
}

type tokenVerifier struct {
	cfg config.JWTConfig
}

// NewTokenVerifier creates an HMAC TokenVerifier for cfg.
func NewTokenVerifier(cfg config.JWTConfig) TokenVerifier {
	return &tokenVerifier{cfg: cfg}
}

func (v *tokenVerifier) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.cfg.Secret), nil
	},
		jwt.WithAudience(accessAudience),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing token: %w", domain.ErrUnauthorized, err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
