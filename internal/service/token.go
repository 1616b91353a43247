package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minato/dormgate/internal/domain"
)

// TokenService issues and validates the HMAC bearer tokens that carry caller
// identity. Credential verification itself lives with an external provider;
// this service only mints tokens for trusted callers and validates them on
// every request.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a new TokenService.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given actor.
func (s *TokenService) Issue(actor domain.Actor) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  actor.ID,
		"role": string(actor.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns the actor it identifies.
func (s *TokenService) Validate(tokenString string) (domain.Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return domain.Actor{}, domain.ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)

	actor := domain.Actor{ID: sub, Role: domain.Role(role)}
	if actor.ID == "" || !actor.Role.Valid() {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	return actor, nil
}
