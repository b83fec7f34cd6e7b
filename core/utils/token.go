package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"timechart/core/config"
)

// TokenData is what the auth middleware puts into the request context.
type TokenData struct {
	Subject string
	Scope   string
}

type claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed JWT for the given subject and scope.
func GenerateToken(subject, scope string) (string, error) {
	cfg := config.Get()
	ttl := time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute

	c := claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString([]byte(cfg.Auth.JWTSecret))
}

// ParseToken validates a JWT and returns its token data.
func ParseToken(tokenString string) (*TokenData, error) {
	cfg := config.Get()

	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return &TokenData{Subject: c.Subject, Scope: c.Scope}, nil
}
