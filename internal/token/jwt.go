package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JwtIssuer issues and validates signed bearer tokens asserting a user UID.
type JwtIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

type JwtConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func NewJWTIssuer(cfg JwtConfig) *JwtIssuer {
	return &JwtIssuer{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
	}
}

func (ti *JwtIssuer) Issue(claims UserClaims) (string, error) {
	now := time.Now()
	tk, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   claims.UID,
		Issuer:    ti.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
	}).SignedString(ti.secret)

	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tk, nil
}

// Validate parses and verifies a token, returning the claims it asserts.
// Expired or tampered tokens fail verification.
func (ti *JwtIssuer) Validate(raw string) (UserClaims, error) {
	var claims jwt.RegisteredClaims
	tk, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return ti.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return UserClaims{}, fmt.Errorf("parse token: %w", err)
	}
	if !tk.Valid {
		return UserClaims{}, fmt.Errorf("invalid token")
	}

	return UserClaims{UID: claims.Subject}, nil
}
