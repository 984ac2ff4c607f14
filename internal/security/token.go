package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scheme selects which signing secret pair a presented credential is
// verified against: "System" for admin-issued tokens, "Bearer" for users.
type Scheme string

const (
	SchemeSystem Scheme = "System"
	SchemeBearer Scheme = "Bearer"
)

var (
	ErrMissingToken  = errors.New("missing token")
	ErrInvalidScheme = errors.New("invalid bearer scheme")
)

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// SplitCredential parses an "<Scheme> <token>" credential string. Only the
// System and Bearer schemes are recognized.
func SplitCredential(authorization string) (Scheme, string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authorization), " ")
	if !found || scheme == "" || token == "" {
		return "", "", ErrMissingToken
	}
	switch Scheme(scheme) {
	case SchemeSystem, SchemeBearer:
		return Scheme(scheme), token, nil
	}
	return "", "", ErrInvalidScheme
}

func GenerateToken(secret string, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func ParseToken(tokenStr string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
