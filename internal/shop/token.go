package shop

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminRole = "admin"

// TokenMaker signs the bearer token handed out on admin login. The token id
// is the admin session id; it only authorizes while that session is open.
type TokenMaker struct {
	secret []byte
	issuer string
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		issuer: "storefront-admin",
	}
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (t *TokenMaker) New(sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   adminRole,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer))
	if err != nil || token == nil || !token.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if c.Role != adminRole {
		return Claims{}, errors.New("invalid role")
	}

	return c, nil
}
