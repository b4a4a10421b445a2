// Package jwt emite y valida los tokens de sesión que devuelve el connect.
package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret   = errors.New("jwt: empty secret")
	ErrInvalidToken  = errors.New("jwt: invalid token")
	ErrInvalidIssuer = errors.New("jwt: invalid issuer")
)

// DefaultTTL es la vigencia por defecto de una sesión (30 días).
const DefaultTTL = 30 * 24 * time.Hour

// Claims de una sesión: el id del usuario y los registrados estándar.
type Claims struct {
	UserID string `json:"id"`
	jwtv5.RegisteredClaims
}

// Issuer firma tokens HS256 con un secreto compartido.
type Issuer struct {
	Iss    string        // "iss", opcional
	TTL    time.Duration // vigencia
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret, iss string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{Iss: iss, TTL: ttl, secret: []byte(secret), now: time.Now}, nil
}

// Issue emite un token de sesión para userID.
func (i *Issuer) Issue(userID string) (string, time.Time, error) {
	now := i.now().UTC()
	exp := now.Add(i.TTL)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
