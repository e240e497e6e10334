package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is how long a session token stays valid after signin.
const TTL = 24 * time.Hour

var (
	// ErrTokenInvalid covers malformed tokens, wrong signatures and
	// tokens missing the identity claim.
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired means the token was well-formed and correctly
	// signed but its validity window has elapsed.
	ErrTokenExpired = errors.New("token has expired")
)

// Issuer signs and verifies session tokens carrying a user identity claim.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// Issue produces a signed token embedding the user id, expiring 24h from now.
func (i *Issuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"exp":    now.Add(TTL).Unix(),
		"iat":    now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify checks the signature and validity window and returns the embedded
// user id. Expiry is reported as ErrTokenExpired; every other failure is
// ErrTokenInvalid.
func (i *Issuer) Verify(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", ErrTokenInvalid
	}
	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", ErrTokenInvalid
	}
	return userID, nil
}
