// Package auth implements issuing and verification of the signed bearer
// tokens used across the API: short-lived access tokens, refresh tokens and
// confirmation tokens for email verification and password resets.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers every verification failure of an access or
	// refresh token. Forged, malformed and expired tokens are deliberately
	// indistinguishable to callers.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned only for confirmation tokens whose
	// signature verifies but whose expiry has passed. The boundary maps it
	// to a user-facing "please sign up again" condition.
	ErrTokenExpired = errors.New("token has expired")
)

// SessionClaims is the payload of access and refresh tokens.
type SessionClaims struct {
	AccountID  string `json:"id"`
	RememberMe bool   `json:"remember_me"`
	Refresh    bool   `json:"refresh,omitempty"`
	jwt.RegisteredClaims
}

// confirmationClaims carries only the account id, as the registered subject.
type confirmationClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies JWT bearer tokens with a process-wide
// HS256 secret.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer creates a TokenIssuer signing with the given secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// IssueAccessToken generates a signed access token for the account.
func (i *TokenIssuer) IssueAccessToken(accountID string, ttl time.Duration, rememberMe bool) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		AccountID:  accountID,
		RememberMe: rememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// IssueRefreshToken generates a signed refresh token for the account. The
// refresh flag in the payload is what distinguishes it from an access token.
func (i *TokenIssuer) IssueRefreshToken(accountID string, ttl time.Duration, rememberMe bool) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		AccountID:  accountID,
		RememberMe: rememberMe,
		Refresh:    true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// IssueConfirmationToken generates the signed token embedded in account
// confirmation and password reset emails. The account id travels as the
// registered subject claim.
func (i *TokenIssuer) IssueConfirmationToken(accountID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := confirmationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// VerifyToken validates an access or refresh token and returns its claims.
// Every failure mode collapses into ErrInvalidToken.
func (i *TokenIssuer) VerifyToken(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, i.keyFunc,
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyConfirmationToken validates a confirmation token and returns the
// account id it was issued for. Unlike VerifyToken, a token that is well
// signed but past its expiry is reported as ErrTokenExpired so that the
// caller can tell the user to start over.
func (i *TokenIssuer) VerifyConfirmationToken(tokenStr string) (string, error) {
	claims := &confirmationClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, i.keyFunc,
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

func (i *TokenIssuer) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}

	return i.secret, nil
}
