// Package identity resolves the calling user from access tokens issued by the
// platform's auth service. This module only verifies tokens; it never issues
// them.
package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed, expired, or signed
// with an unexpected key or method.
var ErrInvalidToken = errors.New("invalid token")

// Roles known to the platform. Unknown roles are carried through as-is and
// rejected by the access policy, not by the verifier.
const (
	RoleAdmin     = "admin"
	RoleLawyer    = "lawyer"
	RoleParalegal = "paralegal"
)

// Caller identifies the authenticated user behind a request.
type Caller struct {
	UserID string
	Role   string
}

// AccessClaims holds JWT claims for the access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Verifier validates RS256/ES256 access tokens against the auth service's
// public key.
type Verifier struct {
	publicKey any
	issuer    string
	audience  string
	// leeway tolerates small clock skew between the auth service and this
	// process when checking exp/nbf.
	leeway time.Duration
}

// NewVerifier returns a Verifier for tokens signed by the key behind
// publicKey with the given issuer and audience claims.
func NewVerifier(publicKey any, issuer, audience string) *Verifier {
	return &Verifier{publicKey: publicKey, issuer: issuer, audience: audience, leeway: 30 * time.Second}
}

// VerifyAccess parses and validates the access token (signature, exp, iss,
// aud) and returns the caller it identifies.
func (v *Verifier) VerifyAccess(tokenString string) (Caller, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			return v.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); ok {
			return v.publicKey, nil
		}
		return nil, ErrInvalidToken
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return Caller{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Caller{}, ErrInvalidToken
	}
	return Caller{UserID: claims.Subject, Role: claims.Role}, nil
}
