// Package auth turns a bearer credential into an acting username. The
// resolver is an injected collaborator: the rest of the system only ever sees
// the resolved username, never the credential mechanics.
package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredential covers every way a credential can fail to resolve.
var ErrInvalidCredential = errors.New("auth: invalid credential")

type Resolver interface {
	Resolve(ctx context.Context, credential string) (string, error)
}

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTResolver resolves HS256 tokens issued by the external identity service.
type JWTResolver struct {
	secret []byte
	issuer string
}

func NewJWTResolver(secret, issuer string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), issuer: issuer}
}

func (r *JWTResolver) Resolve(_ context.Context, credential string) (string, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if r.issuer != "" {
		options = append(options, jwt.WithIssuer(r.issuer))
	}
	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, options...)
	if err != nil {
		return "", ErrInvalidCredential
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidCredential
	}
	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	if username == "" {
		return "", ErrInvalidCredential
	}
	return username, nil
}
