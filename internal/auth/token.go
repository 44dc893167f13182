// Package auth issues and validates the bearer tokens guarding the
// reporting API.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"crosspay/internal/platform/middleware"
	dErrors "crosspay/pkg/domain-errors"
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and validates HMAC access tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewTokenService builds a TokenService. Tokens expire after ttl.
func NewTokenService(signingKey, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// Issue signs a token for subject with the given roles.
func (s *TokenService) Issue(subject string, roles []string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token, returning the claims in
// the shape the auth middleware consumes.
func (s *TokenService) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &middleware.JWTClaims{Subject: claims.Subject, Roles: claims.Roles}, nil
}

// Client is one API client allowed to mint tokens. The secret is stored
// only as a bcrypt hash.
type Client struct {
	ID         string
	SecretHash []byte
	Roles      []string
}

// NewClient hashes the plaintext secret for storage.
func NewClient(id, secret string, roles []string) (Client, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return Client{}, err
	}
	return Client{ID: id, SecretHash: hash, Roles: roles}, nil
}

// Authenticator checks client credentials for the token endpoint.
type Authenticator struct {
	clients map[string]Client
}

// NewAuthenticator builds an Authenticator over a static client set.
func NewAuthenticator(clients ...Client) *Authenticator {
	byID := make(map[string]Client, len(clients))
	for _, client := range clients {
		byID[client.ID] = client
	}
	return &Authenticator{clients: byID}
}

// Issuer bundles credential checking with token minting for the token
// endpoint.
type Issuer struct {
	*Authenticator
	*TokenService
}

// Authenticate verifies the client id and secret, returning the
// client's roles on success.
func (a *Authenticator) Authenticate(clientID, clientSecret string) ([]string, error) {
	client, ok := a.clients[clientID]
	if !ok {
		// Hash anyway so unknown ids cost the same as bad secrets.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000u"), []byte(clientSecret))
		return nil, dErrors.New(dErrors.CodeUnauthorized, "unknown client")
	}
	if err := bcrypt.CompareHashAndPassword(client.SecretHash, []byte(clientSecret)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid client credentials")
	}
	return client.Roles, nil
}
