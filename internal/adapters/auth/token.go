package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"forumregistrations/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// JWTVerifier verifies HS256 access tokens issued by the backoffice identity service.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a TokenVerifier for HS256 tokens signed with secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses the token and returns its principal. Unknown roles are dropped.
func (v *JWTVerifier) Verify(token string) (*domain.Principal, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("token secret not configured")
	}
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}

	p := &domain.Principal{UserID: claims.Subject, Email: claims.Email}
	for _, r := range claims.Roles {
		switch role := domain.Role(r); role {
		case domain.RoleAdmin, domain.RoleManager, domain.RoleViewer:
			p.Roles = append(p.Roles, role)
		}
	}
	return p, nil
}

// Issue signs a token for the given principal. Used by the devtoken command
// to mint local credentials.
func (v *JWTVerifier) Issue(p domain.Principal, expiry time.Duration) (string, error) {
	now := time.Now()
	roles := make([]string, len(p.Roles))
	for i, r := range p.Roles {
		roles[i] = string(r)
	}
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: p.Email,
		Roles: roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}
