package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
	// ErrRevokedToken wraps ErrInvalidToken, so callers treating every
	// invalid token alike need not check for it.
	ErrRevokedToken = fmt.Errorf("%w: token has been revoked", ErrInvalidToken)
)

// RevocationChecker reports whether a token ID was revoked before expiry.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string, now int64) (bool, error)
}

// audience names the API that session tokens are issued for.
const audience = "splitledger-api"

// Claims identifies the caller of a ledger request.
// Subject and UserID always carry the same user ID.
type Claims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 session tokens.
type JWTManager struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
	leeway        time.Duration
	now           func() time.Time
	revocations   RevocationChecker
}

// JWTOption customizes a JWTManager.
type JWTOption func(*JWTManager)

// WithLeeway tolerates clock skew when checking exp and nbf.
func WithLeeway(d time.Duration) JWTOption {
	return func(m *JWTManager) { m.leeway = d }
}

// WithTokenClock replaces time.Now for issuing and validating tokens.
func WithTokenClock(now func() time.Time) JWTOption {
	return func(m *JWTManager) { m.now = now }
}

// WithRevocationCheck makes ValidateContext reject tokens that checker
// reports as revoked.
func WithRevocationCheck(checker RevocationChecker) JWTOption {
	return func(m *JWTManager) { m.revocations = checker }
}

// NewJWTManager creates a manager signing with secretKey. Tokens are valid
// for tokenDuration and must carry the given issuer.
func NewJWTManager(secretKey, issuer string, tokenDuration time.Duration, opts ...JWTOption) *JWTManager {
	m := &JWTManager{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TokenDuration is how long issued tokens stay valid.
func (m *JWTManager) TokenDuration() time.Duration {
	return m.tokenDuration
}

// Generate issues a session token for user.
func (m *JWTManager) Generate(user *models.User) (string, error) {
	issuedAt := m.now()
	claims := &Claims{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.tokenDuration)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token for %s: %w", user.ID, err)
	}
	return signed, nil
}

// Validate verifies signature, issuer, audience and lifetime and returns the
// token's claims. Every failure wraps ErrInvalidToken except an empty
// token, which is ErrMissingToken.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	parser := jwt.NewParser(m.parserOptions()...)
	claims := &Claims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, m.key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, fmt.Errorf("%w: subject does not match user", ErrInvalidToken)
	}
	return claims, nil
}

// ValidateContext is Validate followed by the revocation check, when one is
// configured. A revoked token fails with ErrRevokedToken; a failing check
// is returned as is and does not wrap ErrInvalidToken.
func (m *JWTManager) ValidateContext(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := m.Validate(tokenString)
	if err != nil || m.revocations == nil {
		return claims, err
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: token has no id", ErrInvalidToken)
	}
	// Revocations lapse at exp, but the parser still accepts the token
	// for the leeway after that.
	now := m.now().Add(-m.leeway).Unix()
	revoked, err := m.revocations.IsTokenRevoked(ctx, claims.ID, now)
	if err != nil {
		return nil, fmt.Errorf("check revocation of token %s: %w", claims.ID, err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

func (m *JWTManager) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(audience),
		jwt.WithLeeway(m.leeway),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	return opts
}

func (m *JWTManager) key(*jwt.Token) (any, error) {
	return m.secretKey, nil
}
