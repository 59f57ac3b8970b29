package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or of the wrong type.
	ErrInvalidToken = errors.New("invalid proof token")
)

const proofTokenType = "verification_proof"

// DefaultProofTTL is the proof token lifetime.
const DefaultProofTTL = 5 * time.Minute

// ProofClaims holds JWT claims for the verification proof token.
type ProofClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
}

// TokenProvider issues and validates short-lived HS256 proof tokens handed to
// callers after a successful verification.
type TokenProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given secret.
// ttl <= 0 uses DefaultProofTTL.
func NewTokenProvider(secret []byte, issuer string, ttl time.Duration) *TokenProvider {
	if ttl <= 0 {
		ttl = DefaultProofTTL
	}
	return &TokenProvider{secret: secret, issuer: issuer, ttl: ttl}
}

// IssueProof issues a proof token for email. Returns the token and its expiry.
func (p *TokenProvider) IssueProof(email string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(p.ttl)
	claims := ProofClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   email,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:     email,
		TokenType: proofTokenType,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateProof parses and validates a proof token, returning its claims.
func (p *TokenProvider) ValidateProof(tokenString string) (*ProofClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ProofClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*ProofClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != proofTokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
