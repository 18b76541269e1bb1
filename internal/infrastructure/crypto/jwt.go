package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/autostack/access-service/internal/core/domain"
)

// DefaultTokenTTL is used when no lifetime is configured.
const DefaultTokenTTL = 1200 * time.Second

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTCodec implements ports.TokenCodec with HS256-signed JWTs.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption customises a JWTCodec.
type CodecOption func(*JWTCodec)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) CodecOption {
	return func(c *JWTCodec) {
		c.now = now
	}
}

// NewJWTCodec builds a codec signing with secret. A non-positive ttl falls
// back to DefaultTokenTTL.
func NewJWTCodec(secret string, ttl time.Duration, opts ...CodecOption) (*JWTCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	c := &JWTCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// TTL returns the default token lifetime.
func (c *JWTCodec) TTL() time.Duration {
	return c.ttl
}

// Sign issues a token for claims.Subject and claims.Username valid for ttl
// from now. IssuedAt and ExpiresAt on the input are ignored.
func (c *JWTCodec) Sign(claims domain.Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	// NumericDate keeps whole seconds only. Rounding the issue time up keeps
	// exp-iat equal to ttl and never shortens the lifetime seen by the caller.
	now := c.now()
	if t := now.Truncate(jwt.TimePrecision); !t.Equal(now) {
		now = t.Add(jwt.TimePrecision)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: claims.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %w", domain.ErrInternalAuth, err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// The signature is checked before any claim, so an expired token with a bad
// signature is reported as invalid.
func (c *JWTCodec) Verify(token string) (domain.Claims, error) {
	var tc tokenClaims
	_, err := c.parser.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claims{}, domain.ErrExpiredToken
		}
		return domain.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if tc.Username == "" || tc.Subject == "" {
		return domain.Claims{}, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	claims := domain.Claims{
		Subject:   tc.Subject,
		Username:  tc.Username,
		ExpiresAt: tc.ExpiresAt.Time,
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	return claims, nil
}
