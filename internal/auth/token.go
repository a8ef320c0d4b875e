package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"property-marketplace/internal/logger"
	appErrors "property-marketplace/pkg/errors"
)

const DefaultAccessTokenTTL = 30 * time.Minute

var signingMethod = jwt.SigningMethodHS256

// TokenService issues and verifies HS256 bearer tokens whose subject is the
// user's email. The secret is fixed for the life of the service.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(secret []byte, defaultTTL time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultAccessTokenTTL
	}

	s := &TokenService{
		secret:     append([]byte(nil), secret...),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultTTL is the lifetime used when Issue is called without one.
func (s *TokenService) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// Issue signs {sub, iat, exp}. A non-positive ttl uses the default.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("token subject is empty")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, claims.ExpiresAt.Time, nil
}

// VerifyAndDecode returns the subject of a token signed by this service.
// Expired tokens with a valid signature yield ErrTokenExpired; everything
// else that fails yields ErrInvalidToken.
func (s *TokenService) VerifyAndDecode(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", appErrors.ErrTokenExpired
		}
		logger.Debug("Token rejected",
			zap.String("event", "token_rejected"),
			zap.Error(err),
		)
		return "", appErrors.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", appErrors.ErrInvalidToken
	}

	return claims.Subject, nil
}
