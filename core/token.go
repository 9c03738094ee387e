package core

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and validates signed, time-limited identity tokens.
type TokenService interface {
	Issue(subjectID int64) (string, error)
	Validate(token string) (int64, error)
}

// JWTService implements TokenService with HS256-signed JWTs. It holds only
// the signing secret and TTL, both fixed at startup, so it is safe for
// concurrent use.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

type accessClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

func NewJWTService(secret []byte, ttl time.Duration) *JWTService {
	return &JWTService{secret: secret, ttl: ttl}
}

// Issue signs a claim set {user_id, iat, exp} for the given subject.
func (s *JWTService) Issue(subjectID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: subjectID,
	})
	return token.SignedString(s.secret)
}

// Validate verifies the signature before trusting any claim, then checks
// expiry and structure. Failures map to ErrBadSignature, ErrTokenExpired, or
// ErrTokenMalformed.
func (s *JWTService) Validate(tokenString string) (int64, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSignature
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, ErrBadSignature
		default:
			return 0, ErrTokenMalformed
		}
	}
	if !token.Valid || claims.UserID <= 0 {
		return 0, ErrTokenMalformed
	}
	return claims.UserID, nil
}
