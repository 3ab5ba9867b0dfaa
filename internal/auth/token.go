package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// Claims represents JWT token claims
type Claims struct {
	UserID       int64     `json:"id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	SessionToken string    `json:"sessionToken,omitempty"`
	TokenType    TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Issuer             string
	now                func() time.Time
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = internal.DefaultAccessTokenDuration
	}
	if refreshTTL <= 0 {
		refreshTTL = internal.DefaultRefreshTokenDuration
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		Issuer:             "hr-management",
		now:                time.Now,
	}
}

// IssueAccessToken embeds sessionMarker when it is non-empty.
func (j *JWTTokenGenerator) IssueAccessToken(u *User, sessionMarker string) (string, error) {
	return j.sign(u, AccessToken, sessionMarker)
}

// IssueRefreshToken never carries a session marker.
func (j *JWTTokenGenerator) IssueRefreshToken(u *User) (string, error) {
	return j.sign(u, RefreshToken, "")
}

func (j *JWTTokenGenerator) sign(u *User, kind TokenKind, sessionMarker string) (string, error) {
	if u == nil {
		return "", errors.New("token subject is required")
	}
	now := j.clock()
	claims := &Claims{
		UserID:       u.ID,
		Email:        u.Email,
		Role:         u.Role,
		SessionToken: sessionMarker,
		TokenType:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.Issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl(kind))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret(kind))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return tokenString, nil
}

// Verify checks the signature against the secret for kind. It returns
// ErrTokenExpired or ErrInvalidToken and never panics on malformed input.
func (j *JWTTokenGenerator) Verify(tokenString string, kind TokenKind) (claims *Claims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, internal.ErrInvalidToken
		}
	}()

	if tokenString == "" {
		return nil, internal.ErrInvalidToken
	}

	parsed := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (interface{}, error) {
		return j.secret(kind), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if !token.Valid || parsed.TokenType != kind || parsed.UserID <= 0 {
		return nil, internal.ErrInvalidToken
	}
	return parsed, nil
}

func (j *JWTTokenGenerator) secret(kind TokenKind) []byte {
	if kind == RefreshToken {
		return j.RefreshTokenSecret
	}
	return j.AccessTokenSecret
}

func (j *JWTTokenGenerator) ttl(kind TokenKind) time.Duration {
	if kind == RefreshToken {
		return j.RefreshTokenTTL
	}
	return j.AccessTokenTTL
}

func (j *JWTTokenGenerator) clock() time.Time {
	if j.now == nil {
		return time.Now()
	}
	return j.now()
}

// WithClock replaces the time source, used by tests to mint expired tokens.
func (j *JWTTokenGenerator) WithClock(now func() time.Time) *JWTTokenGenerator {
	j.now = now
	return j
}
