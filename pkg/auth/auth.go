package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// JWTKey signs session tokens. Override via SetJWTKey before serving.
var JWTKey = []byte("locallibrary-session-key")

func SetJWTKey(key string) {
	if key != "" {
		JWTKey = []byte(key)
	}
}

const (
	SessionCookieName = "session"
	LoginPath         = "/accounts/login/"

	RoleMember    = "MEMBER"
	RoleLibrarian = "LIBRARIAN"
)

type Claims struct {
	Profile struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"profile"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewSessionToken issues a signed HS256 session token for the user.
func NewSessionToken(username, role, email string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	claims.Profile.Username = username
	claims.Profile.Role = role

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JWTKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseSessionToken validates a session token and returns its claims.
func ParseSessionToken(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return JWTKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid session token")
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, errors.New("session expired")
	}
	return claims, nil
}

type User struct {
	Username string
	Role     string
}

func (u User) IsLibrarian() bool {
	return u.Role == RoleLibrarian
}

type ctxKey int

const userKey ctxKey = iota + 1

func SetAuthContext(ctx context.Context, username, role string) context.Context {
	return context.WithValue(ctx, userKey, User{Username: username, Role: role})
}

func FromContext(ctx context.Context) (User, error) {
	user, ok := ctx.Value(userKey).(User)
	if !ok {
		return User{}, errors.New("no authenticated user in context")
	}
	return user, nil
}
