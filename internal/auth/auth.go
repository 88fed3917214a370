package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/permission-management/internal/user"
)

// Actor is the authenticated identity every protected operation receives:
// who is acting, with which role, and which sector context. It is resolved
// from the datastore on every request so role or sector reassignment takes
// effect immediately, not at next token issuance.
type Actor struct {
	UserID          int64
	Email           string
	Name            string
	Role            user.Role
	SectorID        *int64
	ManagedSectorID *int64
}

func (a Actor) IsHR() bool {
	return a.Role == user.RoleHR
}

func (a Actor) IsManager() bool {
	return a.Role == user.RoleManager
}

// ManagesSector reports whether the actor heads the given sector. The
// comparison is always against the resource's sector, never one supplied by
// the client.
func (a Actor) ManagesSector(sectorID *int64) bool {
	if a.Role != user.RoleManager || a.ManagedSectorID == nil || sectorID == nil {
		return false
	}
	return *a.ManagedSectorID == *sectorID
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, email string) (string, error)
	GenerateRefreshToken(userID int64, email string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or expired")
)

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type ctxKey string

const actorContextKey ctxKey = "actor"

func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(*Actor)
	return actor, ok
}
