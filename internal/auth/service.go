package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/permission-management/internal/user"
)

// Repository defines the credential and reset-token operations the auth
// service needs over the users table.
type Repository interface {
	GetByEmail(email string) (*user.User, error)
	GetByID(id int64) (*user.User, error)
	Create(u *user.User) error
	SaveResetToken(userID int64, token string, expiry time.Time) error
	GetByResetToken(token string) (*user.User, error)
	UpdatePassword(userID int64, passwordHash string) error
}

// ResetMailer delivers the password-reset link. Best effort: a send failure
// is logged and reported, it does not undo the stored token.
type ResetMailer interface {
	SendPasswordReset(toEmail, toName, resetURL string) error
}

type Service struct {
	repo           Repository
	tokenGenerator TokenGeneratorAPI
	mailer         ResetMailer
	frontendURL    string
	resetTokenTTL  time.Duration
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo Repository, tokenGen TokenGeneratorAPI, mailer ResetMailer, frontendURL string, resetTokenTTL time.Duration, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if resetTokenTTL <= 0 {
		resetTokenTTL = time.Hour
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		mailer:         mailer,
		frontendURL:    frontendURL,
		resetTokenTTL:  resetTokenTTL,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials and returns a token pair.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	return s.issueTokens(u.ID, u.Email)
}

// Register creates a self-service account. Public registration always
// produces an EMPLOYEE; privileged roles are assigned by HR afterwards.
func (s *Service) Register(dto RegisterDTO) (*user.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, _ := s.repo.GetByEmail(dto.Email); existing != nil {
		return nil, user.ErrEmailTaken
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	assignment, err := user.NormalizeSectorAssignment(user.RoleEmployee, dto.SectorID, nil)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		Role:         user.RoleEmployee,
		SectorID:     assignment.SectorID,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to register user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user registered", "user_id", u.ID)
	return u, nil
}

// RefreshTokens validates a refresh token and rotates the pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	return s.issueTokens(claims.UserID, claims.Email)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// ResolveActor loads the full identity for a validated token. The datastore
// is the source of truth for role and sector, not the token claims.
func (s *Service) ResolveActor(userID int64) (*Actor, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return &Actor{
		UserID:          u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            u.Role,
		SectorID:        u.SectorID,
		ManagedSectorID: u.ManagedSectorID,
	}, nil
}

// ForgotPassword stores a random reset token and mails the reset link. An
// unknown email is reported as success so the endpoint cannot be used to
// probe which addresses exist.
func (s *Service) ForgotPassword(dto ForgotPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)
	expiry := time.Now().Add(s.resetTokenTTL)

	if err := s.repo.SaveResetToken(u.ID, token, expiry); err != nil {
		s.logger.Error("failed to store reset token", "error", err, "user_id", u.ID)
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	if err := s.mailer.SendPasswordReset(u.Email, u.Name, resetURL); err != nil {
		s.logger.Error("failed to send reset email", "error", err, "user_id", u.ID)
	}

	return nil
}

func (s *Service) ValidateResetToken(token string) error {
	u, err := s.repo.GetByResetToken(token)
	if err != nil {
		return ErrResetTokenInvalid
	}
	if u.ResetTokenExp == nil || time.Now().After(*u.ResetTokenExp) {
		return ErrResetTokenInvalid
	}
	return nil
}

func (s *Service) ResetPassword(dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetByResetToken(dto.Token)
	if err != nil {
		return ErrResetTokenInvalid
	}
	if u.ResetTokenExp == nil || time.Now().After(*u.ResetTokenExp) {
		return ErrResetTokenInvalid
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(u.ID, hash); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", u.ID)
		return err
	}

	s.logger.Info("password reset completed", "user_id", u.ID)
	return nil
}

func (s *Service) issueTokens(userID int64, email string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ----------------- JWT -----------------

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, email string) (string, error) {
	return j.signed(userID, email, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64, email string) (string, error) {
	return j.signed(userID, email, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) signed(userID int64, email string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
