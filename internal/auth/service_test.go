package auth_test

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/user"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

type mockAuthRepository struct {
	usersByEmail map[string]*user.User
	usersByID    map[int64]*user.User
	resetTokens  map[string]int64
	nextID       int64
	failWith     error
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*user.User),
		usersByID:    make(map[int64]*user.User),
		resetTokens:  make(map[string]int64),
		nextID:       1,
	}
}

func (m *mockAuthRepository) addUser(u *user.User) *user.User {
	u.ID = m.nextID
	m.nextID++
	m.usersByEmail[u.Email] = u
	m.usersByID[u.ID] = u
	return u
}

func (m *mockAuthRepository) GetByEmail(email string) (*user.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if u, ok := m.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockAuthRepository) GetByID(id int64) (*user.User, error) {
	if u, ok := m.usersByID[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockAuthRepository) Create(u *user.User) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.addUser(u)
	return nil
}

func (m *mockAuthRepository) SaveResetToken(userID int64, token string, expiry time.Time) error {
	u, ok := m.usersByID[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.ResetToken = &token
	u.ResetTokenExp = &expiry
	m.resetTokens[token] = userID
	return nil
}

func (m *mockAuthRepository) GetByResetToken(token string) (*user.User, error) {
	if id, ok := m.resetTokens[token]; ok {
		return m.usersByID[id], nil
	}
	return nil, errors.New("token not found")
}

func (m *mockAuthRepository) UpdatePassword(userID int64, passwordHash string) error {
	u, ok := m.usersByID[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordHash = passwordHash
	return nil
}

type recordingResetMailer struct {
	toEmail  string
	toName   string
	resetURL string
	sendErr  error
	calls    int
}

func (m *recordingResetMailer) SendPasswordReset(toEmail, toName, resetURL string) error {
	m.calls++
	m.toEmail = toEmail
	m.toName = toName
	m.resetURL = resetURL
	return m.sendErr
}

var _ = Describe("AuthService", func() {
	var (
		service  *auth.Service
		repo     *mockAuthRepository
		mailer   *recordingResetMailer
		tokenGen *auth.JWTTokenGenerator
		logger   *slog.Logger
	)

	BeforeEach(func() {
		repo = newMockAuthRepository()
		mailer = &recordingResetMailer{}
		tokenGen = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(repo, tokenGen, mailer, "https://permisos.example.com", time.Hour, bcrypt.MinCost, logger)

		hash, err := auth.HashPassword("correct_password", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		sectorID := int64(3)
		repo.addUser(&user.User{
			Email:        "ana@example.com",
			Name:         "Ana",
			PasswordHash: hash,
			Role:         user.RoleManager,
			SectorID:     &sectorID,
		})
	})

	Describe("Authenticate", func() {
		It("returns a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "ana@example.com", Password: "correct_password"})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(1)))
			Expect(claims.Email).To(Equal("ana@example.com"))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "ana@example.com", Password: "nope"})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown email", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "ghost@example.com", Password: "correct_password"})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("validates the DTO before hitting the repository", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "", Password: "x"})
			Expect(err).To(MatchError(ContainSubstring("email is required")))
		})

		It("maps repository failures to invalid credentials", func() {
			repo.failWith = errors.New("connection refused")
			_, err := service.Authenticate(auth.LoginDTO{Email: "ana@example.com", Password: "correct_password"})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})
	})

	Describe("Register", func() {
		It("creates an employee account regardless of requested role", func() {
			u, err := service.Register(auth.RegisterDTO{
				Email:    "nuevo@example.com",
				Name:     "Nuevo Empleado",
				Password: "secret123",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(user.RoleEmployee))
			Expect(u.ManagedSectorID).To(BeNil())
		})

		It("keeps the supplied sector on the new account", func() {
			sectorID := int64(7)
			u, err := service.Register(auth.RegisterDTO{
				Email:    "nuevo@example.com",
				Name:     "Nuevo Empleado",
				Password: "secret123",
				SectorID: &sectorID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.SectorID).NotTo(BeNil())
			Expect(*u.SectorID).To(Equal(int64(7)))
		})

		It("refuses a taken email", func() {
			_, err := service.Register(auth.RegisterDTO{
				Email:    "ana@example.com",
				Name:     "Otra Ana",
				Password: "secret123",
			})
			Expect(err).To(Equal(user.ErrEmailTaken))
		})

		It("enforces the minimum password length", func() {
			_, err := service.Register(auth.RegisterDTO{
				Email:    "corto@example.com",
				Name:     "Corto",
				Password: "abc",
			})
			Expect(err).To(MatchError(ContainSubstring("password must be at least 6 characters")))
		})
	})

	Describe("RefreshTokens", func() {
		It("rotates a valid refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "ana@example.com", Password: "correct_password"})
			Expect(err).NotTo(HaveOccurred())

			rotated, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(rotated.AccessToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(rotated.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Email).To(Equal("ana@example.com"))
		})

		It("rejects a malformed token", func() {
			_, err := service.RefreshTokens("not.a.token")
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})

		It("rejects an expired token", func() {
			expiredGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, -time.Hour)
			expired, err := expiredGen.GenerateRefreshToken(1, "ana@example.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RefreshTokens(expired)
			Expect(err).To(Equal(auth.ErrTokenExpired))
		})

		It("rejects an access token passed as a refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "ana@example.com", Password: "correct_password"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RefreshTokens(tokens.AccessToken)
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})
	})

	Describe("ResolveActor", func() {
		It("loads role and sectors from the datastore", func() {
			actor, err := service.ResolveActor(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(actor.Role).To(Equal(user.RoleManager))
			Expect(actor.SectorID).NotTo(BeNil())
			Expect(*actor.SectorID).To(Equal(int64(3)))
		})
	})

	Describe("ForgotPassword", func() {
		It("stores a token and mails the reset link", func() {
			Expect(service.ForgotPassword(auth.ForgotPasswordDTO{Email: "ana@example.com"})).To(Succeed())
			Expect(mailer.calls).To(Equal(1))
			Expect(mailer.toEmail).To(Equal("ana@example.com"))
			Expect(mailer.resetURL).To(HavePrefix("https://permisos.example.com/reset-password?token="))

			token := strings.TrimPrefix(mailer.resetURL, "https://permisos.example.com/reset-password?token=")
			Expect(service.ValidateResetToken(token)).To(Succeed())
		})

		It("reports success for an unknown email without sending", func() {
			Expect(service.ForgotPassword(auth.ForgotPasswordDTO{Email: "ghost@example.com"})).To(Succeed())
			Expect(mailer.calls).To(BeZero())
		})

		It("succeeds even when the mail send fails", func() {
			mailer.sendErr = errors.New("smtp down")
			Expect(service.ForgotPassword(auth.ForgotPasswordDTO{Email: "ana@example.com"})).To(Succeed())
		})
	})

	Describe("ResetPassword", func() {
		var token string

		BeforeEach(func() {
			Expect(service.ForgotPassword(auth.ForgotPasswordDTO{Email: "ana@example.com"})).To(Succeed())
			token = strings.TrimPrefix(mailer.resetURL, "https://permisos.example.com/reset-password?token=")
		})

		It("updates the password so the new one authenticates", func() {
			Expect(service.ResetPassword(auth.ResetPasswordDTO{Token: token, Password: "brand_new_pw"})).To(Succeed())

			_, err := service.Authenticate(auth.LoginDTO{Email: "ana@example.com", Password: "brand_new_pw"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Authenticate(auth.LoginDTO{Email: "ana@example.com", Password: "correct_password"})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown token", func() {
			err := service.ResetPassword(auth.ResetPasswordDTO{Token: "bogus", Password: "brand_new_pw"})
			Expect(err).To(Equal(auth.ErrResetTokenInvalid))
		})

		It("rejects an expired token", func() {
			u := repo.usersByID[1]
			past := time.Now().Add(-time.Minute)
			u.ResetTokenExp = &past

			err := service.ResetPassword(auth.ResetPasswordDTO{Token: token, Password: "brand_new_pw"})
			Expect(err).To(Equal(auth.ErrResetTokenInvalid))
		})
	})
})
