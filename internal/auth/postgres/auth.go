package postgres

import (
	"time"

	"github.com/frahmantamala/permission-management/internal/user"
	"gorm.io/gorm"
)

// AuthRepository implements auth.Repository over the users table.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *AuthRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *AuthRepository) Create(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *AuthRepository) SaveResetToken(userID int64, token string, expiry time.Time) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_token":        token,
			"reset_token_expiry": expiry,
		}).Error
}

func (r *AuthRepository) GetByResetToken(token string) (*user.User, error) {
	var u user.User
	err := r.db.Where("reset_token = ?", token).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdatePassword also clears the reset token so a link cannot be replayed.
func (r *AuthRepository) UpdatePassword(userID int64, passwordHash string) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash":      passwordHash,
			"reset_token":        nil,
			"reset_token_expiry": nil,
		}).Error
}
