package postgres

import (
	"github.com/frahmantamala/permission-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	r.attachSectorNames(&u)
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
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

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Order("name ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		r.attachSectorNames(u)
	}
	return users, nil
}

func (r *UserRepository) GetBySector(sectorID int64) ([]*user.User, error) {
	var users []*user.User
	err := r.db.Where("sector_id = ?", sectorID).Order("name ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		r.attachSectorNames(u)
	}
	return users, nil
}

func (r *UserRepository) Update(u *user.User) error {
	// Save skips zero-valued fields for partial structs; a full map keeps
	// nil sector assignments able to clear their columns.
	return r.db.Model(&user.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"email":             u.Email,
			"name":              u.Name,
			"password_hash":     u.PasswordHash,
			"role":              u.Role,
			"sector_id":         u.SectorID,
			"managed_sector_id": u.ManagedSectorID,
		}).Error
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Delete(&user.User{}, id).Error
}

func (r *UserRepository) ListByRole(role user.Role) ([]*user.User, error) {
	var users []*user.User
	err := r.db.Where("role = ?", role).Find(&users).Error
	return users, err
}

// ManagerOfSector returns the manager heading the given sector, or
// user.ErrNotFound when the sector has none.
func (r *UserRepository) ManagerOfSector(sectorID int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("role = ? AND managed_sector_id = ?", user.RoleManager, sectorID).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) attachSectorNames(u *user.User) {
	if u.SectorID != nil {
		var name string
		if err := r.db.Table("sectors").Select("name").Where("id = ?", *u.SectorID).Scan(&name).Error; err == nil && name != "" {
			u.SectorName = &name
		}
	}
	if u.ManagedSectorID != nil {
		var name string
		if err := r.db.Table("sectors").Select("name").Where("id = ?", *u.ManagedSectorID).Scan(&name).Error; err == nil && name != "" {
			u.ManagedSectorName = &name
		}
	}
}
