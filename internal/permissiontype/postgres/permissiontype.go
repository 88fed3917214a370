package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/permission-management/internal/permissiontype"
)

type TypeRepository struct {
	db *gorm.DB
}

func NewTypeRepository(db *gorm.DB) *TypeRepository {
	return &TypeRepository{db: db}
}

func (r *TypeRepository) Create(t *permissiontype.PermissionType) error {
	return r.db.Create(t).Error
}

func (r *TypeRepository) GetByID(id int64) (*permissiontype.PermissionType, error) {
	var t permissiontype.PermissionType
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, permissiontype.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TypeRepository) GetByName(name string) (*permissiontype.PermissionType, error) {
	var t permissiontype.PermissionType
	err := r.db.Where("name = ?", name).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, permissiontype.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TypeRepository) GetAll() ([]*permissiontype.PermissionType, error) {
	var types []*permissiontype.PermissionType
	if err := r.db.Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *TypeRepository) Update(t *permissiontype.PermissionType) error {
	return r.db.Model(&permissiontype.PermissionType{}).
		Where("id = ?", t.ID).
		Updates(map[string]interface{}{
			"name":        t.Name,
			"description": t.Description,
		}).Error
}

func (r *TypeRepository) Delete(id int64) error {
	result := r.db.Delete(&permissiontype.PermissionType{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return permissiontype.ErrNotFound
	}
	return nil
}

// RequestCount queries the requests table directly so this package does not
// depend on the request domain.
func (r *TypeRepository) RequestCount(id int64) (int64, error) {
	var count int64
	err := r.db.Table("permission_requests").
		Where("permission_type_id = ?", id).
		Count(&count).Error
	return count, err
}
