package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/permission-management/internal/sector"
	"github.com/frahmantamala/permission-management/internal/user"
)

type SectorRepository struct {
	db *gorm.DB
}

func NewSectorRepository(db *gorm.DB) *SectorRepository {
	return &SectorRepository{db: db}
}

func (r *SectorRepository) Create(s *sector.Sector) error {
	return r.db.Create(s).Error
}

func (r *SectorRepository) GetByID(id int64) (*sector.Sector, error) {
	var s sector.Sector
	err := r.db.Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sector.ErrNotFound
		}
		return nil, err
	}
	r.attachDisplayFields(&s)
	return &s, nil
}

func (r *SectorRepository) GetByName(name string) (*sector.Sector, error) {
	var s sector.Sector
	err := r.db.Where("name = ?", name).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sector.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SectorRepository) GetAll() ([]*sector.Sector, error) {
	var sectors []*sector.Sector
	if err := r.db.Order("name ASC").Find(&sectors).Error; err != nil {
		return nil, err
	}
	for _, s := range sectors {
		r.attachDisplayFields(s)
	}
	return sectors, nil
}

func (r *SectorRepository) Update(s *sector.Sector) error {
	// Updates with a map so a cleared manager writes NULL instead of being
	// skipped as a zero value.
	return r.db.Model(&sector.Sector{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"name":        s.Name,
			"description": s.Description,
			"manager_id":  s.ManagerID,
		}).Error
}

func (r *SectorRepository) Delete(id int64) error {
	result := r.db.Delete(&sector.Sector{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sector.ErrNotFound
	}
	return nil
}

func (r *SectorRepository) MemberCount(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&user.User{}).Where("sector_id = ?", id).Count(&count).Error
	return count, err
}

func (r *SectorRepository) SetManager(id int64, managerID *int64) error {
	result := r.db.Model(&sector.Sector{}).
		Where("id = ?", id).
		Update("manager_id", managerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sector.ErrNotFound
	}
	return nil
}

func (r *SectorRepository) attachDisplayFields(s *sector.Sector) {
	if s.ManagerID != nil {
		var manager user.User
		if err := r.db.Select("name", "email").Where("id = ?", *s.ManagerID).First(&manager).Error; err == nil {
			s.ManagerName = &manager.Name
			s.ManagerEmail = &manager.Email
		}
	}
	if count, err := r.MemberCount(s.ID); err == nil {
		s.MemberCount = count
	}
}
