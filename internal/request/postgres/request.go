package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/permission-management/internal/permissiontype"
	"github.com/frahmantamala/permission-management/internal/request"
	"github.com/frahmantamala/permission-management/internal/sector"
	"github.com/frahmantamala/permission-management/internal/user"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create persists the request and its attachment metadata rows in one
// transaction via the association.
func (r *RequestRepository) Create(req *request.PermissionRequest) error {
	return r.db.Create(req).Error
}

func (r *RequestRepository) GetByID(id int64) (*request.PermissionRequest, error) {
	var req request.PermissionRequest
	err := r.db.Preload("Attachments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, request.ErrNotFound
		}
		return nil, err
	}

	r.attachDisplayFields([]*request.PermissionRequest{&req})
	return &req, nil
}

func (r *RequestRepository) GetByUser(userID int64) ([]*request.PermissionRequest, error) {
	var reqs []*request.PermissionRequest
	err := r.db.Preload("Attachments").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}

	r.attachDisplayFields(reqs)
	return reqs, nil
}

func (r *RequestRepository) GetAll(filter request.ListFilter) ([]*request.PermissionRequest, error) {
	query := r.db.Preload("Attachments")
	if filter.SectorID != nil {
		query = query.Where("sector_id = ?", *filter.SectorID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var reqs []*request.PermissionRequest
	if err := query.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}

	r.attachDisplayFields(reqs)
	return reqs, nil
}

func (r *RequestRepository) Update(req *request.PermissionRequest) error {
	return r.db.Model(&request.PermissionRequest{}).
		Where("id = ?", req.ID).
		Updates(map[string]interface{}{
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
			"reason":     req.Reason,
			"updated_at": time.Now(),
		}).Error
}

// UpdateStatusIfPending is the conditional transition write: the status
// predicate rides in the WHERE clause so concurrent resolutions of the same
// request produce exactly one affected row.
func (r *RequestRepository) UpdateStatusIfPending(id int64, status request.Status, rejectionReason *string) (bool, error) {
	result := r.db.Model(&request.PermissionRequest{}).
		Where("id = ? AND status = ?", id, request.StatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"rejection_reason": rejectionReason,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// attachDisplayFields batch-resolves the user, sector and type names the
// front end renders alongside each request.
func (r *RequestRepository) attachDisplayFields(reqs []*request.PermissionRequest) {
	if len(reqs) == 0 {
		return
	}

	userIDs := make([]int64, 0, len(reqs))
	sectorIDs := make([]int64, 0, len(reqs))
	typeIDs := make([]int64, 0, len(reqs))
	for _, req := range reqs {
		userIDs = append(userIDs, req.UserID)
		if req.SectorID != nil {
			sectorIDs = append(sectorIDs, *req.SectorID)
		}
		typeIDs = append(typeIDs, req.PermissionTypeID)
	}

	users := make(map[int64]user.User)
	var userRows []user.User
	if err := r.db.Select("id", "name", "email").Where("id IN ?", userIDs).Find(&userRows).Error; err == nil {
		for _, u := range userRows {
			users[u.ID] = u
		}
	}

	sectors := make(map[int64]string)
	if len(sectorIDs) > 0 {
		var sectorRows []sector.Sector
		if err := r.db.Select("id", "name").Where("id IN ?", sectorIDs).Find(&sectorRows).Error; err == nil {
			for _, s := range sectorRows {
				sectors[s.ID] = s.Name
			}
		}
	}

	types := make(map[int64]string)
	var typeRows []permissiontype.PermissionType
	if err := r.db.Select("id", "name").Where("id IN ?", typeIDs).Find(&typeRows).Error; err == nil {
		for _, t := range typeRows {
			types[t.ID] = t.Name
		}
	}

	for _, req := range reqs {
		if u, ok := users[req.UserID]; ok {
			req.UserName = u.Name
			req.UserEmail = u.Email
		}
		if req.SectorID != nil {
			req.SectorName = sectors[*req.SectorID]
		}
		req.TypeName = types[req.PermissionTypeID]
	}
}
