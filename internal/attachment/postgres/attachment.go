package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/permission-management/internal"
	"github.com/frahmantamala/permission-management/internal/request"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(att *request.Attachment) error {
	return r.db.Create(att).Error
}

func (r *AttachmentRepository) GetByID(id int64) (*request.Attachment, error) {
	var att request.Attachment
	err := r.db.Where("id = ?", id).First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &att, nil
}

func (r *AttachmentRepository) ListByRequest(requestID int64) ([]*request.Attachment, error) {
	var atts []*request.Attachment
	err := r.db.Where("permission_request_id = ?", requestID).
		Order("created_at ASC").
		Find(&atts).Error
	if err != nil {
		return nil, err
	}
	return atts, nil
}

func (r *AttachmentRepository) Delete(id int64) error {
	result := r.db.Delete(&request.Attachment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrAttachmentNotFound
	}
	return nil
}
