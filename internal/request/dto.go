package request

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("permission request not found")
	ErrNoManagedSector = errors.New("manager has no managed sector")
	ErrListForbidden   = errors.New("role may not list other users' requests")
)

// AttachmentSeed is the metadata for a file already uploaded to object
// storage via a pre-signed URL; the create call only records the reference.
type AttachmentSeed struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

type CreateRequestDTO struct {
	PermissionTypeID int64            `json:"permission_type_id"`
	StartDate        Date             `json:"start_date"`
	EndDate          Date             `json:"end_date"`
	Reason           string           `json:"reason"`
	Attachments      []AttachmentSeed `json:"attachments,omitempty"`
}

func (dto CreateRequestDTO) Validate() error {
	if dto.PermissionTypeID <= 0 {
		return errors.New("permission_type_id is required")
	}
	if dto.StartDate.IsZero() || dto.EndDate.IsZero() {
		return errors.New("start_date and end_date are required")
	}
	if dto.StartDate.After(dto.EndDate) {
		return errors.New("start_date must not be after end_date")
	}
	if strings.TrimSpace(dto.Reason) == "" {
		return errors.New("reason is required")
	}
	for _, att := range dto.Attachments {
		if att.FileName == "" || att.URL == "" {
			return errors.New("attachments require file_name and url")
		}
	}
	return nil
}

type UpdateRequestDTO struct {
	StartDate *Date   `json:"start_date,omitempty"`
	EndDate   *Date   `json:"end_date,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

func (dto UpdateRequestDTO) Validate() error {
	if dto.Reason != nil && strings.TrimSpace(*dto.Reason) == "" {
		return errors.New("reason cannot be empty")
	}
	return nil
}

type RejectDTO struct {
	RejectionReason string `json:"rejection_reason"`
}

// ListFilter narrows list queries. SectorID is only honored for HR; the
// service pins managers to their own sector before it reaches the repository.
type ListFilter struct {
	SectorID *int64
	UserID   *int64
	Status   *Status
}
