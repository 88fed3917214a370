package request

import (
	"time"
)

// Status is the lifecycle state of a permission request. PENDING is the only
// non-terminal state: a request moves to APPROVED or REJECTED exactly once
// and never leaves either.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// PermissionRequest is an employee's request for leave or absence. SectorID
// is frozen from the requester's sector at creation time so reassigning the
// user later never rewrites who owned past requests.
type PermissionRequest struct {
	ID               int64   `json:"id" gorm:"primaryKey"`
	UserID           int64   `json:"user_id" gorm:"column:user_id;not null;index"`
	SectorID         *int64  `json:"sector_id" gorm:"column:sector_id;index"`
	PermissionTypeID int64   `json:"permission_type_id" gorm:"column:permission_type_id;not null;index"`
	StartDate        Date    `json:"start_date" gorm:"column:start_date;type:date;not null"`
	EndDate          Date    `json:"end_date" gorm:"column:end_date;type:date;not null"`
	Reason           string  `json:"reason" gorm:"not null"`
	Status           Status  `json:"status" gorm:"type:varchar(16);not null;default:PENDING;index"`
	RejectionReason  *string `json:"rejection_reason,omitempty" gorm:"column:rejection_reason"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	Attachments []Attachment `json:"attachments" gorm:"foreignKey:PermissionRequestID"`

	// Display-only joins, populated by the repository.
	UserName   string `json:"user_name,omitempty" gorm:"-"`
	UserEmail  string `json:"user_email,omitempty" gorm:"-"`
	SectorName string `json:"sector_name,omitempty" gorm:"-"`
	TypeName   string `json:"type_name,omitempty" gorm:"-"`
}

func (PermissionRequest) TableName() string {
	return "permission_requests"
}

// Attachment is file metadata owned by exactly one request. The bytes live
// in object storage under FileName; URL is the object key's public form
// recorded at upload time.
type Attachment struct {
	ID                  int64     `json:"id" gorm:"primaryKey"`
	PermissionRequestID int64     `json:"permission_request_id" gorm:"column:permission_request_id;not null;index"`
	FileName            string    `json:"file_name" gorm:"column:file_name;not null"`
	URL                 string    `json:"url" gorm:"not null"`
	UploadedByID        int64     `json:"uploaded_by_id" gorm:"column:uploaded_by_id;not null"`
	CreatedAt           time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}
