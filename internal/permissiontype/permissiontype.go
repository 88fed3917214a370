package permissiontype

import (
	"errors"
	"time"
)

// PermissionType is an HR-managed category of leave or absence that a
// request must reference, such as vacation, medical leave or study leave.
type PermissionType struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (PermissionType) TableName() string {
	return "permission_types"
}

var (
	ErrNotFound  = errors.New("permission type not found")
	ErrNameTaken = errors.New("permission type with this name already exists")
	ErrInUse     = errors.New("cannot delete permission type while requests reference it")
)
