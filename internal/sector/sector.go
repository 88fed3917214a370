package sector

import (
	"errors"
	"time"
)

type Sector struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	ManagerID   *int64    `json:"manager_id,omitempty" gorm:"column:manager_id"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`

	// Display-only joins, populated by the repository.
	ManagerName  *string  `json:"manager_name,omitempty" gorm:"-"`
	ManagerEmail *string  `json:"manager_email,omitempty" gorm:"-"`
	MemberCount  int64    `json:"member_count" gorm:"-"`
}

func (Sector) TableName() string {
	return "sectors"
}

var (
	ErrNotFound        = errors.New("sector not found")
	ErrNameTaken       = errors.New("sector with this name already exists")
	ErrInUse           = errors.New("cannot delete sector while users are assigned to it")
	ErrManagerNotFound = errors.New("manager user not found")
	ErrNotAManager     = errors.New("user does not have the MANAGER role")
)
