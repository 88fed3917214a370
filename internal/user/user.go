package user

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleHR       Role = "HR"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleEmployee:
		return RoleEmployee, nil
	case RoleManager:
		return RoleManager, nil
	case RoleHR:
		return RoleHR, nil
	}
	return "", fmt.Errorf("invalid role %q: valid roles are EMPLOYEE, MANAGER, HR", s)
}

type User struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	Email           string     `json:"email" gorm:"uniqueIndex;not null"`
	Name            string     `json:"name" gorm:"not null"`
	PasswordHash    string     `json:"-" gorm:"column:password_hash;not null"`
	Role            Role       `json:"role" gorm:"type:varchar(16);default:EMPLOYEE"`
	SectorID        *int64     `json:"sector_id,omitempty" gorm:"column:sector_id"`
	ManagedSectorID *int64     `json:"managed_sector_id,omitempty" gorm:"column:managed_sector_id"`
	ResetToken      *string    `json:"-" gorm:"column:reset_token"`
	ResetTokenExp   *time.Time `json:"-" gorm:"column:reset_token_expiry"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"column:updated_at"`

	// Display-only joins, populated by the repository.
	SectorName        *string `json:"sector_name,omitempty" gorm:"-"`
	ManagedSectorName *string `json:"managed_sector_name,omitempty" gorm:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsManagerOf(sectorID *int64) bool {
	if u.Role != RoleManager || u.ManagedSectorID == nil || sectorID == nil {
		return false
	}
	return *u.ManagedSectorID == *sectorID
}

// SectorAssignment is the result of normalizing a role/sector combination.
type SectorAssignment struct {
	SectorID        *int64
	ManagedSectorID *int64
}

// NormalizeSectorAssignment is the single place the manager/sector pairing
// rule lives. Every write path (create, update, bulk import) must go through
// it so the invariant cannot be bypassed:
//
//   - MANAGER: sectorID and managedSectorID always refer to the same sector;
//     a manager is a member of the sector they head. Either field may be
//     supplied, the other is mirrored. No sector at all is an error.
//   - HR: carries no sector; any supplied sector is dropped.
//   - EMPLOYEE: keeps its sector, never a managed sector.
func NormalizeSectorAssignment(role Role, sectorID, managedSectorID *int64) (SectorAssignment, error) {
	switch role {
	case RoleManager:
		target := managedSectorID
		if target == nil {
			target = sectorID
		}
		if target == nil {
			return SectorAssignment{}, ErrManagerNeedsSector
		}
		id := *target
		return SectorAssignment{SectorID: &id, ManagedSectorID: &id}, nil
	case RoleHR:
		return SectorAssignment{}, nil
	default:
		return SectorAssignment{SectorID: sectorID}, nil
	}
}
