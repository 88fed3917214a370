package user

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrManagerNeedsSector = errors.New("sector managers must have a sector assigned")
	ErrSectorNotFound     = errors.New("sector not found")
	ErrSectorAccessDenied = errors.New("not authorized to view users of this sector")
)

type CreateUserDTO struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	Role            string `json:"role,omitempty"`
	SectorID        *int64 `json:"sector_id,omitempty"`
	ManagedSectorID *int64 `json:"managed_sector_id,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	if strings.TrimSpace(dto.Email) == "" || strings.TrimSpace(dto.Name) == "" || dto.Password == "" {
		return errors.New("email, name and password are required")
	}
	if dto.Role != "" {
		if _, err := ParseRole(dto.Role); err != nil {
			return err
		}
	}
	return nil
}

type UpdateUserDTO struct {
	Email           *string `json:"email,omitempty"`
	Name            *string `json:"name,omitempty"`
	Password        *string `json:"password,omitempty"`
	Role            *string `json:"role,omitempty"`
	SectorID        *int64  `json:"sector_id,omitempty"`
	ManagedSectorID *int64  `json:"managed_sector_id,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Role != nil {
		if _, err := ParseRole(*dto.Role); err != nil {
			return err
		}
	}
	if dto.Email != nil && strings.TrimSpace(*dto.Email) == "" {
		return errors.New("email cannot be empty")
	}
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return errors.New("name cannot be empty")
	}
	return nil
}

// BulkImportResult reports the outcome of a bulk user upload. Bad rows never
// abort the batch; each failure is accumulated with its line number.
type BulkImportResult struct {
	Message        string   `json:"message"`
	TotalProcessed int      `json:"totalProcessed"`
	SuccessCount   int      `json:"successCount"`
	ErrorCount     int      `json:"errorCount"`
	Errors         []string `json:"errors,omitempty"`
}
