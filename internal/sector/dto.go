package sector

import (
	"errors"
	"strings"
)

type CreateSectorDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ManagerID   *int64 `json:"manager_id,omitempty"`
}

func (dto CreateSectorDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("sector name is required")
	}
	return nil
}

type UpdateSectorDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	// ManagerID distinguishes "not sent" (nil) from "sent null" (set, nil
	// value) so a manager can be detached explicitly.
	ManagerID    *int64 `json:"manager_id,omitempty"`
	ClearManager bool   `json:"clear_manager,omitempty"`
}

func (dto UpdateSectorDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return errors.New("sector name cannot be empty")
	}
	return nil
}

// BulkRowResult is the per-row outcome of a bulk sector upload.
type BulkRowResult struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
	Error   string `json:"error,omitempty"`
}

type BulkUploadResult struct {
	Message      string          `json:"message"`
	SuccessCount int             `json:"successCount"`
	ErrorCount   int             `json:"errorCount"`
	Results      []BulkRowResult `json:"results"`
}
