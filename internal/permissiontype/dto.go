package permissiontype

import (
	"errors"
	"strings"
)

type CreateTypeDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (dto CreateTypeDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("permission type name is required")
	}
	return nil
}

type UpdateTypeDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (dto UpdateTypeDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return errors.New("permission type name cannot be empty")
	}
	return nil
}

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
