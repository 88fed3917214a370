package permissiontype

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Repository defines the data access methods for permission types.
type Repository interface {
	Create(t *PermissionType) error
	GetByID(id int64) (*PermissionType, error)
	GetByName(name string) (*PermissionType, error)
	GetAll() ([]*PermissionType, error)
	Update(t *PermissionType) error
	Delete(id int64) error
	RequestCount(id int64) (int64, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListTypes() ([]*PermissionType, error) {
	types, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list permission types", "error", err)
		return nil, err
	}
	return types, nil
}

func (s *Service) GetType(id int64) (*PermissionType, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *Service) CreateType(dto CreateTypeDTO) (*PermissionType, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(dto.Name)
	if existing, _ := s.repo.GetByName(name); existing != nil {
		return nil, ErrNameTaken
	}

	t := &PermissionType{
		Name:        name,
		Description: strings.TrimSpace(dto.Description),
	}

	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create permission type", "error", err, "name", name)
		return nil, err
	}

	s.logger.Info("permission type created", "type_id", t.ID, "name", t.Name)
	return t, nil
}

func (s *Service) UpdateType(id int64, dto UpdateTypeDTO) (*PermissionType, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name != existing.Name {
			if other, _ := s.repo.GetByName(name); other != nil && other.ID != id {
				return nil, ErrNameTaken
			}
		}
		existing.Name = name
	}
	if dto.Description != nil {
		existing.Description = strings.TrimSpace(*dto.Description)
	}

	if err := s.repo.Update(existing); err != nil {
		s.logger.Error("failed to update permission type", "error", err, "type_id", id)
		return nil, err
	}

	s.logger.Info("permission type updated", "type_id", id)
	return existing, nil
}

// DeleteType refuses to remove a type still referenced by requests so
// historical records keep resolving.
func (s *Service) DeleteType(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return ErrNotFound
	}

	count, err := s.repo.RequestCount(id)
	if err != nil {
		s.logger.Error("failed to count requests for type", "error", err, "type_id", id)
		return err
	}
	if count > 0 {
		return ErrInUse
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete permission type", "error", err, "type_id", id)
		return err
	}

	s.logger.Info("permission type deleted", "type_id", id)
	return nil
}

// TypeName resolves a type id to its display name, for request validation
// and notification content.
func (s *Service) TypeName(id int64) (string, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return "", ErrNotFound
	}
	return t.Name, nil
}

// Exists reports whether a type id resolves, for request validation.
func (s *Service) Exists(id int64) (bool, error) {
	_, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// BulkUpload creates one permission type per spreadsheet row, accumulating
// per-row outcomes.
func (s *Service) BulkUpload(data []byte) (*BulkUploadResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("spreadsheet has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(records) < 2 {
		return nil, errors.New("spreadsheet has no data rows")
	}

	nameCol, descCol := -1, -1
	for i, col := range records[0] {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			nameCol = i
		case "description":
			descCol = i
		}
	}
	if nameCol < 0 {
		return nil, errors.New("missing required column: name")
	}

	result := &BulkUploadResult{Message: "bulk permission type upload completed"}
	for _, record := range records[1:] {
		var name, description string
		if nameCol < len(record) {
			name = strings.TrimSpace(record[nameCol])
		}
		if descCol >= 0 && descCol < len(record) {
			description = strings.TrimSpace(record[descCol])
		}

		_, err := s.CreateType(CreateTypeDTO{Name: name, Description: description})
		if err != nil {
			result.ErrorCount++
			result.Results = append(result.Results, BulkRowResult{Name: name, Error: err.Error()})
			continue
		}
		result.SuccessCount++
		result.Results = append(result.Results, BulkRowResult{Success: true, Name: name})
	}

	s.logger.Info("bulk permission type upload finished",
		"succeeded", result.SuccessCount,
		"failed", result.ErrorCount)
	return result, nil
}
