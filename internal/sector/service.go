package sector

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/permission-management/internal/user"
)

// Repository defines the data access methods for sectors.
type Repository interface {
	Create(s *Sector) error
	GetByID(id int64) (*Sector, error)
	GetByName(name string) (*Sector, error)
	GetAll() ([]*Sector, error)
	Update(s *Sector) error
	Delete(id int64) error
	MemberCount(id int64) (int64, error)
	SetManager(id int64, managerID *int64) error
}

// UserDirectory is the slice of the user registry the sector service needs
// for manager assignment checks.
type UserDirectory interface {
	GetByID(id int64) (*user.User, error)
}

type Service struct {
	repo   Repository
	users  UserDirectory
	logger *slog.Logger
}

func NewService(repo Repository, users UserDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

func (s *Service) ListSectors() ([]*Sector, error) {
	sectors, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list sectors", "error", err)
		return nil, err
	}
	return sectors, nil
}

func (s *Service) GetSector(id int64) (*Sector, error) {
	sec, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return sec, nil
}

func (s *Service) CreateSector(dto CreateSectorDTO) (*Sector, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(dto.Name)
	if existing, _ := s.repo.GetByName(name); existing != nil {
		return nil, ErrNameTaken
	}

	if err := s.checkManager(dto.ManagerID); err != nil {
		return nil, err
	}

	sec := &Sector{
		Name:        name,
		Description: strings.TrimSpace(dto.Description),
		ManagerID:   dto.ManagerID,
	}

	if err := s.repo.Create(sec); err != nil {
		s.logger.Error("failed to create sector", "error", err, "name", name)
		return nil, err
	}

	s.logger.Info("sector created", "sector_id", sec.ID, "name", sec.Name)
	return sec, nil
}

func (s *Service) UpdateSector(id int64, dto UpdateSectorDTO) (*Sector, error) {
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

	switch {
	case dto.ClearManager:
		existing.ManagerID = nil
	case dto.ManagerID != nil:
		if err := s.checkManager(dto.ManagerID); err != nil {
			return nil, err
		}
		existing.ManagerID = dto.ManagerID
	}

	if err := s.repo.Update(existing); err != nil {
		s.logger.Error("failed to update sector", "error", err, "sector_id", id)
		return nil, err
	}

	s.logger.Info("sector updated", "sector_id", id)
	return existing, nil
}

// DeleteSector refuses to remove a sector that still has members. Callers
// must reassign or remove the members first.
func (s *Service) DeleteSector(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return ErrNotFound
	}

	count, err := s.repo.MemberCount(id)
	if err != nil {
		s.logger.Error("failed to count sector members", "error", err, "sector_id", id)
		return err
	}
	if count > 0 {
		return ErrInUse
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete sector", "error", err, "sector_id", id)
		return err
	}

	s.logger.Info("sector deleted", "sector_id", id)
	return nil
}

// Exists implements user.SectorDirectory.
func (s *Service) Exists(sectorID int64) (bool, error) {
	_, err := s.repo.GetByID(sectorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DetachManager implements user.SectorDirectory. Clearing a missing sector
// is a no-op so user deletion never fails on a dangling reference.
func (s *Service) DetachManager(sectorID int64) error {
	err := s.repo.SetManager(sectorID, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// BulkUpload creates one sector per spreadsheet row, accumulating per-row
// outcomes. The first row must be a header with at least a name column.
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

	result := &BulkUploadResult{Message: "bulk sector upload completed"}
	for _, record := range records[1:] {
		var name, description string
		if nameCol < len(record) {
			name = strings.TrimSpace(record[nameCol])
		}
		if descCol >= 0 && descCol < len(record) {
			description = strings.TrimSpace(record[descCol])
		}

		_, err := s.CreateSector(CreateSectorDTO{Name: name, Description: description})
		if err != nil {
			result.ErrorCount++
			result.Results = append(result.Results, BulkRowResult{Name: name, Error: err.Error()})
			continue
		}
		result.SuccessCount++
		result.Results = append(result.Results, BulkRowResult{Success: true, Name: name})
	}

	s.logger.Info("bulk sector upload finished",
		"succeeded", result.SuccessCount,
		"failed", result.ErrorCount)
	return result, nil
}

func (s *Service) checkManager(managerID *int64) error {
	if managerID == nil {
		return nil
	}
	u, err := s.users.GetByID(*managerID)
	if err != nil {
		return ErrManagerNotFound
	}
	if u.Role != user.RoleManager {
		return ErrNotAManager
	}
	return nil
}
