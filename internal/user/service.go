package user

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Repository defines the data access methods for users.
type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	GetAll() ([]*User, error)
	GetBySector(sectorID int64) ([]*User, error)
	Update(u *User) error
	Delete(id int64) error
}

// SectorDirectory is the slice of the sector registry the user service
// needs: existence checks for assignments and manager detachment on delete.
type SectorDirectory interface {
	Exists(sectorID int64) (bool, error)
	DetachManager(sectorID int64) error
}

type Service struct {
	repo       Repository
	sectors    SectorDirectory
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, sectors SectorDirectory, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		sectors:    sectors,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) ListUsers() ([]*User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

func (s *Service) GetUser(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) CreateUser(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, _ := s.repo.GetByEmail(dto.Email); existing != nil {
		return nil, ErrEmailTaken
	}

	role := RoleEmployee
	if dto.Role != "" {
		role, _ = ParseRole(dto.Role)
	}

	assignment, err := NormalizeSectorAssignment(role, dto.SectorID, dto.ManagedSectorID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSectorExists(assignment.SectorID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Email:           strings.TrimSpace(dto.Email),
		Name:            strings.TrimSpace(dto.Name),
		PasswordHash:    string(hash),
		Role:            role,
		SectorID:        assignment.SectorID,
		ManagedSectorID: assignment.ManagedSectorID,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *Service) UpdateUser(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	if dto.Email != nil && *dto.Email != existing.Email {
		if other, _ := s.repo.GetByEmail(*dto.Email); other != nil && other.ID != id {
			return nil, ErrEmailTaken
		}
		existing.Email = strings.TrimSpace(*dto.Email)
	}
	if dto.Name != nil {
		existing.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Password != nil && *dto.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		existing.PasswordHash = string(hash)
	}

	role := existing.Role
	if dto.Role != nil {
		role, _ = ParseRole(*dto.Role)
	}

	// Re-derive the sector pairing on every role or sector change. When a
	// user becomes a manager with no sector supplied, their current sector
	// carries over as the one they will head.
	sectorID := existing.SectorID
	if dto.SectorID != nil {
		sectorID = dto.SectorID
	}
	managedSectorID := dto.ManagedSectorID

	assignment, err := NormalizeSectorAssignment(role, sectorID, managedSectorID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSectorExists(assignment.SectorID); err != nil {
		return nil, err
	}

	existing.Role = role
	existing.SectorID = assignment.SectorID
	existing.ManagedSectorID = assignment.ManagedSectorID

	if err := s.repo.Update(existing); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id, "role", existing.Role)
	return existing, nil
}

// DeleteUser removes a user. A manager's sector is detached first so the
// sector's manager reference never dangles.
func (s *Service) DeleteUser(id int64) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return ErrNotFound
	}

	if existing.ManagedSectorID != nil {
		if err := s.sectors.DetachManager(*existing.ManagedSectorID); err != nil {
			s.logger.Error("failed to detach manager from sector",
				"error", err, "user_id", id, "sector_id", *existing.ManagedSectorID)
			return err
		}
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// UsersBySector lists the members of a sector. Managers may only see their
// own sector regardless of the sector they ask for; HR sees any.
func (s *Service) UsersBySector(actorRole Role, actorManagedSectorID *int64, sectorID int64) ([]*User, error) {
	switch actorRole {
	case RoleHR:
	case RoleManager:
		if actorManagedSectorID == nil || *actorManagedSectorID != sectorID {
			return nil, ErrSectorAccessDenied
		}
	default:
		return nil, ErrSectorAccessDenied
	}

	users, err := s.repo.GetBySector(sectorID)
	if err != nil {
		s.logger.Error("failed to list users by sector", "error", err, "sector_id", sectorID)
		return nil, err
	}
	return users, nil
}

func (s *Service) checkSectorExists(sectorID *int64) error {
	if sectorID == nil {
		return nil
	}
	ok, err := s.sectors.Exists(*sectorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSectorNotFound
	}
	return nil
}
