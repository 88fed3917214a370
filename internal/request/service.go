package request

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/permission-management/internal"
	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/core/events"
	"github.com/frahmantamala/permission-management/internal/user"
)

// Repository defines the data access methods for permission requests. The
// approve/reject path must be a single conditional write so two concurrent
// resolutions of the same request yield exactly one success.
type Repository interface {
	Create(req *PermissionRequest) error
	GetByID(id int64) (*PermissionRequest, error)
	GetByUser(userID int64) ([]*PermissionRequest, error)
	GetAll(filter ListFilter) ([]*PermissionRequest, error)
	Update(req *PermissionRequest) error
	UpdateStatusIfPending(id int64, status Status, rejectionReason *string) (bool, error)
}

// TypeDirectory is the slice of the permission type registry the request
// service needs.
type TypeDirectory interface {
	TypeName(id int64) (string, error)
}

type Service struct {
	repo     Repository
	types    TypeDirectory
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, types TypeDirectory, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		types:    types,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateRequest opens a new PENDING request for the actor. The owning sector
// is taken from the actor's current sector, never from the client, and stays
// fixed for the life of the request.
func (s *Service) CreateRequest(ctx context.Context, actor *auth.Actor, dto CreateRequestDTO) (*PermissionRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	typeName, err := s.types.TypeName(dto.PermissionTypeID)
	if err != nil {
		return nil, internal.ErrTypeNotFound
	}

	req := &PermissionRequest{
		UserID:           actor.UserID,
		SectorID:         actor.SectorID,
		PermissionTypeID: dto.PermissionTypeID,
		StartDate:        dto.StartDate,
		EndDate:          dto.EndDate,
		Reason:           strings.TrimSpace(dto.Reason),
		Status:           StatusPending,
	}
	for _, seed := range dto.Attachments {
		req.Attachments = append(req.Attachments, Attachment{
			FileName:     seed.FileName,
			URL:          seed.URL,
			UploadedByID: actor.UserID,
		})
	}

	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create permission request", "error", err, "user_id", actor.UserID)
		return nil, internal.NewInternalError("failed to create permission request", err)
	}

	created, err := s.repo.GetByID(req.ID)
	if err != nil {
		created = req
	}

	s.eventBus.Publish(ctx, events.NewRequestCreatedEvent(
		req.ID, actor.UserID, sectorOrZero(req.SectorID),
		typeName, req.StartDate.String(), req.EndDate.String(), req.Reason))

	s.logger.Info("permission request created",
		"request_id", req.ID, "user_id", actor.UserID, "type", typeName)
	return created, nil
}

func (s *Service) GetRequest(actor *auth.Actor, id int64) (*PermissionRequest, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	if !CanAct(actor, req, OpView) {
		return nil, internal.ErrForbiddenRequest
	}
	return req, nil
}

// ListMine returns the actor's own requests, newest first.
func (s *Service) ListMine(actor *auth.Actor) ([]*PermissionRequest, error) {
	reqs, err := s.repo.GetByUser(actor.UserID)
	if err != nil {
		s.logger.Error("failed to list own requests", "error", err, "user_id", actor.UserID)
		return nil, err
	}
	return reqs, nil
}

// ListPending returns unresolved requests visible to the actor. Managers are
// pinned to their managed sector no matter which sector they ask for.
func (s *Service) ListPending(actor *auth.Actor, requestedSectorID *int64) ([]*PermissionRequest, error) {
	scope, err := ListScope(actor, requestedSectorID)
	if err != nil {
		return nil, internal.ErrForbiddenRequest
	}

	pending := StatusPending
	reqs, err := s.repo.GetAll(ListFilter{SectorID: scope, Status: &pending})
	if err != nil {
		s.logger.Error("failed to list pending requests", "error", err)
		return nil, err
	}
	return reqs, nil
}

// ListAll returns requests for HR and managers; employees fall back to their
// own requests.
func (s *Service) ListAll(actor *auth.Actor, requestedSectorID *int64, status *Status) ([]*PermissionRequest, error) {
	scope, err := ListScope(actor, requestedSectorID)
	if err != nil {
		if actor.Role == user.RoleEmployee {
			return s.ListMine(actor)
		}
		return nil, internal.ErrForbiddenRequest
	}

	reqs, err := s.repo.GetAll(ListFilter{SectorID: scope, Status: status})
	if err != nil {
		s.logger.Error("failed to list requests", "error", err)
		return nil, err
	}
	return reqs, nil
}

// UpdateRequest edits dates or reason while the request is still PENDING.
func (s *Service) UpdateRequest(actor *auth.Actor, id int64, dto UpdateRequestDTO) (*PermissionRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	if !CanAct(actor, req, OpUpdate) {
		return nil, internal.ErrForbiddenRequest
	}
	if req.Status.IsTerminal() {
		return nil, internal.ErrRequestResolved
	}

	if dto.StartDate != nil {
		req.StartDate = *dto.StartDate
	}
	if dto.EndDate != nil {
		req.EndDate = *dto.EndDate
	}
	if dto.Reason != nil {
		req.Reason = strings.TrimSpace(*dto.Reason)
	}
	if req.StartDate.After(req.EndDate) {
		return nil, internal.NewValidationError("start_date must not be after end_date", internal.ErrCodeInvalidDateRange)
	}

	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to update permission request", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to update permission request", err)
	}

	s.logger.Info("permission request updated", "request_id", id, "user_id", actor.UserID)
	return req, nil
}

// ApproveRequest moves a PENDING request to APPROVED. The transition is a
// conditional write keyed on the current status, so a request racing two
// approvals resolves exactly once and the loser sees Conflict.
func (s *Service) ApproveRequest(ctx context.Context, actor *auth.Actor, id int64) (*PermissionRequest, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	if !CanAct(actor, req, OpApprove) {
		return nil, internal.ErrSectorForbidden
	}

	updated, err := s.repo.UpdateStatusIfPending(id, StatusApproved, nil)
	if err != nil {
		s.logger.Error("failed to approve permission request", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to approve permission request", err)
	}
	if !updated {
		return nil, internal.ErrRequestResolved
	}

	typeName, _ := s.types.TypeName(req.PermissionTypeID)
	s.eventBus.Publish(ctx, events.NewRequestApprovedEvent(
		req.ID, req.UserID, sectorOrZero(req.SectorID),
		typeName, req.StartDate.String(), req.EndDate.String(), actor.UserID))

	s.logger.Info("permission request approved",
		"request_id", id, "approved_by", actor.UserID)

	resolved, err := s.repo.GetByID(id)
	if err != nil {
		req.Status = StatusApproved
		return req, nil
	}
	return resolved, nil
}

// RejectRequest moves a PENDING request to REJECTED with a mandatory reason.
func (s *Service) RejectRequest(ctx context.Context, actor *auth.Actor, id int64, dto RejectDTO) (*PermissionRequest, error) {
	reason := strings.TrimSpace(dto.RejectionReason)
	if reason == "" {
		return nil, internal.NewValidationError("rejection reason is required", internal.ErrCodeMissingReason)
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	if !CanAct(actor, req, OpReject) {
		return nil, internal.ErrSectorForbidden
	}

	updated, err := s.repo.UpdateStatusIfPending(id, StatusRejected, &reason)
	if err != nil {
		s.logger.Error("failed to reject permission request", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to reject permission request", err)
	}
	if !updated {
		return nil, internal.ErrRequestResolved
	}

	typeName, _ := s.types.TypeName(req.PermissionTypeID)
	s.eventBus.Publish(ctx, events.NewRequestRejectedEvent(
		req.ID, req.UserID, sectorOrZero(req.SectorID),
		typeName, req.StartDate.String(), req.EndDate.String(), actor.UserID, reason))

	s.logger.Info("permission request rejected",
		"request_id", id, "rejected_by", actor.UserID)

	resolved, err := s.repo.GetByID(id)
	if err != nil {
		req.Status = StatusRejected
		req.RejectionReason = &reason
		return req, nil
	}
	return resolved, nil
}

func sectorOrZero(sectorID *int64) int64 {
	if sectorID == nil {
		return 0
	}
	return *sectorID
}
