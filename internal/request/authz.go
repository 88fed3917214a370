package request

import (
	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/user"
)

// Operation is a lifecycle action evaluated against a specific request.
type Operation int

const (
	OpView Operation = iota
	OpUpdate
	OpApprove
	OpReject
	OpAttachmentView
	OpAttachmentUpload
	OpAttachmentDelete
)

// CanAct is the single authorization decision for request-scoped operations.
// Privilege is resource-scoped: a manager's reach is always intersected with
// the request's frozen sector, never the actor's current sector or anything
// the client supplied. Status preconditions (pending-only transitions) are
// checked separately so callers can distinguish Forbidden from Conflict.
func CanAct(actor *auth.Actor, req *PermissionRequest, op Operation) bool {
	if actor == nil || req == nil {
		return false
	}

	switch op {
	case OpView, OpAttachmentView, OpAttachmentUpload, OpAttachmentDelete:
		return actor.IsHR() ||
			actor.ManagesSector(req.SectorID) ||
			actor.UserID == req.UserID

	case OpUpdate:
		return actor.IsHR() || actor.UserID == req.UserID

	case OpApprove, OpReject:
		return actor.IsHR() || actor.ManagesSector(req.SectorID)
	}

	return false
}

// ListScope resolves the sector filter a list operation is allowed to use.
// HR passes any requested filter through; a manager is always pinned to the
// sector they head, whatever they asked for; employees get no cross-user
// listing at all and fall back to their own requests.
func ListScope(actor *auth.Actor, requestedSectorID *int64) (*int64, error) {
	switch actor.Role {
	case user.RoleHR:
		return requestedSectorID, nil
	case user.RoleManager:
		if actor.ManagedSectorID == nil {
			return nil, ErrNoManagedSector
		}
		return actor.ManagedSectorID, nil
	}
	return nil, ErrListForbidden
}
