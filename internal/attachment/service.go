package attachment

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/permission-management/internal"
	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/request"
	"github.com/frahmantamala/permission-management/internal/storage"
)

// Repository defines the data access methods for attachment metadata.
type Repository interface {
	Create(att *request.Attachment) error
	GetByID(id int64) (*request.Attachment, error)
	ListByRequest(requestID int64) ([]*request.Attachment, error)
	Delete(id int64) error
}

// RequestDirectory resolves the owning request for authorization checks.
type RequestDirectory interface {
	GetByID(id int64) (*request.PermissionRequest, error)
}

type Service struct {
	repo     Repository
	requests RequestDirectory
	storage  storage.ObjectStorage
	logger   *slog.Logger
}

func NewService(repo Repository, requests RequestDirectory, store storage.ObjectStorage, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		requests: requests,
		storage:  store,
		logger:   logger,
	}
}

// UploadTicket is the pre-signed upload grant handed to the browser. The
// client PUTs the bytes straight to the bucket and then references Key when
// creating or amending a request.
type UploadTicket struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

// IssueUploadURL grants a time-limited direct upload slot. Keys are
// namespaced and timestamped so simultaneous uploads of the same filename
// never collide.
func (s *Service) IssueUploadURL(ctx context.Context, fileName, contentType string) (*UploadTicket, error) {
	if fileName == "" {
		return nil, internal.NewValidationError("file_name is required", internal.ErrCodeMissingFields)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := s.storage.BuildKey(fileName)
	uploadURL, err := s.storage.IssueUploadURL(ctx, key, contentType)
	if err != nil {
		s.logger.Error("failed to issue upload URL", "error", err, "file_name", fileName)
		return nil, internal.NewInternalError("failed to issue upload URL", err)
	}

	return &UploadTicket{Key: key, UploadURL: uploadURL}, nil
}

// AddAttachment records metadata for an already-uploaded object against an
// existing request. Attachments may be added regardless of request status.
func (s *Service) AddAttachment(actor *auth.Actor, requestID int64, seed request.AttachmentSeed) (*request.Attachment, error) {
	if seed.FileName == "" || seed.URL == "" {
		return nil, internal.NewValidationError("file_name and url are required", internal.ErrCodeMissingFields)
	}

	req, err := s.requests.GetByID(requestID)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}
	if !request.CanAct(actor, req, request.OpAttachmentUpload) {
		return nil, internal.ErrForbiddenRequest
	}

	att := &request.Attachment{
		PermissionRequestID: requestID,
		FileName:            seed.FileName,
		URL:                 seed.URL,
		UploadedByID:        actor.UserID,
	}
	if err := s.repo.Create(att); err != nil {
		s.logger.Error("failed to create attachment", "error", err, "request_id", requestID)
		return nil, internal.NewInternalError("failed to create attachment", err)
	}

	s.logger.Info("attachment added", "attachment_id", att.ID, "request_id", requestID, "uploaded_by", actor.UserID)
	return att, nil
}

func (s *Service) ListAttachments(actor *auth.Actor, requestID int64) ([]*request.Attachment, error) {
	req, err := s.requests.GetByID(requestID)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}
	if !request.CanAct(actor, req, request.OpAttachmentView) {
		return nil, internal.ErrForbiddenRequest
	}

	atts, err := s.repo.ListByRequest(requestID)
	if err != nil {
		s.logger.Error("failed to list attachments", "error", err, "request_id", requestID)
		return nil, err
	}
	return atts, nil
}

// DownloadURL resolves an attachment to a time-limited signed URL.
func (s *Service) DownloadURL(ctx context.Context, actor *auth.Actor, attachmentID int64) (string, error) {
	att, err := s.repo.GetByID(attachmentID)
	if err != nil {
		return "", internal.ErrAttachmentNotFound
	}

	req, err := s.requests.GetByID(att.PermissionRequestID)
	if err != nil {
		return "", internal.ErrRequestNotFound
	}
	if !request.CanAct(actor, req, request.OpAttachmentView) {
		return "", internal.ErrForbiddenRequest
	}

	url, err := s.storage.IssueDownloadURL(ctx, att.FileName)
	if err != nil {
		s.logger.Error("failed to issue download URL", "error", err, "attachment_id", attachmentID)
		return "", internal.NewInternalError("failed to issue download URL", err)
	}
	return url, nil
}

// DeleteAttachment removes the metadata row and best-effort deletes the
// object. The sector/ownership rule applies, and the uploader may always
// remove their own upload.
func (s *Service) DeleteAttachment(ctx context.Context, actor *auth.Actor, attachmentID int64) error {
	att, err := s.repo.GetByID(attachmentID)
	if err != nil {
		return internal.ErrAttachmentNotFound
	}

	req, err := s.requests.GetByID(att.PermissionRequestID)
	if err != nil {
		return internal.ErrRequestNotFound
	}

	if !request.CanAct(actor, req, request.OpAttachmentDelete) && actor.UserID != att.UploadedByID {
		return internal.ErrForbiddenRequest
	}

	if err := s.repo.Delete(attachmentID); err != nil {
		s.logger.Error("failed to delete attachment", "error", err, "attachment_id", attachmentID)
		return internal.NewInternalError("failed to delete attachment", err)
	}

	// The metadata row is the source of truth; an orphaned object is
	// acceptable, a dangling row is not.
	if err := s.storage.Delete(ctx, att.FileName); err != nil {
		s.logger.Warn("failed to delete object from storage", "error", err, "key", att.FileName)
	}

	s.logger.Info("attachment deleted", "attachment_id", attachmentID, "deleted_by", actor.UserID)
	return nil
}
