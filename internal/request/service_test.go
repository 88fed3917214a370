package request_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/permission-management/internal"
	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/core/events"
	"github.com/frahmantamala/permission-management/internal/request"
	"github.com/frahmantamala/permission-management/internal/user"
)

func TestRequestService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Request Service Suite")
}

type mockRequestRepository struct {
	requests map[int64]*request.PermissionRequest
	nextID   int64
}

func newMockRequestRepository() *mockRequestRepository {
	return &mockRequestRepository{
		requests: make(map[int64]*request.PermissionRequest),
		nextID:   1,
	}
}

func (m *mockRequestRepository) Create(req *request.PermissionRequest) error {
	req.ID = m.nextID
	m.nextID++
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	for i := range req.Attachments {
		req.Attachments[i].ID = int64(i + 1)
		req.Attachments[i].PermissionRequestID = req.ID
	}
	copied := *req
	m.requests[req.ID] = &copied
	return nil
}

func (m *mockRequestRepository) GetByID(id int64) (*request.PermissionRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, request.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *mockRequestRepository) GetByUser(userID int64) ([]*request.PermissionRequest, error) {
	var out []*request.PermissionRequest
	for _, req := range m.requests {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *mockRequestRepository) GetAll(filter request.ListFilter) ([]*request.PermissionRequest, error) {
	var out []*request.PermissionRequest
	for _, req := range m.requests {
		if filter.SectorID != nil && (req.SectorID == nil || *req.SectorID != *filter.SectorID) {
			continue
		}
		if filter.UserID != nil && req.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (m *mockRequestRepository) Update(req *request.PermissionRequest) error {
	stored, ok := m.requests[req.ID]
	if !ok {
		return request.ErrNotFound
	}
	stored.StartDate = req.StartDate
	stored.EndDate = req.EndDate
	stored.Reason = req.Reason
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *mockRequestRepository) UpdateStatusIfPending(id int64, status request.Status, rejectionReason *string) (bool, error) {
	stored, ok := m.requests[id]
	if !ok || stored.Status != request.StatusPending {
		return false, nil
	}
	stored.Status = status
	stored.RejectionReason = rejectionReason
	stored.UpdatedAt = time.Now()
	return true, nil
}

type mockTypeDirectory struct {
	names map[int64]string
}

func (m *mockTypeDirectory) TypeName(id int64) (string, error) {
	name, ok := m.names[id]
	if !ok {
		return "", request.ErrNotFound
	}
	return name, nil
}

var _ = Describe("RequestService", func() {
	var (
		svc       *request.Service
		mockRepo  *mockRequestRepository
		mockTypes *mockTypeDirectory
		bus       *events.EventBus
		logger    *slog.Logger
		ctx       context.Context

		s1, s2    *int64
		owner     *auth.Actor
		s1Manager *auth.Actor
		s2Manager *auth.Actor
		hr        *auth.Actor
	)

	newPending := func(actor *auth.Actor) *request.PermissionRequest {
		req, err := svc.CreateRequest(ctx, actor, request.CreateRequestDTO{
			PermissionTypeID: 1,
			StartDate:        request.NewDate(2024, 3, 1),
			EndDate:          request.NewDate(2024, 3, 3),
			Reason:           "checkup",
		})
		Expect(err).ToNot(HaveOccurred())
		return req
	}

	BeforeEach(func() {
		mockRepo = newMockRequestRepository()
		mockTypes = &mockTypeDirectory{names: map[int64]string{1: "Medical", 2: "Vacation"}}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		svc = request.NewService(mockRepo, mockTypes, bus, logger)
		ctx = context.Background()

		one, two := int64(1), int64(2)
		s1, s2 = &one, &two
		owner = &auth.Actor{UserID: 10, Role: user.RoleEmployee, SectorID: s1}
		s1Manager = &auth.Actor{UserID: 20, Role: user.RoleManager, SectorID: s1, ManagedSectorID: s1}
		s2Manager = &auth.Actor{UserID: 21, Role: user.RoleManager, SectorID: s2, ManagedSectorID: s2}
		hr = &auth.Actor{UserID: 30, Role: user.RoleHR}
	})

	Describe("CreateRequest", func() {
		It("creates a pending request owned by the actor's sector", func() {
			req := newPending(owner)

			Expect(req.Status).To(Equal(request.StatusPending))
			Expect(req.UserID).To(Equal(owner.UserID))
			Expect(req.SectorID).To(Equal(s1))
			Expect(req.StartDate.String()).To(Equal("2024-03-01"))
			Expect(req.EndDate.String()).To(Equal("2024-03-03"))
		})

		It("records attachment metadata alongside the request", func() {
			req, err := svc.CreateRequest(ctx, owner, request.CreateRequestDTO{
				PermissionTypeID: 1,
				StartDate:        request.NewDate(2024, 3, 1),
				EndDate:          request.NewDate(2024, 3, 3),
				Reason:           "checkup",
				Attachments: []request.AttachmentSeed{
					{FileName: "permisos/1709200000-scan.pdf", URL: "https://storage/permisos/1709200000-scan.pdf"},
				},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(req.Attachments).To(HaveLen(1))
			Expect(req.Attachments[0].UploadedByID).To(Equal(owner.UserID))
		})

		It("rejects a start date after the end date", func() {
			_, err := svc.CreateRequest(ctx, owner, request.CreateRequestDTO{
				PermissionTypeID: 1,
				StartDate:        request.NewDate(2024, 3, 5),
				EndDate:          request.NewDate(2024, 3, 3),
				Reason:           "checkup",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects a missing reason", func() {
			_, err := svc.CreateRequest(ctx, owner, request.CreateRequestDTO{
				PermissionTypeID: 1,
				StartDate:        request.NewDate(2024, 3, 1),
				EndDate:          request.NewDate(2024, 3, 3),
				Reason:           "   ",
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects an unknown permission type", func() {
			_, err := svc.CreateRequest(ctx, owner, request.CreateRequestDTO{
				PermissionTypeID: 999,
				StartDate:        request.NewDate(2024, 3, 1),
				EndDate:          request.NewDate(2024, 3, 3),
				Reason:           "checkup",
			})
			Expect(err).To(Equal(internal.ErrTypeNotFound))
		})

		It("ignores any client-supplied sector", func() {
			// The DTO has no sector field at all; verify the stored value
			// came from the actor.
			req := newPending(hr)
			Expect(req.SectorID).To(BeNil())
		})
	})

	Describe("ApproveRequest", func() {
		It("lets the sector manager approve a pending request", func() {
			req := newPending(owner)

			approved, err := svc.ApproveRequest(ctx, s1Manager, req.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(approved.Status).To(Equal(request.StatusApproved))
		})

		It("lets HR approve any request", func() {
			req := newPending(owner)

			approved, err := svc.ApproveRequest(ctx, hr, req.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(approved.Status).To(Equal(request.StatusApproved))
		})

		It("returns Conflict on a second approval", func() {
			req := newPending(owner)

			_, err := svc.ApproveRequest(ctx, s1Manager, req.ID)
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.ApproveRequest(ctx, s1Manager, req.ID)
			Expect(err).To(Equal(internal.ErrRequestResolved))
		})

		It("forbids a manager of another sector", func() {
			req := newPending(owner)

			_, err := svc.ApproveRequest(ctx, s2Manager, req.ID)
			Expect(err).To(Equal(internal.ErrSectorForbidden))

			fetched, ferr := svc.GetRequest(hr, req.ID)
			Expect(ferr).ToNot(HaveOccurred())
			Expect(fetched.Status).To(Equal(request.StatusPending))
		})

		It("returns NotFound for an unknown request", func() {
			_, err := svc.ApproveRequest(ctx, hr, 9999)
			Expect(err).To(Equal(internal.ErrRequestNotFound))
		})
	})

	Describe("RejectRequest", func() {
		It("stores the rejection reason", func() {
			req := newPending(owner)

			rejected, err := svc.RejectRequest(ctx, s1Manager, req.ID, request.RejectDTO{
				RejectionReason: "insufficient coverage that week",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(rejected.Status).To(Equal(request.StatusRejected))
			Expect(rejected.RejectionReason).ToNot(BeNil())
			Expect(*rejected.RejectionReason).To(Equal("insufficient coverage that week"))
		})

		It("requires a rejection reason and leaves status unchanged without one", func() {
			req := newPending(owner)

			_, err := svc.RejectRequest(ctx, s1Manager, req.ID, request.RejectDTO{RejectionReason: "  "})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMissingReason))

			fetched, ferr := svc.GetRequest(hr, req.ID)
			Expect(ferr).ToNot(HaveOccurred())
			Expect(fetched.Status).To(Equal(request.StatusPending))
		})

		It("returns Conflict when rejecting an approved request", func() {
			req := newPending(owner)

			_, err := svc.ApproveRequest(ctx, s1Manager, req.ID)
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.RejectRequest(ctx, s1Manager, req.ID, request.RejectDTO{RejectionReason: "too late"})
			Expect(err).To(Equal(internal.ErrRequestResolved))
		})
	})

	Describe("UpdateRequest", func() {
		It("lets the owner edit a pending request", func() {
			req := newPending(owner)

			newReason := "follow-up appointment"
			updated, err := svc.UpdateRequest(owner, req.ID, request.UpdateRequestDTO{Reason: &newReason})
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Reason).To(Equal(newReason))
		})

		It("returns Conflict once the request is resolved", func() {
			req := newPending(owner)
			_, err := svc.ApproveRequest(ctx, s1Manager, req.ID)
			Expect(err).ToNot(HaveOccurred())

			newReason := "changed my mind"
			_, err = svc.UpdateRequest(owner, req.ID, request.UpdateRequestDTO{Reason: &newReason})
			Expect(err).To(Equal(internal.ErrRequestResolved))
		})

		It("forbids editing someone else's request", func() {
			req := newPending(owner)

			newReason := "not yours"
			_, err := svc.UpdateRequest(s1Manager, req.ID, request.UpdateRequestDTO{Reason: &newReason})
			Expect(err).To(Equal(internal.ErrForbiddenRequest))
		})

		It("re-validates date ordering after the merge", func() {
			req := newPending(owner)

			late := request.NewDate(2024, 3, 10)
			_, err := svc.UpdateRequest(owner, req.ID, request.UpdateRequestDTO{StartDate: &late})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDateRange))
		})
	})

	Describe("GetRequest", func() {
		It("forbids a manager of another sector", func() {
			req := newPending(owner)

			_, err := svc.GetRequest(s2Manager, req.ID)
			Expect(err).To(Equal(internal.ErrForbiddenRequest))
		})

		It("round-trips dates without drift", func() {
			req := newPending(owner)

			fetched, err := svc.GetRequest(owner, req.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(fetched.StartDate.String()).To(Equal("2024-03-01"))
			Expect(fetched.EndDate.String()).To(Equal("2024-03-03"))
		})
	})

	Describe("ListPending", func() {
		It("pins a manager to their own sector even with an explicit filter", func() {
			newPending(owner)

			other := &auth.Actor{UserID: 12, Role: user.RoleEmployee, SectorID: s2}
			newPending(other)

			reqs, err := svc.ListPending(s1Manager, s2)
			Expect(err).ToNot(HaveOccurred())
			Expect(reqs).To(HaveLen(1))
			Expect(reqs[0].SectorID).To(Equal(s1))
		})

		It("forbids employees", func() {
			_, err := svc.ListPending(owner, nil)
			Expect(err).To(Equal(internal.ErrForbiddenRequest))
		})

		It("excludes resolved requests", func() {
			req := newPending(owner)
			_, err := svc.ApproveRequest(ctx, s1Manager, req.ID)
			Expect(err).ToNot(HaveOccurred())

			reqs, err := svc.ListPending(s1Manager, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(reqs).To(BeEmpty())
		})
	})

	Describe("ListAll", func() {
		It("returns everything for HR", func() {
			newPending(owner)
			other := &auth.Actor{UserID: 12, Role: user.RoleEmployee, SectorID: s2}
			newPending(other)

			reqs, err := svc.ListAll(hr, nil, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(reqs).To(HaveLen(2))
		})

		It("falls back to own requests for employees", func() {
			newPending(owner)
			other := &auth.Actor{UserID: 12, Role: user.RoleEmployee, SectorID: s1}
			newPending(other)

			reqs, err := svc.ListAll(owner, nil, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(reqs).To(HaveLen(1))
			Expect(reqs[0].UserID).To(Equal(owner.UserID))
		})
	})
})
