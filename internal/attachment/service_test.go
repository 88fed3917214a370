package attachment_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/permission-management/internal"
	"github.com/frahmantamala/permission-management/internal/attachment"
	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/request"
	"github.com/frahmantamala/permission-management/internal/user"
)

func TestAttachmentService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Attachment Service Suite")
}

type mockAttachmentRepository struct {
	attachments map[int64]*request.Attachment
	nextID      int64
}

func newMockAttachmentRepository() *mockAttachmentRepository {
	return &mockAttachmentRepository{
		attachments: make(map[int64]*request.Attachment),
		nextID:      1,
	}
}

func (m *mockAttachmentRepository) Create(att *request.Attachment) error {
	att.ID = m.nextID
	m.nextID++
	m.attachments[att.ID] = att
	return nil
}

func (m *mockAttachmentRepository) GetByID(id int64) (*request.Attachment, error) {
	att, ok := m.attachments[id]
	if !ok {
		return nil, internal.ErrAttachmentNotFound
	}
	return att, nil
}

func (m *mockAttachmentRepository) ListByRequest(requestID int64) ([]*request.Attachment, error) {
	var out []*request.Attachment
	for _, att := range m.attachments {
		if att.PermissionRequestID == requestID {
			out = append(out, att)
		}
	}
	return out, nil
}

func (m *mockAttachmentRepository) Delete(id int64) error {
	if _, ok := m.attachments[id]; !ok {
		return internal.ErrAttachmentNotFound
	}
	delete(m.attachments, id)
	return nil
}

type mockRequestDirectory struct {
	requests map[int64]*request.PermissionRequest
}

func (m *mockRequestDirectory) GetByID(id int64) (*request.PermissionRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, request.ErrNotFound
	}
	return req, nil
}

type mockStorage struct {
	deletedKeys []string
	deleteErr   error
}

func (m *mockStorage) IssueUploadURL(_ context.Context, key, _ string) (string, error) {
	return "https://storage.example.com/upload/" + key, nil
}

func (m *mockStorage) IssueDownloadURL(_ context.Context, key string) (string, error) {
	return "https://storage.example.com/download/" + key, nil
}

func (m *mockStorage) Delete(_ context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedKeys = append(m.deletedKeys, key)
	return nil
}

func (m *mockStorage) BuildKey(fileName string) string {
	return "permisos/1709200000-" + fileName
}

var _ = Describe("AttachmentService", func() {
	var (
		svc       *attachment.Service
		mockRepo  *mockAttachmentRepository
		mockReqs  *mockRequestDirectory
		mockStore *mockStorage
		ctx       context.Context

		s1, s2    *int64
		owner     *auth.Actor
		s1Manager *auth.Actor
		s2Manager *auth.Actor
		hr        *auth.Actor
	)

	BeforeEach(func() {
		one, two := int64(1), int64(2)
		s1, s2 = &one, &two

		owner = &auth.Actor{UserID: 10, Role: user.RoleEmployee, SectorID: s1}
		s1Manager = &auth.Actor{UserID: 20, Role: user.RoleManager, SectorID: s1, ManagedSectorID: s1}
		s2Manager = &auth.Actor{UserID: 21, Role: user.RoleManager, SectorID: s2, ManagedSectorID: s2}
		hr = &auth.Actor{UserID: 30, Role: user.RoleHR}

		mockRepo = newMockAttachmentRepository()
		mockReqs = &mockRequestDirectory{requests: map[int64]*request.PermissionRequest{
			100: {ID: 100, UserID: owner.UserID, SectorID: s1, Status: request.StatusPending},
		}}
		mockStore = &mockStorage{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = attachment.NewService(mockRepo, mockReqs, mockStore, logger)
		ctx = context.Background()
	})

	Describe("IssueUploadURL", func() {
		It("returns a namespaced key and signed URL", func() {
			ticket, err := svc.IssueUploadURL(ctx, "scan.pdf", "application/pdf")

			Expect(err).ToNot(HaveOccurred())
			Expect(ticket.Key).To(HavePrefix("permisos/"))
			Expect(ticket.UploadURL).To(ContainSubstring(ticket.Key))
		})

		It("requires a file name", func() {
			_, err := svc.IssueUploadURL(ctx, "", "application/pdf")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AddAttachment", func() {
		seed := request.AttachmentSeed{FileName: "permisos/1709200000-scan.pdf", URL: "https://storage/scan.pdf"}

		It("records metadata for the owner", func() {
			att, err := svc.AddAttachment(owner, 100, seed)

			Expect(err).ToNot(HaveOccurred())
			Expect(att.PermissionRequestID).To(Equal(int64(100)))
			Expect(att.UploadedByID).To(Equal(owner.UserID))
		})

		It("forbids a manager of another sector", func() {
			_, err := svc.AddAttachment(s2Manager, 100, seed)
			Expect(err).To(Equal(internal.ErrForbiddenRequest))
		})

		It("returns not found for an unknown request", func() {
			_, err := svc.AddAttachment(owner, 9999, seed)
			Expect(err).To(Equal(internal.ErrRequestNotFound))
		})
	})

	Describe("DownloadURL", func() {
		var attID int64

		BeforeEach(func() {
			att, err := svc.AddAttachment(owner, 100, request.AttachmentSeed{
				FileName: "permisos/1709200000-scan.pdf",
				URL:      "https://storage/scan.pdf",
			})
			Expect(err).ToNot(HaveOccurred())
			attID = att.ID
		})

		It("signs the object key for authorized viewers", func() {
			url, err := svc.DownloadURL(ctx, s1Manager, attID)
			Expect(err).ToNot(HaveOccurred())
			Expect(url).To(ContainSubstring("permisos/1709200000-scan.pdf"))
		})

		It("forbids a manager of another sector", func() {
			_, err := svc.DownloadURL(ctx, s2Manager, attID)
			Expect(err).To(Equal(internal.ErrForbiddenRequest))
		})
	})

	Describe("DeleteAttachment", func() {
		var attID int64

		BeforeEach(func() {
			att, err := svc.AddAttachment(owner, 100, request.AttachmentSeed{
				FileName: "permisos/1709200000-scan.pdf",
				URL:      "https://storage/scan.pdf",
			})
			Expect(err).ToNot(HaveOccurred())
			attID = att.ID
		})

		It("lets the uploader delete their own upload", func() {
			Expect(svc.DeleteAttachment(ctx, owner, attID)).To(Succeed())
			Expect(mockStore.deletedKeys).To(ContainElement("permisos/1709200000-scan.pdf"))
		})

		It("lets HR delete any attachment", func() {
			Expect(svc.DeleteAttachment(ctx, hr, attID)).To(Succeed())
		})

		It("forbids a manager of another sector", func() {
			err := svc.DeleteAttachment(ctx, s2Manager, attID)
			Expect(err).To(Equal(internal.ErrForbiddenRequest))
		})

		It("still succeeds when the storage delete fails", func() {
			mockStore.deleteErr = fmt.Errorf("bucket unavailable")

			Expect(svc.DeleteAttachment(ctx, owner, attID)).To(Succeed())

			_, err := mockRepo.GetByID(attID)
			Expect(err).To(Equal(internal.ErrAttachmentNotFound))
		})
	})
})
