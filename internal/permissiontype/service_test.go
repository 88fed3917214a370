package permissiontype_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/permission-management/internal/permissiontype"
)

func TestPermissionTypeService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PermissionType Service Suite")
}

type mockTypeRepository struct {
	types         map[int64]*permissiontype.PermissionType
	requestCounts map[int64]int64
	nextID        int64
}

func newMockTypeRepository() *mockTypeRepository {
	return &mockTypeRepository{
		types:         make(map[int64]*permissiontype.PermissionType),
		requestCounts: make(map[int64]int64),
		nextID:        1,
	}
}

func (m *mockTypeRepository) Create(t *permissiontype.PermissionType) error {
	t.ID = m.nextID
	m.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	m.types[t.ID] = t
	return nil
}

func (m *mockTypeRepository) GetByID(id int64) (*permissiontype.PermissionType, error) {
	t, ok := m.types[id]
	if !ok {
		return nil, permissiontype.ErrNotFound
	}
	return t, nil
}

func (m *mockTypeRepository) GetByName(name string) (*permissiontype.PermissionType, error) {
	for _, t := range m.types {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, permissiontype.ErrNotFound
}

func (m *mockTypeRepository) GetAll() ([]*permissiontype.PermissionType, error) {
	out := make([]*permissiontype.PermissionType, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTypeRepository) Update(t *permissiontype.PermissionType) error {
	m.types[t.ID] = t
	return nil
}

func (m *mockTypeRepository) Delete(id int64) error {
	if _, ok := m.types[id]; !ok {
		return permissiontype.ErrNotFound
	}
	delete(m.types, id)
	return nil
}

func (m *mockTypeRepository) RequestCount(id int64) (int64, error) {
	return m.requestCounts[id], nil
}

var _ = Describe("PermissionTypeService", func() {
	var (
		svc      *permissiontype.Service
		mockRepo *mockTypeRepository
		logger   *slog.Logger
	)

	BeforeEach(func() {
		mockRepo = newMockTypeRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = permissiontype.NewService(mockRepo, logger)
	})

	Describe("CreateType", func() {
		It("should create a permission type", func() {
			result, err := svc.CreateType(permissiontype.CreateTypeDTO{
				Name:        "Vacation",
				Description: "Annual leave",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ID).To(BeNumerically(">", 0))
			Expect(result.Name).To(Equal("Vacation"))
		})

		It("should reject an empty name", func() {
			_, err := svc.CreateType(permissiontype.CreateTypeDTO{Name: ""})
			Expect(err).To(HaveOccurred())
		})

		It("should reject a duplicate name", func() {
			_, err := svc.CreateType(permissiontype.CreateTypeDTO{Name: "Vacation"})
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.CreateType(permissiontype.CreateTypeDTO{Name: "Vacation"})
			Expect(err).To(Equal(permissiontype.ErrNameTaken))
		})
	})

	Describe("UpdateType", func() {
		It("should rename a type", func() {
			created, err := svc.CreateType(permissiontype.CreateTypeDTO{Name: "Medical"})
			Expect(err).ToNot(HaveOccurred())

			newName := "Medical Leave"
			result, err := svc.UpdateType(created.ID, permissiontype.UpdateTypeDTO{Name: &newName})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Name).To(Equal(newName))
		})

		It("should return not found for an unknown type", func() {
			name := "Whatever"
			_, err := svc.UpdateType(9999, permissiontype.UpdateTypeDTO{Name: &name})
			Expect(err).To(Equal(permissiontype.ErrNotFound))
		})
	})

	Describe("DeleteType", func() {
		It("should delete an unused type", func() {
			created, err := svc.CreateType(permissiontype.CreateTypeDTO{Name: "Study"})
			Expect(err).ToNot(HaveOccurred())

			Expect(svc.DeleteType(created.ID)).To(Succeed())

			_, err = svc.GetType(created.ID)
			Expect(err).To(Equal(permissiontype.ErrNotFound))
		})

		It("should refuse to delete a type referenced by requests", func() {
			created, err := svc.CreateType(permissiontype.CreateTypeDTO{Name: "Vacation"})
			Expect(err).ToNot(HaveOccurred())
			mockRepo.requestCounts[created.ID] = 5

			err = svc.DeleteType(created.ID)
			Expect(err).To(Equal(permissiontype.ErrInUse))
		})
	})

	Describe("Exists", func() {
		It("should report known and unknown types", func() {
			created, err := svc.CreateType(permissiontype.CreateTypeDTO{Name: "Known"})
			Expect(err).ToNot(HaveOccurred())

			ok, err := svc.Exists(created.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = svc.Exists(9999)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})
