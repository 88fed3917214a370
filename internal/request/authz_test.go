package request_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/request"
	"github.com/frahmantamala/permission-management/internal/user"
)

func int64Ptr(v int64) *int64 {
	return &v
}

var _ = Describe("CanAct", func() {
	var (
		s1 = int64Ptr(1)
		s2 = int64Ptr(2)

		owner      *auth.Actor
		coworker   *auth.Actor
		s1Manager  *auth.Actor
		s2Manager  *auth.Actor
		hr         *auth.Actor
		pendingReq *request.PermissionRequest
	)

	BeforeEach(func() {
		owner = &auth.Actor{UserID: 10, Role: user.RoleEmployee, SectorID: s1}
		coworker = &auth.Actor{UserID: 11, Role: user.RoleEmployee, SectorID: s1}
		s1Manager = &auth.Actor{UserID: 20, Role: user.RoleManager, SectorID: s1, ManagedSectorID: s1}
		s2Manager = &auth.Actor{UserID: 21, Role: user.RoleManager, SectorID: s2, ManagedSectorID: s2}
		hr = &auth.Actor{UserID: 30, Role: user.RoleHR}

		pendingReq = &request.PermissionRequest{
			ID:       100,
			UserID:   owner.UserID,
			SectorID: s1,
			Status:   request.StatusPending,
		}
	})

	Describe("viewing a request", func() {
		It("allows the owner", func() {
			Expect(request.CanAct(owner, pendingReq, request.OpView)).To(BeTrue())
		})

		It("allows the manager of the owning sector", func() {
			Expect(request.CanAct(s1Manager, pendingReq, request.OpView)).To(BeTrue())
		})

		It("allows HR", func() {
			Expect(request.CanAct(hr, pendingReq, request.OpView)).To(BeTrue())
		})

		It("denies a manager of another sector", func() {
			Expect(request.CanAct(s2Manager, pendingReq, request.OpView)).To(BeFalse())
		})

		It("denies a coworker in the same sector", func() {
			Expect(request.CanAct(coworker, pendingReq, request.OpView)).To(BeFalse())
		})
	})

	Describe("approving and rejecting", func() {
		It("allows the manager of the owning sector", func() {
			Expect(request.CanAct(s1Manager, pendingReq, request.OpApprove)).To(BeTrue())
			Expect(request.CanAct(s1Manager, pendingReq, request.OpReject)).To(BeTrue())
		})

		It("allows HR", func() {
			Expect(request.CanAct(hr, pendingReq, request.OpApprove)).To(BeTrue())
		})

		It("denies a manager of another sector", func() {
			Expect(request.CanAct(s2Manager, pendingReq, request.OpApprove)).To(BeFalse())
			Expect(request.CanAct(s2Manager, pendingReq, request.OpReject)).To(BeFalse())
		})

		It("denies the owner approving their own request", func() {
			Expect(request.CanAct(owner, pendingReq, request.OpApprove)).To(BeFalse())
		})

		It("is scoped to the request's frozen sector, not the manager's current one", func() {
			// Manager whose membership moved to S1 but who still heads S2.
			moved := &auth.Actor{UserID: 22, Role: user.RoleManager, SectorID: s1, ManagedSectorID: s2}
			Expect(request.CanAct(moved, pendingReq, request.OpApprove)).To(BeFalse())
		})
	})

	Describe("updating", func() {
		It("allows the owner and HR only", func() {
			Expect(request.CanAct(owner, pendingReq, request.OpUpdate)).To(BeTrue())
			Expect(request.CanAct(hr, pendingReq, request.OpUpdate)).To(BeTrue())
			Expect(request.CanAct(s1Manager, pendingReq, request.OpUpdate)).To(BeFalse())
		})
	})

	Describe("attachment operations", func() {
		It("follows the view rule", func() {
			Expect(request.CanAct(owner, pendingReq, request.OpAttachmentView)).To(BeTrue())
			Expect(request.CanAct(s1Manager, pendingReq, request.OpAttachmentView)).To(BeTrue())
			Expect(request.CanAct(s2Manager, pendingReq, request.OpAttachmentView)).To(BeFalse())
			Expect(request.CanAct(coworker, pendingReq, request.OpAttachmentDelete)).To(BeFalse())
		})
	})

	It("denies nil actors and requests", func() {
		Expect(request.CanAct(nil, pendingReq, request.OpView)).To(BeFalse())
		Expect(request.CanAct(owner, nil, request.OpView)).To(BeFalse())
	})
})

var _ = Describe("ListScope", func() {
	s1 := int64Ptr(1)
	s2 := int64Ptr(2)

	It("passes the requested filter through for HR", func() {
		hr := &auth.Actor{UserID: 30, Role: user.RoleHR}

		scope, err := request.ListScope(hr, s2)
		Expect(err).ToNot(HaveOccurred())
		Expect(scope).To(Equal(s2))

		scope, err = request.ListScope(hr, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(scope).To(BeNil())
	})

	It("pins a manager to their managed sector whatever they ask for", func() {
		manager := &auth.Actor{UserID: 20, Role: user.RoleManager, SectorID: s1, ManagedSectorID: s1}

		scope, err := request.ListScope(manager, s2)
		Expect(err).ToNot(HaveOccurred())
		Expect(scope).To(Equal(s1))
	})

	It("rejects a manager with no managed sector", func() {
		broken := &auth.Actor{UserID: 23, Role: user.RoleManager}
		_, err := request.ListScope(broken, nil)
		Expect(err).To(Equal(request.ErrNoManagedSector))
	})

	It("rejects employees", func() {
		employee := &auth.Actor{UserID: 10, Role: user.RoleEmployee, SectorID: s1}
		_, err := request.ListScope(employee, nil)
		Expect(err).To(Equal(request.ErrListForbidden))
	})
})
