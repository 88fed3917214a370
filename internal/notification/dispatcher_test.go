package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/permission-management/internal/core/events"
	"github.com/frahmantamala/permission-management/internal/notification"
	"github.com/frahmantamala/permission-management/internal/user"
)

func TestNotificationDispatcher(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Dispatcher Suite")
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type recordingMailer struct {
	sent    []sentMail
	sendErr error
}

func (m *recordingMailer) Send(to, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type mockUserDirectory struct {
	users    map[int64]*user.User
	managers map[int64]*user.User
}

func (m *mockUserDirectory) GetByID(id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserDirectory) ManagerOfSector(sectorID int64) (*user.User, error) {
	u, ok := m.managers[sectorID]
	if !ok {
		return nil, errors.New("no manager")
	}
	return u, nil
}

func (m *mockUserDirectory) ListByRole(role user.Role) ([]*user.User, error) {
	var out []*user.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

var _ = Describe("Dispatcher", func() {
	var (
		dispatcher *notification.Dispatcher
		mailer     *recordingMailer
		users      *mockUserDirectory
		ctx        context.Context
	)

	BeforeEach(func() {
		mailer = &recordingMailer{}
		users = &mockUserDirectory{
			users: map[int64]*user.User{
				10: {ID: 10, Name: "Alice", Email: "alice@example.com", Role: user.RoleEmployee},
				20: {ID: 20, Name: "Bob", Email: "bob@example.com", Role: user.RoleManager},
				30: {ID: 30, Name: "Carmen", Email: "carmen@example.com", Role: user.RoleHR},
			},
			managers: map[int64]*user.User{},
		}
		users.managers[1] = users.users[20]

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		dispatcher = notification.NewDispatcher(mailer, users, logger)
		ctx = context.Background()
	})

	Describe("HandleRequestCreated", func() {
		It("mails the owner and the sector manager", func() {
			event := events.NewRequestCreatedEvent(100, 10, 1, "Medical", "2024-03-01", "2024-03-03", "checkup")

			Expect(dispatcher.HandleRequestCreated(ctx, event)).To(Succeed())

			Expect(mailer.sent).To(HaveLen(2))
			Expect(mailer.sent[0].To).To(Equal("alice@example.com"))
			Expect(mailer.sent[1].To).To(Equal("bob@example.com"))
			Expect(mailer.sent[1].Body).To(ContainSubstring("Alice"))
			Expect(mailer.sent[1].Body).To(ContainSubstring("Medical"))
		})

		It("skips the manager notice when the manager is the requester", func() {
			event := events.NewRequestCreatedEvent(101, 20, 1, "Vacation", "2024-04-01", "2024-04-05", "holiday")

			Expect(dispatcher.HandleRequestCreated(ctx, event)).To(Succeed())

			Expect(mailer.sent).To(HaveLen(1))
			Expect(mailer.sent[0].To).To(Equal("bob@example.com"))
		})

		It("still confirms to the owner when the sector has no manager", func() {
			event := events.NewRequestCreatedEvent(102, 10, 7, "Medical", "2024-03-01", "2024-03-03", "checkup")

			Expect(dispatcher.HandleRequestCreated(ctx, event)).To(Succeed())
			Expect(mailer.sent).To(HaveLen(1))
		})
	})

	Describe("HandleRequestResolved", func() {
		It("mails the owner and HR naming the approver", func() {
			event := events.NewRequestApprovedEvent(100, 10, 1, "Medical", "2024-03-01", "2024-03-03", 20)

			Expect(dispatcher.HandleRequestResolved(ctx, event)).To(Succeed())

			Expect(mailer.sent).To(HaveLen(2))
			Expect(mailer.sent[0].To).To(Equal("alice@example.com"))
			Expect(mailer.sent[0].Body).To(ContainSubstring("aprobada"))
			Expect(mailer.sent[1].To).To(Equal("carmen@example.com"))
			Expect(mailer.sent[1].Subject).To(ContainSubstring("Bob"))
		})

		It("includes the rejection reason", func() {
			event := events.NewRequestRejectedEvent(100, 10, 1, "Medical", "2024-03-01", "2024-03-03", 20, "no coverage")

			Expect(dispatcher.HandleRequestResolved(ctx, event)).To(Succeed())

			Expect(mailer.sent[0].Body).To(ContainSubstring("rechazada"))
			Expect(mailer.sent[0].Body).To(ContainSubstring("no coverage"))
		})

		It("does not re-notify the HR user who resolved the request", func() {
			event := events.NewRequestApprovedEvent(100, 10, 1, "Medical", "2024-03-01", "2024-03-03", 30)

			Expect(dispatcher.HandleRequestResolved(ctx, event)).To(Succeed())

			for _, mail := range mailer.sent {
				Expect(mail.To).ToNot(Equal("carmen@example.com"))
			}
		})
	})

	Describe("SendPasswordReset", func() {
		It("renders the reset link", func() {
			err := dispatcher.SendPasswordReset("alice@example.com", "Alice", "https://app/reset?token=abc")

			Expect(err).ToNot(HaveOccurred())
			Expect(mailer.sent).To(HaveLen(1))
			Expect(mailer.sent[0].Body).To(ContainSubstring("https://app/reset?token=abc"))
		})

		It("propagates mailer failures", func() {
			mailer.sendErr = errors.New("smtp down")
			err := dispatcher.SendPasswordReset("alice@example.com", "Alice", "https://app/reset?token=abc")
			Expect(err).To(HaveOccurred())
		})
	})
})
