package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/permission-management/internal/core/events"
	"github.com/frahmantamala/permission-management/internal/user"
)

// UserDirectory resolves recipients for lifecycle mail.
type UserDirectory interface {
	GetByID(id int64) (*user.User, error)
	ManagerOfSector(sectorID int64) (*user.User, error)
	ListByRole(role user.Role) ([]*user.User, error)
}

// Dispatcher consumes request lifecycle events and fans them out as email.
// It sits behind the event bus so the lifecycle service never touches the
// mail collaborator directly.
type Dispatcher struct {
	mailer Mailer
	users  UserDirectory
	logger *slog.Logger
}

func NewDispatcher(mailer Mailer, users UserDirectory, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		users:  users,
		logger: logger,
	}
}

// Register subscribes the dispatcher to every lifecycle event it handles.
func (d *Dispatcher) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeRequestCreated, d.HandleRequestCreated)
	bus.Subscribe(events.EventTypeRequestApproved, d.HandleRequestResolved)
	bus.Subscribe(events.EventTypeRequestRejected, d.HandleRequestResolved)
}

// HandleRequestCreated mails a confirmation to the requester and a review
// notice to the owning sector's manager.
func (d *Dispatcher) HandleRequestCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(*events.RequestCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	owner, err := d.users.GetByID(created.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve request owner %d: %w", created.UserID, err)
	}

	data := requestMailData{
		RecipientName: owner.Name,
		OwnerName:     owner.Name,
		TypeName:      created.TypeName,
		StartDate:     created.StartDate,
		EndDate:       created.EndDate,
		Reason:        created.Reason,
	}

	if body, err := render(createdOwnerTmpl, data); err == nil {
		d.send(owner.Email, "Solicitud de permiso registrada", body)
	}

	if created.SectorID == 0 {
		return nil
	}
	manager, err := d.users.ManagerOfSector(created.SectorID)
	if err != nil || manager == nil {
		d.logger.Info("no manager to notify for new request",
			"request_id", created.RequestID, "sector_id", created.SectorID)
		return nil
	}
	// Managers requesting their own leave should not review themselves.
	if manager.ID == owner.ID {
		return nil
	}

	data.RecipientName = manager.Name
	if body, err := render(createdManagerTmpl, data); err == nil {
		d.send(manager.Email, "Nueva solicitud de permiso pendiente", body)
	}
	return nil
}

// HandleRequestResolved mails the requester the outcome and informs HR who
// resolved the request.
func (d *Dispatcher) HandleRequestResolved(ctx context.Context, event events.Event) error {
	resolved, ok := event.(*events.RequestResolvedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	owner, err := d.users.GetByID(resolved.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve request owner %d: %w", resolved.UserID, err)
	}

	resolverName := "el sistema"
	if resolver, err := d.users.GetByID(resolved.ResolvedByID); err == nil {
		resolverName = resolver.Name
	}

	data := requestMailData{
		RecipientName: owner.Name,
		OwnerName:     owner.Name,
		TypeName:      resolved.TypeName,
		StartDate:     resolved.StartDate,
		EndDate:       resolved.EndDate,
		ResolvedBy:    resolverName,
		Rejection:     resolved.RejectionReason,
	}

	approved := event.EventType() == events.EventTypeRequestApproved
	if approved {
		if body, err := render(approvedOwnerTmpl, data); err == nil {
			d.send(owner.Email, "Solicitud de permiso aprobada", body)
		}
	} else {
		if body, err := render(rejectedOwnerTmpl, data); err == nil {
			d.send(owner.Email, "Solicitud de permiso rechazada", body)
		}
	}

	hrUsers, err := d.users.ListByRole(user.RoleHR)
	if err != nil {
		d.logger.Error("failed to resolve HR recipients", "error", err)
		return nil
	}
	subject := fmt.Sprintf("Solicitud de %s resuelta por %s", owner.Name, resolverName)
	for _, hr := range hrUsers {
		// The resolver already knows what they did.
		if hr.ID == resolved.ResolvedByID {
			continue
		}
		data.RecipientName = hr.Name
		if body, err := render(resolvedHRTmpl, data); err == nil {
			d.send(hr.Email, subject, body)
		}
	}
	return nil
}

// SendPasswordReset implements the auth service's mailer dependency.
func (d *Dispatcher) SendPasswordReset(toEmail, toName, resetURL string) error {
	body, err := render(passwordResetTmpl, resetMailData{Name: toName, ResetURL: resetURL})
	if err != nil {
		return err
	}
	return d.mailer.Send(toEmail, "Restablecer contraseña", body)
}

func (d *Dispatcher) send(to, subject, body string) {
	if err := d.mailer.Send(to, subject, body); err != nil {
		d.logger.Error("failed to send notification mail",
			"error", err, "to", to, "subject", subject)
	}
}
