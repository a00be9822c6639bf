package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/events"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/observability"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/repository"
)

// NotificationService computes recipient sets for ticket events and writes
// one notification per recipient. Failures are reported to the caller (the
// fanout worker) which logs and swallows them; they never reach the request
// that triggered the event.
type NotificationService struct {
	notifications repository.NotificationRepository
	accounts      repository.AccountRepository
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, accounts repository.AccountRepository, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		accounts:      accounts,
		logger:        logger,
		metrics:       metrics,
	}
}

// Fanout resolves the event's recipients and inserts the batch.
func (n *NotificationService) Fanout(ctx context.Context, event events.Event) error {
	var (
		batch []domain.Notification
		err   error
	)
	switch event.Type {
	case events.EventTicketCreated:
		batch, err = n.ticketCreatedBatch(ctx, event)
	case events.EventTicketUpdated:
		batch = n.ticketUpdatedBatch(event)
	default:
		n.logger.Warn("unknown fanout event type", zap.String("type", string(event.Type)))
		return nil
	}
	if err != nil {
		n.metrics.RecordFanout(string(event.Type), 0, true)
		return err
	}

	if err := n.notifications.InsertBatch(ctx, batch); err != nil {
		n.metrics.RecordFanout(string(event.Type), 0, true)
		return fmt.Errorf("insert notification batch: %w", err)
	}
	n.metrics.RecordFanout(string(event.Type), len(batch), false)
	n.logger.Info("notifications fanned out",
		zap.String("event", string(event.Type)),
		zap.String("ticket_id", event.Ticket.TicketID),
		zap.Int("recipients", len(batch)))
	return nil
}

// ticketCreatedBatch targets all admins plus staff in the ticket's
// department. An admin holding the department is notified once.
func (n *NotificationService) ticketCreatedBatch(ctx context.Context, event events.Event) ([]domain.Notification, error) {
	ticket := event.Ticket

	admins, err := n.accounts.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	staff, err := n.accounts.ListStaffByDepartment(ctx, ticket.AssignedDepartment)
	if err != nil {
		return nil, fmt.Errorf("list department staff: %w", err)
	}

	seen := make(map[string]struct{}, len(admins)+len(staff))
	recipients := make([]domain.Account, 0, len(admins)+len(staff))
	for _, acct := range append(admins, staff...) {
		if _, dup := seen[acct.ID]; dup {
			continue
		}
		seen[acct.ID] = struct{}{}
		recipients = append(recipients, acct)
	}

	batch := make([]domain.Notification, 0, len(recipients))
	for _, acct := range recipients {
		batch = append(batch, domain.Notification{
			RecipientID: acct.ID,
			Title:       "New complaint filed",
			Message:     fmt.Sprintf("%s filed %s: %s", event.Submitter.Name, ticket.TicketID, ticket.Title),
			Type:        domain.NotificationInfo,
			Link:        "/tickets/" + ticket.TicketID,
			RelatedID:   ticket.TicketID,
		})
	}
	return batch, nil
}

// ticketUpdatedBatch targets the owning student only.
func (n *NotificationService) ticketUpdatedBatch(event events.Event) []domain.Notification {
	ticket := event.Ticket

	notifType := domain.NotificationInfo
	message := fmt.Sprintf("Your complaint %s was updated", ticket.TicketID)
	if ticket.Status == domain.TicketStatusResolved {
		notifType = domain.NotificationSuccess
		message = fmt.Sprintf("Your complaint %s was resolved", ticket.TicketID)
	}

	return []domain.Notification{{
		RecipientID: ticket.StudentID,
		Title:       "Complaint updated",
		Message:     message,
		Type:        notifType,
		Link:        "/tickets/" + ticket.TicketID,
		RelatedID:   ticket.TicketID,
	}}
}
