package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/authz"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/events"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/idgen"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/repository"
	apperrors "github.com/dagim-hg/Astu-Steam-dev-project-sub000/pkg/util/errorutil"
)

// TicketService drives the complaint lifecycle: creation, status
// transitions, remarks, and the audit trail.
type TicketService struct {
	tickets       repository.TicketRepository
	notifications repository.NotificationRepository
	ids           *idgen.Generator
	publisher     events.Publisher
	logger        *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo       repository.TicketRepository
	NotificationRepo repository.NotificationRepository
	IDGenerator      *idgen.Generator
	Publisher        events.Publisher
	Logger           *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:       deps.TicketRepo,
		notifications: deps.NotificationRepo,
		ids:           deps.IDGenerator,
		publisher:     deps.Publisher,
		logger:        deps.Logger,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Location    string
	Priority    domain.TicketPriority
	Department  string
	Attachments []domain.FileRef
}

// TicketUpdateInput describes a staff status/remark update. At least one
// field must be present.
type TicketUpdateInput struct {
	NewStatus  *domain.TicketStatus
	Remark     string
	Resolution *domain.FileRef
}

// TicketListFilter describes listing parameters; scope comes from the actor.
type TicketListFilter struct {
	Statuses []domain.TicketStatus
	Limit    int
	Offset   int
}

// Create files a new complaint for a student. The ticket identifier is
// minted before anything is persisted; an allocation failure aborts the
// whole operation.
func (s *TicketService) Create(ctx context.Context, submitter *domain.Account, input TicketCreateInput) (*domain.Ticket, error) {
	actor := submitter.Actor()
	if err := authz.CanCreateTicket(&actor); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.Title == "" || input.Description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if len(input.Attachments) > domain.MaxSubmissionAttachments {
		return nil, apperrors.NewValidationError("too many attachments", map[string]any{
			"max": domain.MaxSubmissionAttachments,
		})
	}
	department := strings.TrimSpace(input.Department)
	if department == "" {
		department = domain.DefaultDepartment
	}

	trackingID, err := s.ids.NextTicketID(ctx)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		TicketID:              trackingID,
		StudentID:             submitter.ID,
		Title:                 input.Title,
		Description:           input.Description,
		Category:              input.Category,
		Location:              strings.TrimSpace(input.Location),
		Priority:              input.Priority,
		AssignedDepartment:    department,
		Status:                domain.TicketStatusOpen,
		SubmissionAttachments: input.Attachments,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(events.Event{
		Type:      events.EventTicketCreated,
		Ticket:    *ticket,
		Submitter: *submitter,
	})
	return ticket, nil
}

// UpdateStatus applies a staff status change, remark, and/or resolution
// attachment. Remarks are append-only with the actor's name snapshotted;
// every status change lands in the audit trail; reopening a resolved
// ticket requires a remark documenting the reason.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.Account, idOrKey string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.lookup(ctx, idOrKey)
	if err != nil {
		return nil, err
	}

	actorView := actor.Actor()
	if err := authz.CanUpdateTicket(&actorView, ticket); err != nil {
		return nil, err
	}

	input.Remark = strings.TrimSpace(input.Remark)
	if input.NewStatus == nil && input.Remark == "" && input.Resolution == nil {
		return nil, apperrors.NewNothingToUpdate()
	}
	if input.NewStatus != nil && !input.NewStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.NewStatus})
	}

	statusChanging := input.NewStatus != nil && *input.NewStatus != ticket.Status
	if statusChanging && ticket.Status == domain.TicketStatusResolved && input.Remark == "" {
		return nil, apperrors.NewValidationError("reopening a resolved ticket requires a remark", nil)
	}

	if input.Remark != "" {
		remark := &domain.Remark{
			TicketID:  ticket.ID,
			StaffID:   actor.ID,
			StaffName: actor.Name,
			Comment:   input.Remark,
		}
		if err := s.tickets.AddRemark(ctx, remark); err != nil {
			return nil, err
		}
	}

	if statusChanging {
		event := &domain.StatusEvent{
			TicketID:   ticket.ID,
			FromStatus: ticket.Status,
			ToStatus:   *input.NewStatus,
			ActorID:    actor.ID,
			ActorName:  actor.Name,
			Note:       input.Remark,
		}
		if err := s.tickets.AddStatusEvent(ctx, event); err != nil {
			return nil, err
		}
		ticket.Status = *input.NewStatus
	}

	if input.Resolution != nil {
		ticket.ResolutionAttachment = input.Resolution
	}

	if err := s.tickets.UpdateStatusAndResolution(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(events.Event{
		Type:   events.EventTicketUpdated,
		Ticket: *ticket,
	})
	return s.withDetails(ctx, ticket)
}

// FindByTrackingOrKey fetches one ticket by internal key or tracking
// number, applying the read policy. A staff or admin read clears the
// reader's notifications referencing the ticket, as a convenience.
func (s *TicketService) FindByTrackingOrKey(ctx context.Context, actor *domain.Account, value string) (*domain.Ticket, error) {
	ticket, err := s.lookup(ctx, value)
	if err != nil {
		return nil, err
	}

	actorView := actor.Actor()
	if err := authz.CanReadTicket(&actorView, ticket); err != nil {
		return nil, err
	}

	if actor.Role == domain.RoleStaff || actor.Role == domain.RoleAdmin {
		if err := s.notifications.MarkReadByRelated(ctx, actor.ID, ticket.TicketID); err != nil {
			s.logger.Warn("failed to clear related notifications",
				zap.String("ticket_id", ticket.TicketID), zap.Error(err))
		}
	}

	return s.withDetails(ctx, ticket)
}

// ListForActor returns tickets within the actor's visibility scope.
func (s *TicketService) ListForActor(ctx context.Context, actor *domain.Account, filter TicketListFilter) ([]domain.Ticket, error) {
	actorView := actor.Actor()
	studentID, department := authz.TicketListFilterFor(&actorView)
	return s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		StudentID:  studentID,
		Department: department,
		Statuses:   filter.Statuses,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// lookup accepts either the internal key or the human-readable tracking
// number. True absence surfaces as NotFound; authorization is the
// caller's concern.
func (s *TicketService) lookup(ctx context.Context, value string) (*domain.Ticket, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, apperrors.NewValidationError("ticket identifier required", nil)
	}

	var (
		ticket *domain.Ticket
		err    error
	)
	if strings.HasPrefix(strings.ToUpper(value), "CMP-") {
		ticket, err = s.tickets.GetByTicketID(ctx, strings.ToUpper(value))
	} else {
		ticket, err = s.tickets.GetByID(ctx, value)
	}
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": value})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) withDetails(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	remarks, err := s.tickets.ListRemarks(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	statusEvents, err := s.tickets.ListStatusEvents(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	attachments, err := s.tickets.ListAttachments(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Remarks = remarks
	ticket.StatusEvents = statusEvents
	ticket.SubmissionAttachments = attachments
	return ticket, nil
}

// publish hands the event to the fanout queue. The ticket mutation has
// already committed; a drop here costs notifications, never the mutation.
func (s *TicketService) publish(event events.Event) {
	if s.publisher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if !s.publisher.Publish(event) {
		s.logger.Warn("fanout event dropped",
			zap.String("event", string(event.Type)),
			zap.String("ticket_id", event.Ticket.TicketID))
	}
}
