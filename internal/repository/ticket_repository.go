package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
)

// TicketFilter captures listing parameters. Department matching is
// case-insensitive.
type TicketFilter struct {
	StudentID  *string
	Department *string
	Statuses   []domain.TicketStatus
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	UpdateStatusAndResolution(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	AddRemark(ctx context.Context, remark *domain.Remark) error
	AddStatusEvent(ctx context.Context, event *domain.StatusEvent) error
	ListRemarks(ctx context.Context, ticketID string) ([]domain.Remark, error)
	ListStatusEvents(ctx context.Context, ticketID string) ([]domain.StatusEvent, error)
	ListAttachments(ctx context.Context, ticketID string) ([]domain.FileRef, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_id, student_id, title, description, category, location,
       priority, assigned_department, status, resolution_key, resolution_file_name,
       resolution_url, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (ticket_id, student_id, title, description, category, location, priority, assigned_department, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		ticket.TicketID,
		ticket.StudentID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Location,
		ticket.Priority,
		ticket.AssignedDepartment,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	for _, att := range ticket.SubmissionAttachments {
		const attQuery = `
            INSERT INTO ticket_attachments (ticket_id, storage_key, file_name, url)
            VALUES ($1,$2,$3,$4)`
		if _, err := tx.Exec(ctx, attQuery, ticket.ID, att.Key, att.FileName, att.URL); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) UpdateStatusAndResolution(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, resolution_key=$2, resolution_file_name=$3, resolution_url=$4, updated_at=NOW()
        WHERE id=$5`
	var key, name, url *string
	if ticket.ResolutionAttachment != nil {
		key = &ticket.ResolutionAttachment.Key
		name = &ticket.ResolutionAttachment.FileName
		url = &ticket.ResolutionAttachment.URL
	}
	cmd, err := r.pool.Exec(ctx, query, ticket.Status, key, name, url, ticket.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
}

func (r *ticketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE ticket_id=$1`, ticketID)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var (
		ticket         domain.Ticket
		resolutionKey  *string
		resolutionName *string
		resolutionURL  *string
	)
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.StudentID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Location,
		&ticket.Priority,
		&ticket.AssignedDepartment,
		&ticket.Status,
		&resolutionKey,
		&resolutionName,
		&resolutionURL,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if resolutionKey != nil {
		ticket.ResolutionAttachment = &domain.FileRef{
			Key:      *resolutionKey,
			FileName: derefString(resolutionName),
			URL:      derefString(resolutionURL),
		}
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		clauses = append(clauses, fmt.Sprintf("student_id=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("LOWER(assigned_department)=LOWER($%d)", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var (
			ticket         domain.Ticket
			resolutionKey  *string
			resolutionName *string
			resolutionURL  *string
		)
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketID,
			&ticket.StudentID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Category,
			&ticket.Location,
			&ticket.Priority,
			&ticket.AssignedDepartment,
			&ticket.Status,
			&resolutionKey,
			&resolutionName,
			&resolutionURL,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if resolutionKey != nil {
			ticket.ResolutionAttachment = &domain.FileRef{
				Key:      *resolutionKey,
				FileName: derefString(resolutionName),
				URL:      derefString(resolutionURL),
			}
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) AddRemark(ctx context.Context, remark *domain.Remark) error {
	const query = `
        INSERT INTO ticket_remarks (ticket_id, staff_id, staff_name, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		remark.TicketID,
		remark.StaffID,
		remark.StaffName,
		remark.Comment,
	).Scan(&remark.ID, &remark.CreatedAt)
}

func (r *ticketRepository) AddStatusEvent(ctx context.Context, event *domain.StatusEvent) error {
	const query = `
        INSERT INTO ticket_status_events (ticket_id, from_status, to_status, actor_id, actor_name, note)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		event.TicketID,
		event.FromStatus,
		event.ToStatus,
		event.ActorID,
		event.ActorName,
		event.Note,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *ticketRepository) ListRemarks(ctx context.Context, ticketID string) ([]domain.Remark, error) {
	const query = `
        SELECT id, ticket_id, staff_id, staff_name, comment, created_at
        FROM ticket_remarks WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Remark
	for rows.Next() {
		var remark domain.Remark
		if err := rows.Scan(
			&remark.ID,
			&remark.TicketID,
			&remark.StaffID,
			&remark.StaffName,
			&remark.Comment,
			&remark.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, remark)
	}
	return result, rows.Err()
}

func (r *ticketRepository) ListStatusEvents(ctx context.Context, ticketID string) ([]domain.StatusEvent, error) {
	const query = `
        SELECT id, ticket_id, from_status, to_status, actor_id, actor_name, note, created_at
        FROM ticket_status_events WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusEvent
	for rows.Next() {
		var event domain.StatusEvent
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.FromStatus,
			&event.ToStatus,
			&event.ActorID,
			&event.ActorName,
			&event.Note,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

func (r *ticketRepository) ListAttachments(ctx context.Context, ticketID string) ([]domain.FileRef, error) {
	const query = `
        SELECT storage_key, file_name, url
        FROM ticket_attachments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FileRef
	for rows.Next() {
		var ref domain.FileRef
		if err := rows.Scan(&ref.Key, &ref.FileName, &ref.URL); err != nil {
			return nil, err
		}
		result = append(result, ref)
	}
	return result, rows.Err()
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
