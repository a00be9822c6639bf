package dto

import (
	"time"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
)

// CreateTicketRequest payload (JSON body; multipart uses form fields of
// the same names plus up to three "attachments" files).
type CreateTicketRequest struct {
	Title       string                `json:"title" form:"title"`
	Description string                `json:"description" form:"description"`
	Category    domain.TicketCategory `json:"category" form:"category"`
	Location    string                `json:"location" form:"location"`
	Priority    domain.TicketPriority `json:"priority" form:"priority"`
	Department  string                `json:"department" form:"department"`
}

// UpdateTicketRequest payload (multipart may add a "resolution" file).
type UpdateTicketRequest struct {
	Status *domain.TicketStatus `json:"status" form:"status"`
	Remark string               `json:"remark" form:"remark"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// RemarkResponse is one immutable staff comment.
type RemarkResponse struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staff_id"`
	StaffName string    `json:"staff_name"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusEventResponse is one audit-trail transition.
type StatusEventResponse struct {
	From      domain.TicketStatus `json:"from"`
	To        domain.TicketStatus `json:"to"`
	ActorID   string              `json:"actor_id"`
	ActorName string              `json:"actor_name"`
	Note      string              `json:"note,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// TicketSummary is the listing shape.
type TicketSummary struct {
	ID                 string                `json:"id"`
	TicketID           string                `json:"ticket_id"`
	Title              string                `json:"title"`
	Category           domain.TicketCategory `json:"category"`
	Priority           domain.TicketPriority `json:"priority"`
	AssignedDepartment string                `json:"assigned_department"`
	Status             domain.TicketStatus   `json:"status"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description           string                `json:"description"`
	Location              string                `json:"location"`
	StudentID             string                `json:"student_id"`
	SubmissionAttachments []AttachmentResponse  `json:"submission_attachments"`
	ResolutionAttachment  *AttachmentResponse   `json:"resolution_attachment,omitempty"`
	Remarks               []RemarkResponse      `json:"remarks"`
	StatusHistory         []StatusEventResponse `json:"status_history"`
}

// NewTicketSummary maps a domain ticket.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:                 ticket.ID,
		TicketID:           ticket.TicketID,
		Title:              ticket.Title,
		Category:           ticket.Category,
		Priority:           ticket.Priority,
		AssignedDepartment: ticket.AssignedDepartment,
		Status:             ticket.Status,
		CreatedAt:          ticket.CreatedAt,
		UpdatedAt:          ticket.UpdatedAt,
	}
}

// NewTicketDetail maps a domain ticket including children.
func NewTicketDetail(ticket *domain.Ticket) TicketDetailResponse {
	detail := TicketDetailResponse{
		TicketSummary: NewTicketSummary(ticket),
		Description:   ticket.Description,
		Location:      ticket.Location,
		StudentID:     ticket.StudentID,
	}
	for _, att := range ticket.SubmissionAttachments {
		detail.SubmissionAttachments = append(detail.SubmissionAttachments, AttachmentResponse{
			FileName: att.FileName,
			URL:      att.URL,
		})
	}
	if ticket.ResolutionAttachment != nil {
		detail.ResolutionAttachment = &AttachmentResponse{
			FileName: ticket.ResolutionAttachment.FileName,
			URL:      ticket.ResolutionAttachment.URL,
		}
	}
	for _, remark := range ticket.Remarks {
		detail.Remarks = append(detail.Remarks, RemarkResponse{
			ID:        remark.ID,
			StaffID:   remark.StaffID,
			StaffName: remark.StaffName,
			Comment:   remark.Comment,
			CreatedAt: remark.CreatedAt,
		})
	}
	for _, event := range ticket.StatusEvents {
		detail.StatusHistory = append(detail.StatusHistory, StatusEventResponse{
			From:      event.FromStatus,
			To:        event.ToStatus,
			ActorID:   event.ActorID,
			ActorName: event.ActorName,
			Note:      event.Note,
			CreatedAt: event.CreatedAt,
		})
	}
	return detail
}
