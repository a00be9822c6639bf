package domain

import "time"

// TicketStatus enumerates lifecycle states for complaint tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
)

// Valid reports whether the status is one of the three known states.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// TicketCategory enumerates complaint categories.
type TicketCategory string

const (
	CategoryMaintenance TicketCategory = "MAINTENANCE"
	CategoryElectrical  TicketCategory = "ELECTRICAL"
	CategoryPlumbing    TicketCategory = "PLUMBING"
	CategoryInternet    TicketCategory = "INTERNET"
	CategorySecurity    TicketCategory = "SECURITY"
	CategoryCafeteria   TicketCategory = "CAFETERIA"
	CategoryOther       TicketCategory = "OTHER"
)

// Valid reports whether the category is a known value.
func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryMaintenance, CategoryElectrical, CategoryPlumbing,
		CategoryInternet, CategorySecurity, CategoryCafeteria, CategoryOther:
		return true
	}
	return false
}

// DefaultDepartment receives tickets that name no department.
const DefaultDepartment = "General"

// MaxSubmissionAttachments caps files accepted at ticket creation.
const MaxSubmissionAttachments = 3

// FileRef points at a stored attachment payload; the service only ever
// holds the reference, never the bytes.
type FileRef struct {
	Key      string
	FileName string
	URL      string
}

// Remark is an immutable staff comment on a ticket. The author name is
// snapshotted at append time so later renames do not rewrite history.
type Remark struct {
	ID        string
	TicketID  string
	StaffID   string
	StaffName string
	Comment   string
	CreatedAt time.Time
}

// StatusEvent records a single status transition in the ticket's audit trail.
type StatusEvent struct {
	ID         string
	TicketID   string
	FromStatus TicketStatus
	ToStatus   TicketStatus
	ActorID    string
	ActorName  string
	Note       string
	CreatedAt  time.Time
}

// Ticket is the aggregate for a single reported issue.
type Ticket struct {
	ID                    string
	TicketID              string
	StudentID             string
	Title                 string
	Description           string
	Category              TicketCategory
	Location              string
	Priority              TicketPriority
	AssignedDepartment    string
	Status                TicketStatus
	SubmissionAttachments []FileRef
	ResolutionAttachment  *FileRef
	Remarks               []Remark
	StatusEvents          []StatusEvent
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
