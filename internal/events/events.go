package events

import (
	"time"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
)

// EventType enumerates fanout triggers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
)

// Event describes a ticket mutation that notification fanout reacts to.
// The ticket is a snapshot taken after the mutation committed.
type Event struct {
	ID        string
	Type      EventType
	Ticket    domain.Ticket
	Submitter domain.Account
	Timestamp time.Time
}

// Publisher hands events to the fanout pipeline. Publish must never block
// the caller: implementations enqueue and return immediately, reporting
// false when the event had to be dropped.
type Publisher interface {
	Publish(event Event) bool
}
