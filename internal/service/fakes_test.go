package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/events"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/repository"
)

// In-memory doubles over the repository interfaces. They mirror the
// persistence contract the services rely on: pgx.ErrNoRows for absence,
// generated keys on insert, insertion-ordered child listings.

type fakeCounters struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{values: make(map[string]int64)}
}

func (f *fakeCounters) Next(ctx context.Context, kind, scope string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	key := kind + "|" + scope
	f.values[key]++
	return f.values[key], nil
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (f *fakeAccountRepo) add(account *domain.Account) *domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account.ID == "" {
		f.seq++
		account.ID = fmt.Sprintf("acct-%d", f.seq)
	}
	copied := *account
	f.accounts[account.ID] = &copied
	return account
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	f.mu.Lock()
	for _, existing := range f.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			f.mu.Unlock()
			return fmt.Errorf("duplicate email %s", account.Email)
		}
	}
	f.mu.Unlock()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	f.add(account)
	return nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeAccountRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if strings.EqualFold(account.Email, email) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) GetBySystemID(ctx context.Context, systemID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.SystemID == systemID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		out = append(out, *account)
	}
	return out, nil
}

func (f *fakeAccountRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, account := range f.accounts {
		if account.Role == role {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) ListStaffByDepartment(ctx context.Context, department string) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, account := range f.accounts {
		if account.Role == domain.RoleStaff && strings.EqualFold(strings.TrimSpace(account.Department), strings.TrimSpace(department)) {
			out = append(out, *account)
		}
	}
	return out, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*domain.Ticket
	remarks map[string][]domain.Remark
	eventsL map[string][]domain.StatusEvent
	files   map[string][]domain.FileRef
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[string]*domain.Ticket),
		remarks: make(map[string][]domain.Remark),
		eventsL: make(map[string][]domain.StatusEvent),
		files:   make(map[string][]domain.FileRef),
	}
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ticket.ID = fmt.Sprintf("tick-%d", f.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	f.files[ticket.ID] = append([]domain.FileRef(nil), ticket.SubmissionAttachments...)
	return nil
}

func (f *fakeTicketRepo) UpdateStatusAndResolution(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = ticket.Status
	stored.ResolutionAttachment = ticket.ResolutionAttachment
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ticket := range f.tickets {
		if ticket.TicketID == ticketID {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.StudentID != nil && ticket.StudentID != *filter.StudentID {
			continue
		}
		if filter.Department != nil && !strings.EqualFold(ticket.AssignedDepartment, *filter.Department) {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, status := range filter.Statuses {
				if ticket.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (f *fakeTicketRepo) AddRemark(ctx context.Context, remark *domain.Remark) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	remark.ID = fmt.Sprintf("rem-%d", f.seq)
	remark.CreatedAt = time.Now()
	f.remarks[remark.TicketID] = append(f.remarks[remark.TicketID], *remark)
	return nil
}

func (f *fakeTicketRepo) AddStatusEvent(ctx context.Context, event *domain.StatusEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	event.ID = fmt.Sprintf("evt-%d", f.seq)
	event.CreatedAt = time.Now()
	f.eventsL[event.TicketID] = append(f.eventsL[event.TicketID], *event)
	return nil
}

func (f *fakeTicketRepo) ListRemarks(ctx context.Context, ticketID string) ([]domain.Remark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Remark(nil), f.remarks[ticketID]...), nil
}

func (f *fakeTicketRepo) ListStatusEvents(ctx context.Context, ticketID string) ([]domain.StatusEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.StatusEvent(nil), f.eventsL[ticketID]...), nil
}

func (f *fakeTicketRepo) ListAttachments(ctx context.Context, ticketID string) ([]domain.FileRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.FileRef(nil), f.files[ticketID]...), nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	insertErr     error
	notifications []domain.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) InsertBatch(ctx context.Context, notifications []domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.notifications = append(f.notifications, notifications...)
	return nil
}

func (f *fakeNotificationRepo) all() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notification(nil), f.notifications...)
}

func (f *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == notificationID && f.notifications[i].RecipientID == recipientID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].RecipientID == recipientID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkReadByRelated(ctx context.Context, recipientID, relatedID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].RecipientID == recipientID && f.notifications[i].RelatedID == relatedID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

type capturePublisher struct {
	mu     sync.Mutex
	accept bool
	events []events.Event
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{accept: true}
}

func (p *capturePublisher) Publish(event events.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.accept {
		return false
	}
	p.events = append(p.events, event)
	return true
}

func (p *capturePublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

type captureMailer struct {
	mu    sync.Mutex
	sends []string
	codes []string
	err   error
}

func (m *captureMailer) SendResetCode(ctx context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sends = append(m.sends, email)
	m.codes = append(m.codes, code)
	return nil
}
