// Package authz holds the pure authorization policy: given an actor and a
// requested action it grants or denies, with no side effects. Callers act
// on the result.
package authz

import (
	"strings"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/pkg/util/errorutil"
)

// CanCreateTicket permits ticket creation for students only.
func CanCreateTicket(actor *domain.Actor) error {
	if actor == nil {
		return errorutil.NewUnauthenticated("authentication required")
	}
	if actor.Role != domain.RoleStudent {
		return errorutil.NewForbidden("only students may file tickets")
	}
	return nil
}

// CanReadTicket permits single-ticket reads: admins always, staff within
// their department (case-insensitive), students on their own tickets.
func CanReadTicket(actor *domain.Actor, ticket *domain.Ticket) error {
	if actor == nil {
		return errorutil.NewUnauthenticated("authentication required")
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleStaff:
		if DepartmentMatches(actor.Department, ticket.AssignedDepartment) {
			return nil
		}
		return errorutil.NewForbidden("ticket belongs to another department")
	case domain.RoleStudent:
		if ticket.StudentID == actor.ID {
			return nil
		}
		return errorutil.NewForbidden("ticket belongs to another student")
	}
	return errorutil.NewForbidden("unknown role")
}

// CanUpdateTicket permits status/remark updates: same department rule as
// reads, but students are never permitted.
func CanUpdateTicket(actor *domain.Actor, ticket *domain.Ticket) error {
	if actor == nil {
		return errorutil.NewUnauthenticated("authentication required")
	}
	if actor.Role == domain.RoleStudent {
		return errorutil.NewForbidden("students may not update tickets")
	}
	return CanReadTicket(actor, ticket)
}

// CanManageAccounts permits administrative account management.
func CanManageAccounts(actor *domain.Actor) error {
	if actor == nil {
		return errorutil.NewUnauthenticated("authentication required")
	}
	if actor.Role != domain.RoleAdmin {
		return errorutil.NewForbidden("administrator required")
	}
	return nil
}

// CanDeleteAccount applies the self-protection rules on top of
// CanManageAccounts: an admin may not delete their own account nor the
// account holding the reserved master-admin email.
func CanDeleteAccount(actor *domain.Actor, target *domain.Account, masterAdminEmail string) error {
	if err := CanManageAccounts(actor); err != nil {
		return err
	}
	if target.ID == actor.ID {
		return errorutil.NewForbidden("cannot delete your own account")
	}
	if strings.EqualFold(target.Email, masterAdminEmail) {
		return errorutil.NewForbidden("cannot delete the master administrator")
	}
	return nil
}

// TicketListFilterFor returns the listing scope for the actor: admins see
// everything, staff their department, students their own tickets.
func TicketListFilterFor(actor *domain.Actor) (studentID, department *string) {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil, nil
	case domain.RoleStaff:
		dept := actor.Department
		return nil, &dept
	default:
		id := actor.ID
		return &id, nil
	}
}

// DepartmentMatches compares department names case-insensitively.
func DepartmentMatches(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
