package authz

import (
	"testing"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/pkg/util/errorutil"
)

func student(id string) *domain.Actor {
	return &domain.Actor{ID: id, Role: domain.RoleStudent}
}

func staff(id, department string) *domain.Actor {
	return &domain.Actor{ID: id, Role: domain.RoleStaff, Department: department}
}

func admin(id string) *domain.Actor {
	return &domain.Actor{ID: id, Role: domain.RoleAdmin}
}

func TestCanCreateTicket(t *testing.T) {
	tests := []struct {
		name  string
		actor *domain.Actor
		allow bool
	}{
		{"student", student("s1"), true},
		{"staff", staff("f1", "ICT"), false},
		{"admin", admin("a1"), false},
		{"nil actor", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanCreateTicket(tt.actor)
			if tt.allow && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tt.allow && err == nil {
				t.Fatal("expected deny")
			}
		})
	}
}

func TestCanReadTicket(t *testing.T) {
	ticket := &domain.Ticket{StudentID: "s1", AssignedDepartment: "ICT"}

	tests := []struct {
		name  string
		actor *domain.Actor
		allow bool
	}{
		{"owning student", student("s1"), true},
		{"other student", student("s2"), false},
		{"same department staff", staff("f1", "ICT"), true},
		{"department case-insensitive", staff("f1", "ict"), true},
		{"department with whitespace", staff("f1", " ICT "), true},
		{"other department staff", staff("f1", "Facilities"), false},
		{"admin", admin("a1"), true},
		{"nil actor", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanReadTicket(tt.actor, ticket)
			if tt.allow && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tt.allow && err == nil {
				t.Fatal("expected deny")
			}
		})
	}
}

func TestCanUpdateTicketDeniesStudents(t *testing.T) {
	ticket := &domain.Ticket{StudentID: "s1", AssignedDepartment: "ICT"}

	// Even the owning student may not update.
	if err := CanUpdateTicket(student("s1"), ticket); err == nil {
		t.Fatal("expected deny for owning student")
	}
	if err := CanUpdateTicket(staff("f1", "ICT"), ticket); err != nil {
		t.Fatalf("expected allow for department staff, got %v", err)
	}
	if err := CanUpdateTicket(staff("f1", "Facilities"), ticket); err == nil {
		t.Fatal("expected deny for other-department staff")
	}
	if err := CanUpdateTicket(admin("a1"), ticket); err != nil {
		t.Fatalf("expected allow for admin, got %v", err)
	}
}

func TestCanDeleteAccount(t *testing.T) {
	const masterEmail = "admin@astu.edu.et"

	tests := []struct {
		name   string
		actor  *domain.Actor
		target *domain.Account
		allow  bool
	}{
		{"admin deletes student", admin("a1"), &domain.Account{ID: "s1", Email: "x@y.z"}, true},
		{"admin deletes self", admin("a1"), &domain.Account{ID: "a1", Email: "a@y.z"}, false},
		{"admin deletes master", admin("a1"), &domain.Account{ID: "a2", Email: masterEmail}, false},
		{"master email case-insensitive", admin("a1"), &domain.Account{ID: "a2", Email: "ADMIN@ASTU.EDU.ET"}, false},
		{"staff cannot delete", staff("f1", "ICT"), &domain.Account{ID: "s1", Email: "x@y.z"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanDeleteAccount(tt.actor, tt.target, masterEmail)
			if tt.allow && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tt.allow && err == nil {
				t.Fatal("expected deny")
			}
			if !tt.allow && err != nil && !errorutil.IsCode(err, "FORBIDDEN") {
				t.Fatalf("error code = %v, want FORBIDDEN", err)
			}
		})
	}
}

func TestTicketListFilterFor(t *testing.T) {
	if sid, dept := TicketListFilterFor(admin("a1")); sid != nil || dept != nil {
		t.Fatal("admin scope must be unrestricted")
	}
	if sid, dept := TicketListFilterFor(staff("f1", "ICT")); sid != nil || dept == nil || *dept != "ICT" {
		t.Fatal("staff scope must be their department")
	}
	if sid, dept := TicketListFilterFor(student("s1")); dept != nil || sid == nil || *sid != "s1" {
		t.Fatal("student scope must be their own tickets")
	}
}
