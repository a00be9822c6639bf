// Package idgen mints the human-readable identifiers used across the
// system: account systemIds and ticket tracking numbers. Allocation goes
// through an atomic counter store so concurrent creations can never mint
// the same value.
package idgen

import (
	"context"
	"fmt"
	"time"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/pkg/util/errorutil"
)

// Kind names a counter sequence.
type Kind string

const (
	KindAdmin   Kind = "admin"
	KindStaff   Kind = "staff"
	KindStudent Kind = "student"
	KindTicket  Kind = "ticket"
)

// CounterStore yields the next value of an atomically incremented counter
// keyed by (kind, scope). Implementations must guarantee that concurrent
// calls observe strictly increasing values.
type CounterStore interface {
	Next(ctx context.Context, kind, scope string) (int64, error)
}

// Generator formats counter values into the external identifier shapes.
type Generator struct {
	counters CounterStore
	now      func() time.Time
}

// NewGenerator builds a generator over the given counter store.
func NewGenerator(counters CounterStore) *Generator {
	return &Generator{counters: counters, now: time.Now}
}

// NewGeneratorWithClock builds a generator with an injected clock.
func NewGeneratorWithClock(counters CounterStore, now func() time.Time) *Generator {
	return &Generator{counters: counters, now: now}
}

// NextAccountID mints a fresh systemId for the given role.
//
//	Admin:   ADM-00001
//	Staff:   STF-00001
//	Student: ugr/0001/26 (global sequence, two-digit creation year suffix)
//
// The student sequence deliberately never resets per year even though the
// year is embedded in the string; see DESIGN.md.
func (g *Generator) NextAccountID(ctx context.Context, role domain.Role) (string, error) {
	switch role {
	case domain.RoleAdmin:
		seq, err := g.next(ctx, KindAdmin, "")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("ADM-%05d", seq), nil
	case domain.RoleStaff:
		seq, err := g.next(ctx, KindStaff, "")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("STF-%05d", seq), nil
	case domain.RoleStudent:
		seq, err := g.next(ctx, KindStudent, "")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("ugr/%04d/%02d", seq, g.now().Year()%100), nil
	}
	return "", errorutil.NewValidationError("unknown role", map[string]any{"role": role})
}

// NextTicketID mints a fresh ticket tracking number, CMP-<year>-NNNNN.
// The sequence is scoped per calendar year and restarts at 1 each January.
func (g *Generator) NextTicketID(ctx context.Context) (string, error) {
	year := g.now().Year()
	seq, err := g.next(ctx, KindTicket, fmt.Sprintf("%d", year))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CMP-%d-%05d", year, seq), nil
}

func (g *Generator) next(ctx context.Context, kind Kind, scope string) (int64, error) {
	value, err := g.counters.Next(ctx, string(kind), scope)
	if err != nil {
		return 0, errorutil.NewDependencyUnavailable("identifier counter", err)
	}
	return value, nil
}
