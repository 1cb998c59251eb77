// Package authz decides whether a principal may act on a domain,
// event, workshop, or team. Decisions are pure functions of the
// principal's role plus relationship rows looked up through
// RelationStore; a missing row and an explicit deny are
// indistinguishable to callers.
package authz

import (
	"context"

	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/pkg/logger"
)

type Operation int

const (
	OpCreate Operation = iota
	OpChange
	OpDelete
	OpSetPhoto
	OpReadAttendance
	OpMarkAttendance
)

// RelationStore is the slice of storage the engine consults. Lookups
// report (false, nil) when no relation row exists; a non-nil error
// means the lookup itself failed.
type RelationStore interface {
	IsFacultyDomainCoordinator(ctx context.Context, facultyID, domainID int64) (bool, error)
	IsStudentDomainCoordinator(ctx context.Context, studentID, domainID int64) (bool, error)
	IsStudentEventCoordinator(ctx context.Context, studentID, eventID int64) (bool, error)
	IsStudentWorkshopCoordinator(ctx context.Context, studentID, workshopID int64) (bool, error)
	EventDomain(ctx context.Context, eventID int64) (int64, error)
	WorkshopDomain(ctx context.Context, workshopID int64) (int64, error)
	IsTeamLeader(ctx context.Context, teamID, studentID int64) (bool, error)
}

// PaymentChecker is the opaque payment-satisfied predicate.
type PaymentChecker interface {
	IsPaymentDone(ctx context.Context, u *domain.User) bool
}

type Engine struct {
	rel RelationStore
	pay PaymentChecker
}

func NewEngine(rel RelationStore, pay PaymentChecker) *Engine {
	return &Engine{rel: rel, pay: pay}
}

// RequireSuperAdmin gates domain-scoped operations.
func (e *Engine) RequireSuperAdmin(u *domain.User) error {
	if u.Role == domain.RoleSuperAdmin {
		return nil
	}
	return domain.ErrUnauthorized
}

// requireActive enforces the verified + payment gate that precedes
// every coordinator role check. It runs before the role is even
// looked at, so an unverified SUPER_ADMIN is still refused here.
func (e *Engine) requireActive(ctx context.Context, u *domain.User) error {
	if !u.Verified || !e.pay.IsPaymentDone(ctx, u) {
		return domain.ErrUnauthorized
	}
	return nil
}

// CanCreateEventIn authorizes event creation in a domain. Creation has
// no per-resource fallback path: the resource does not exist yet.
func (e *Engine) CanCreateEventIn(ctx context.Context, u *domain.User, domainID int64) error {
	if err := e.requireActive(ctx, u); err != nil {
		return err
	}
	return e.domainCoordinatorCheck(ctx, u, domainID)
}

// CanCreateWorkshopIn mirrors CanCreateEventIn.
func (e *Engine) CanCreateWorkshopIn(ctx context.Context, u *domain.User, domainID int64) error {
	if err := e.requireActive(ctx, u); err != nil {
		return err
	}
	return e.domainCoordinatorCheck(ctx, u, domainID)
}

// CanManageEvent authorizes change/delete/photo/attendance operations
// on an existing event. Attendance reads skip the verified/payment
// gate; everything else requires it.
func (e *Engine) CanManageEvent(ctx context.Context, u *domain.User, op Operation, eventID int64) error {
	if op != OpReadAttendance {
		if err := e.requireActive(ctx, u); err != nil {
			return err
		}
	}
	switch u.Role {
	case domain.RoleSuperAdmin:
		return nil
	case domain.RoleFacultyCoordinator:
		domainID, err := e.rel.EventDomain(ctx, eventID)
		if err != nil {
			return domain.ErrUnauthorized
		}
		return e.allowIf(e.rel.IsFacultyDomainCoordinator(ctx, u.ID, domainID))
	case domain.RoleStudentCoordinator:
		// Two independent paths: domain-level coordinator OR direct
		// event coordinator. The second lookup runs even when the
		// first errs; deny only when both fail.
		domainPath := pathDenied
		if domainID, err := e.rel.EventDomain(ctx, eventID); err == nil {
			domainPath = e.path(e.rel.IsStudentDomainCoordinator(ctx, u.ID, domainID))
		}
		eventPath := e.path(e.rel.IsStudentEventCoordinator(ctx, u.ID, eventID))
		if domainPath == pathAllowed || eventPath == pathAllowed {
			return nil
		}
		return domain.ErrUnauthorized
	default:
		return domain.ErrUnauthorized
	}
}

// CanManageWorkshop mirrors CanManageEvent for workshops.
func (e *Engine) CanManageWorkshop(ctx context.Context, u *domain.User, op Operation, workshopID int64) error {
	if op != OpReadAttendance {
		if err := e.requireActive(ctx, u); err != nil {
			return err
		}
	}
	switch u.Role {
	case domain.RoleSuperAdmin:
		return nil
	case domain.RoleFacultyCoordinator:
		domainID, err := e.rel.WorkshopDomain(ctx, workshopID)
		if err != nil {
			return domain.ErrUnauthorized
		}
		return e.allowIf(e.rel.IsFacultyDomainCoordinator(ctx, u.ID, domainID))
	case domain.RoleStudentCoordinator:
		domainPath := pathDenied
		if domainID, err := e.rel.WorkshopDomain(ctx, workshopID); err == nil {
			domainPath = e.path(e.rel.IsStudentDomainCoordinator(ctx, u.ID, domainID))
		}
		workshopPath := e.path(e.rel.IsStudentWorkshopCoordinator(ctx, u.ID, workshopID))
		if domainPath == pathAllowed || workshopPath == pathAllowed {
			return nil
		}
		return domain.ErrUnauthorized
	default:
		return domain.ErrUnauthorized
	}
}

// RequireVerified gates operations open to any verified user, such as
// team creation and event registration.
func (e *Engine) RequireVerified(u *domain.User) error {
	if !u.Verified {
		return domain.ErrUnauthorized
	}
	return nil
}

// RequireTeamLeader enforces the leader-only mutation rule. This is a
// pure relationship check: global role carries no weight here.
func (e *Engine) RequireTeamLeader(ctx context.Context, u *domain.User, teamID int64) error {
	return e.allowIf(e.rel.IsTeamLeader(ctx, teamID, u.ID))
}

type pathResult int

const (
	pathAllowed pathResult = iota
	pathDenied
)

// path folds a fallible relationship lookup into a two-way result.
// Lookup failures count as denied; the error is logged, never leaked.
func (e *Engine) path(ok bool, err error) pathResult {
	if err != nil {
		logger.Warn("authorization lookup failed", "error", err)
		return pathDenied
	}
	if ok {
		return pathAllowed
	}
	return pathDenied
}

func (e *Engine) allowIf(ok bool, err error) error {
	if e.path(ok, err) == pathAllowed {
		return nil
	}
	return domain.ErrUnauthorized
}

// domainCoordinatorCheck is the creation-time role gate: faculty need
// a faculty coordinator row for the domain, student coordinators a
// student domain coordinator row. Everyone below is refused.
func (e *Engine) domainCoordinatorCheck(ctx context.Context, u *domain.User, domainID int64) error {
	switch u.Role {
	case domain.RoleSuperAdmin:
		return nil
	case domain.RoleFacultyCoordinator:
		return e.allowIf(e.rel.IsFacultyDomainCoordinator(ctx, u.ID, domainID))
	case domain.RoleStudentCoordinator:
		return e.allowIf(e.rel.IsStudentDomainCoordinator(ctx, u.ID, domainID))
	default:
		return domain.ErrUnauthorized
	}
}
