package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/techfest-sliet/festd/internal/domain"
)

type mockRelations struct {
	facultyDomain   map[[2]int64]bool
	studentDomain   map[[2]int64]bool
	studentEvent    map[[2]int64]bool
	studentWorkshop map[[2]int64]bool
	eventDomain     map[int64]int64
	workshopDomain  map[int64]int64
	leaders         map[[2]int64]bool

	studentDomainErr error
	eventDomainErr   error
}

func (m *mockRelations) IsFacultyDomainCoordinator(_ context.Context, facultyID, domainID int64) (bool, error) {
	return m.facultyDomain[[2]int64{facultyID, domainID}], nil
}

func (m *mockRelations) IsStudentDomainCoordinator(_ context.Context, studentID, domainID int64) (bool, error) {
	if m.studentDomainErr != nil {
		return false, m.studentDomainErr
	}
	return m.studentDomain[[2]int64{studentID, domainID}], nil
}

func (m *mockRelations) IsStudentEventCoordinator(_ context.Context, studentID, eventID int64) (bool, error) {
	return m.studentEvent[[2]int64{studentID, eventID}], nil
}

func (m *mockRelations) IsStudentWorkshopCoordinator(_ context.Context, studentID, workshopID int64) (bool, error) {
	return m.studentWorkshop[[2]int64{studentID, workshopID}], nil
}

func (m *mockRelations) EventDomain(_ context.Context, eventID int64) (int64, error) {
	if m.eventDomainErr != nil {
		return 0, m.eventDomainErr
	}
	id, ok := m.eventDomain[eventID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func (m *mockRelations) WorkshopDomain(_ context.Context, workshopID int64) (int64, error) {
	id, ok := m.workshopDomain[workshopID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func (m *mockRelations) IsTeamLeader(_ context.Context, teamID, studentID int64) (bool, error) {
	return m.leaders[[2]int64{teamID, studentID}], nil
}

type mockPayments struct{ done map[int64]bool }

func (m *mockPayments) IsPaymentDone(_ context.Context, u *domain.User) bool {
	return m.done[u.ID]
}

func user(id int64, role domain.Role, verified bool) *domain.User {
	return &domain.User{ID: id, Role: role, Verified: verified}
}

func TestCanManageEvent(t *testing.T) {
	rel := &mockRelations{
		studentDomain: map[[2]int64]bool{{10, 1}: true},
		studentEvent:  map[[2]int64]bool{{11, 100}: true},
		facultyDomain: map[[2]int64]bool{{20, 1}: true},
		eventDomain:   map[int64]int64{100: 1, 200: 2},
	}
	pay := &mockPayments{done: map[int64]bool{1: true, 10: true, 11: true, 12: true, 20: true, 21: true}}
	engine := NewEngine(rel, pay)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		eventID int64
		wantErr error
	}{
		{"super admin bypasses relations", user(1, domain.RoleSuperAdmin, true), 200, nil},
		{"faculty coordinator of the event's domain", user(20, domain.RoleFacultyCoordinator, true), 100, nil},
		{"faculty coordinator of another domain", user(21, domain.RoleFacultyCoordinator, true), 200, domain.ErrUnauthorized},
		{"student coordinator via domain row", user(10, domain.RoleStudentCoordinator, true), 100, nil},
		{"student coordinator via event row only", user(11, domain.RoleStudentCoordinator, true), 100, nil},
		{"student coordinator with neither row", user(12, domain.RoleStudentCoordinator, true), 100, domain.ErrUnauthorized},
		{"participant always refused", user(10, domain.RoleParticipant, true), 100, domain.ErrUnauthorized},
		{"unverified coordinator refused before role check", user(10, domain.RoleStudentCoordinator, false), 100, domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.CanManageEvent(ctx, tt.user, OpChange, tt.eventID)
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Errorf("CanManageEvent() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanManageEventSecondPathRunsAfterLookupFailure(t *testing.T) {
	// The domain-level lookup fails outright; the direct event
	// coordinator row must still grant access.
	rel := &mockRelations{
		studentEvent:     map[[2]int64]bool{{11, 100}: true},
		eventDomain:      map[int64]int64{100: 1},
		studentDomainErr: errors.New("connection reset"),
	}
	pay := &mockPayments{done: map[int64]bool{11: true}}
	engine := NewEngine(rel, pay)

	if err := engine.CanManageEvent(context.Background(), user(11, domain.RoleStudentCoordinator, true), OpChange, 100); err != nil {
		t.Fatalf("expected event coordinator path to grant, got %v", err)
	}
}

func TestCanManageEventPaymentGate(t *testing.T) {
	rel := &mockRelations{
		studentDomain: map[[2]int64]bool{{10, 1}: true},
		eventDomain:   map[int64]int64{100: 1},
	}
	engine := NewEngine(rel, &mockPayments{done: map[int64]bool{}})

	u := user(10, domain.RoleStudentCoordinator, true)
	if err := engine.CanManageEvent(context.Background(), u, OpChange, 100); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected refusal without payment, got %v", err)
	}
	// Attendance reads skip the verified/payment gate.
	if err := engine.CanManageEvent(context.Background(), u, OpReadAttendance, 100); err != nil {
		t.Fatalf("attendance read should not require payment, got %v", err)
	}
}

func TestCanManageWorkshop(t *testing.T) {
	rel := &mockRelations{
		studentWorkshop: map[[2]int64]bool{{11, 300}: true},
		workshopDomain:  map[int64]int64{300: 3},
	}
	pay := &mockPayments{done: map[int64]bool{11: true, 12: true}}
	engine := NewEngine(rel, pay)
	ctx := context.Background()

	if err := engine.CanManageWorkshop(ctx, user(11, domain.RoleStudentCoordinator, true), OpDelete, 300); err != nil {
		t.Fatalf("workshop coordinator refused: %v", err)
	}
	if err := engine.CanManageWorkshop(ctx, user(12, domain.RoleStudentCoordinator, true), OpDelete, 300); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected refusal for unrelated coordinator, got %v", err)
	}
}

func TestCanCreateEventIn(t *testing.T) {
	rel := &mockRelations{
		facultyDomain: map[[2]int64]bool{{20, 1}: true},
		studentDomain: map[[2]int64]bool{{10, 1}: true},
		studentEvent:  map[[2]int64]bool{{11, 100}: true},
	}
	pay := &mockPayments{done: map[int64]bool{10: true, 11: true, 20: true}}
	engine := NewEngine(rel, pay)
	ctx := context.Background()

	if err := engine.CanCreateEventIn(ctx, user(20, domain.RoleFacultyCoordinator, true), 1); err != nil {
		t.Fatalf("faculty domain coordinator refused: %v", err)
	}
	if err := engine.CanCreateEventIn(ctx, user(10, domain.RoleStudentCoordinator, true), 1); err != nil {
		t.Fatalf("student domain coordinator refused: %v", err)
	}
	// An event coordinator row grants no creation rights: creation is
	// domain scoped and the event does not exist yet.
	if err := engine.CanCreateEventIn(ctx, user(11, domain.RoleStudentCoordinator, true), 1); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected refusal for event-only coordinator, got %v", err)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	engine := NewEngine(&mockRelations{}, &mockPayments{})
	if err := engine.RequireSuperAdmin(user(1, domain.RoleSuperAdmin, true)); err != nil {
		t.Fatalf("super admin refused: %v", err)
	}
	if err := engine.RequireSuperAdmin(user(2, domain.RoleFacultyCoordinator, true)); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected refusal, got %v", err)
	}
}

func TestRequireTeamLeader(t *testing.T) {
	rel := &mockRelations{leaders: map[[2]int64]bool{{5, 10}: true}}
	engine := NewEngine(rel, &mockPayments{})
	ctx := context.Background()

	if err := engine.RequireTeamLeader(ctx, user(10, domain.RoleParticipant, true), 5); err != nil {
		t.Fatalf("leader refused: %v", err)
	}
	// Global role does not substitute for leadership.
	if err := engine.RequireTeamLeader(ctx, user(1, domain.RoleSuperAdmin, true), 5); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected refusal for non-member, got %v", err)
	}
}
