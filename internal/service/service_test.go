package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/repo/postgres"
)

// In-memory fakes shared by the service tests.

type fakeUsers struct {
	mu       sync.Mutex
	nextID   int64
	byID     map[int64]*domain.User
	students map[int64]*domain.Student
	faculty  map[int64]*domain.Faculty
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		nextID:   1,
		byID:     map[int64]*domain.User{},
		students: map[int64]*domain.Student{},
		faculty:  map[int64]*domain.Faculty{},
	}
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, domain.ErrConflict
		}
	}
	cp := *u
	cp.ID = f.nextID
	f.nextID++
	f.byID[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id int64, p postgres.ProfilePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.DOB != nil {
		u.DOB = *p.DOB
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	return nil
}

func (f *fakeUsers) SetVerified(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Verified = true
	return nil
}

func (f *fakeUsers) SetRole(_ context.Context, id int64, role domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUsers) SetPasswordHash(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) SetPhotoHash(_ context.Context, id int64, hash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PhotoHash = hash
	return nil
}

func (f *fakeUsers) PhotoHash(_ context.Context, id int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u.PhotoHash, nil
}

func (f *fakeUsers) CountSuperAdmins(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.byID {
		if u.Role == domain.RoleSuperAdmin {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) CreateStudent(_ context.Context, s *domain.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.students[s.UserID] = &cp
	return nil
}

func (f *fakeUsers) FindStudent(_ context.Context, userID int64) (*domain.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeUsers) CreateFaculty(_ context.Context, fac *domain.Faculty) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *fac
	f.faculty[fac.UserID] = &cp
	return nil
}

func (f *fakeUsers) FindFaculty(_ context.Context, userID int64) (*domain.Faculty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fac, ok := f.faculty[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *fac
	return &cp, nil
}

type memberKey struct{ teamID, studentID int64 }

type fakeTeams struct {
	mu       sync.Mutex
	nextID   int64
	teams    map[int64]*domain.Team
	members  map[memberKey]bool // value = is_leader
	requests map[memberKey]bool
	users    *fakeUsers
}

func newFakeTeams(users *fakeUsers) *fakeTeams {
	return &fakeTeams{
		nextID:   1,
		teams:    map[int64]*domain.Team{},
		members:  map[memberKey]bool{},
		requests: map[memberKey]bool{},
		users:    users,
	}
}

func (f *fakeTeams) FindByID(_ context.Context, id int64) (*domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTeams) ListByStudent(_ context.Context, studentID int64) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Team{}
	for k := range f.members {
		if k.studentID == studentID {
			out = append(out, *f.teams[k.teamID])
		}
	}
	return out, nil
}

func (f *fakeTeams) CreateWithInvites(ctx context.Context, name string, leaderID int64, inviteeEmails []string) (*domain.Team, error) {
	if len(inviteeEmails) > domain.MaxTeamInvites {
		return nil, fmt.Errorf("%w: at most %d invitations", domain.ErrValidation, domain.MaxTeamInvites)
	}
	// Resolve everything before mutating, imitating the all-or-nothing
	// transaction.
	invitees := make([]int64, 0, len(inviteeEmails))
	for _, email := range inviteeEmails {
		u, err := f.users.FindByEmail(ctx, strings.ToLower(email))
		if err != nil {
			return nil, fmt.Errorf("%w: no student account for %s", domain.ErrValidation, email)
		}
		if u.ID == leaderID {
			return nil, fmt.Errorf("%w: cannot invite the team leader", domain.ErrValidation)
		}
		invitees = append(invitees, u.ID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &domain.Team{ID: f.nextID, Name: name}
	f.nextID++
	f.teams[t.ID] = t
	f.members[memberKey{t.ID, leaderID}] = true
	for _, id := range invitees {
		f.requests[memberKey{t.ID, id}] = true
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTeams) Rename(_ context.Context, id int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Name = name
	return nil
}

func (f *fakeTeams) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.teams, id)
	for k := range f.members {
		if k.teamID == id {
			delete(f.members, k)
		}
	}
	for k := range f.requests {
		if k.teamID == id {
			delete(f.requests, k)
		}
	}
	return nil
}

func (f *fakeTeams) Members(_ context.Context, teamID int64) ([]domain.TeamMemberProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.TeamMemberProfile{}
	for k, leader := range f.members {
		if k.teamID != teamID {
			continue
		}
		var m domain.TeamMemberProfile
		m.ID = k.studentID
		m.UserID = k.studentID
		m.IsLeader = leader
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeTeams) RemoveMember(_ context.Context, teamID, studentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := memberKey{teamID, studentID}
	if _, ok := f.members[k]; !ok {
		return domain.ErrNotFound
	}
	delete(f.members, k)
	return nil
}

func (f *fakeTeams) InvitesForTeam(_ context.Context, teamID int64) ([]domain.StudentProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.StudentProfile{}
	for k := range f.requests {
		if k.teamID == teamID {
			var p domain.StudentProfile
			p.ID = k.studentID
			p.UserID = k.studentID
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeTeams) InvitesForStudent(_ context.Context, studentID int64) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Team{}
	for k := range f.requests {
		if k.studentID == studentID {
			out = append(out, *f.teams[k.teamID])
		}
	}
	return out, nil
}

func (f *fakeTeams) CreateInvite(_ context.Context, teamID, studentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := memberKey{teamID, studentID}
	if f.requests[k] {
		return domain.ErrConflict
	}
	f.requests[k] = true
	return nil
}

func (f *fakeTeams) AcceptInvite(_ context.Context, teamID, studentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := memberKey{teamID, studentID}
	if !f.requests[k] {
		return domain.ErrNotFound
	}
	delete(f.requests, k)
	f.members[k] = false
	return nil
}

func (f *fakeTeams) RejectInvite(_ context.Context, teamID, studentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := memberKey{teamID, studentID}
	if !f.requests[k] {
		return domain.ErrNotFound
	}
	delete(f.requests, k)
	return nil
}

// isLeader exposes membership state to the relation stub.
func (f *fakeTeams) isLeader(teamID, studentID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[memberKey{teamID, studentID}]
}

// stubRelations adapts the team fake into the relation lookups the
// policy engine runs.
type stubRelations struct{ teams *fakeTeams }

func (s *stubRelations) IsFacultyDomainCoordinator(context.Context, int64, int64) (bool, error) {
	return false, nil
}
func (s *stubRelations) IsStudentDomainCoordinator(context.Context, int64, int64) (bool, error) {
	return false, nil
}
func (s *stubRelations) IsStudentEventCoordinator(context.Context, int64, int64) (bool, error) {
	return false, nil
}
func (s *stubRelations) IsStudentWorkshopCoordinator(context.Context, int64, int64) (bool, error) {
	return false, nil
}
func (s *stubRelations) EventDomain(context.Context, int64) (int64, error) {
	return 0, domain.ErrNotFound
}
func (s *stubRelations) WorkshopDomain(context.Context, int64) (int64, error) {
	return 0, domain.ErrNotFound
}
func (s *stubRelations) IsTeamLeader(_ context.Context, teamID, studentID int64) (bool, error) {
	return s.teams.isLeader(teamID, studentID), nil
}

type stubPayments struct{ done bool }

func (s *stubPayments) IsPaymentDone(context.Context, *domain.User) bool { return s.done }
