package service

import (
	"context"
	"errors"
	"testing"

	"github.com/techfest-sliet/festd/internal/authz"
	"github.com/techfest-sliet/festd/internal/domain"
)

func newTeamFixture(t *testing.T) (*TeamService, *fakeUsers, *fakeTeams) {
	t.Helper()
	users := newFakeUsers()
	teams := newFakeTeams(users)
	policy := authz.NewEngine(&stubRelations{teams: teams}, &stubPayments{done: true})
	return NewTeamService(teams, users, policy, nil), users, teams
}

func addStudent(t *testing.T, users *fakeUsers, email string, verified bool) *domain.User {
	t.Helper()
	u, err := users.Create(context.Background(), &domain.User{
		Name:     "Student " + email,
		Email:    email,
		Role:     domain.RoleParticipant,
		Verified: verified,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := users.CreateStudent(context.Background(), &domain.Student{UserID: u.ID}); err != nil {
		t.Fatal(err)
	}
	return u
}

func TestTeamCreate(t *testing.T) {
	svc, users, teams := newTeamFixture(t)
	ctx := context.Background()
	leader := addStudent(t, users, "leader@sliet.ac.in", true)
	addStudent(t, users, "mate@sliet.ac.in", true)

	team, err := svc.Create(ctx, leader, TeamCreate{Name: "bitwise", Invites: []string{"mate@sliet.ac.in"}})
	if err != nil {
		t.Fatal(err)
	}
	if !teams.isLeader(team.ID, leader.ID) {
		t.Fatal("creator is not the leader")
	}
	invites, err := svc.Invites(ctx, leader, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(invites) != 1 {
		t.Fatalf("invites = %d, want 1", len(invites))
	}
}

func TestTeamCreateRequiresVerified(t *testing.T) {
	svc, users, _ := newTeamFixture(t)
	leader := addStudent(t, users, "leader@sliet.ac.in", false)

	_, err := svc.Create(context.Background(), leader, TeamCreate{Name: "bitwise"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestTeamCreateUnknownInviteeAborts(t *testing.T) {
	svc, users, teams := newTeamFixture(t)
	leader := addStudent(t, users, "leader@sliet.ac.in", true)

	_, err := svc.Create(context.Background(), leader, TeamCreate{
		Name:    "bitwise",
		Invites: []string{"nobody@sliet.ac.in"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(teams.teams) != 0 {
		t.Fatal("team row survived a failed creation")
	}
}

func TestTeamMutationsAreLeaderOnly(t *testing.T) {
	svc, users, _ := newTeamFixture(t)
	ctx := context.Background()
	leader := addStudent(t, users, "leader@sliet.ac.in", true)
	mate := addStudent(t, users, "mate@sliet.ac.in", true)

	team, err := svc.Create(ctx, leader, TeamCreate{Name: "bitwise", Invites: []string{"mate@sliet.ac.in"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Accept(ctx, mate, team.ID); err != nil {
		t.Fatal(err)
	}

	// An ordinary member cannot rename, delete, or kick.
	if err := svc.Rename(ctx, mate, team.ID, "other"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("rename by member: %v", err)
	}
	if err := svc.Delete(ctx, mate, team.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("delete by member: %v", err)
	}
	if err := svc.RemoveMember(ctx, mate, team.ID, leader.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("remove by member: %v", err)
	}

	if err := svc.Rename(ctx, leader, team.ID, "other"); err != nil {
		t.Errorf("rename by leader: %v", err)
	}
	if err := svc.RemoveMember(ctx, leader, team.ID, mate.ID); err != nil {
		t.Errorf("remove by leader: %v", err)
	}
}

func TestLeaderCannotRemoveThemselves(t *testing.T) {
	svc, users, _ := newTeamFixture(t)
	ctx := context.Background()
	leader := addStudent(t, users, "leader@sliet.ac.in", true)

	team, err := svc.Create(ctx, leader, TeamCreate{Name: "bitwise"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveMember(ctx, leader, team.ID, leader.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestAcceptConvertsInviteOnce(t *testing.T) {
	svc, users, teams := newTeamFixture(t)
	ctx := context.Background()
	leader := addStudent(t, users, "leader@sliet.ac.in", true)
	mate := addStudent(t, users, "mate@sliet.ac.in", true)

	team, err := svc.Create(ctx, leader, TeamCreate{Name: "bitwise", Invites: []string{"mate@sliet.ac.in"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Accept(ctx, mate, team.ID); err != nil {
		t.Fatal(err)
	}
	members, err := svc.Members(ctx, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}
	if teams.isLeader(team.ID, mate.ID) {
		t.Fatal("accepted invitee became leader")
	}
	// The invitation is spent.
	if err := svc.Accept(ctx, mate, team.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second accept: %v, want ErrNotFound", err)
	}
}

func TestRejectDiscardsInvite(t *testing.T) {
	svc, users, _ := newTeamFixture(t)
	ctx := context.Background()
	leader := addStudent(t, users, "leader@sliet.ac.in", true)
	mate := addStudent(t, users, "mate@sliet.ac.in", true)

	team, err := svc.Create(ctx, leader, TeamCreate{Name: "bitwise", Invites: []string{"mate@sliet.ac.in"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Reject(ctx, mate, team.ID); err != nil {
		t.Fatal(err)
	}
	members, err := svc.Members(ctx, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 {
		t.Fatalf("members = %d, want only the leader", len(members))
	}
}

func TestInviteUnknownEmail(t *testing.T) {
	svc, users, _ := newTeamFixture(t)
	ctx := context.Background()
	leader := addStudent(t, users, "leader@sliet.ac.in", true)

	team, err := svc.Create(ctx, leader, TeamCreate{Name: "bitwise"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Invite(ctx, leader, team.ID, "ghost@sliet.ac.in"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
