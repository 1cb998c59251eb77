package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/techfest-sliet/festd/internal/authz"
	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/repo/postgres"
	"github.com/techfest-sliet/festd/pkg/events"
	"github.com/techfest-sliet/festd/pkg/logger"
)

type TeamCreate struct {
	Name    string   `json:"name"`
	Invites []string `json:"invites"`
}

// TeamService drives the membership lifecycle: invited via
// team_requests, member via team_members, with the leader as the only
// member allowed to mutate the team.
type TeamService struct {
	teams  postgres.TeamsRepo
	users  postgres.UsersRepo
	policy *authz.Engine
	bus    events.Publisher
}

func NewTeamService(teams postgres.TeamsRepo, users postgres.UsersRepo, policy *authz.Engine, bus events.Publisher) *TeamService {
	return &TeamService{teams: teams, users: users, policy: policy, bus: bus}
}

func (s *TeamService) Get(ctx context.Context, id int64) (*domain.Team, error) {
	return s.teams.FindByID(ctx, id)
}

// Mine lists teams the caller belongs to, as leader or member.
func (s *TeamService) Mine(ctx context.Context, caller *domain.User) ([]domain.Team, error) {
	return s.teams.ListByStudent(ctx, caller.ID)
}

// Create makes a team with the caller as leader, inviting up to
// MaxTeamInvites students by email. Everything lands in one
// transaction; an unresolvable invitee aborts the creation.
func (s *TeamService) Create(ctx context.Context, caller *domain.User, in TeamCreate) (*domain.Team, error) {
	if err := s.policy.RequireVerified(caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: team name is required", domain.ErrValidation)
	}
	t, err := s.teams.CreateWithInvites(ctx, in.Name, caller.ID, in.Invites)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TeamCreated, events.TeamCreatedEvent{
		TeamID: t.ID, LeaderID: caller.ID, Name: t.Name, Invited: len(in.Invites), CreatedAt: time.Now(),
	})
	return t, nil
}

func (s *TeamService) Rename(ctx context.Context, caller *domain.User, teamID int64, name string) error {
	if err := s.policy.RequireTeamLeader(ctx, caller, teamID); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: team name is required", domain.ErrValidation)
	}
	return s.teams.Rename(ctx, teamID, name)
}

func (s *TeamService) Delete(ctx context.Context, caller *domain.User, teamID int64) error {
	if err := s.policy.RequireTeamLeader(ctx, caller, teamID); err != nil {
		return err
	}
	return s.teams.Delete(ctx, teamID)
}

func (s *TeamService) Members(ctx context.Context, teamID int64) ([]domain.TeamMemberProfile, error) {
	return s.teams.Members(ctx, teamID)
}

// RemoveMember kicks a member out. The leader cannot remove
// themselves: a team never exists without its leader.
func (s *TeamService) RemoveMember(ctx context.Context, caller *domain.User, teamID, studentID int64) error {
	if err := s.policy.RequireTeamLeader(ctx, caller, teamID); err != nil {
		return err
	}
	if studentID == caller.ID {
		return fmt.Errorf("%w: the leader cannot leave their own team; delete it instead", domain.ErrConflict)
	}
	return s.teams.RemoveMember(ctx, teamID, studentID)
}

func (s *TeamService) Invites(ctx context.Context, caller *domain.User, teamID int64) ([]domain.StudentProfile, error) {
	if err := s.policy.RequireTeamLeader(ctx, caller, teamID); err != nil {
		return nil, err
	}
	return s.teams.InvitesForTeam(ctx, teamID)
}

// Invite sends one invitation by email. A missing student account is
// reported distinctly from a duplicate invitation.
func (s *TeamService) Invite(ctx context.Context, caller *domain.User, teamID int64, email string) error {
	if err := s.policy.RequireTeamLeader(ctx, caller, teamID); err != nil {
		return err
	}
	u, err := s.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return fmt.Errorf("%w: no account for %s", domain.ErrNotFound, email)
	}
	if _, err := s.users.FindStudent(ctx, u.ID); err != nil {
		return fmt.Errorf("%w: %s is not a student account", domain.ErrValidation, email)
	}
	if err := s.teams.CreateInvite(ctx, teamID, u.ID); err != nil {
		return err
	}
	s.publish(ctx, events.TeamInviteSent, events.TeamInviteEvent{TeamID: teamID, StudentID: u.ID})
	return nil
}

// Accept converts the caller's invitation into membership. Only the
// invitee may accept, and the conversion is atomic.
func (s *TeamService) Accept(ctx context.Context, caller *domain.User, teamID int64) error {
	if err := s.teams.AcceptInvite(ctx, teamID, caller.ID); err != nil {
		return err
	}
	s.publish(ctx, events.TeamInviteAccepted, events.TeamInviteEvent{TeamID: teamID, StudentID: caller.ID})
	return nil
}

func (s *TeamService) Reject(ctx context.Context, caller *domain.User, teamID int64) error {
	if err := s.teams.RejectInvite(ctx, teamID, caller.ID); err != nil {
		return err
	}
	s.publish(ctx, events.TeamInviteRejected, events.TeamInviteEvent{TeamID: teamID, StudentID: caller.ID})
	return nil
}

func (s *TeamService) publish(ctx context.Context, subject string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "publish event", "subject", subject, "error", err)
	}
}
