package service

import (
	"context"
	"fmt"
	"time"

	"github.com/techfest-sliet/festd/internal/authz"
	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/platform/blob"
	"github.com/techfest-sliet/festd/internal/repo/postgres"
	"github.com/techfest-sliet/festd/pkg/events"
	"github.com/techfest-sliet/festd/pkg/logger"
)

type EventCreate struct {
	Name              string                   `json:"name"`
	Description       string                   `json:"description"`
	Mode              domain.Mode              `json:"mode"`
	Venue             string                   `json:"venue"`
	DomainID          int64                    `json:"domain_id"`
	Prize             int                      `json:"prize"`
	Points            int                      `json:"points"`
	PSLink            string                   `json:"ps_link"`
	StartTime         time.Time                `json:"start_time"`
	EndTime           time.Time                `json:"end_time"`
	RegistrationStart time.Time                `json:"registration_start"`
	RegistrationEnd   time.Time                `json:"registration_end"`
	WhatsappLink      string                   `json:"whatsapp_link"`
	ParticipationType domain.ParticipationType `json:"participation_type"`
}

type EventChange struct {
	Name              *string                   `json:"name"`
	Description       *string                   `json:"description"`
	Mode              *domain.Mode              `json:"mode"`
	Venue             *string                   `json:"venue"`
	Prize             *int                      `json:"prize"`
	Points            *int                      `json:"points"`
	PSLink            *string                   `json:"ps_link"`
	StartTime         *time.Time                `json:"start_time"`
	EndTime           *time.Time                `json:"end_time"`
	RegistrationStart *time.Time                `json:"registration_start"`
	RegistrationEnd   *time.Time                `json:"registration_end"`
	WhatsappLink      *string                   `json:"whatsapp_link"`
	ParticipationType *domain.ParticipationType `json:"participation_type"`
}

type EventService struct {
	events        postgres.EventsRepo
	participation postgres.ParticipationRepo
	users         postgres.UsersRepo
	policy        *authz.Engine
	blobs         *blob.Store
	bus           events.Publisher
}

func NewEventService(repo postgres.EventsRepo, participation postgres.ParticipationRepo, users postgres.UsersRepo, policy *authz.Engine, blobs *blob.Store, bus events.Publisher) *EventService {
	return &EventService{events: repo, participation: participation, users: users, policy: policy, blobs: blobs, bus: bus}
}

func (s *EventService) Get(ctx context.Context, id int64) (*domain.Event, error) {
	return s.events.FindByID(ctx, id)
}

func (s *EventService) ListByDomain(ctx context.Context, domainID int64) ([]domain.Event, error) {
	return s.events.ListByDomain(ctx, domainID)
}

func (s *EventService) Create(ctx context.Context, caller *domain.User, in EventCreate) (*domain.Event, error) {
	if err := s.policy.CanCreateEventIn(ctx, caller, in.DomainID); err != nil {
		return nil, err
	}
	if in.Name == "" || in.DomainID == 0 {
		return nil, fmt.Errorf("%w: name and domain_id are required", domain.ErrValidation)
	}
	return s.events.Create(ctx, &domain.Event{
		Name:              in.Name,
		Description:       in.Description,
		Mode:              in.Mode,
		Venue:             in.Venue,
		DomainID:          in.DomainID,
		Prize:             in.Prize,
		Points:            in.Points,
		PSLink:            in.PSLink,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		RegistrationStart: in.RegistrationStart,
		RegistrationEnd:   in.RegistrationEnd,
		WhatsappLink:      in.WhatsappLink,
		ParticipationType: in.ParticipationType,
	})
}

func (s *EventService) Change(ctx context.Context, caller *domain.User, id int64, in EventChange) error {
	if err := s.policy.CanManageEvent(ctx, caller, authz.OpChange, id); err != nil {
		return err
	}
	return s.events.Update(ctx, id, postgres.EventPatch{
		Name:              in.Name,
		Description:       in.Description,
		Mode:              in.Mode,
		Venue:             in.Venue,
		Prize:             in.Prize,
		Points:            in.Points,
		PSLink:            in.PSLink,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		RegistrationStart: in.RegistrationStart,
		RegistrationEnd:   in.RegistrationEnd,
		WhatsappLink:      in.WhatsappLink,
		ParticipationType: in.ParticipationType,
	})
}

func (s *EventService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	if err := s.policy.CanManageEvent(ctx, caller, authz.OpDelete, id); err != nil {
		return err
	}
	return s.events.Delete(ctx, id)
}

func (s *EventService) SetPhoto(ctx context.Context, caller *domain.User, id int64, data []byte) error {
	if err := s.policy.CanManageEvent(ctx, caller, authz.OpSetPhoto, id); err != nil {
		return err
	}
	hash, err := s.blobs.Put(data)
	if err != nil {
		return err
	}
	return s.events.SetPhotoHash(ctx, id, hash)
}

func (s *EventService) Photo(ctx context.Context, id int64) ([]byte, error) {
	hash, err := s.events.PhotoHash(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(hash) == 0 {
		return nil, domain.ErrNotFound
	}
	return s.blobs.Get(hash)
}

func (s *EventService) Coordinators(ctx context.Context, eventID int64) ([]domain.StudentProfile, error) {
	return s.events.StudentCoordinators(ctx, eventID)
}

// GrantCoordinator assigns a student as event-level coordinator and
// promotes their role to STUDENT_COORDINATOR if still below it.
func (s *EventService) GrantCoordinator(ctx context.Context, caller *domain.User, eventID, studentID int64) error {
	if err := s.policy.RequireSuperAdmin(caller); err != nil {
		return err
	}
	if _, err := s.users.FindStudent(ctx, studentID); err != nil {
		return err
	}
	if err := s.events.AddStudentCoordinator(ctx, eventID, studentID); err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		return err
	}
	if u.Role.AtLeast(domain.RoleStudentCoordinator) {
		return nil
	}
	return s.users.SetRole(ctx, studentID, domain.RoleStudentCoordinator)
}

// JoinIndividual registers the caller for an individual event.
func (s *EventService) JoinIndividual(ctx context.Context, caller *domain.User, eventID int64) error {
	if err := s.policy.RequireVerified(caller); err != nil {
		return err
	}
	e, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if e.ParticipationType != domain.ParticipationIndividual {
		return fmt.Errorf("%w: event takes team registrations", domain.ErrValidation)
	}
	return s.participation.JoinEventIndividual(ctx, eventID, caller.ID)
}

func (s *EventService) LeaveIndividual(ctx context.Context, caller *domain.User, eventID int64) error {
	return s.participation.LeaveEventIndividual(ctx, eventID, caller.ID)
}

// JoinTeam registers a team; only its leader may do that.
func (s *EventService) JoinTeam(ctx context.Context, caller *domain.User, eventID, teamID int64) error {
	if err := s.policy.RequireVerified(caller); err != nil {
		return err
	}
	if err := s.policy.RequireTeamLeader(ctx, caller, teamID); err != nil {
		return err
	}
	e, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if e.ParticipationType != domain.ParticipationTeam {
		return fmt.Errorf("%w: event takes individual registrations", domain.ErrValidation)
	}
	return s.participation.JoinEventTeam(ctx, eventID, teamID)
}

func (s *EventService) LeaveTeam(ctx context.Context, caller *domain.User, eventID, teamID int64) error {
	if err := s.policy.RequireTeamLeader(ctx, caller, teamID); err != nil {
		return err
	}
	return s.participation.LeaveEventTeam(ctx, eventID, teamID)
}

func (s *EventService) IndividualAttendance(ctx context.Context, caller *domain.User, eventID int64) ([]postgres.IndividualAttendance, error) {
	if err := s.policy.CanManageEvent(ctx, caller, authz.OpReadAttendance, eventID); err != nil {
		return nil, err
	}
	return s.participation.EventIndividualAttendance(ctx, eventID)
}

func (s *EventService) MarkIndividualAttendance(ctx context.Context, caller *domain.User, eventID, userID int64, attended bool) error {
	if err := s.policy.CanManageEvent(ctx, caller, authz.OpMarkAttendance, eventID); err != nil {
		return err
	}
	if err := s.participation.SetEventIndividualAttendance(ctx, eventID, userID, attended); err != nil {
		return err
	}
	s.publishAttendance(ctx, "event_individual", eventID, userID, attended, caller.ID)
	return nil
}

func (s *EventService) TeamAttendance(ctx context.Context, caller *domain.User, eventID int64) ([]postgres.TeamAttendance, error) {
	if err := s.policy.CanManageEvent(ctx, caller, authz.OpReadAttendance, eventID); err != nil {
		return nil, err
	}
	return s.participation.EventTeamAttendance(ctx, eventID)
}

func (s *EventService) MarkTeamAttendance(ctx context.Context, caller *domain.User, eventID, teamID int64, attended bool) error {
	if err := s.policy.CanManageEvent(ctx, caller, authz.OpMarkAttendance, eventID); err != nil {
		return err
	}
	if err := s.participation.SetEventTeamAttendance(ctx, eventID, teamID, attended); err != nil {
		return err
	}
	s.publishAttendance(ctx, "event_team", eventID, teamID, attended, caller.ID)
	return nil
}

func (s *EventService) JoinedIndividual(ctx context.Context, caller *domain.User) ([]domain.Event, error) {
	return s.participation.JoinedEventsIndividual(ctx, caller.ID)
}

func (s *EventService) JoinedByTeam(ctx context.Context, teamID int64) ([]domain.Event, error) {
	return s.participation.JoinedEventsTeam(ctx, teamID)
}

func (s *EventService) publishAttendance(ctx context.Context, kind string, activityID, participantID int64, attended bool, markedBy int64) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, events.AttendanceMarked, events.AttendanceMarkedEvent{
		Kind:          kind,
		ActivityID:    activityID,
		ParticipantID: participantID,
		Attended:      attended,
		MarkedBy:      markedBy,
		MarkedAt:      time.Now(),
	})
	if err != nil {
		logger.ErrorContext(ctx, "publish event", "subject", events.AttendanceMarked, "error", err)
	}
}
