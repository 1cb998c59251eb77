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

type WorkshopCreate struct {
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	Mode              domain.Mode `json:"mode"`
	Venue             string      `json:"venue"`
	DomainID          int64       `json:"domain_id"`
	Points            int         `json:"points"`
	PSLink            string      `json:"ps_link"`
	StartTime         time.Time   `json:"start_time"`
	EndTime           time.Time   `json:"end_time"`
	RegistrationStart time.Time   `json:"registration_start"`
	RegistrationEnd   time.Time   `json:"registration_end"`
	WhatsappLink      string      `json:"whatsapp_link"`
}

type WorkshopChange struct {
	Name              *string      `json:"name"`
	Description       *string      `json:"description"`
	Mode              *domain.Mode `json:"mode"`
	Venue             *string      `json:"venue"`
	Points            *int         `json:"points"`
	PSLink            *string      `json:"ps_link"`
	StartTime         *time.Time   `json:"start_time"`
	EndTime           *time.Time   `json:"end_time"`
	RegistrationStart *time.Time   `json:"registration_start"`
	RegistrationEnd   *time.Time   `json:"registration_end"`
	WhatsappLink      *string      `json:"whatsapp_link"`
}

// WorkshopService mirrors EventService without team participation:
// workshops are always individual.
type WorkshopService struct {
	workshops     postgres.WorkshopsRepo
	participation postgres.ParticipationRepo
	users         postgres.UsersRepo
	policy        *authz.Engine
	blobs         *blob.Store
	bus           events.Publisher
}

func NewWorkshopService(repo postgres.WorkshopsRepo, participation postgres.ParticipationRepo, users postgres.UsersRepo, policy *authz.Engine, blobs *blob.Store, bus events.Publisher) *WorkshopService {
	return &WorkshopService{workshops: repo, participation: participation, users: users, policy: policy, blobs: blobs, bus: bus}
}

func (s *WorkshopService) Get(ctx context.Context, id int64) (*domain.Workshop, error) {
	return s.workshops.FindByID(ctx, id)
}

func (s *WorkshopService) ListByDomain(ctx context.Context, domainID int64) ([]domain.Workshop, error) {
	return s.workshops.ListByDomain(ctx, domainID)
}

func (s *WorkshopService) Create(ctx context.Context, caller *domain.User, in WorkshopCreate) (*domain.Workshop, error) {
	if err := s.policy.CanCreateWorkshopIn(ctx, caller, in.DomainID); err != nil {
		return nil, err
	}
	if in.Name == "" || in.DomainID == 0 {
		return nil, fmt.Errorf("%w: name and domain_id are required", domain.ErrValidation)
	}
	return s.workshops.Create(ctx, &domain.Workshop{
		Name:              in.Name,
		Description:       in.Description,
		Mode:              in.Mode,
		Venue:             in.Venue,
		DomainID:          in.DomainID,
		Points:            in.Points,
		PSLink:            in.PSLink,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		RegistrationStart: in.RegistrationStart,
		RegistrationEnd:   in.RegistrationEnd,
		WhatsappLink:      in.WhatsappLink,
	})
}

func (s *WorkshopService) Change(ctx context.Context, caller *domain.User, id int64, in WorkshopChange) error {
	if err := s.policy.CanManageWorkshop(ctx, caller, authz.OpChange, id); err != nil {
		return err
	}
	return s.workshops.Update(ctx, id, postgres.WorkshopPatch{
		Name:              in.Name,
		Description:       in.Description,
		Mode:              in.Mode,
		Venue:             in.Venue,
		Points:            in.Points,
		PSLink:            in.PSLink,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		RegistrationStart: in.RegistrationStart,
		RegistrationEnd:   in.RegistrationEnd,
		WhatsappLink:      in.WhatsappLink,
	})
}

func (s *WorkshopService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	if err := s.policy.CanManageWorkshop(ctx, caller, authz.OpDelete, id); err != nil {
		return err
	}
	return s.workshops.Delete(ctx, id)
}

func (s *WorkshopService) SetPhoto(ctx context.Context, caller *domain.User, id int64, data []byte) error {
	if err := s.policy.CanManageWorkshop(ctx, caller, authz.OpSetPhoto, id); err != nil {
		return err
	}
	hash, err := s.blobs.Put(data)
	if err != nil {
		return err
	}
	return s.workshops.SetPhotoHash(ctx, id, hash)
}

func (s *WorkshopService) Photo(ctx context.Context, id int64) ([]byte, error) {
	hash, err := s.workshops.PhotoHash(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(hash) == 0 {
		return nil, domain.ErrNotFound
	}
	return s.blobs.Get(hash)
}

func (s *WorkshopService) Coordinators(ctx context.Context, workshopID int64) ([]domain.StudentProfile, error) {
	return s.workshops.StudentCoordinators(ctx, workshopID)
}

func (s *WorkshopService) GrantCoordinator(ctx context.Context, caller *domain.User, workshopID, studentID int64) error {
	if err := s.policy.RequireSuperAdmin(caller); err != nil {
		return err
	}
	if _, err := s.users.FindStudent(ctx, studentID); err != nil {
		return err
	}
	if err := s.workshops.AddStudentCoordinator(ctx, workshopID, studentID); err != nil {
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

func (s *WorkshopService) Join(ctx context.Context, caller *domain.User, workshopID int64) error {
	if err := s.policy.RequireVerified(caller); err != nil {
		return err
	}
	if _, err := s.workshops.FindByID(ctx, workshopID); err != nil {
		return err
	}
	return s.participation.JoinWorkshop(ctx, workshopID, caller.ID)
}

func (s *WorkshopService) Leave(ctx context.Context, caller *domain.User, workshopID int64) error {
	return s.participation.LeaveWorkshop(ctx, workshopID, caller.ID)
}

func (s *WorkshopService) Attendance(ctx context.Context, caller *domain.User, workshopID int64) ([]postgres.IndividualAttendance, error) {
	if err := s.policy.CanManageWorkshop(ctx, caller, authz.OpReadAttendance, workshopID); err != nil {
		return nil, err
	}
	return s.participation.WorkshopAttendance(ctx, workshopID)
}

func (s *WorkshopService) MarkAttendance(ctx context.Context, caller *domain.User, workshopID, userID int64, attended bool) error {
	if err := s.policy.CanManageWorkshop(ctx, caller, authz.OpMarkAttendance, workshopID); err != nil {
		return err
	}
	if err := s.participation.SetWorkshopAttendance(ctx, workshopID, userID, attended); err != nil {
		return err
	}
	if s.bus != nil {
		err := s.bus.Publish(ctx, events.AttendanceMarked, events.AttendanceMarkedEvent{
			Kind:          "workshop",
			ActivityID:    workshopID,
			ParticipantID: userID,
			Attended:      attended,
			MarkedBy:      caller.ID,
			MarkedAt:      time.Now(),
		})
		if err != nil {
			logger.ErrorContext(ctx, "publish event", "subject", events.AttendanceMarked, "error", err)
		}
	}
	return nil
}

func (s *WorkshopService) Joined(ctx context.Context, caller *domain.User) ([]domain.Workshop, error) {
	return s.participation.JoinedWorkshops(ctx, caller.ID)
}
