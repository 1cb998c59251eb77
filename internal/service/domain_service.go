package service

import (
	"context"
	"fmt"

	"github.com/techfest-sliet/festd/internal/authz"
	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/platform/blob"
	"github.com/techfest-sliet/festd/internal/repo/postgres"
)

type DomainCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DomainChange struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// DomainService manages subject areas. All mutations are admin only.
type DomainService struct {
	domains postgres.DomainsRepo
	users   postgres.UsersRepo
	policy  *authz.Engine
	blobs   *blob.Store
}

func NewDomainService(domains postgres.DomainsRepo, users postgres.UsersRepo, policy *authz.Engine, blobs *blob.Store) *DomainService {
	return &DomainService{domains: domains, users: users, policy: policy, blobs: blobs}
}

func (s *DomainService) List(ctx context.Context) ([]domain.FestDomain, error) {
	return s.domains.List(ctx)
}

func (s *DomainService) Get(ctx context.Context, id int64) (*domain.FestDomain, error) {
	return s.domains.FindByID(ctx, id)
}

func (s *DomainService) Create(ctx context.Context, caller *domain.User, in DomainCreate) (*domain.FestDomain, error) {
	if err := s.policy.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.domains.Create(ctx, &domain.FestDomain{Name: in.Name, Description: in.Description})
}

func (s *DomainService) Change(ctx context.Context, caller *domain.User, id int64, in DomainChange) error {
	if err := s.policy.RequireSuperAdmin(caller); err != nil {
		return err
	}
	return s.domains.Update(ctx, id, postgres.DomainPatch{Name: in.Name, Description: in.Description})
}

func (s *DomainService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	if err := s.policy.RequireSuperAdmin(caller); err != nil {
		return err
	}
	return s.domains.Delete(ctx, id)
}

func (s *DomainService) SetPhoto(ctx context.Context, caller *domain.User, id int64, data []byte) error {
	if err := s.policy.RequireSuperAdmin(caller); err != nil {
		return err
	}
	hash, err := s.blobs.Put(data)
	if err != nil {
		return err
	}
	return s.domains.SetPhotoHash(ctx, id, hash)
}

func (s *DomainService) Photo(ctx context.Context, id int64) ([]byte, error) {
	hash, err := s.domains.PhotoHash(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(hash) == 0 {
		return nil, domain.ErrNotFound
	}
	return s.blobs.Get(hash)
}

func (s *DomainService) FacultyCoordinators(ctx context.Context, domainID int64) ([]domain.FacultyProfile, error) {
	return s.domains.FacultyCoordinators(ctx, domainID)
}

func (s *DomainService) StudentCoordinators(ctx context.Context, domainID int64) ([]domain.StudentProfile, error) {
	return s.domains.StudentCoordinators(ctx, domainID)
}

// GrantFacultyCoordinator makes the faculty member a coordinator of
// the domain and promotes their global role if it is below
// FACULTY_COORDINATOR.
func (s *DomainService) GrantFacultyCoordinator(ctx context.Context, caller *domain.User, domainID, facultyID int64) error {
	if err := s.policy.RequireSuperAdmin(caller); err != nil {
		return err
	}
	if _, err := s.users.FindFaculty(ctx, facultyID); err != nil {
		return err
	}
	if err := s.domains.AddFacultyCoordinator(ctx, domainID, facultyID); err != nil {
		return err
	}
	return s.promote(ctx, facultyID, domain.RoleFacultyCoordinator)
}

func (s *DomainService) GrantStudentCoordinator(ctx context.Context, caller *domain.User, domainID, studentID int64) error {
	if err := s.policy.RequireSuperAdmin(caller); err != nil {
		return err
	}
	if _, err := s.users.FindStudent(ctx, studentID); err != nil {
		return err
	}
	if err := s.domains.AddStudentCoordinator(ctx, domainID, studentID); err != nil {
		return err
	}
	return s.promote(ctx, studentID, domain.RoleStudentCoordinator)
}

// promote raises the user's global role to at least target; a higher
// existing role is left alone.
func (s *DomainService) promote(ctx context.Context, userID int64, target domain.Role) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role.AtLeast(target) {
		return nil
	}
	return s.users.SetRole(ctx, userID, target)
}
