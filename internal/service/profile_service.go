package service

import (
	"context"
	"time"

	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/platform/blob"
	"github.com/techfest-sliet/festd/internal/repo/postgres"
)

type ProfileChange struct {
	Name  *string    `json:"name"`
	DOB   *time.Time `json:"dob"`
	Phone *string    `json:"phone"`
}

type ProfileService struct {
	users postgres.UsersRepo
	teams postgres.TeamsRepo
	blobs *blob.Store
}

func NewProfileService(users postgres.UsersRepo, teams postgres.TeamsRepo, blobs *blob.Store) *ProfileService {
	return &ProfileService{users: users, teams: teams, blobs: blobs}
}

func (s *ProfileService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *ProfileService) Change(ctx context.Context, userID int64, in ProfileChange) error {
	return s.users.UpdateProfile(ctx, userID, postgres.ProfilePatch{
		Name:  in.Name,
		DOB:   in.DOB,
		Phone: in.Phone,
	})
}

func (s *ProfileService) Student(ctx context.Context, userID int64) (*domain.Student, error) {
	return s.users.FindStudent(ctx, userID)
}

func (s *ProfileService) Faculty(ctx context.Context, userID int64) (*domain.Faculty, error) {
	return s.users.FindFaculty(ctx, userID)
}

// SetPhoto stores the image and points the profile at its hash.
func (s *ProfileService) SetPhoto(ctx context.Context, userID int64, data []byte) error {
	hash, err := s.blobs.Put(data)
	if err != nil {
		return err
	}
	return s.users.SetPhotoHash(ctx, userID, hash)
}

func (s *ProfileService) Photo(ctx context.Context, userID int64) ([]byte, error) {
	hash, err := s.users.PhotoHash(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(hash) == 0 {
		return nil, domain.ErrNotFound
	}
	return s.blobs.Get(hash)
}

// PendingInvites lists the open team invitations addressed to the user.
func (s *ProfileService) PendingInvites(ctx context.Context, userID int64) ([]domain.Team, error) {
	return s.teams.InvitesForStudent(ctx, userID)
}
