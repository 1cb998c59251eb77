package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techfest-sliet/festd/internal/domain"
)

// ProfilePatch carries the optional fields of a profile update. Nil
// fields leave the stored value unchanged.
type ProfilePatch struct {
	Name  *string
	DOB   *time.Time
	Phone *string
}

type UsersRepo interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, p ProfilePatch) error
	SetVerified(ctx context.Context, id int64) error
	SetRole(ctx context.Context, id int64, role domain.Role) error
	SetPasswordHash(ctx context.Context, id int64, hash string) error
	SetPhotoHash(ctx context.Context, id int64, hash []byte) error
	PhotoHash(ctx context.Context, id int64) ([]byte, error)
	CountSuperAdmins(ctx context.Context) (int64, error)

	CreateStudent(ctx context.Context, s *domain.Student) error
	FindStudent(ctx context.Context, userID int64) (*domain.Student, error)
	CreateFaculty(ctx context.Context, f *domain.Faculty) error
	FindFaculty(ctx context.Context, userID int64) (*domain.Faculty, error)
}

type UsersRepoImpl struct{ pool *pgxpool.Pool }

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepoImpl { return &UsersRepoImpl{pool: pool} }

const userColumns = `id, name, dob, email, phone, role, photo_hash, verified, password_hash`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Name, &u.DOB, &u.Email, &u.Phone, &u.Role, &u.PhotoHash, &u.Verified, &u.PasswordHash,
	); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UsersRepoImpl) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (name, dob, email, phone, role, verified, password_hash)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING ` + userColumns
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.pool.QueryRow(ctx, q, u.Name, u.DOB, u.Email, u.Phone, u.Role, u.Verified, u.PasswordHash))
}

func (r *UsersRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *UsersRepoImpl) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *UsersRepoImpl) UpdateProfile(ctx context.Context, id int64, p ProfilePatch) error {
	const q = `
UPDATE users
SET name = COALESCE($2, name),
    dob = COALESCE($3, dob),
    phone = COALESCE($4, phone)
WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id, p.Name, p.DOB, p.Phone)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UsersRepoImpl) SetVerified(ctx context.Context, id int64) error {
	const q = `UPDATE users SET verified=true WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UsersRepoImpl) SetRole(ctx context.Context, id int64, role domain.Role) error {
	const q = `UPDATE users SET role=$2 WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id, role)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UsersRepoImpl) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	const q = `UPDATE users SET password_hash=$2 WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id, hash)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UsersRepoImpl) SetPhotoHash(ctx context.Context, id int64, hash []byte) error {
	const q = `UPDATE users SET photo_hash=$2 WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id, hash)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UsersRepoImpl) PhotoHash(ctx context.Context, id int64) ([]byte, error) {
	const q = `SELECT photo_hash FROM users WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var hash []byte
	if err := r.pool.QueryRow(ctx, q, id).Scan(&hash); err != nil {
		return nil, mapErr(err)
	}
	return hash, nil
}

func (r *UsersRepoImpl) CountSuperAdmins(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM users WHERE role='SUPER_ADMIN'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var n int64
	if err := r.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (r *UsersRepoImpl) CreateStudent(ctx context.Context, s *domain.Student) error {
	const q = `INSERT INTO students (user_id, college, registration_number, department) VALUES ($1,$2,$3,$4)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, s.UserID, s.College, s.RegNo, s.Dept)
	return mapErr(err)
}

func (r *UsersRepoImpl) FindStudent(ctx context.Context, userID int64) (*domain.Student, error) {
	const q = `SELECT user_id, college, registration_number, department FROM students WHERE user_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var s domain.Student
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&s.UserID, &s.College, &s.RegNo, &s.Dept); err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *UsersRepoImpl) CreateFaculty(ctx context.Context, f *domain.Faculty) error {
	const q = `INSERT INTO faculty (user_id, title, department) VALUES ($1,$2,$3)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, f.UserID, f.Title, f.Dept)
	return mapErr(err)
}

func (r *UsersRepoImpl) FindFaculty(ctx context.Context, userID int64) (*domain.Faculty, error) {
	const q = `SELECT user_id, title, department FROM faculty WHERE user_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var f domain.Faculty
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&f.UserID, &f.Title, &f.Dept); err != nil {
		return nil, mapErr(err)
	}
	return &f, nil
}
