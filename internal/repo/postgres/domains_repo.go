package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techfest-sliet/festd/internal/domain"
)

type DomainPatch struct {
	Name        *string
	Description *string
}

type DomainsRepo interface {
	List(ctx context.Context) ([]domain.FestDomain, error)
	FindByID(ctx context.Context, id int64) (*domain.FestDomain, error)
	Create(ctx context.Context, d *domain.FestDomain) (*domain.FestDomain, error)
	Update(ctx context.Context, id int64, p DomainPatch) error
	Delete(ctx context.Context, id int64) error
	SetPhotoHash(ctx context.Context, id int64, hash []byte) error
	PhotoHash(ctx context.Context, id int64) ([]byte, error)

	FacultyCoordinators(ctx context.Context, domainID int64) ([]domain.FacultyProfile, error)
	StudentCoordinators(ctx context.Context, domainID int64) ([]domain.StudentProfile, error)
	AddFacultyCoordinator(ctx context.Context, domainID, facultyID int64) error
	AddStudentCoordinator(ctx context.Context, domainID, studentID int64) error
}

type DomainsRepoImpl struct{ pool *pgxpool.Pool }

func NewDomainsRepo(pool *pgxpool.Pool) *DomainsRepoImpl { return &DomainsRepoImpl{pool: pool} }

func (r *DomainsRepoImpl) List(ctx context.Context) ([]domain.FestDomain, error) {
	const q = `SELECT id, name, description, photo_hash FROM domains ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := []domain.FestDomain{}
	for rows.Next() {
		var d domain.FestDomain
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.PhotoHash); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, d)
	}
	return out, mapErr(rows.Err())
}

func (r *DomainsRepoImpl) FindByID(ctx context.Context, id int64) (*domain.FestDomain, error) {
	const q = `SELECT id, name, description, photo_hash FROM domains WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var d domain.FestDomain
	if err := r.pool.QueryRow(ctx, q, id).Scan(&d.ID, &d.Name, &d.Description, &d.PhotoHash); err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *DomainsRepoImpl) Create(ctx context.Context, d *domain.FestDomain) (*domain.FestDomain, error) {
	const q = `INSERT INTO domains (name, description) VALUES ($1,$2) RETURNING id, name, description, photo_hash`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var out domain.FestDomain
	if err := r.pool.QueryRow(ctx, q, d.Name, d.Description).Scan(&out.ID, &out.Name, &out.Description, &out.PhotoHash); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *DomainsRepoImpl) Update(ctx context.Context, id int64, p DomainPatch) error {
	const q = `
UPDATE domains
SET name = COALESCE($2, name),
    description = COALESCE($3, description)
WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id, p.Name, p.Description)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete refuses to remove a domain that still owns events or
// workshops; the foreign keys are RESTRICT and surface as a conflict.
func (r *DomainsRepoImpl) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM domains WHERE id=$1`
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

func (r *DomainsRepoImpl) SetPhotoHash(ctx context.Context, id int64, hash []byte) error {
	const q = `UPDATE domains SET photo_hash=$2 WHERE id=$1`
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

func (r *DomainsRepoImpl) PhotoHash(ctx context.Context, id int64) ([]byte, error) {
	const q = `SELECT photo_hash FROM domains WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var hash []byte
	if err := r.pool.QueryRow(ctx, q, id).Scan(&hash); err != nil {
		return nil, mapErr(err)
	}
	return hash, nil
}

const facultyProfileColumns = `u.id, u.name, u.dob, u.email, u.phone, u.role, u.verified, f.title, f.department`

func scanFacultyProfiles(rows pgx.Rows) ([]domain.FacultyProfile, error) {
	defer rows.Close()
	out := []domain.FacultyProfile{}
	for rows.Next() {
		var p domain.FacultyProfile
		if err := rows.Scan(
			&p.ID, &p.Name, &p.DOB, &p.Email, &p.Phone, &p.Role, &p.Verified, &p.Title, &p.Dept,
		); err != nil {
			return nil, mapErr(err)
		}
		p.UserID = p.ID
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}

const studentProfileColumns = `u.id, u.name, u.dob, u.email, u.phone, u.role, u.verified, s.college, s.registration_number, s.department`

func scanStudentProfiles(rows pgx.Rows) ([]domain.StudentProfile, error) {
	defer rows.Close()
	out := []domain.StudentProfile{}
	for rows.Next() {
		var p domain.StudentProfile
		if err := rows.Scan(
			&p.ID, &p.Name, &p.DOB, &p.Email, &p.Phone, &p.Role, &p.Verified, &p.College, &p.RegNo, &p.Dept,
		); err != nil {
			return nil, mapErr(err)
		}
		p.UserID = p.ID
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}

func (r *DomainsRepoImpl) FacultyCoordinators(ctx context.Context, domainID int64) ([]domain.FacultyProfile, error) {
	const q = `
SELECT ` + facultyProfileColumns + `
FROM faculty_coordinators fc
JOIN faculty f ON f.user_id = fc.faculty_id
JOIN users u ON u.id = f.user_id
WHERE fc.domain_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, domainID)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanFacultyProfiles(rows)
}

func (r *DomainsRepoImpl) StudentCoordinators(ctx context.Context, domainID int64) ([]domain.StudentProfile, error) {
	const q = `
SELECT ` + studentProfileColumns + `
FROM student_coordinators sc
JOIN students s ON s.user_id = sc.student_id
JOIN users u ON u.id = s.user_id
WHERE sc.domain_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, domainID)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanStudentProfiles(rows)
}

func (r *DomainsRepoImpl) AddFacultyCoordinator(ctx context.Context, domainID, facultyID int64) error {
	const q = `INSERT INTO faculty_coordinators (domain_id, faculty_id) VALUES ($1,$2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, domainID, facultyID)
	return mapErr(err)
}

func (r *DomainsRepoImpl) AddStudentCoordinator(ctx context.Context, domainID, studentID int64) error {
	const q = `INSERT INTO student_coordinators (domain_id, student_id) VALUES ($1,$2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, domainID, studentID)
	return mapErr(err)
}
