package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techfest-sliet/festd/internal/domain"
)

type WorkshopPatch struct {
	Name              *string
	Description       *string
	Mode              *domain.Mode
	Venue             *string
	Points            *int
	PSLink            *string
	StartTime         *time.Time
	EndTime           *time.Time
	RegistrationStart *time.Time
	RegistrationEnd   *time.Time
	WhatsappLink      *string
}

type WorkshopsRepo interface {
	FindByID(ctx context.Context, id int64) (*domain.Workshop, error)
	ListByDomain(ctx context.Context, domainID int64) ([]domain.Workshop, error)
	Create(ctx context.Context, w *domain.Workshop) (*domain.Workshop, error)
	Update(ctx context.Context, id int64, p WorkshopPatch) error
	Delete(ctx context.Context, id int64) error
	SetPhotoHash(ctx context.Context, id int64, hash []byte) error
	PhotoHash(ctx context.Context, id int64) ([]byte, error)
	StudentCoordinators(ctx context.Context, workshopID int64) ([]domain.StudentProfile, error)
	AddStudentCoordinator(ctx context.Context, workshopID, studentID int64) error
}

type WorkshopsRepoImpl struct{ pool *pgxpool.Pool }

func NewWorkshopsRepo(pool *pgxpool.Pool) *WorkshopsRepoImpl { return &WorkshopsRepoImpl{pool: pool} }

const workshopColumns = `id, name, description, mode, venue, domain_id, points, ps_link,
start_time, end_time, registration_start, registration_end, whatsapp_link, photo_hash`

func scanWorkshop(row interface{ Scan(...any) error }) (*domain.Workshop, error) {
	var w domain.Workshop
	if err := row.Scan(
		&w.ID, &w.Name, &w.Description, &w.Mode, &w.Venue, &w.DomainID, &w.Points, &w.PSLink,
		&w.StartTime, &w.EndTime, &w.RegistrationStart, &w.RegistrationEnd, &w.WhatsappLink, &w.PhotoHash,
	); err != nil {
		return nil, mapErr(err)
	}
	return &w, nil
}

func (r *WorkshopsRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Workshop, error) {
	const q = `SELECT ` + workshopColumns + ` FROM workshops WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanWorkshop(r.pool.QueryRow(ctx, q, id))
}

func (r *WorkshopsRepoImpl) ListByDomain(ctx context.Context, domainID int64) ([]domain.Workshop, error) {
	const q = `SELECT ` + workshopColumns + ` FROM workshops WHERE domain_id=$1 ORDER BY start_time, id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, domainID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := []domain.Workshop{}
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, mapErr(rows.Err())
}

func (r *WorkshopsRepoImpl) Create(ctx context.Context, w *domain.Workshop) (*domain.Workshop, error) {
	const q = `
INSERT INTO workshops (name, description, mode, venue, domain_id, points, ps_link,
start_time, end_time, registration_start, registration_end, whatsapp_link)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING ` + workshopColumns
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanWorkshop(r.pool.QueryRow(ctx, q,
		w.Name, w.Description, w.Mode, w.Venue, w.DomainID, w.Points, w.PSLink,
		w.StartTime, w.EndTime, w.RegistrationStart, w.RegistrationEnd, w.WhatsappLink,
	))
}

func (r *WorkshopsRepoImpl) Update(ctx context.Context, id int64, p WorkshopPatch) error {
	const q = `
UPDATE workshops
SET name = COALESCE($2, name),
    description = COALESCE($3, description),
    mode = COALESCE($4, mode),
    venue = COALESCE($5, venue),
    points = COALESCE($6, points),
    ps_link = COALESCE($7, ps_link),
    start_time = COALESCE($8, start_time),
    end_time = COALESCE($9, end_time),
    registration_start = COALESCE($10, registration_start),
    registration_end = COALESCE($11, registration_end),
    whatsapp_link = COALESCE($12, whatsapp_link)
WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id,
		p.Name, p.Description, p.Mode, p.Venue, p.Points, p.PSLink,
		p.StartTime, p.EndTime, p.RegistrationStart, p.RegistrationEnd, p.WhatsappLink,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WorkshopsRepoImpl) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM workshops WHERE id=$1`
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

func (r *WorkshopsRepoImpl) SetPhotoHash(ctx context.Context, id int64, hash []byte) error {
	const q = `UPDATE workshops SET photo_hash=$2 WHERE id=$1`
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

func (r *WorkshopsRepoImpl) PhotoHash(ctx context.Context, id int64) ([]byte, error) {
	const q = `SELECT photo_hash FROM workshops WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var hash []byte
	if err := r.pool.QueryRow(ctx, q, id).Scan(&hash); err != nil {
		return nil, mapErr(err)
	}
	return hash, nil
}

func (r *WorkshopsRepoImpl) StudentCoordinators(ctx context.Context, workshopID int64) ([]domain.StudentProfile, error) {
	const q = `
SELECT ` + studentProfileColumns + `
FROM workshop_coordinators wc
JOIN students s ON s.user_id = wc.student_id
JOIN users u ON u.id = s.user_id
WHERE wc.workshop_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, workshopID)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanStudentProfiles(rows)
}

func (r *WorkshopsRepoImpl) AddStudentCoordinator(ctx context.Context, workshopID, studentID int64) error {
	const q = `INSERT INTO workshop_coordinators (workshop_id, student_id) VALUES ($1,$2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, workshopID, studentID)
	return mapErr(err)
}
