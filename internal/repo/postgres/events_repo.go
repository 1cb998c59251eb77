package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techfest-sliet/festd/internal/domain"
)

type EventPatch struct {
	Name              *string
	Description       *string
	Mode              *domain.Mode
	Venue             *string
	Prize             *int
	Points            *int
	PSLink            *string
	StartTime         *time.Time
	EndTime           *time.Time
	RegistrationStart *time.Time
	RegistrationEnd   *time.Time
	WhatsappLink      *string
	ParticipationType *domain.ParticipationType
}

type EventsRepo interface {
	FindByID(ctx context.Context, id int64) (*domain.Event, error)
	ListByDomain(ctx context.Context, domainID int64) ([]domain.Event, error)
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	Update(ctx context.Context, id int64, p EventPatch) error
	Delete(ctx context.Context, id int64) error
	SetPhotoHash(ctx context.Context, id int64, hash []byte) error
	PhotoHash(ctx context.Context, id int64) ([]byte, error)
	StudentCoordinators(ctx context.Context, eventID int64) ([]domain.StudentProfile, error)
	AddStudentCoordinator(ctx context.Context, eventID, studentID int64) error
}

type EventsRepoImpl struct{ pool *pgxpool.Pool }

func NewEventsRepo(pool *pgxpool.Pool) *EventsRepoImpl { return &EventsRepoImpl{pool: pool} }

const eventColumns = `id, name, description, mode, venue, domain_id, prize, points, ps_link,
start_time, end_time, registration_start, registration_end, whatsapp_link, participation_type, photo_hash`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.Mode, &e.Venue, &e.DomainID, &e.Prize, &e.Points, &e.PSLink,
		&e.StartTime, &e.EndTime, &e.RegistrationStart, &e.RegistrationEnd, &e.WhatsappLink, &e.ParticipationType, &e.PhotoHash,
	); err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

func (r *EventsRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanEvent(r.pool.QueryRow(ctx, q, id))
}

func (r *EventsRepoImpl) ListByDomain(ctx context.Context, domainID int64) ([]domain.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE domain_id=$1 ORDER BY start_time, id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, domainID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, mapErr(rows.Err())
}

func (r *EventsRepoImpl) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	const q = `
INSERT INTO events (name, description, mode, venue, domain_id, prize, points, ps_link,
start_time, end_time, registration_start, registration_end, whatsapp_link, participation_type)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
RETURNING ` + eventColumns
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanEvent(r.pool.QueryRow(ctx, q,
		e.Name, e.Description, e.Mode, e.Venue, e.DomainID, e.Prize, e.Points, e.PSLink,
		e.StartTime, e.EndTime, e.RegistrationStart, e.RegistrationEnd, e.WhatsappLink, e.ParticipationType,
	))
}

func (r *EventsRepoImpl) Update(ctx context.Context, id int64, p EventPatch) error {
	const q = `
UPDATE events
SET name = COALESCE($2, name),
    description = COALESCE($3, description),
    mode = COALESCE($4, mode),
    venue = COALESCE($5, venue),
    prize = COALESCE($6, prize),
    points = COALESCE($7, points),
    ps_link = COALESCE($8, ps_link),
    start_time = COALESCE($9, start_time),
    end_time = COALESCE($10, end_time),
    registration_start = COALESCE($11, registration_start),
    registration_end = COALESCE($12, registration_end),
    whatsapp_link = COALESCE($13, whatsapp_link),
    participation_type = COALESCE($14, participation_type)
WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id,
		p.Name, p.Description, p.Mode, p.Venue, p.Prize, p.Points, p.PSLink,
		p.StartTime, p.EndTime, p.RegistrationStart, p.RegistrationEnd, p.WhatsappLink, p.ParticipationType,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EventsRepoImpl) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM events WHERE id=$1`
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

func (r *EventsRepoImpl) SetPhotoHash(ctx context.Context, id int64, hash []byte) error {
	const q = `UPDATE events SET photo_hash=$2 WHERE id=$1`
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

func (r *EventsRepoImpl) PhotoHash(ctx context.Context, id int64) ([]byte, error) {
	const q = `SELECT photo_hash FROM events WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var hash []byte
	if err := r.pool.QueryRow(ctx, q, id).Scan(&hash); err != nil {
		return nil, mapErr(err)
	}
	return hash, nil
}

func (r *EventsRepoImpl) StudentCoordinators(ctx context.Context, eventID int64) ([]domain.StudentProfile, error) {
	const q = `
SELECT ` + studentProfileColumns + `
FROM event_coordinators ec
JOIN students s ON s.user_id = ec.student_id
JOIN users u ON u.id = s.user_id
WHERE ec.event_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanStudentProfiles(rows)
}

func (r *EventsRepoImpl) AddStudentCoordinator(ctx context.Context, eventID, studentID int64) error {
	const q = `INSERT INTO event_coordinators (event_id, student_id) VALUES ($1,$2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, eventID, studentID)
	return mapErr(err)
}
