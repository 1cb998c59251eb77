package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RelationsRepo answers the existence checks the authorization engine
// runs on every protected request. Absence of a row is (false, nil),
// never an error.
type RelationsRepo struct{ pool *pgxpool.Pool }

func NewRelationsRepo(pool *pgxpool.Pool) *RelationsRepo { return &RelationsRepo{pool: pool} }

func (r *RelationsRepo) exists(ctx context.Context, q string, args ...any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var found bool
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&found); err != nil {
		return false, mapErr(err)
	}
	return found, nil
}

func (r *RelationsRepo) IsFacultyDomainCoordinator(ctx context.Context, facultyID, domainID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM faculty_coordinators WHERE faculty_id=$1 AND domain_id=$2)`
	return r.exists(ctx, q, facultyID, domainID)
}

func (r *RelationsRepo) IsStudentDomainCoordinator(ctx context.Context, studentID, domainID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM student_coordinators WHERE student_id=$1 AND domain_id=$2)`
	return r.exists(ctx, q, studentID, domainID)
}

func (r *RelationsRepo) IsStudentEventCoordinator(ctx context.Context, studentID, eventID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM event_coordinators WHERE student_id=$1 AND event_id=$2)`
	return r.exists(ctx, q, studentID, eventID)
}

func (r *RelationsRepo) IsStudentWorkshopCoordinator(ctx context.Context, studentID, workshopID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM workshop_coordinators WHERE student_id=$1 AND workshop_id=$2)`
	return r.exists(ctx, q, studentID, workshopID)
}

func (r *RelationsRepo) EventDomain(ctx context.Context, eventID int64) (int64, error) {
	const q = `SELECT domain_id FROM events WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var id int64
	if err := r.pool.QueryRow(ctx, q, eventID).Scan(&id); err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

func (r *RelationsRepo) WorkshopDomain(ctx context.Context, workshopID int64) (int64, error) {
	const q = `SELECT domain_id FROM workshops WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var id int64
	if err := r.pool.QueryRow(ctx, q, workshopID).Scan(&id); err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

func (r *RelationsRepo) IsTeamLeader(ctx context.Context, teamID, studentID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id=$1 AND student_id=$2 AND is_leader)`
	return r.exists(ctx, q, teamID, studentID)
}
