package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techfest-sliet/festd/internal/domain"
)

// IndividualAttendance is one registration row of an individually
// joined event or workshop.
type IndividualAttendance struct {
	UserID   int64 `json:"user_id"`
	Attended bool  `json:"attended"`
}

type TeamAttendance struct {
	TeamID   int64 `json:"team_id"`
	Attended bool  `json:"attended"`
}

type ParticipationRepo interface {
	JoinEventIndividual(ctx context.Context, eventID, userID int64) error
	LeaveEventIndividual(ctx context.Context, eventID, userID int64) error
	EventIndividualAttendance(ctx context.Context, eventID int64) ([]IndividualAttendance, error)
	SetEventIndividualAttendance(ctx context.Context, eventID, userID int64, attended bool) error

	JoinEventTeam(ctx context.Context, eventID, teamID int64) error
	LeaveEventTeam(ctx context.Context, eventID, teamID int64) error
	EventTeamAttendance(ctx context.Context, eventID int64) ([]TeamAttendance, error)
	SetEventTeamAttendance(ctx context.Context, eventID, teamID int64, attended bool) error

	JoinWorkshop(ctx context.Context, workshopID, userID int64) error
	LeaveWorkshop(ctx context.Context, workshopID, userID int64) error
	WorkshopAttendance(ctx context.Context, workshopID int64) ([]IndividualAttendance, error)
	SetWorkshopAttendance(ctx context.Context, workshopID, userID int64, attended bool) error

	JoinedEventsIndividual(ctx context.Context, userID int64) ([]domain.Event, error)
	JoinedEventsTeam(ctx context.Context, teamID int64) ([]domain.Event, error)
	JoinedWorkshops(ctx context.Context, userID int64) ([]domain.Workshop, error)
}

type ParticipationRepoImpl struct{ pool *pgxpool.Pool }

func NewParticipationRepo(pool *pgxpool.Pool) *ParticipationRepoImpl {
	return &ParticipationRepoImpl{pool: pool}
}

func (r *ParticipationRepoImpl) exec(ctx context.Context, q string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ParticipationRepoImpl) insert(ctx context.Context, q string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, args...)
	return mapErr(err)
}

func (r *ParticipationRepoImpl) individualRows(ctx context.Context, q string, id int64) ([]IndividualAttendance, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := []IndividualAttendance{}
	for rows.Next() {
		var a IndividualAttendance
		if err := rows.Scan(&a.UserID, &a.Attended); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, a)
	}
	return out, mapErr(rows.Err())
}

func (r *ParticipationRepoImpl) JoinEventIndividual(ctx context.Context, eventID, userID int64) error {
	return r.insert(ctx, `INSERT INTO event_individual_participation (event_id, user_id) VALUES ($1,$2)`, eventID, userID)
}

func (r *ParticipationRepoImpl) LeaveEventIndividual(ctx context.Context, eventID, userID int64) error {
	return r.exec(ctx, `DELETE FROM event_individual_participation WHERE event_id=$1 AND user_id=$2`, eventID, userID)
}

func (r *ParticipationRepoImpl) EventIndividualAttendance(ctx context.Context, eventID int64) ([]IndividualAttendance, error) {
	return r.individualRows(ctx, `SELECT user_id, attended FROM event_individual_participation WHERE event_id=$1 ORDER BY user_id`, eventID)
}

func (r *ParticipationRepoImpl) SetEventIndividualAttendance(ctx context.Context, eventID, userID int64, attended bool) error {
	return r.exec(ctx, `UPDATE event_individual_participation SET attended=$3 WHERE event_id=$1 AND user_id=$2`, eventID, userID, attended)
}

func (r *ParticipationRepoImpl) JoinEventTeam(ctx context.Context, eventID, teamID int64) error {
	return r.insert(ctx, `INSERT INTO event_team_participation (event_id, team_id) VALUES ($1,$2)`, eventID, teamID)
}

func (r *ParticipationRepoImpl) LeaveEventTeam(ctx context.Context, eventID, teamID int64) error {
	return r.exec(ctx, `DELETE FROM event_team_participation WHERE event_id=$1 AND team_id=$2`, eventID, teamID)
}

func (r *ParticipationRepoImpl) EventTeamAttendance(ctx context.Context, eventID int64) ([]TeamAttendance, error) {
	const q = `SELECT team_id, attended FROM event_team_participation WHERE event_id=$1 ORDER BY team_id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := []TeamAttendance{}
	for rows.Next() {
		var a TeamAttendance
		if err := rows.Scan(&a.TeamID, &a.Attended); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, a)
	}
	return out, mapErr(rows.Err())
}

func (r *ParticipationRepoImpl) SetEventTeamAttendance(ctx context.Context, eventID, teamID int64, attended bool) error {
	return r.exec(ctx, `UPDATE event_team_participation SET attended=$3 WHERE event_id=$1 AND team_id=$2`, eventID, teamID, attended)
}

func (r *ParticipationRepoImpl) JoinWorkshop(ctx context.Context, workshopID, userID int64) error {
	return r.insert(ctx, `INSERT INTO workshop_participation (workshop_id, user_id) VALUES ($1,$2)`, workshopID, userID)
}

func (r *ParticipationRepoImpl) LeaveWorkshop(ctx context.Context, workshopID, userID int64) error {
	return r.exec(ctx, `DELETE FROM workshop_participation WHERE workshop_id=$1 AND user_id=$2`, workshopID, userID)
}

func (r *ParticipationRepoImpl) WorkshopAttendance(ctx context.Context, workshopID int64) ([]IndividualAttendance, error) {
	return r.individualRows(ctx, `SELECT user_id, attended FROM workshop_participation WHERE workshop_id=$1 ORDER BY user_id`, workshopID)
}

func (r *ParticipationRepoImpl) SetWorkshopAttendance(ctx context.Context, workshopID, userID int64, attended bool) error {
	return r.exec(ctx, `UPDATE workshop_participation SET attended=$3 WHERE workshop_id=$1 AND user_id=$2`, workshopID, userID, attended)
}

func (r *ParticipationRepoImpl) JoinedEventsIndividual(ctx context.Context, userID int64) ([]domain.Event, error) {
	const q = `
SELECT ` + prefixedEventColumns + `
FROM event_individual_participation p
JOIN events e ON e.id = p.event_id
WHERE p.user_id=$1
ORDER BY e.start_time, e.id`
	return r.eventRows(ctx, q, userID)
}

func (r *ParticipationRepoImpl) JoinedEventsTeam(ctx context.Context, teamID int64) ([]domain.Event, error) {
	const q = `
SELECT ` + prefixedEventColumns + `
FROM event_team_participation p
JOIN events e ON e.id = p.event_id
WHERE p.team_id=$1
ORDER BY e.start_time, e.id`
	return r.eventRows(ctx, q, teamID)
}

const prefixedEventColumns = `e.id, e.name, e.description, e.mode, e.venue, e.domain_id, e.prize, e.points, e.ps_link,
e.start_time, e.end_time, e.registration_start, e.registration_end, e.whatsapp_link, e.participation_type, e.photo_hash`

func (r *ParticipationRepoImpl) eventRows(ctx context.Context, q string, id int64) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, id)
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

func (r *ParticipationRepoImpl) JoinedWorkshops(ctx context.Context, userID int64) ([]domain.Workshop, error) {
	const q = `
SELECT w.id, w.name, w.description, w.mode, w.venue, w.domain_id, w.points, w.ps_link,
w.start_time, w.end_time, w.registration_start, w.registration_end, w.whatsapp_link, w.photo_hash
FROM workshop_participation p
JOIN workshops w ON w.id = p.workshop_id
WHERE p.user_id=$1
ORDER BY w.start_time, w.id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, userID)
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
