package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techfest-sliet/festd/internal/domain"
)

type TeamsRepo interface {
	FindByID(ctx context.Context, id int64) (*domain.Team, error)
	ListByStudent(ctx context.Context, studentID int64) ([]domain.Team, error)
	CreateWithInvites(ctx context.Context, name string, leaderID int64, inviteeEmails []string) (*domain.Team, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
	Members(ctx context.Context, teamID int64) ([]domain.TeamMemberProfile, error)
	RemoveMember(ctx context.Context, teamID, studentID int64) error
	InvitesForTeam(ctx context.Context, teamID int64) ([]domain.StudentProfile, error)
	InvitesForStudent(ctx context.Context, studentID int64) ([]domain.Team, error)
	CreateInvite(ctx context.Context, teamID, studentID int64) error
	AcceptInvite(ctx context.Context, teamID, studentID int64) error
	RejectInvite(ctx context.Context, teamID, studentID int64) error
}

type TeamsRepoImpl struct{ pool *pgxpool.Pool }

func NewTeamsRepo(pool *pgxpool.Pool) *TeamsRepoImpl { return &TeamsRepoImpl{pool: pool} }

func (r *TeamsRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Team, error) {
	const q = `SELECT id, name FROM teams WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var t domain.Team
	if err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name); err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *TeamsRepoImpl) ListByStudent(ctx context.Context, studentID int64) ([]domain.Team, error) {
	const q = `
SELECT t.id, t.name
FROM teams t
JOIN team_members tm ON tm.team_id = t.id
WHERE tm.student_id=$1
ORDER BY t.id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, studentID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := []domain.Team{}
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, t)
	}
	return out, mapErr(rows.Err())
}

// CreateWithInvites inserts the team, its leader membership, and one
// invitation per resolved email inside a single transaction. An
// invitee email that matches no student aborts the whole creation.
func (r *TeamsRepoImpl) CreateWithInvites(ctx context.Context, name string, leaderID int64, inviteeEmails []string) (*domain.Team, error) {
	if len(inviteeEmails) > domain.MaxTeamInvites {
		return nil, fmt.Errorf("%w: at most %d invitations", domain.ErrValidation, domain.MaxTeamInvites)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	defer tx.Rollback(ctx)

	var t domain.Team
	if err := tx.QueryRow(ctx, `INSERT INTO teams (name) VALUES ($1) RETURNING id, name`, name).Scan(&t.ID, &t.Name); err != nil {
		return nil, mapErr(err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO team_members (team_id, student_id, is_leader) VALUES ($1,$2,true)`,
		t.ID, leaderID,
	); err != nil {
		return nil, mapErr(err)
	}
	for _, email := range inviteeEmails {
		var studentID int64
		err := tx.QueryRow(ctx,
			`SELECT s.user_id FROM students s JOIN users u ON u.id = s.user_id WHERE u.email=$1`,
			email,
		).Scan(&studentID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no student account for %s", domain.ErrValidation, email)
		}
		if err != nil {
			return nil, mapErr(err)
		}
		if studentID == leaderID {
			return nil, fmt.Errorf("%w: cannot invite the team leader", domain.ErrValidation)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO team_requests (team_id, student_id) VALUES ($1,$2)`,
			t.ID, studentID,
		); err != nil {
			return nil, mapErr(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *TeamsRepoImpl) Rename(ctx context.Context, id int64, name string) error {
	const q = `UPDATE teams SET name=$2 WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id, name)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TeamsRepoImpl) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM teams WHERE id=$1`
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

func (r *TeamsRepoImpl) Members(ctx context.Context, teamID int64) ([]domain.TeamMemberProfile, error) {
	const q = `
SELECT ` + studentProfileColumns + `, tm.is_leader
FROM team_members tm
JOIN students s ON s.user_id = tm.student_id
JOIN users u ON u.id = s.user_id
WHERE tm.team_id=$1
ORDER BY tm.is_leader DESC, u.id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, teamID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := []domain.TeamMemberProfile{}
	for rows.Next() {
		var m domain.TeamMemberProfile
		if err := rows.Scan(
			&m.ID, &m.Name, &m.DOB, &m.Email, &m.Phone, &m.Role, &m.Verified,
			&m.College, &m.RegNo, &m.Dept, &m.IsLeader,
		); err != nil {
			return nil, mapErr(err)
		}
		m.UserID = m.ID
		out = append(out, m)
	}
	return out, mapErr(rows.Err())
}

func (r *TeamsRepoImpl) RemoveMember(ctx context.Context, teamID, studentID int64) error {
	const q = `DELETE FROM team_members WHERE team_id=$1 AND student_id=$2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, teamID, studentID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TeamsRepoImpl) InvitesForTeam(ctx context.Context, teamID int64) ([]domain.StudentProfile, error) {
	const q = `
SELECT ` + studentProfileColumns + `
FROM team_requests tr
JOIN students s ON s.user_id = tr.student_id
JOIN users u ON u.id = s.user_id
WHERE tr.team_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, teamID)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanStudentProfiles(rows)
}

func (r *TeamsRepoImpl) InvitesForStudent(ctx context.Context, studentID int64) ([]domain.Team, error) {
	const q = `
SELECT t.id, t.name
FROM team_requests tr
JOIN teams t ON t.id = tr.team_id
WHERE tr.student_id=$1
ORDER BY t.id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, studentID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := []domain.Team{}
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, t)
	}
	return out, mapErr(rows.Err())
}

func (r *TeamsRepoImpl) CreateInvite(ctx context.Context, teamID, studentID int64) error {
	const q = `INSERT INTO team_requests (team_id, student_id) VALUES ($1,$2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, teamID, studentID)
	return mapErr(err)
}

// AcceptInvite converts a pending invitation into an ordinary
// membership. Both writes commit together or not at all; a missing
// invitation row rolls the membership back.
func (r *TeamsRepoImpl) AcceptInvite(ctx context.Context, teamID, studentID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM team_requests WHERE team_id=$1 AND student_id=$2`, teamID, studentID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO team_members (team_id, student_id, is_leader) VALUES ($1,$2,false)`,
		teamID, studentID,
	); err != nil {
		return mapErr(err)
	}
	return mapErr(tx.Commit(ctx))
}

func (r *TeamsRepoImpl) RejectInvite(ctx context.Context, teamID, studentID int64) error {
	const q = `DELETE FROM team_requests WHERE team_id=$1 AND student_id=$2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, teamID, studentID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
