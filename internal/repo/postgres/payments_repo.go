package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techfest-sliet/festd/internal/domain"
)

type PaymentsRepo interface {
	HasVerifiedPayment(ctx context.Context, userID int64) (bool, error)
	Insert(ctx context.Context, p *domain.Payment) error
}

type PaymentsRepoImpl struct{ pool *pgxpool.Pool }

func NewPaymentsRepo(pool *pgxpool.Pool) *PaymentsRepoImpl { return &PaymentsRepoImpl{pool: pool} }

func (r *PaymentsRepoImpl) HasVerifiedPayment(ctx context.Context, userID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM payments WHERE user_id=$1 AND verified)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var found bool
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&found); err != nil {
		return false, mapErr(err)
	}
	return found, nil
}

func (r *PaymentsRepoImpl) Insert(ctx context.Context, p *domain.Payment) error {
	const q = `INSERT INTO payments (user_id, payment_id, payment_amount, verified) VALUES ($1,$2,$3,$4)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, p.UserID, p.PaymentID, p.Amount, p.Verified)
	return mapErr(err)
}
