package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/repo/postgres"
	"github.com/techfest-sliet/festd/pkg/config"
	"github.com/techfest-sliet/festd/pkg/events"
	"github.com/techfest-sliet/festd/pkg/logger"
)

// PaymentService owns the fee-satisfied predicate and payment intake.
type PaymentService struct {
	payments postgres.PaymentsRepo
	bus      events.Publisher
	cfg      config.PaymentConfig
	// institutionDomain marks fee-exempt accounts.
	institutionDomain string
}

func NewPaymentService(payments postgres.PaymentsRepo, bus events.Publisher, cfg config.PaymentConfig, institutionDomain string) *PaymentService {
	stripe.Key = cfg.StripeKey
	return &PaymentService{payments: payments, bus: bus, cfg: cfg, institutionDomain: institutionDomain}
}

// IsPaymentDone reports whether the registration fee is settled for
// the user. Institution addresses are exempt; everyone else needs a
// verified payment row. A lookup failure counts as not paid.
func (s *PaymentService) IsPaymentDone(ctx context.Context, u *domain.User) bool {
	if s.cfg.AssumeDone {
		return true
	}
	if strings.HasSuffix(strings.ToLower(u.Email), "@"+s.institutionDomain) {
		return true
	}
	paid, err := s.payments.HasVerifiedPayment(ctx, u.ID)
	if err != nil {
		logger.ErrorContext(ctx, "payment lookup", "user_id", u.ID, "error", err)
		return false
	}
	return paid
}

// Record verifies a Stripe PaymentIntent succeeded and stores the
// payment as verified.
func (s *PaymentService) Record(ctx context.Context, userID int64, intentID string) (*domain.Payment, error) {
	if intentID == "" {
		return nil, fmt.Errorf("%w: payment id is required", domain.ErrValidation)
	}
	pi, err := paymentintent.Get(intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe lookup: %v", domain.ErrUpstream, err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment not completed (status %s)", domain.ErrValidation, pi.Status)
	}
	p := &domain.Payment{
		UserID:    userID,
		PaymentID: pi.ID,
		Amount:    pi.Amount,
		Verified:  true,
	}
	if err := s.payments.Insert(ctx, p); err != nil {
		return nil, err
	}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.PaymentRecorded, events.PaymentRecordedEvent{
			UserID: p.UserID, PaymentID: p.PaymentID, Amount: p.Amount,
		}); err != nil {
			logger.ErrorContext(ctx, "publish event", "subject", events.PaymentRecorded, "error", err)
		}
	}
	return p, nil
}
