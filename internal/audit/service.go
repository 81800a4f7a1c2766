package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It is append-only: there are no Update or Delete methods.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs privileged actions.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to customers.
// - Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if !e.Type.Valid() || e.ActorUserID <= 0 {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Actor is who performed an action and from where.
type Actor struct {
	UserID int64
	Role   string
	IP     string
}

func (s *Service) LogOrderAction(ctx context.Context, by Actor, typ EventType, orderID int64, message string) error {
	return s.Append(ctx, Event{
		Type:        typ,
		ActorUserID: by.UserID,
		ActorRole:   by.Role,
		IPAddress:   by.IP,
		OrderID:     &orderID,
		Message:     message,
	})
}

// LogPromoAction records a promo admin action. promoID may be zero for
// actions that span many codes, such as a manual sweep.
func (s *Service) LogPromoAction(ctx context.Context, by Actor, typ EventType, promoID int64, message string) error {
	e := Event{
		Type:        typ,
		ActorUserID: by.UserID,
		ActorRole:   by.Role,
		IPAddress:   by.IP,
		Message:     message,
	}
	if promoID > 0 {
		e.PromoID = &promoID
	}
	return s.Append(ctx, e)
}

// LogWalletAction records an admin action on another user's wallet.
func (s *Service) LogWalletAction(ctx context.Context, by Actor, typ EventType, userID int64, message string) error {
	return s.Append(ctx, Event{
		Type:        typ,
		ActorUserID: by.UserID,
		ActorRole:   by.Role,
		IPAddress:   by.IP,
		UserID:      &userID,
		Message:     message,
	})
}
