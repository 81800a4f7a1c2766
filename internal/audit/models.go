package audit

import "time"

// Event is an immutable, append-only record of a privileged action.
//
// Invariants:
// - Events are never updated or deleted.
// - actor and ip capture are best-effort; do not block critical flows on audit failures.
//
// Order status history and wallet movements have their own audit tables; this
// log answers "which admin did it".
type Event struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`

	ActorUserID int64  `json:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty"`

	// IPAddress is the resolved client IP when available.
	IPAddress string `json:"ip_address,omitempty"`

	// Target identifiers (optional, depending on the event type).
	UserID  *int64 `json:"user_id,omitempty"`
	OrderID *int64 `json:"order_id,omitempty"`
	PromoID *int64 `json:"promo_id,omitempty"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type EventType string

const (
	EventOrderStatusUpdated EventType = "order_status_updated"
	EventOrderCancelled     EventType = "order_cancelled_by_admin"
	EventPromoCreated       EventType = "promo_created"
	EventPromoInactivated   EventType = "promo_inactivated"
	EventPromoSweep         EventType = "promo_sweep"
	EventWalletTopUp        EventType = "wallet_topup"
	EventWalletDeleted      EventType = "wallet_deleted"
)

func (t EventType) Valid() bool {
	switch t {
	case EventOrderStatusUpdated, EventOrderCancelled,
		EventPromoCreated, EventPromoInactivated, EventPromoSweep,
		EventWalletTopUp, EventWalletDeleted:
		return true
	}
	return false
}
