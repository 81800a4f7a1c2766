package postgres

import (
	"context"
	"database/sql"

	"storefront-orders/internal/audit"
)

// AuditRepo appends admin events. It has no update path.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

func (r *AuditRepo) Append(ctx context.Context, e audit.Event) error {
	const q = `
INSERT INTO admin_events (
  id, type, actor_user_id, actor_role, ip_address, user_id, order_id, promo_id, message, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		string(e.Type),
		e.ActorUserID,
		e.ActorRole,
		e.IPAddress,
		nullableInt(e.UserID),
		nullableInt(e.OrderID),
		nullableInt(e.PromoID),
		e.Message,
		e.CreatedAt,
	)
	return err
}
