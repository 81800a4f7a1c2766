package promo

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeOrder   Type = "ORDER"
	TypeProduct Type = "PRODUCT"
)

func (t Type) Valid() bool { return t == TypeOrder || t == TypeProduct }

// Status values are persisted as integers; keep them stable.
type Status int

const (
	StatusActive             Status = 1
	StatusInactive           Status = 2
	StatusExpiredDueToDate   Status = 3
	StatusInactivatedByAdmin Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusInactive:
		return "INACTIVE"
	case StatusExpiredDueToDate:
		return "EXPIRED_DUE_TO_DATE"
	case StatusInactivatedByAdmin:
		return "INACTIVATED_BY_ADMIN"
	default:
		return "UNKNOWN"
	}
}

// Terminal statuses can never become usable again. The row is kept for audit.
func (s Status) Terminal() bool {
	return s == StatusExpiredDueToDate || s == StatusInactivatedByAdmin
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Code is a discount rule scoped to a whole order or to one product.
type Code struct {
	ID                 int64           `json:"id"`
	Code               string          `json:"code"`
	Type               Type            `json:"type"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	// MinOrderMinor applies to ORDER codes only.
	MinOrderMinor *int64 `json:"min_order_minor,omitempty"`
	// ProductID applies to PRODUCT codes only.
	ProductID *int64    `json:"product_id,omitempty"`
	ValidFrom time.Time `json:"valid_from"`
	ValidTo   time.Time `json:"valid_to"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Usable reports whether the code is ACTIVE and now lies inside [ValidFrom, ValidTo].
func (c Code) Usable(now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	return !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}
