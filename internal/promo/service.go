package promo

import (
	"context"
	"strings"
	"time"

	"storefront-orders/internal/catalog"
	"storefront-orders/pkg/logger"

	"github.com/shopspring/decimal"
)

// Repository is the persistence contract for promo codes.
type Repository interface {
	// Insert assigns the id; a duplicate code yields ErrCodeExists.
	Insert(ctx context.Context, c *Code) error
	Get(ctx context.Context, id int64) (Code, error)
	FindByCode(ctx context.Context, code string) (Code, error)
	List(ctx context.Context, typ *Type) ([]Code, error)
	// TransitionStatus sets status to `to` only if the current status is one of
	// `from`. It reports whether a row changed.
	TransitionStatus(ctx context.Context, id int64, from []Status, to Status, now time.Time) (bool, error)
	// ExpireActive moves every ACTIVE code with valid_to < now to
	// EXPIRED_DUE_TO_DATE in one statement and returns the affected codes.
	ExpireActive(ctx context.Context, now time.Time) ([]string, error)
}

type CreateRequest struct {
	Code               string          `json:"code"`
	Type               Type            `json:"promo_type"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	MinOrderMinor      *int64          `json:"min_order_minor,omitempty"`
	ProductID          *int64          `json:"product_id,omitempty"`
	ValidFrom          time.Time       `json:"valid_from"`
	ValidTo            time.Time       `json:"valid_to"`
}

type Service struct {
	repo     Repository
	products catalog.Reader
	clock    func() time.Time
}

func NewService(repo Repository, products catalog.Reader) *Service {
	return &Service{repo: repo, products: products, clock: time.Now}
}

// NormalizeCode is how codes are stored and looked up.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Code, error) {
	code := NormalizeCode(req.Code)
	if code == "" {
		return Code{}, failureWith(ErrInvalidPromo, "code is required")
	}
	typ := Type(strings.ToUpper(string(req.Type)))
	if !typ.Valid() {
		return Code{}, ErrInvalidPromoType
	}
	if !req.DiscountPercentage.IsPositive() || req.DiscountPercentage.GreaterThan(hundred) {
		return Code{}, failureWith(ErrInvalidPromo, "discount_percentage must be in (0, 100]")
	}
	if req.ValidFrom.IsZero() || req.ValidTo.IsZero() || !req.ValidFrom.Before(req.ValidTo) {
		return Code{}, failureWith(ErrInvalidPromo, "valid_from must be before valid_to")
	}

	c := Code{
		Code:               code,
		Type:               typ,
		DiscountPercentage: req.DiscountPercentage,
		ValidFrom:          req.ValidFrom.UTC(),
		ValidTo:            req.ValidTo.UTC(),
		Status:             StatusActive,
	}
	switch typ {
	case TypeProduct:
		if req.ProductID == nil {
			return Code{}, failureWith(ErrInvalidPromo, "product_id is required for PRODUCT type promo codes")
		}
		if _, err := s.products.GetProduct(ctx, *req.ProductID); err != nil {
			return Code{}, err
		}
		pid := *req.ProductID
		c.ProductID = &pid
	case TypeOrder:
		if req.MinOrderMinor == nil || *req.MinOrderMinor < 0 {
			return Code{}, failureWith(ErrInvalidPromo, "min_order_minor is required for ORDER type promo codes")
		}
		m := *req.MinOrderMinor
		c.MinOrderMinor = &m
	}

	now := s.clock().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.repo.Insert(ctx, &c); err != nil {
		return Code{}, err
	}
	logger.From(ctx).Info("promo code created", "code", c.Code, "type", c.Type)
	return c, nil
}

// Inactivate is the admin override. Terminal codes are left alone.
func (s *Service) Inactivate(ctx context.Context, id int64) (Code, error) {
	changed, err := s.repo.TransitionStatus(ctx, id,
		[]Status{StatusActive, StatusInactive}, StatusInactivatedByAdmin, s.clock().UTC())
	if err != nil {
		return Code{}, err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Code{}, err
	}
	if !changed {
		return c, ErrCodeTerminal
	}
	logger.From(ctx).Info("promo code inactivated", "code", c.Code)
	return c, nil
}

func (s *Service) List(ctx context.Context, typ *Type) ([]Code, error) {
	if typ != nil && !typ.Valid() {
		return nil, ErrInvalidPromoType
	}
	return s.repo.List(ctx, typ)
}

// MarkExpired transitions ACTIVE codes past their validity window. Running it
// again with nothing newly expired is a no-op.
func (s *Service) MarkExpired(ctx context.Context) ([]string, error) {
	codes, err := s.repo.ExpireActive(ctx, s.clock().UTC())
	if err != nil {
		return nil, err
	}
	if len(codes) > 0 {
		logger.From(ctx).Info("promo codes expired", "count", len(codes), "codes", codes)
	}
	return codes, nil
}
