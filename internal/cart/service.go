package cart

import (
	"context"
	"time"

	"storefront-orders/internal/catalog"
	"storefront-orders/pkg/logger"
)

// Repository is the persistence contract for cart lines. Deleted lines are
// soft-deleted and never returned.
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]Line, error)
	FindByProduct(ctx context.Context, userID, productID int64) (Line, bool, error)
	GetLine(ctx context.Context, userID, lineID int64) (Line, error)
	Insert(ctx context.Context, l *Line) error
	UpdateQuantity(ctx context.Context, lineID, quantity int64, now time.Time) error
	SoftDelete(ctx context.Context, lineID int64, now time.Time) error
}

type Service struct {
	repo     Repository
	products catalog.Reader
	clock    func() time.Time
}

func NewService(repo Repository, products catalog.Reader) *Service {
	return &Service{repo: repo, products: products, clock: time.Now}
}

func (s *Service) List(ctx context.Context, userID int64) ([]Line, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Add puts quantity units of a product into the cart, merging with an existing
// line for the same product. The merged quantity must not exceed stock.
func (s *Service) Add(ctx context.Context, userID, productID, quantity int64) (Line, error) {
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return Line{}, err
	}
	if !p.Active {
		return Line{}, ErrProductUnavailable
	}

	now := s.clock().UTC()
	existing, ok, err := s.repo.FindByProduct(ctx, userID, productID)
	if err != nil {
		return Line{}, err
	}
	if ok {
		merged := existing.Quantity + quantity
		if merged > p.StockQuantity {
			return Line{}, ErrExceedsStock
		}
		if err := s.repo.UpdateQuantity(ctx, existing.ID, merged, now); err != nil {
			return Line{}, err
		}
		existing.Quantity = merged
		existing.UpdatedAt = now
		return existing, nil
	}

	if quantity > p.StockQuantity {
		return Line{}, ErrExceedsStock
	}
	l := Line{
		UserID:      userID,
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		PriceMinor:  p.PriceMinor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, &l); err != nil {
		return Line{}, err
	}
	logger.From(ctx).Debug("cart line added", "user_id", userID, "product_id", productID, "quantity", quantity)
	return l, nil
}

// UpdateQuantity replaces a line's quantity; it must not exceed current stock.
func (s *Service) UpdateQuantity(ctx context.Context, userID, lineID, quantity int64) (Line, error) {
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	l, err := s.repo.GetLine(ctx, userID, lineID)
	if err != nil {
		return Line{}, err
	}
	p, err := s.products.GetProduct(ctx, l.ProductID)
	if err != nil {
		return Line{}, err
	}
	if quantity > p.StockQuantity {
		return Line{}, ErrExceedsStock
	}

	now := s.clock().UTC()
	if err := s.repo.UpdateQuantity(ctx, l.ID, quantity, now); err != nil {
		return Line{}, err
	}
	l.Quantity = quantity
	l.UpdatedAt = now
	return l, nil
}

func (s *Service) Remove(ctx context.Context, userID, lineID int64) error {
	l, err := s.repo.GetLine(ctx, userID, lineID)
	if err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, l.ID, s.clock().UTC())
}
