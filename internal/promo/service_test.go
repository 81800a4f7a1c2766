package promo

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-orders/internal/catalog"

	"github.com/shopspring/decimal"
)

var svcNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	products := catalog.NewMemoryRepo(catalog.Product{ID: 1, Name: "mug", PriceMinor: 1200, StockQuantity: 10, Active: true})
	svc := NewService(repo, products)
	svc.clock = func() time.Time { return svcNow }
	return svc, repo
}

func validOrderReq() CreateRequest {
	return CreateRequest{
		Code:               "  spring10 ",
		Type:               "order",
		DiscountPercentage: decimal.NewFromInt(10),
		MinOrderMinor:      ptr(int64(5000)),
		ValidFrom:          svcNow.Add(-24 * time.Hour),
		ValidTo:            svcNow.Add(24 * time.Hour),
	}
}

func TestService_CreateNormalizesAndActivates(t *testing.T) {
	svc, _ := newTestService()

	c, err := svc.Create(context.Background(), validOrderReq())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Code != "SPRING10" || c.Type != TypeOrder || c.Status != StatusActive || c.ID == 0 {
		t.Fatalf("unexpected code: %+v", c)
	}
	if _, err := svc.Create(context.Background(), validOrderReq()); !errors.Is(err, ErrCodeExists) {
		t.Fatalf("expected ErrCodeExists, got %v", err)
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	bad := validOrderReq()
	bad.Type = "BUNDLE"
	if _, err := svc.Create(ctx, bad); !errors.Is(err, ErrInvalidPromoType) {
		t.Fatalf("expected ErrInvalidPromoType, got %v", err)
	}

	bad = validOrderReq()
	bad.MinOrderMinor = nil
	if _, err := svc.Create(ctx, bad); !errors.Is(err, ErrInvalidPromo) {
		t.Fatalf("expected ErrInvalidPromo for missing minimum, got %v", err)
	}

	bad = validOrderReq()
	bad.DiscountPercentage = decimal.NewFromInt(101)
	if _, err := svc.Create(ctx, bad); !errors.Is(err, ErrInvalidPromo) {
		t.Fatalf("expected ErrInvalidPromo for pct > 100, got %v", err)
	}

	bad = validOrderReq()
	bad.ValidTo = bad.ValidFrom
	if _, err := svc.Create(ctx, bad); !errors.Is(err, ErrInvalidPromo) {
		t.Fatalf("expected ErrInvalidPromo for empty window, got %v", err)
	}

	prod := validOrderReq()
	prod.Type = TypeProduct
	prod.MinOrderMinor = nil
	if _, err := svc.Create(ctx, prod); !errors.Is(err, ErrInvalidPromo) {
		t.Fatalf("expected ErrInvalidPromo for missing product, got %v", err)
	}
	prod.ProductID = ptr(int64(404))
	if _, err := svc.Create(ctx, prod); !errors.Is(err, catalog.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	prod.ProductID = ptr(int64(1))
	c, err := svc.Create(ctx, prod)
	if err != nil {
		t.Fatalf("create product promo: %v", err)
	}
	if c.MinOrderMinor != nil || *c.ProductID != 1 {
		t.Fatalf("unexpected product promo: %+v", c)
	}
}

func TestService_InactivateIsTerminal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, validOrderReq())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Inactivate(ctx, c.ID)
	if err != nil {
		t.Fatalf("inactivate: %v", err)
	}
	if got.Status != StatusInactivatedByAdmin {
		t.Fatalf("unexpected status %v", got.Status)
	}
	if _, err := svc.Inactivate(ctx, c.ID); !errors.Is(err, ErrCodeTerminal) {
		t.Fatalf("expected ErrCodeTerminal, got %v", err)
	}
	if _, err := svc.Inactivate(ctx, 999); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestService_MarkExpiredIsIdempotent(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	expired := validOrderReq()
	expired.Code = "OLD"
	expired.ValidFrom = svcNow.Add(-72 * time.Hour)
	expired.ValidTo = svcNow.Add(-time.Hour)
	old, err := svc.Create(ctx, expired)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	live, err := svc.Create(ctx, validOrderReq())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	codes, err := svc.MarkExpired(ctx)
	if err != nil {
		t.Fatalf("mark expired: %v", err)
	}
	if len(codes) != 1 || codes[0] != "OLD" {
		t.Fatalf("expected OLD expired, got %v", codes)
	}
	first, _ := repo.Get(ctx, old.ID)
	if first.Status != StatusExpiredDueToDate {
		t.Fatalf("expected expired status, got %v", first.Status)
	}

	codes, err = svc.MarkExpired(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(codes) != 0 {
		t.Fatalf("expected no-op second run, got %v", codes)
	}
	again, _ := repo.Get(ctx, old.ID)
	if !again.UpdatedAt.Equal(first.UpdatedAt) {
		t.Fatalf("second run must not touch rows")
	}
	still, _ := repo.Get(ctx, live.ID)
	if still.Status != StatusActive {
		t.Fatalf("live code must stay active, got %v", still.Status)
	}
}

func TestService_MarkExpiredSkipsAdminInactivated(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	req := validOrderReq()
	req.ValidTo = svcNow.Add(-time.Minute)
	req.ValidFrom = svcNow.Add(-time.Hour)
	c, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Inactivate(ctx, c.ID); err != nil {
		t.Fatalf("inactivate: %v", err)
	}

	if codes, _ := svc.MarkExpired(ctx); len(codes) != 0 {
		t.Fatalf("expected nothing to expire, got %v", codes)
	}
	got, _ := repo.Get(ctx, c.ID)
	if got.Status != StatusInactivatedByAdmin {
		t.Fatalf("admin status must win, got %v", got.Status)
	}
}

func TestService_ListByType(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, validOrderReq()); err != nil {
		t.Fatalf("create: %v", err)
	}
	prod := validOrderReq()
	prod.Code = "MUG"
	prod.Type = TypeProduct
	prod.ProductID = ptr(int64(1))
	if _, err := svc.Create(ctx, prod); err != nil {
		t.Fatalf("create: %v", err)
	}

	typ := TypeProduct
	got, err := svc.List(ctx, &typ)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Code != "MUG" {
		t.Fatalf("unexpected list: %+v", got)
	}
	all, _ := svc.List(ctx, nil)
	if len(all) != 2 {
		t.Fatalf("expected 2 codes, got %d", len(all))
	}
	bad := Type("X")
	if _, err := svc.List(ctx, &bad); !errors.Is(err, ErrInvalidPromoType) {
		t.Fatalf("expected ErrInvalidPromoType, got %v", err)
	}
}
