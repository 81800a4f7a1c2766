package orders

import (
	"context"
	"time"

	"storefront-orders/internal/cart"
	"storefront-orders/internal/catalog"
	"storefront-orders/internal/promo"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 4, 2, 15, 30, 0, 0, time.UTC)

const (
	userAlice int64 = 10
	userBob   int64 = 11

	productMug    int64 = 1
	productKettle int64 = 2
)

type fixture struct {
	store *MemoryStore
	svc   *Service
}

// newFixture seeds two users, two products and an address for alice.
// Alice has 100.00 in her wallet.
func newFixture() fixture {
	st := NewMemoryStore()
	st.AddUser(User{ID: userAlice, Name: "alice"})
	st.AddUser(User{ID: userBob, Name: "bob"})
	st.AddProduct(catalog.Product{ID: productMug, Name: "mug", PriceMinor: 1250, StockQuantity: 10, Active: true})
	st.AddProduct(catalog.Product{ID: productKettle, Name: "kettle", PriceMinor: 4000, StockQuantity: 3, Active: true})
	st.SeedWallet(userAlice, 10000)
	st.SeedWallet(userBob, 0)
	st.AddAddress(Address{UserID: userAlice, Street: "1 Main St", City: "Springfield", CreatedAt: testNow.Add(-48 * time.Hour)})

	svc := NewService(st, NewStaticRegistry())
	svc.clock = func() time.Time { return testNow }
	return fixture{store: st, svc: svc}
}

func (f fixture) addToCart(userID, productID, qty int64) {
	f.store.AddCartLine(cart.Line{UserID: userID, ProductID: productID, Quantity: qty})
}

func (f fixture) stockTotal() int64 {
	return f.store.Product(productMug).StockQuantity + f.store.Product(productKettle).StockQuantity
}

func (f fixture) checkout(userID int64, code string) (CheckoutResult, error) {
	return f.svc.Checkout(context.Background(), CheckoutRequest{UserID: userID, PromoCode: code})
}

func activeOrderPromo(code, pct string, minOrder int64) promo.Code {
	return promo.Code{
		Code:               code,
		Type:               promo.TypeOrder,
		DiscountPercentage: decimal.RequireFromString(pct),
		MinOrderMinor:      &minOrder,
		ValidFrom:          testNow.Add(-24 * time.Hour),
		ValidTo:            testNow.Add(24 * time.Hour),
		Status:             promo.StatusActive,
	}
}

func activeProductPromo(code, pct string, productID int64) promo.Code {
	return promo.Code{
		Code:               code,
		Type:               promo.TypeProduct,
		DiscountPercentage: decimal.RequireFromString(pct),
		ProductID:          &productID,
		ValidFrom:          testNow.Add(-24 * time.Hour),
		ValidTo:            testNow.Add(24 * time.Hour),
		Status:             promo.StatusActive,
	}
}
