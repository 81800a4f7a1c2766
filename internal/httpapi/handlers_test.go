package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"storefront-orders/internal/audit"
	"storefront-orders/internal/auth"
	"storefront-orders/internal/cart"
	"storefront-orders/internal/catalog"
	"storefront-orders/internal/config"
	"storefront-orders/internal/orders"
	"storefront-orders/internal/promo"
	"storefront-orders/internal/rbac"
	"storefront-orders/internal/reporting"
	"storefront-orders/internal/wallet"

	"github.com/gin-gonic/gin"
)

type env struct {
	store   *orders.MemoryStore
	wallets *wallet.MemoryRepo
	audits  *audit.MemoryRepo
	reports *reporting.MemoryRepo
	router  *gin.Engine
}

// as injects an identity the way auth.RequireAccessToken would.
func as(userID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), userID, role))
		c.Next()
	}
}

func newEnv(t *testing.T, userID int64, role string) env {
	t.Helper()
	return newEnvWithStore(t, seededStore(), userID, role)
}

func seededStore() *orders.MemoryStore {
	store := orders.NewMemoryStore()
	store.AddUser(orders.User{ID: 1, Name: "alice"})
	store.AddUser(orders.User{ID: 2, Name: "bob"})
	store.AddProduct(catalog.Product{ID: 100, Name: "mug", PriceMinor: 1500, StockQuantity: 5, Active: true})
	store.SeedWallet(1, 5000)
	store.SeedWallet(2, 100)
	store.AddAddress(orders.Address{UserID: 1, Street: "1 Main St", City: "Springfield", CreatedAt: time.Now()})
	store.AddAddress(orders.Address{UserID: 2, Street: "2 Side St", City: "Springfield", CreatedAt: time.Now()})
	return store
}

// newEnvWithStore serves the handlers as userID over a shared order store.
func newEnvWithStore(t *testing.T, store *orders.MemoryStore, userID int64, role string) env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := catalog.NewMemoryRepo(catalog.Product{ID: 100, Name: "mug", PriceMinor: 1500, StockQuantity: 5, Active: true})
	wallets := wallet.NewMemoryRepo()
	wallets.Seed(userID, 1000)
	audits := audit.NewMemoryRepo()
	reports := reporting.NewMemoryRepo()

	h := Handlers{
		Orders:  orders.NewService(store, orders.NewStaticRegistry()),
		Wallet:  wallet.NewService(wallets),
		Promo:   promo.NewService(promo.NewMemoryRepo(), products),
		Cart:    cart.NewService(cart.NewMemoryRepo(), products),
		Reports: reporting.NewService(reports),
		Audit:   audit.NewService(audits),
	}

	r := gin.New()
	v1 := r.Group("/v1", as(userID, role))
	v1.POST("/orders/checkout", h.Checkout)
	v1.GET("/orders", h.GetOrders)
	v1.POST("/orders/:order_id/cancel", h.CancelOrder)
	v1.GET("/order-statuses", h.ListOrderStatuses)
	v1.GET("/wallet", h.GetWallet)
	v1.GET("/wallet/transactions", h.WalletTransactions)
	v1.GET("/cart", h.GetCart)
	v1.POST("/cart/items", h.AddCartItem)
	v1.PATCH("/cart/items/:line_id", h.UpdateCartItem)
	v1.DELETE("/cart/items/:line_id", h.RemoveCartItem)

	admin := v1.Group("/admin", rbac.RequireAdmin())
	admin.PATCH("/orders/:order_id/status", h.UpdateOrderStatus)
	admin.GET("/wallets/:user_id", h.AdminGetWallet)
	admin.POST("/wallets/:user_id/topup", h.AdminTopUpWallet)
	admin.DELETE("/wallets/:user_id", h.AdminDeleteWallet)
	admin.POST("/promo-codes", h.CreatePromoCode)
	admin.GET("/promo-codes", h.ListPromoCodes)
	admin.POST("/promo-codes/:promo_id/inactivate", h.InactivatePromoCode)
	admin.POST("/promo-codes/expire", h.ExpirePromoCodes)
	admin.GET("/reports/orders", h.OrdersReport)
	admin.GET("/reports/spend", h.SpendReport)

	return env{store: store, wallets: wallets, audits: audits, reports: reports, router: r}
}

func (e env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestCheckoutHandler_Success(t *testing.T) {
	e := newEnv(t, 1, rbac.RoleCustomer)
	e.store.AddCartLine(cart.Line{UserID: 1, ProductID: 100, Quantity: 2})

	w := e.do(t, http.MethodPost, "/v1/orders/checkout", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var res orders.CheckoutResult
	decode(t, w, &res)
	if res.OrderID == 0 || res.Message != "Order placed successfully." || res.ChargedMinor != 3000 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCheckoutHandler_ErrorMapping(t *testing.T) {
	e := newEnv(t, 1, rbac.RoleCustomer)
	w := e.do(t, http.MethodPost, "/v1/orders/checkout", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty cart: expected 400, got %d", w.Code)
	}

	e.store.AddCartLine(cart.Line{UserID: 1, ProductID: 100, Quantity: 1})
	w = e.do(t, http.MethodPost, "/v1/orders/checkout", map[string]string{"promo_code": "NOPE"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown promo: expected 404, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] != "Invalid promo code." {
		t.Fatalf("unexpected message %q", body["error"])
	}

	e.store.RemoveProduct(100)
	w = e.do(t, http.MethodPost, "/v1/orders/checkout", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("integrity failure: expected 500, got %d", w.Code)
	}
	decode(t, w, &body)
	if body["error"] != "internal error" || body["code"] != "integrity" {
		t.Fatalf("integrity detail must not leak: %+v", body)
	}
}

func TestCheckoutHandler_InsufficientBalance(t *testing.T) {
	e := newEnv(t, 2, rbac.RoleCustomer)
	e.store.AddCartLine(cart.Line{UserID: 2, ProductID: 100, Quantity: 1})

	w := e.do(t, http.MethodPost, "/v1/orders/checkout", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] != "Insufficient wallet balance." {
		t.Fatalf("unexpected message %q", body["error"])
	}
	if txs := e.store.Transactions(); len(txs) != 1 || txs[0].Status != wallet.TransactionFailed {
		t.Fatalf("expected one failed transaction, got %+v", txs)
	}
}

func TestGetOrdersHandler_CustomerScopedToSelf(t *testing.T) {
	e := newEnv(t, 1, rbac.RoleCustomer)
	e.store.SeedWallet(2, 5000)
	e.store.AddCartLine(cart.Line{UserID: 2, ProductID: 100, Quantity: 1})
	if _, err := orders.NewService(e.store, orders.NewStaticRegistry()).Checkout(context.Background(), orders.CheckoutRequest{UserID: 2}); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	w := e.do(t, http.MethodGet, "/v1/orders?user_id=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Orders []orders.Order `json:"orders"`
	}
	decode(t, w, &body)
	if len(body.Orders) != 0 {
		t.Fatalf("customer must not see other users' orders: %+v", body.Orders)
	}

	if w := e.do(t, http.MethodGet, "/v1/orders?order_id=abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad order_id, got %d", w.Code)
	}
}

func TestGetOrdersHandler_AdminFilters(t *testing.T) {
	e := newEnv(t, 99, rbac.RoleAdmin)
	e.store.AddCartLine(cart.Line{UserID: 1, ProductID: 100, Quantity: 1})
	if _, err := orders.NewService(e.store, orders.NewStaticRegistry()).Checkout(context.Background(), orders.CheckoutRequest{UserID: 1}); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	w := e.do(t, http.MethodGet, "/v1/orders?user_id=1", nil)
	var body struct {
		Orders []orders.Order `json:"orders"`
	}
	decode(t, w, &body)
	if len(body.Orders) != 1 || body.Orders[0].UserID != 1 || len(body.Orders[0].Items) != 1 {
		t.Fatalf("unexpected orders %+v", body.Orders)
	}
}

func TestCancelHandler(t *testing.T) {
	e := newEnv(t, 2, rbac.RoleCustomer)
	e.store.AddCartLine(cart.Line{UserID: 1, ProductID: 100, Quantity: 1})
	res, err := orders.NewService(e.store, orders.NewStaticRegistry()).Checkout(context.Background(), orders.CheckoutRequest{UserID: 1})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	path := "/v1/orders/" + itoa(res.OrderID) + "/cancel"

	if w := e.do(t, http.MethodPost, path, nil); w.Code != http.StatusNotFound {
		t.Fatalf("non-owner: expected 404, got %d", w.Code)
	}

	owner := newEnvWithStore(t, e.store, 1, rbac.RoleCustomer)
	if w := owner.do(t, http.MethodPost, path, nil); w.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := owner.do(t, http.MethodPost, path, nil); w.Code != http.StatusConflict {
		t.Fatalf("second cancel: expected 409, got %d", w.Code)
	}
	if w := owner.do(t, http.MethodPost, "/v1/orders/x/cancel", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", w.Code)
	}
	if n := len(owner.audits.Events()); n != 0 {
		t.Fatalf("owner cancel should not be audited, got %d events", n)
	}
}

func TestCancelHandler_AdminOnBehalfIsAudited(t *testing.T) {
	store := seededStore()
	store.AddCartLine(cart.Line{UserID: 1, ProductID: 100, Quantity: 1})
	res, err := orders.NewService(store, orders.NewStaticRegistry()).Checkout(context.Background(), orders.CheckoutRequest{UserID: 1})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}

	admin := newEnvWithStore(t, store, 99, rbac.RoleAdmin)
	if w := admin.do(t, http.MethodPost, "/v1/orders/"+itoa(res.OrderID)+"/cancel", nil); w.Code != http.StatusOK {
		t.Fatalf("admin cancel: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	evs := admin.audits.Events()
	if len(evs) != 1 || evs[0].Type != audit.EventOrderCancelled || evs[0].ActorRole != rbac.RoleAdmin {
		t.Fatalf("expected one admin cancel event, got %+v", evs)
	}
}

func TestUpdateStatusHandler_AdminOnly(t *testing.T) {
	e := newEnv(t, 1, rbac.RoleCustomer)
	e.store.AddCartLine(cart.Line{UserID: 1, ProductID: 100, Quantity: 1})
	res, err := orders.NewService(e.store, orders.NewStaticRegistry()).Checkout(context.Background(), orders.CheckoutRequest{UserID: 1})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	path := "/v1/admin/orders/" + itoa(res.OrderID) + "/status"

	if w := e.do(t, http.MethodPatch, path, map[string]int64{"status_id": 3}); w.Code != http.StatusForbidden {
		t.Fatalf("customer: expected 403, got %d", w.Code)
	}

	admin := newEnvWithStore(t, e.store, 99, rbac.RoleAdmin)
	if w := admin.do(t, http.MethodPatch, path, map[string]int64{"status_id": 42}); w.Code != http.StatusNotFound {
		t.Fatalf("unknown status: expected 404, got %d", w.Code)
	}
	if w := admin.do(t, http.MethodPatch, path, map[string]int64{"status_id": 4}); w.Code != http.StatusConflict {
		t.Fatalf("skipping SHIPPED: expected 409, got %d", w.Code)
	}
	w := admin.do(t, http.MethodPatch, path, map[string]int64{"status_id": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var o map[string]any
	decode(t, w, &o)
	if o["status"] != "SHIPPED" {
		t.Fatalf("unexpected status %v", o["status"])
	}

	evs := admin.audits.Events()
	if len(evs) != 1 || evs[0].Type != audit.EventOrderStatusUpdated || evs[0].ActorUserID != 99 {
		t.Fatalf("expected one status audit event, got %+v", evs)
	}
	if evs[0].OrderID == nil || *evs[0].OrderID != res.OrderID {
		t.Fatalf("audit event targets wrong order: %+v", evs[0])
	}
}

func TestWalletHandlers(t *testing.T) {
	e := newEnv(t, 1, rbac.RoleCustomer)

	w := e.do(t, http.MethodGet, "/v1/wallet", nil)
	var got wallet.Wallet
	decode(t, w, &got)
	if w.Code != http.StatusOK || got.UserID != 1 || got.BalanceMinor != 1000 {
		t.Fatalf("own wallet: unexpected %d %+v", w.Code, got)
	}

	if w := e.do(t, http.MethodGet, "/v1/wallet/transactions?limit=x", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: expected 400, got %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/v1/wallet/transactions", nil); w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", w.Code)
	}

	h := Handlers{Wallet: wallet.NewService(wallet.NewMemoryRepo())}
	r := gin.New()
	r.GET("/wallet", as(55, rbac.RoleCustomer), h.GetWallet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallet", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing wallet: expected 404, got %d", rec.Code)
	}
}

func TestWalletAdminHandlers_CustomerCannotCreditItself(t *testing.T) {
	customer := newEnv(t, 1, rbac.RoleCustomer)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/v1/admin/wallets/1/topup"},
		{http.MethodGet, "/v1/admin/wallets/1"},
		{http.MethodDelete, "/v1/admin/wallets/1"},
	} {
		if w := customer.do(t, tc.method, tc.path, map[string]int64{"amount_minor": 100000000}); w.Code != http.StatusForbidden {
			t.Fatalf("customer %s %s: expected 403, got %d", tc.method, tc.path, w.Code)
		}
	}
	if got, _ := customer.wallets.GetWallet(context.Background(), 1); got.BalanceMinor != 1000 {
		t.Fatalf("balance must be unchanged, got %d", got.BalanceMinor)
	}
	if w := customer.do(t, http.MethodPost, "/v1/wallet/topup", map[string]int64{"amount_minor": 100}); w.Code != http.StatusNotFound {
		t.Fatalf("self top-up route must not exist, got %d", w.Code)
	}
}

func TestWalletAdminHandlers(t *testing.T) {
	admin := newEnv(t, 99, rbac.RoleAdmin)
	admin.wallets.Seed(7, 300)

	if w := admin.do(t, http.MethodPost, "/v1/admin/wallets/7/topup", map[string]int64{"amount_minor": 0}); w.Code != http.StatusBadRequest {
		t.Fatalf("zero top-up: expected 400, got %d", w.Code)
	}
	w := admin.do(t, http.MethodPost, "/v1/admin/wallets/7/topup", map[string]int64{"amount_minor": 250})
	if w.Code != http.StatusOK {
		t.Fatalf("top-up: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got wallet.Wallet
	decode(t, w, &got)
	if got.UserID != 7 || got.BalanceMinor != 550 {
		t.Fatalf("unexpected wallet %+v", got)
	}

	if w := admin.do(t, http.MethodGet, "/v1/admin/wallets/7", nil); w.Code != http.StatusOK {
		t.Fatalf("lookup: expected 200, got %d", w.Code)
	}
	if w := admin.do(t, http.MethodDelete, "/v1/admin/wallets/7", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	if w := admin.do(t, http.MethodGet, "/v1/admin/wallets/7", nil); w.Code != http.StatusNotFound {
		t.Fatalf("lookup after delete: expected 404, got %d", w.Code)
	}
	if w := admin.do(t, http.MethodDelete, "/v1/admin/wallets/7", nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", w.Code)
	}
	if w := admin.do(t, http.MethodPost, "/v1/admin/wallets/7/topup", map[string]int64{"amount_minor": 10}); w.Code != http.StatusNotFound {
		t.Fatalf("top-up of deleted wallet: expected 404, got %d", w.Code)
	}

	evs := admin.audits.Events()
	if len(evs) != 2 || evs[0].Type != audit.EventWalletTopUp || evs[1].Type != audit.EventWalletDeleted {
		t.Fatalf("unexpected audit events %+v", evs)
	}
	if evs[0].UserID == nil || *evs[0].UserID != 7 {
		t.Fatalf("top-up event must target user 7: %+v", evs[0])
	}
}

func TestCartHandlers(t *testing.T) {
	e := newEnv(t, 1, rbac.RoleCustomer)

	w := e.do(t, http.MethodPost, "/v1/cart/items", map[string]int64{"product_id": 100, "quantity": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var line cart.Line
	decode(t, w, &line)

	if w := e.do(t, http.MethodPost, "/v1/cart/items", map[string]int64{"product_id": 100, "quantity": 4}); w.Code != http.StatusBadRequest {
		t.Fatalf("over stock: expected 400, got %d", w.Code)
	}
	if w := e.do(t, http.MethodPatch, "/v1/cart/items/"+itoa(line.ID), map[string]int64{"quantity": 3}); w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", w.Code)
	}

	w = e.do(t, http.MethodGet, "/v1/cart", nil)
	var body struct {
		Items      []cart.Line `json:"items"`
		TotalMinor int64       `json:"total_minor"`
	}
	decode(t, w, &body)
	if len(body.Items) != 1 || body.TotalMinor != 4500 {
		t.Fatalf("unexpected cart %+v", body)
	}

	if w := e.do(t, http.MethodDelete, "/v1/cart/items/"+itoa(line.ID), nil); w.Code != http.StatusNoContent {
		t.Fatalf("remove: expected 204, got %d", w.Code)
	}
	if w := e.do(t, http.MethodDelete, "/v1/cart/items/"+itoa(line.ID), nil); w.Code != http.StatusNotFound {
		t.Fatalf("second remove: expected 404, got %d", w.Code)
	}
}

func TestPromoHandlers(t *testing.T) {
	e := newEnv(t, 99, rbac.RoleAdmin)
	now := time.Now().UTC()
	create := map[string]any{
		"code":                "spring10",
		"promo_type":          "ORDER",
		"discount_percentage": "10",
		"min_order_minor":     1000,
		"valid_from":          now.Add(-time.Hour),
		"valid_to":            now.Add(time.Hour),
	}

	w := e.do(t, http.MethodPost, "/v1/admin/promo-codes", create)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var code map[string]any
	decode(t, w, &code)
	if code["code"] != "SPRING10" || code["status"] != "ACTIVE" {
		t.Fatalf("unexpected code %+v", code)
	}

	if w := e.do(t, http.MethodPost, "/v1/admin/promo-codes", create); w.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/v1/admin/promo-codes?type=bogus", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad type: expected 400, got %d", w.Code)
	}

	id := int64(code["id"].(float64))
	if w := e.do(t, http.MethodPost, "/v1/admin/promo-codes/"+itoa(id)+"/inactivate", nil); w.Code != http.StatusOK {
		t.Fatalf("inactivate: expected 200, got %d", w.Code)
	}
	if w := e.do(t, http.MethodPost, "/v1/admin/promo-codes/"+itoa(id)+"/inactivate", nil); w.Code != http.StatusConflict {
		t.Fatalf("inactivate terminal: expected 409, got %d", w.Code)
	}

	w = e.do(t, http.MethodPost, "/v1/admin/promo-codes/expire", nil)
	var expired struct {
		Expired []string `json:"expired"`
	}
	decode(t, w, &expired)
	if w.Code != http.StatusOK || len(expired.Expired) != 0 {
		t.Fatalf("expire: unexpected %d %+v", w.Code, expired)
	}

	// Failed requests leave no trace.
	var types []audit.EventType
	for _, ev := range e.audits.Events() {
		types = append(types, ev.Type)
	}
	want := []audit.EventType{audit.EventPromoCreated, audit.EventPromoInactivated, audit.EventPromoSweep}
	if len(types) != len(want) {
		t.Fatalf("expected audit events %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected audit events %v, got %v", want, types)
		}
	}

	customer := newEnv(t, 1, rbac.RoleCustomer)
	if w := customer.do(t, http.MethodGet, "/v1/admin/promo-codes", nil); w.Code != http.StatusForbidden {
		t.Fatalf("customer: expected 403, got %d", w.Code)
	}
}

func TestReportHandlers(t *testing.T) {
	e := newEnv(t, 99, rbac.RoleAdmin)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e.reports.Orders = []orders.Order{
		{ID: 1, UserID: 1, TotalMinor: 3000, Status: orders.StatusPending, CreatedAt: at},
		{ID: 2, UserID: 2, TotalMinor: 1500, Status: orders.StatusCancelled, CreatedAt: at},
	}
	e.reports.Transactions = []wallet.Transaction{
		{UserID: 1, AmountMinor: 3000, Type: wallet.EntryTypeDebit, Status: wallet.TransactionSuccess, CreatedAt: at},
	}
	window := "?from=2025-03-01T00:00:00Z&to=2025-03-02T00:00:00Z"

	w := e.do(t, http.MethodGet, "/v1/admin/reports/orders"+window, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("orders report: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var sum reporting.OrdersSummary
	decode(t, w, &sum)
	if sum.TotalOrders != 2 || sum.ChargedMinor != 3000 || sum.RefundedMinor != 1500 {
		t.Fatalf("unexpected orders summary %+v", sum)
	}

	w = e.do(t, http.MethodGet, "/v1/admin/reports/spend"+window+"&user_id=1", nil)
	var spend reporting.SpendSummary
	decode(t, w, &spend)
	if w.Code != http.StatusOK || spend.TotalDebitMinor != 3000 || spend.NetDeltaMinor != -3000 {
		t.Fatalf("unexpected spend summary %d %+v", w.Code, spend)
	}

	if w := e.do(t, http.MethodGet, "/v1/admin/reports/orders?from=yesterday&to=today", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad timestamps: expected 400, got %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/v1/admin/reports/orders?from=2025-03-02T00:00:00Z&to=2025-03-01T00:00:00Z", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("reversed range: expected 400, got %d", w.Code)
	}
}

func TestLoginHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, err := auth.NewManager(config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	h := Handlers{Auth: m}
	r := gin.New()
	r.POST("/login", h.Login)
	r.GET("/me", auth.RequireAccessToken(m), h.Me)

	e := env{router: r}
	if w := e.do(t, http.MethodPost, "/login", map[string]any{"user_id": 3, "role": "root"}); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown role: expected 400, got %d", w.Code)
	}
	w := e.do(t, http.MethodPost, "/login", map[string]any{"user_id": 3, "role": rbac.RoleCustomer})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", w.Code)
	}
	var tokens map[string]string
	decode(t, w, &tokens)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokens["access_token"])
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var me struct {
		UserID int64  `json:"user_id"`
		Role   string `json:"role"`
	}
	decode(t, rec, &me)
	if rec.Code != http.StatusOK || me.UserID != 3 || me.Role != rbac.RoleCustomer {
		t.Fatalf("unexpected identity %d %+v", rec.Code, me)
	}
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
