// Package httpapi exposes the terminal's local HTTP surface. The caller
// is the cashier UI on the same machine; everything the API does goes
// through the service layer and the local store, so every endpoint works
// with the network down except the sync trigger itself.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/service"
	"ponselpos/backend/internal/store"
)

// Syncer is the slice of the sync manager the API needs. A terminal with
// no remote configured runs with a nil Syncer.
type Syncer interface {
	Online() bool
	SyncNow(ctx context.Context) (*domain.SyncReport, error)
	PendingCounts(ctx context.Context) (*domain.PendingCounts, error)
}

type API struct {
	service       *service.Service
	auth          *AuthManager
	syncer        Syncer
	allowedOrigin string
	loginLimiter  *attemptLimiter
}

func New(svc *service.Service, auth *AuthManager, syncer Syncer, allowedOrigin string) *API {
	return &API{
		service:       svc,
		auth:          auth,
		syncer:        syncer,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.HandleFunc("POST /api/v1/auth/login", a.handleLogin)

	mux.HandleFunc("GET /api/v1/customers", a.requireAuth(a.handleListCustomers))
	mux.HandleFunc("POST /api/v1/customers", a.requireAuth(a.handleAddCustomer))
	mux.HandleFunc("GET /api/v1/customers/{id}", a.requireAuth(a.handleGetCustomer))
	mux.HandleFunc("PUT /api/v1/customers/{id}", a.requireAuth(a.handleUpdateCustomer))
	mux.HandleFunc("DELETE /api/v1/customers/{id}", a.requireAuth(a.handleDeleteCustomer))
	mux.HandleFunc("POST /api/v1/customers/{id}/payments", a.requireAuth(a.handleCustomerPayment))

	mux.HandleFunc("GET /api/v1/suppliers", a.requireAuth(a.handleListSuppliers))
	mux.HandleFunc("POST /api/v1/suppliers", a.requireAuth(a.handleAddSupplier))
	mux.HandleFunc("GET /api/v1/suppliers/{id}", a.requireAuth(a.handleGetSupplier))
	mux.HandleFunc("PUT /api/v1/suppliers/{id}", a.requireAuth(a.handleUpdateSupplier))
	mux.HandleFunc("DELETE /api/v1/suppliers/{id}", a.requireAuth(a.handleDeleteSupplier))
	mux.HandleFunc("POST /api/v1/suppliers/{id}/payments", a.requireAuth(a.handleSupplierPayment))

	mux.HandleFunc("GET /api/v1/products", a.requireAuth(a.handleListProducts))
	mux.HandleFunc("POST /api/v1/products", a.requireAuth(a.handleAddProduct))
	mux.HandleFunc("GET /api/v1/products/low-stock", a.requireAuth(a.handleLowStock))
	mux.HandleFunc("GET /api/v1/products/{id}", a.requireAuth(a.handleGetProduct))
	mux.HandleFunc("PUT /api/v1/products/{id}", a.requireAuth(a.handleUpdateProduct))
	mux.HandleFunc("DELETE /api/v1/products/{id}", a.requireAuth(a.handleDeleteProduct))
	mux.HandleFunc("GET /api/v1/products/{id}/imeis", a.requireAuth(a.handleProductIMEIs))

	mux.HandleFunc("GET /api/v1/sales", a.requireAuth(a.handleListSales))
	mux.HandleFunc("POST /api/v1/sales", a.requireAuth(a.handleAddSale))
	mux.HandleFunc("GET /api/v1/sales/{id}", a.requireAuth(a.handleGetSale))
	mux.HandleFunc("DELETE /api/v1/sales/{id}", a.requireAuth(a.handleDeleteSale))
	mux.HandleFunc("GET /api/v1/sale-returns", a.requireAuth(a.handleListSaleReturns))
	mux.HandleFunc("POST /api/v1/sale-returns", a.requireAuth(a.handleAddSaleReturn))

	mux.HandleFunc("GET /api/v1/purchases", a.requireAuth(a.handleListPurchases))
	mux.HandleFunc("POST /api/v1/purchases", a.requireAuth(a.handleAddPurchase))
	mux.HandleFunc("GET /api/v1/purchases/{id}", a.requireAuth(a.handleGetPurchase))
	mux.HandleFunc("DELETE /api/v1/purchases/{id}", a.requireAuth(a.handleDeletePurchase))
	mux.HandleFunc("GET /api/v1/purchase-returns", a.requireAuth(a.handleListPurchaseReturns))
	mux.HandleFunc("POST /api/v1/purchase-returns", a.requireAuth(a.handleAddPurchaseReturn))

	mux.HandleFunc("GET /api/v1/expenses", a.requireAuth(a.handleListExpenses))
	mux.HandleFunc("POST /api/v1/expenses", a.requireAuth(a.handleAddExpense))
	mux.HandleFunc("DELETE /api/v1/expenses/{id}", a.requireAuth(a.handleDeleteExpense))

	mux.HandleFunc("GET /api/v1/ledgers/{id}", a.requireAuth(a.handleGetLedger))
	mux.HandleFunc("POST /api/v1/ledgers/{id}/recalculate", a.requireAuth(a.handleRecalculate))
	mux.HandleFunc("GET /api/v1/reports/daybook", a.requireAuth(a.handleDayBook))

	mux.HandleFunc("GET /api/v1/sync/status", a.requireAuth(a.handleSyncStatus))
	mux.HandleFunc("POST /api/v1/sync/run", a.requireAuth(a.handleSyncRun))

	return a.withCORS(mux)
}

func (a *API) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}
		if _, err := a.auth.ParseToken(strings.TrimPrefix(header, "Bearer ")); err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		next(w, r)
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	online := false
	if a.syncer != nil {
		online = a.syncer.Online()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"online": online,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(remoteKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- customers ---

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := a.service.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (a *API) handleAddCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cust, err := a.service.AddCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"customer": cust})
}

func (a *API) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	cust, err := a.service.GetCustomer(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": cust})
}

func (a *API) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cust, err := a.service.UpdateCustomer(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": cust})
}

func (a *API) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteCustomer(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (a *API) handleCustomerPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.CounterpartyID = r.PathValue("id")
	entry, err := a.service.AddCustomerPayment(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})
}

// --- suppliers ---

func (a *API) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := a.service.ListSuppliers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suppliers": suppliers})
}

func (a *API) handleAddSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.SupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sup, err := a.service.AddSupplier(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"supplier": sup})
}

func (a *API) handleGetSupplier(w http.ResponseWriter, r *http.Request) {
	sup, err := a.service.GetSupplier(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"supplier": sup})
}

func (a *API) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.SupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sup, err := a.service.UpdateSupplier(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"supplier": sup})
}

func (a *API) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteSupplier(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (a *API) handleSupplierPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.CounterpartyID = r.PathValue("id")
	entry, err := a.service.AddSupplierPayment(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})
}

// --- products ---

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	prod, err := a.service.AddProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": prod})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	prod, err := a.service.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": prod})
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	prod, err := a.service.UpdateProduct(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": prod})
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (a *API) handleLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.ListLowStock(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleProductIMEIs(w http.ResponseWriter, r *http.Request) {
	recs, err := a.service.ListIMEIsByProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imeis": recs})
}

// --- sales ---

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := a.service.ListSales(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sales": sales})
}

func (a *API) handleAddSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sale, err := a.service.AddSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sale": sale})
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := a.service.GetSale(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (a *API) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteSale(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (a *API) handleListSaleReturns(w http.ResponseWriter, r *http.Request) {
	returns, err := a.service.ListSaleReturns(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"returns": returns})
}

func (a *API) handleAddSaleReturn(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ret, err := a.service.AddSaleReturn(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"return": ret})
}

// --- purchases ---

func (a *API) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := a.service.ListPurchases(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"purchases": purchases})
}

func (a *API) handleAddPurchase(w http.ResponseWriter, r *http.Request) {
	var req domain.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	purchase, err := a.service.AddPurchase(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"purchase": purchase})
}

func (a *API) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	purchase, err := a.service.GetPurchase(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"purchase": purchase})
}

func (a *API) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeletePurchase(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (a *API) handleListPurchaseReturns(w http.ResponseWriter, r *http.Request) {
	returns, err := a.service.ListPurchaseReturns(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"returns": returns})
}

func (a *API) handleAddPurchaseReturn(w http.ResponseWriter, r *http.Request) {
	var req domain.PurchaseReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ret, err := a.service.AddPurchaseReturn(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"return": ret})
}

// --- expenses ---

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.service.ListExpenses(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (a *API) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	exp, err := a.service.AddExpense(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"expense": exp})
}

func (a *API) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// --- ledgers and reports ---

func (a *API) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	resp, err := a.service.GetLedger(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ledger": resp})
}

func (a *API) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	if err := a.service.RecalculateBalance(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recalculated": true})
}

func (a *API) handleDayBook(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	if day == "" {
		day = time.Now().Format("2006-01-02")
	}
	book, err := a.service.DayBook(r.Context(), day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"daybook": book})
}

// --- sync ---

func (a *API) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if a.syncer == nil {
		writeJSON(w, http.StatusOK, map[string]any{"online": false, "configured": false})
		return
	}
	counts, err := a.syncer.PendingCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"online":     a.syncer.Online(),
		"configured": true,
		"pending":    counts,
	})
}

func (a *API) handleSyncRun(w http.ResponseWriter, r *http.Request) {
	if a.syncer == nil {
		writeError(w, http.StatusConflict, errors.New("no remote replica configured"))
		return
	}
	report, err := a.syncer.SyncNow(r.Context())
	if err != nil {
		// The partial report still tells the caller what got through.
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":  err.Error(),
			"report": report,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

// --- plumbing ---

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func remoteKey(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, store.ErrInsufficientStock):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrDuplicateIMEI):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
