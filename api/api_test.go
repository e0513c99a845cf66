package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/feastly/pkg/config"
	"github.com/example/feastly/pkg/models"
	"github.com/example/feastly/pkg/repository"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Orders: config.OrdersConfig{
			ConfirmAfter: 7 * time.Minute,
			DeleteWindow: 7 * time.Minute,
		},
	}
	store := repository.NewFileStore(filepath.Join(t.TempDir(), "store.json"), cfg.Orders, zap.NewNop())
	s := NewServer(cfg, store, zap.NewNop())
	s.SetupRoutes()
	return s
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestCreateOrderComputesTotalFromStringPrices(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"restaurant_id": "res_1",
		"items": []map[string]interface{}{
			{"name": "biryani", "price": "250.50", "quantity": 2},
			{"name": "lassi", "price": "45"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var order models.Order
	decode(t, w, &order)
	if order.Total != 546 {
		t.Errorf("total = %v, want 546", order.Total)
	}
	if order.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", order.Status)
	}
	if order.ID == "" {
		t.Error("order id not assigned")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"restaurant_id": "res_1",
		"items":         []interface{}{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty items: status = %d, want 400", w.Code)
	}

	w = do(t, s, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"name": "x", "price": 1}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing restaurant: status = %d, want 400", w.Code)
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"restaurant_id":  "res_1",
		"customer_email": "dan@example.com",
		"items":          []map[string]interface{}{{"name": "thali", "price": 120}},
	})
	var order models.Order
	decode(t, w, &order)

	// Young pending order: readable, deletable.
	w = do(t, s, http.MethodGet, "/api/v1/orders/"+order.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status = %d", w.Code)
	}

	w = do(t, s, http.MethodPut, "/api/v1/orders/"+order.ID+"/status", map[string]string{"status": "preparing"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status: %d, body %s", w.Code, w.Body.String())
	}
	var updated models.Order
	decode(t, w, &updated)
	if updated.Status != models.StatusPreparing {
		t.Errorf("status = %q, want preparing", updated.Status)
	}

	// No longer pending: delete is rejected with a conflict.
	w = do(t, s, http.MethodDelete, "/api/v1/orders/"+order.ID, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("delete advanced order: status = %d, want 409", w.Code)
	}

	w = do(t, s, http.MethodDelete, "/api/v1/orders/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete missing order: status = %d, want 404", w.Code)
	}
}

func TestListUserOrdersRequiresEmail(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/v1/orders", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGroupOrderFlow(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/group-orders", map[string]interface{}{
		"restaurant_id":   "res_1",
		"organizer_name":  "Host",
		"organizer_email": "host@example.com",
		"total":           100,
		"split_strategy":  "equal",
		"participants": []map[string]interface{}{
			{"name": "A", "email": "a@example.com"},
			{"name": "B", "email": "b@example.com"},
			{"name": "C", "email": "c@example.com"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", w.Code, w.Body.String())
	}

	var created struct {
		GroupOrder   models.GroupOrder `json:"group_order"`
		PaymentLinks map[string]string `json:"payment_links"`
	}
	decode(t, w, &created)
	g := created.GroupOrder
	if g.Status != models.GroupPending {
		t.Errorf("initial status = %q, want pending", g.Status)
	}
	wantShares := []float64{33.33, 33.33, 33.34}
	for i, p := range g.Participants {
		if p.Share != wantShares[i] {
			t.Errorf("participant %d share = %v, want %v", i, p.Share, wantShares[i])
		}
	}
	if len(created.PaymentLinks) != 3 {
		t.Errorf("payment links = %d, want 3", len(created.PaymentLinks))
	}

	// Everyone pays; status becomes completed.
	for i, p := range g.Participants {
		w = do(t, s, http.MethodPost, "/api/v1/group-orders/"+g.Code+"/pay", map[string]string{
			"participant_id": p.ID,
			"status":         "paid",
			"payment_ref":    "txn",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("pay %d: status = %d, body = %s", i, w.Code, w.Body.String())
		}
	}

	var paid struct {
		GroupOrder models.GroupOrder `json:"group_order"`
	}
	decode(t, w, &paid)
	if paid.GroupOrder.Status != models.GroupCompleted {
		t.Errorf("status after all paid = %q, want completed", paid.GroupOrder.Status)
	}

	w = do(t, s, http.MethodGet, "/api/v1/group-orders/"+g.Code+"/summary", nil)
	var summary struct {
		PaidCount     int `json:"paid_count"`
		CompletionPct int `json:"completion_pct"`
	}
	decode(t, w, &summary)
	if summary.PaidCount != 3 || summary.CompletionPct != 100 {
		t.Errorf("summary = %+v, want 3 paid at 100%%", summary)
	}
}

func TestGroupOrderPartialStatus(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/group-orders", map[string]interface{}{
		"restaurant_id":   "res_1",
		"organizer_name":  "Host",
		"organizer_email": "host@example.com",
		"total":           50,
		"split_strategy":  "equal",
		"participants": []map[string]interface{}{
			{"name": "A"}, {"name": "B"},
		},
	})
	var created struct {
		GroupOrder models.GroupOrder `json:"group_order"`
	}
	decode(t, w, &created)

	w = do(t, s, http.MethodPost, "/api/v1/group-orders/"+created.GroupOrder.Code+"/pay", map[string]string{
		"participant_id": created.GroupOrder.Participants[0].ID,
		"status":         "paid",
	})
	var paid struct {
		GroupOrder models.GroupOrder `json:"group_order"`
	}
	decode(t, w, &paid)
	if paid.GroupOrder.Status != models.GroupPartial {
		t.Errorf("status = %q, want partial", paid.GroupOrder.Status)
	}
}

func TestGroupOrderCancelOrganizerOnly(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/group-orders", map[string]interface{}{
		"restaurant_id":   "res_1",
		"organizer_name":  "Host",
		"organizer_email": "host@example.com",
		"total":           50,
		"split_strategy":  "equal",
		"participants":    []map[string]interface{}{{"name": "A"}},
	})
	var created struct {
		GroupOrder models.GroupOrder `json:"group_order"`
	}
	decode(t, w, &created)
	code := created.GroupOrder.Code

	w = do(t, s, http.MethodPost, "/api/v1/group-orders/"+code+"/cancel", map[string]string{"email": "stranger@example.com"})
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger cancel: status = %d, want 403", w.Code)
	}

	w = do(t, s, http.MethodPost, "/api/v1/group-orders/"+code+"/cancel", map[string]string{"email": "host@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("organizer cancel: status = %d", w.Code)
	}
	var g models.GroupOrder
	decode(t, w, &g)
	if g.Status != models.GroupCancelled {
		t.Errorf("status = %q, want cancelled", g.Status)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	body := map[string]string{"name": "Alice", "email": "alice@example.com", "password": "hunter2"}
	w := do(t, s, http.MethodPost, "/api/v1/auth/register", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, s, http.MethodPost, "/api/v1/auth/register", body)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register: status = %d, want 409", w.Code)
	}

	w = do(t, s, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "alice@example.com", "password": "hunter2"})
	if w.Code != http.StatusOK {
		t.Errorf("login: status = %d", w.Code)
	}

	w = do(t, s, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "alice@example.com", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status = %d, want 401", w.Code)
	}
}

func TestRatingValidation(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/restaurants/res_1/ratings", map[string]interface{}{"value": 6})
	if w.Code != http.StatusBadRequest {
		t.Errorf("out-of-range rating: status = %d, want 400", w.Code)
	}

	w = do(t, s, http.MethodPost, "/api/v1/restaurants/res_1/ratings", map[string]interface{}{"value": 4, "comment": "good"})
	if w.Code != http.StatusCreated {
		t.Errorf("valid rating: status = %d, want 201", w.Code)
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/restaurants", map[string]interface{}{"id": "res_1", "name": "Diner"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create restaurant: %d", w.Code)
	}
	for _, item := range []map[string]interface{}{
		{"name": "Gulab Jamun", "price": 60, "tags": []string{"sweet", "dessert"}},
		{"name": "Green Salad", "price": 90, "tags": []string{"healthy"}},
	} {
		w = do(t, s, http.MethodPost, "/api/v1/restaurants/res_1/menu", item)
		if w.Code != http.StatusCreated {
			t.Fatalf("create menu item: %d, body %s", w.Code, w.Body.String())
		}
	}

	w = do(t, s, http.MethodGet, "/api/v1/restaurants/res_1/recommendations?mood=sweet", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("recommendations: status = %d", w.Code)
	}
	var resp struct {
		Recommendations []struct {
			Item  models.MenuItem `json:"item"`
			Score float64         `json:"score"`
		} `json:"recommendations"`
	}
	decode(t, w, &resp)
	if len(resp.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(resp.Recommendations))
	}
	if resp.Recommendations[0].Item.Name != "Gulab Jamun" {
		t.Errorf("top recommendation = %q, want Gulab Jamun", resp.Recommendations[0].Item.Name)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"restaurant_id":  "res_1",
		"customer_email": "kim@example.com",
		"items":          []map[string]interface{}{{"name": "thali", "price": 120}},
	})
	var order models.Order
	decode(t, w, &order)
	do(t, s, http.MethodPut, "/api/v1/orders/"+order.ID+"/status", map[string]string{"status": "delivered"})

	w = do(t, s, http.MethodGet, "/api/v1/restaurants/res_1/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status = %d", w.Code)
	}
	var report struct {
		Revenue      float64        `json:"revenue"`
		StatusCounts map[string]int `json:"status_counts"`
	}
	decode(t, w, &report)
	if report.Revenue != 120 {
		t.Errorf("revenue = %v, want 120", report.Revenue)
	}
	if report.StatusCounts["delivered"] != 1 {
		t.Errorf("delivered count = %d, want 1", report.StatusCounts["delivered"])
	}

	// Analytics rolls up across restaurants with the same shape.
	w = do(t, s, http.MethodGet, "/api/v1/analytics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("analytics: status = %d", w.Code)
	}
	decode(t, w, &report)
	if report.Revenue != 120 {
		t.Errorf("analytics revenue = %v, want 120", report.Revenue)
	}
}
