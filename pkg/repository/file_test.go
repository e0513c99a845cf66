package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/feastly/pkg/config"
	"github.com/example/feastly/pkg/models"
	"github.com/example/feastly/pkg/orders"
	"go.uber.org/zap"
)

func testRules() config.OrdersConfig {
	return config.OrdersConfig{
		ConfirmAfter: 7 * time.Minute,
		DeleteWindow: 7 * time.Minute,
	}
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.json")
	return NewFileStore(path, testRules(), zap.NewNop())
}

func intPtr(v int) *int { return &v }

func TestFileStoreRestaurantRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newTestStore(t)

	r := &models.Restaurant{Name: "Spice Route", Cuisine: "indian", IsOpen: true}
	if err := f.CreateRestaurant(ctx, r); err != nil {
		t.Fatalf("CreateRestaurant() error = %v", err)
	}
	if !strings.HasPrefix(r.ID, "res_") {
		t.Errorf("generated id = %q, want res_ prefix", r.ID)
	}

	list, err := f.Restaurants(ctx)
	if err != nil {
		t.Fatalf("Restaurants() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d restaurants, want 1", len(list))
	}
	if list[0].ID != r.ID || list[0].Name != "Spice Route" || list[0].Cuisine != "indian" {
		t.Errorf("round-trip mismatch: %+v", list[0])
	}
}

func TestFileStoreCallerSuppliedID(t *testing.T) {
	ctx := context.Background()
	f := newTestStore(t)

	r := &models.Restaurant{ID: "res_custom", Name: "Custom"}
	if err := f.CreateRestaurant(ctx, r); err != nil {
		t.Fatalf("CreateRestaurant() error = %v", err)
	}
	got, err := f.Restaurant(ctx, "res_custom")
	if err != nil {
		t.Fatalf("Restaurant() error = %v", err)
	}
	if got.Name != "Custom" {
		t.Errorf("got %+v", got)
	}
}

func TestFileStoreCorruptFileTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFileStore(path, testRules(), zap.NewNop())
	list, err := f.Restaurants(ctx)
	if err != nil {
		t.Fatalf("Restaurants() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("got %d restaurants from corrupt file, want 0", len(list))
	}
}

func TestFileStoreCreateOrderComputesTotal(t *testing.T) {
	ctx := context.Background()
	f := newTestStore(t)

	o := &models.Order{
		RestaurantID: "res_1",
		Items: []models.OrderItem{
			{Name: "biryani", Price: 250.50, Quantity: intPtr(2)},
			{Name: "lassi", Price: 45},
		},
		Total:  9999, // caller-supplied totals are ignored
		Status: "delivered",
	}
	if err := f.CreateOrder(ctx, o); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if o.Total != 546 {
		t.Errorf("total = %v, want 546", o.Total)
	}
	if o.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", o.Status)
	}
	if o.ID == "" || o.CreatedAt.IsZero() {
		t.Errorf("id/timestamp not assigned: %+v", o)
	}
}

func TestFileStoreAutoConfirmOnRead(t *testing.T) {
	ctx := context.Background()
	f := newTestStore(t)

	base := time.Now()
	f.now = func() time.Time { return base }

	o := &models.Order{
		RestaurantID:  "res_1",
		CustomerEmail: "eve@example.com",
		Items:         []models.OrderItem{{Name: "thali", Price: 120}},
	}
	if err := f.CreateOrder(ctx, o); err != nil {
		t.Fatal(err)
	}

	// Before the window: still pending.
	f.now = func() time.Time { return base.Add(3 * time.Minute) }
	got, err := f.Order(ctx, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusPending {
		t.Errorf("status at 3m = %q, want pending", got.Status)
	}

	// After the window: confirmed, and the rewrite is persisted.
	f.now = func() time.Time { return base.Add(8 * time.Minute) }
	got, err = f.Order(ctx, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusConfirmed {
		t.Errorf("status at 8m = %q, want confirmed", got.Status)
	}
	if got.Total != 120 || got.CustomerEmail != "eve@example.com" {
		t.Errorf("other fields changed: %+v", got)
	}

	// A fresh store instance reading the same file sees the rewrite.
	f2 := NewFileStore(f.path, testRules(), zap.NewNop())
	list, err := f2.OrdersByUser(ctx, "eve@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Status != models.StatusConfirmed {
		t.Errorf("persisted read = %+v, want one confirmed order", list)
	}
}

func TestFileStoreDeleteWindow(t *testing.T) {
	ctx := context.Background()
	f := newTestStore(t)

	base := time.Now()
	f.now = func() time.Time { return base }

	o := &models.Order{RestaurantID: "res_1", Items: []models.OrderItem{{Name: "chai", Price: 30}}}
	if err := f.CreateOrder(ctx, o); err != nil {
		t.Fatal(err)
	}

	// Aged past the window while nominally still pending in storage.
	f.now = func() time.Time { return base.Add(10 * time.Minute) }
	if err := f.DeleteOrder(ctx, o.ID); !errors.Is(err, orders.ErrDeleteWindowClosed) {
		t.Errorf("aged delete: got %v, want ErrDeleteWindowClosed", err)
	}

	// Young but no longer pending.
	f.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := f.UpdateOrderStatus(ctx, o.ID, models.StatusConfirmed); err != nil {
		t.Fatal(err)
	}
	if err := f.DeleteOrder(ctx, o.ID); !errors.Is(err, orders.ErrDeleteWindowClosed) {
		t.Errorf("confirmed delete: got %v, want ErrDeleteWindowClosed", err)
	}

	// Young and pending: succeeds.
	o2 := &models.Order{RestaurantID: "res_1", Items: []models.OrderItem{{Name: "dal", Price: 90}}}
	if err := f.CreateOrder(ctx, o2); err != nil {
		t.Fatal(err)
	}
	if err := f.DeleteOrder(ctx, o2.ID); err != nil {
		t.Errorf("young pending delete: %v", err)
	}
	if _, err := f.Order(ctx, o2.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted order lookup: got %v, want ErrNotFound", err)
	}
}

func TestFileStoreOrdersByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newTestStore(t)

	base := time.Now()
	for i := 0; i < 3; i++ {
		i := i
		f.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		o := &models.Order{
			RestaurantID:  "res_1",
			CustomerEmail: "bob@example.com",
			Items:         []models.OrderItem{{Name: "naan", Price: 40}},
		}
		if err := f.CreateOrder(ctx, o); err != nil {
			t.Fatal(err)
		}
	}

	list, err := f.OrdersByUser(ctx, "bob@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d orders, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Errorf("orders not newest-first at index %d", i)
		}
	}
}

func TestFileStoreDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newTestStore(t)

	u := &models.User{Name: "Alice", Email: "alice@example.com"}
	if err := f.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	dup := &models.User{Name: "Other Alice", Email: "alice@example.com"}
	if err := f.CreateUser(ctx, dup); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate email: got %v, want ErrDuplicateEmail", err)
	}
}

func TestFileStoreGroupOrderRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newTestStore(t)

	g := &models.GroupOrder{
		OrderID:        "ord_1",
		RestaurantID:   "res_1",
		OrganizerEmail: "host@example.com",
		Total:          100,
		SplitStrategy:  models.SplitEqual,
		Status:         models.GroupPending,
		Participants: []models.Participant{
			{ID: "prt_a", PaymentStatus: models.PaymentPending, Share: 50},
			{ID: "prt_b", PaymentStatus: models.PaymentPending, Share: 50},
		},
	}
	if err := f.CreateGroupOrder(ctx, g); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(g.Code, "GRP-") {
		t.Errorf("code = %q, want GRP- prefix", g.Code)
	}

	g.Participants[0].PaymentStatus = models.PaymentPaid
	g.Status = models.GroupPartial
	if err := f.UpdateGroupOrder(ctx, g); err != nil {
		t.Fatal(err)
	}

	got, err := f.GroupOrder(ctx, g.Code)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.GroupPartial {
		t.Errorf("status = %q, want partial", got.Status)
	}
	if got.Participants[0].PaymentStatus != models.PaymentPaid {
		t.Errorf("participant state not persisted: %+v", got.Participants[0])
	}
}

func TestFileStoreReport(t *testing.T) {
	ctx := context.Background()
	f := newTestStore(t)

	mk := func(status string, total float64) {
		o := &models.Order{
			RestaurantID:  "res_1",
			CustomerEmail: "carol@example.com",
			Items:         []models.OrderItem{{Name: "thali", Price: models.Price(total)}},
		}
		if err := f.CreateOrder(ctx, o); err != nil {
			t.Fatal(err)
		}
		if status != models.StatusPending {
			if _, err := f.UpdateOrderStatus(ctx, o.ID, status); err != nil {
				t.Fatal(err)
			}
		}
	}
	mk(models.StatusDelivered, 100)
	mk(models.StatusDelivered, 60)
	mk(models.StatusCancelled, 500)
	mk(models.StatusPending, 40)

	report, err := f.RestaurantReport(ctx, "res_1")
	if err != nil {
		t.Fatal(err)
	}
	if report.Revenue != 160 {
		t.Errorf("revenue = %v, want 160", report.Revenue)
	}
	if report.StatusCounts[models.StatusDelivered] != 2 {
		t.Errorf("delivered count = %d, want 2", report.StatusCounts[models.StatusDelivered])
	}
	if len(report.HourlyCounts) != 24 {
		t.Errorf("hourly buckets = %d, want 24", len(report.HourlyCounts))
	}
	if len(report.TopCustomers) != 1 || report.TopCustomers[0].Delivered != 2 {
		t.Errorf("top customers = %+v", report.TopCustomers)
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	f := newTestStore(t)

	seed := []byte(`{
		"restaurants": [{"id": "res_seed", "name": "Seeded Diner"}],
		"menuItems": [{"id": "itm_seed", "restaurant_id": "res_seed", "name": "Special", "price": 99, "available": true}]
	}`)
	if err := Seed(ctx, f, seed); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	// Seeding twice must not duplicate.
	if err := Seed(ctx, f, seed); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}

	list, err := f.Restaurants(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d restaurants, want 1", len(list))
	}
	menu, err := f.MenuByRestaurant(ctx, "res_seed")
	if err != nil {
		t.Fatal(err)
	}
	if len(menu) != 1 || menu[0].Name != "Special" {
		t.Errorf("menu = %+v", menu)
	}
}
