package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/example/feastly/pkg/config"
	"github.com/example/feastly/pkg/models"
	"github.com/example/feastly/pkg/orders"
	"github.com/example/feastly/pkg/reports"
	"go.uber.org/zap"
)

// fileState is the on-disk shape of the fallback store: one JSON
// document with parallel entity lists.
type fileState struct {
	Restaurants []models.Restaurant `json:"restaurants"`
	MenuItems   []models.MenuItem   `json:"menuItems"`
	Ratings     []models.Rating     `json:"ratings"`
	Orders      []models.Order      `json:"orders"`
	Users       []models.User       `json:"users"`
	GroupOrders []models.GroupOrder `json:"groupOrders"`
	Feedback    []models.Feedback   `json:"feedback"`
}

func emptyState() *fileState {
	return &fileState{
		Restaurants: []models.Restaurant{},
		MenuItems:   []models.MenuItem{},
		Ratings:     []models.Rating{},
		Orders:      []models.Order{},
		Users:       []models.User{},
		GroupOrders: []models.GroupOrder{},
		Feedback:    []models.Feedback{},
	}
}

// FileStore persists everything in a single JSON file. Every operation
// is a full read-modify-write cycle under a process-local mutex; a
// corrupt or absent file is treated as the empty store. This is the
// demo fallback path, not a durability guarantee.
type FileStore struct {
	path   string
	rules  config.OrdersConfig
	logger *zap.Logger
	mu     sync.Mutex
	now    func() time.Time
}

func NewFileStore(path string, rules config.OrdersConfig, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:   path,
		rules:  rules,
		logger: logger,
		now:    time.Now,
	}
}

func (f *FileStore) load() *fileState {
	data, err := os.ReadFile(f.path)
	if err != nil || len(data) == 0 {
		return emptyState()
	}

	var st fileState
	if err := json.Unmarshal(data, &st); err != nil {
		f.logger.Warn("Fallback store file is corrupt, resetting to empty",
			zap.String("path", f.path), zap.Error(err))
		return emptyState()
	}
	if st.Restaurants == nil {
		st.Restaurants = []models.Restaurant{}
	}
	if st.MenuItems == nil {
		st.MenuItems = []models.MenuItem{}
	}
	if st.Ratings == nil {
		st.Ratings = []models.Rating{}
	}
	if st.Orders == nil {
		st.Orders = []models.Order{}
	}
	if st.Users == nil {
		st.Users = []models.User{}
	}
	if st.GroupOrders == nil {
		st.GroupOrders = []models.GroupOrder{}
	}
	if st.Feedback == nil {
		st.Feedback = []models.Feedback{}
	}
	return &st
}

func (f *FileStore) save(st *fileState) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o644)
}

// confirmMatched applies lazy auto-confirmation to every order the
// read matched. Reports whether any record was rewritten.
func (f *FileStore) confirmMatched(st *fileState, match func(*models.Order) bool) bool {
	now := f.now()
	changed := false
	for i := range st.Orders {
		if !match(&st.Orders[i]) {
			continue
		}
		if orders.AutoConfirm(&st.Orders[i], now, f.rules.ConfirmAfter) {
			changed = true
		}
	}
	return changed
}

func (f *FileStore) CreateOrder(_ context.Context, o *models.Order) error {
	total, err := orders.ComputeTotal(o.Items, f.rules.RejectNegativeQuantity)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if o.ID == "" {
		o.ID = NewID("ord")
	}
	o.Total = total
	o.Status = models.StatusPending
	o.CreatedAt = f.now()

	st := f.load()
	st.Orders = append(st.Orders, *o)
	return f.save(st)
}

func (f *FileStore) OrdersByRestaurant(_ context.Context, restaurantID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := f.load()
	changed := f.confirmMatched(st, func(o *models.Order) bool {
		return o.RestaurantID == restaurantID
	})

	result := []models.Order{}
	for _, o := range st.Orders {
		if o.RestaurantID == restaurantID {
			result = append(result, o)
		}
	}
	if changed {
		if err := f.save(st); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (f *FileStore) OrdersByUser(_ context.Context, email string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := f.load()
	changed := f.confirmMatched(st, func(o *models.Order) bool {
		return o.CustomerEmail == email
	})

	result := []models.Order{}
	for _, o := range st.Orders {
		if o.CustomerEmail == email {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if changed {
		if err := f.save(st); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (f *FileStore) Order(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := f.load()
	changed := f.confirmMatched(st, func(o *models.Order) bool {
		return o.ID == id
	})

	for i := range st.Orders {
		if st.Orders[i].ID == id {
			if changed {
				if err := f.save(st); err != nil {
					return nil, err
				}
			}
			o := st.Orders[i]
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateOrderStatus overwrites the status unconditionally. The
// fallback path stays permissive about the value, matching its role
// as a demo store.
func (f *FileStore) UpdateOrderStatus(_ context.Context, id, status string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := f.load()
	for i := range st.Orders {
		if st.Orders[i].ID == id {
			st.Orders[i].Status = status
			if err := f.save(st); err != nil {
				return nil, err
			}
			o := st.Orders[i]
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (f *FileStore) DeleteOrder(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := f.load()
	for i := range st.Orders {
		if st.Orders[i].ID != id {
			continue
		}
		if err := orders.CanDelete(&st.Orders[i], f.now(), f.rules.DeleteWindow); err != nil {
			return err
		}
		st.Orders = append(st.Orders[:i], st.Orders[i+1:]...)
		return f.save(st)
	}
	return ErrNotFound
}

func (f *FileStore) CreateRestaurant(_ context.Context, r *models.Restaurant) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.ID == "" {
		r.ID = NewID("res")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = f.now()
	}

	st := f.load()
	st.Restaurants = append(st.Restaurants, *r)
	return f.save(st)
}

func (f *FileStore) Restaurants(_ context.Context) ([]models.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load().Restaurants, nil
}

func (f *FileStore) Restaurant(_ context.Context, id string) (*models.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.load().Restaurants {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (f *FileStore) CreateMenuItem(_ context.Context, m *models.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if m.ID == "" {
		m.ID = NewID("itm")
	}

	st := f.load()
	st.MenuItems = append(st.MenuItems, *m)
	return f.save(st)
}

func (f *FileStore) MenuByRestaurant(_ context.Context, restaurantID string) ([]models.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := []models.MenuItem{}
	for _, m := range f.load().MenuItems {
		if m.RestaurantID == restaurantID {
			items = append(items, m)
		}
	}
	return items, nil
}

func (f *FileStore) CreateRating(_ context.Context, r *models.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.ID == "" {
		r.ID = NewID("rat")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = f.now()
	}

	st := f.load()
	st.Ratings = append(st.Ratings, *r)
	return f.save(st)
}

func (f *FileStore) RatingsByRestaurant(_ context.Context, restaurantID string) ([]models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ratings := []models.Rating{}
	for _, r := range f.load().Ratings {
		if r.RestaurantID == restaurantID {
			ratings = append(ratings, r)
		}
	}
	return ratings, nil
}

func (f *FileStore) CreateFeedback(_ context.Context, fb *models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if fb.ID == "" {
		fb.ID = NewID("fbk")
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = f.now()
	}

	st := f.load()
	st.Feedback = append(st.Feedback, *fb)
	return f.save(st)
}

func (f *FileStore) ListFeedback(_ context.Context) ([]models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load().Feedback, nil
}

func (f *FileStore) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := f.load()
	for _, existing := range st.Users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}

	if u.ID == "" {
		u.ID = NewID("usr")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = f.now()
	}
	st.Users = append(st.Users, *u)
	return f.save(st)
}

func (f *FileStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.load().Users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (f *FileStore) CreateGroupOrder(_ context.Context, g *models.GroupOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if g.Code == "" {
		g.Code = NewGroupCode()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = f.now()
	}

	st := f.load()
	st.GroupOrders = append(st.GroupOrders, *g)
	return f.save(st)
}

func (f *FileStore) GroupOrder(_ context.Context, code string) (*models.GroupOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, g := range f.load().GroupOrders {
		if g.Code == code {
			g := g
			return &g, nil
		}
	}
	return nil, ErrNotFound
}

func (f *FileStore) UpdateGroupOrder(_ context.Context, g *models.GroupOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := f.load()
	for i := range st.GroupOrders {
		if st.GroupOrders[i].Code == g.Code {
			st.GroupOrders[i] = *g
			return f.save(st)
		}
	}
	return ErrNotFound
}

// RestaurantReport folds the reporting views in process; this mirrors
// the Mongo store's pipeline output shape exactly.
func (f *FileStore) RestaurantReport(_ context.Context, restaurantID string) (*Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := f.load()
	changed := f.confirmMatched(st, func(o *models.Order) bool {
		return restaurantID == "" || o.RestaurantID == restaurantID
	})

	matched := []models.Order{}
	for _, o := range st.Orders {
		if restaurantID == "" || o.RestaurantID == restaurantID {
			matched = append(matched, o)
		}
	}
	if changed {
		if err := f.save(st); err != nil {
			return nil, err
		}
	}

	now := f.now()
	return &Report{
		Revenue:      reports.Revenue(matched),
		StatusCounts: reports.StatusCounts(matched),
		BestSellers:  reports.BestSellers(matched, now, 10),
		HourlyCounts: reports.HourlyCounts(matched, now),
		DailyRevenue: reports.DailyRevenue(matched, now),
		TopCustomers: reports.TopCustomers(matched, 10),
	}, nil
}

func (f *FileStore) Close(context.Context) error {
	return nil
}
