// Package repository provides the persistence backend behind every
// handler: a MongoDB-backed store when the database is reachable at
// startup, or a JSON-file fallback store when it is not. Both satisfy
// the same Store contract with identical semantics.
package repository

import (
	"context"
	"errors"

	"github.com/example/feastly/pkg/models"
	"github.com/example/feastly/pkg/reports"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Report bundles the derived views of the reporting surface. Both
// backends return the same shape: the Mongo store builds it from
// aggregation pipelines, the file store from in-process folds.
type Report struct {
	Revenue      float64               `json:"revenue"`
	StatusCounts map[string]int        `json:"status_counts"`
	BestSellers  []reports.ItemSales   `json:"best_sellers"`
	HourlyCounts []reports.HourCount   `json:"hourly_counts"`
	DailyRevenue []reports.DayRevenue  `json:"daily_revenue"`
	TopCustomers []reports.TopCustomer `json:"top_customers"`
}

// Store is the capability set both backends implement. Order read
// paths apply lazy auto-confirmation before returning, persisting any
// rewrite. CreateOrder assigns the id, timestamp, pending status, and
// the server-computed total.
type Store interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	OrdersByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error)
	OrdersByUser(ctx context.Context, email string) ([]models.Order, error)
	Order(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error

	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	Restaurants(ctx context.Context) ([]models.Restaurant, error)
	Restaurant(ctx context.Context, id string) (*models.Restaurant, error)

	CreateMenuItem(ctx context.Context, m *models.MenuItem) error
	MenuByRestaurant(ctx context.Context, restaurantID string) ([]models.MenuItem, error)

	CreateRating(ctx context.Context, r *models.Rating) error
	RatingsByRestaurant(ctx context.Context, restaurantID string) ([]models.Rating, error)

	CreateFeedback(ctx context.Context, f *models.Feedback) error
	ListFeedback(ctx context.Context) ([]models.Feedback, error)

	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateGroupOrder(ctx context.Context, g *models.GroupOrder) error
	GroupOrder(ctx context.Context, code string) (*models.GroupOrder, error)
	UpdateGroupOrder(ctx context.Context, g *models.GroupOrder) error

	// RestaurantReport aggregates the reporting views for one
	// restaurant, or for all orders when restaurantID is empty.
	RestaurantReport(ctx context.Context, restaurantID string) (*Report, error)

	Close(ctx context.Context) error
}
