package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/feastly/pkg/config"
	"github.com/example/feastly/pkg/models"
	"github.com/example/feastly/pkg/orders"
	"github.com/example/feastly/pkg/reports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	colRestaurants = "restaurants"
	colMenuItems   = "menu_items"
	colRatings     = "ratings"
	colOrders      = "orders"
	colUsers       = "users"
	colGroupOrders = "group_orders"
	colFeedback    = "feedback"
)

// MongoStore is the durable backend: one collection per entity,
// creation-time sorts, and aggregation pipelines for the reporting
// surface.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	rules  config.OrdersConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewMongoStore(cfg *config.MongoDBConfig, rules config.OrdersConfig, logger *zap.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Database),
		rules:  rules,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// confirmAged rewrites every matched pending order past the
// confirmation window to confirmed. Run before any order read so the
// lazy transition is visible to the caller.
func (m *MongoStore) confirmAged(ctx context.Context, extra bson.M) error {
	cutoff := m.now().Add(-m.rules.ConfirmAfter)
	filter := bson.M{
		"status":     models.StatusPending,
		"created_at": bson.M{"$lte": cutoff},
	}
	for k, v := range extra {
		filter[k] = v
	}
	_, err := m.db.Collection(colOrders).UpdateMany(ctx, filter,
		bson.M{"$set": bson.M{"status": models.StatusConfirmed}})
	return err
}

func (m *MongoStore) CreateOrder(ctx context.Context, o *models.Order) error {
	total, err := orders.ComputeTotal(o.Items, m.rules.RejectNegativeQuantity)
	if err != nil {
		return err
	}

	if o.ID == "" {
		o.ID = NewID("ord")
	}
	o.Total = total
	o.Status = models.StatusPending
	o.CreatedAt = m.now()

	_, err = m.db.Collection(colOrders).InsertOne(ctx, o)
	return err
}

func (m *MongoStore) findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.db.Collection(colOrders).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []models.Order{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *MongoStore) OrdersByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error) {
	filter := bson.M{"restaurant_id": restaurantID}
	if err := m.confirmAged(ctx, filter); err != nil {
		return nil, err
	}
	return m.findOrders(ctx, filter)
}

func (m *MongoStore) OrdersByUser(ctx context.Context, email string) ([]models.Order, error) {
	filter := bson.M{"customer_email": email}
	if err := m.confirmAged(ctx, filter); err != nil {
		return nil, err
	}
	return m.findOrders(ctx, filter)
}

func (m *MongoStore) Order(ctx context.Context, id string) (*models.Order, error) {
	if err := m.confirmAged(ctx, bson.M{"_id": id}); err != nil {
		return nil, err
	}

	var o models.Order
	err := m.db.Collection(colOrders).FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOrderStatus overwrites the status. The durable path validates
// the value against the known statuses; no transition graph is
// enforced beyond that.
func (m *MongoStore) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if !orders.ValidStatus(status) {
		return nil, orders.ErrInvalidStatus
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var o models.Order
	err := m.db.Collection(colOrders).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		opts,
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (m *MongoStore) DeleteOrder(ctx context.Context, id string) error {
	var o models.Order
	err := m.db.Collection(colOrders).FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := orders.CanDelete(&o, m.now(), m.rules.DeleteWindow); err != nil {
		return err
	}

	_, err = m.db.Collection(colOrders).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (m *MongoStore) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	if r.ID == "" {
		r.ID = NewID("res")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now()
	}
	_, err := m.db.Collection(colRestaurants).InsertOne(ctx, r)
	return err
}

func (m *MongoStore) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}})
	cursor, err := m.db.Collection(colRestaurants).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []models.Restaurant{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *MongoStore) Restaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	err := m.db.Collection(colRestaurants).FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (m *MongoStore) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if item.ID == "" {
		item.ID = NewID("itm")
	}
	_, err := m.db.Collection(colMenuItems).InsertOne(ctx, item)
	return err
}

func (m *MongoStore) MenuByRestaurant(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	cursor, err := m.db.Collection(colMenuItems).Find(ctx, bson.M{"restaurant_id": restaurantID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []models.MenuItem{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *MongoStore) CreateRating(ctx context.Context, r *models.Rating) error {
	if r.ID == "" {
		r.ID = NewID("rat")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now()
	}
	_, err := m.db.Collection(colRatings).InsertOne(ctx, r)
	return err
}

func (m *MongoStore) RatingsByRestaurant(ctx context.Context, restaurantID string) ([]models.Rating, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.db.Collection(colRatings).Find(ctx, bson.M{"restaurant_id": restaurantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []models.Rating{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *MongoStore) CreateFeedback(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = NewID("fbk")
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = m.now()
	}
	_, err := m.db.Collection(colFeedback).InsertOne(ctx, fb)
	return err
}

func (m *MongoStore) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.db.Collection(colFeedback).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []models.Feedback{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	count, err := m.db.Collection(colUsers).CountDocuments(ctx, bson.M{"email": u.Email})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateEmail
	}

	if u.ID == "" {
		u.ID = NewID("usr")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}
	_, err = m.db.Collection(colUsers).InsertOne(ctx, u)
	return err
}

func (m *MongoStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := m.db.Collection(colUsers).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *MongoStore) CreateGroupOrder(ctx context.Context, g *models.GroupOrder) error {
	if g.Code == "" {
		g.Code = NewGroupCode()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = m.now()
	}
	_, err := m.db.Collection(colGroupOrders).InsertOne(ctx, g)
	return err
}

func (m *MongoStore) GroupOrder(ctx context.Context, code string) (*models.GroupOrder, error) {
	var g models.GroupOrder
	err := m.db.Collection(colGroupOrders).FindOne(ctx, bson.M{"_id": code}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (m *MongoStore) UpdateGroupOrder(ctx context.Context, g *models.GroupOrder) error {
	result, err := m.db.Collection(colGroupOrders).ReplaceOne(ctx, bson.M{"_id": g.Code}, g)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RestaurantReport runs the reporting views as aggregation pipelines.
// The output shape matches the file store's in-process folds.
func (m *MongoStore) RestaurantReport(ctx context.Context, restaurantID string) (*Report, error) {
	match := bson.M{}
	if restaurantID != "" {
		match["restaurant_id"] = restaurantID
	}
	if err := m.confirmAged(ctx, match); err != nil {
		return nil, err
	}

	now := m.now()
	report := &Report{}

	revenue, err := m.aggregateRevenue(ctx, match)
	if err != nil {
		return nil, err
	}
	report.Revenue = revenue

	counts, err := m.aggregateStatusCounts(ctx, match)
	if err != nil {
		return nil, err
	}
	report.StatusCounts = counts

	sellers, err := m.aggregateBestSellers(ctx, match, now)
	if err != nil {
		return nil, err
	}
	report.BestSellers = sellers

	hourly, err := m.aggregateHourly(ctx, match, now)
	if err != nil {
		return nil, err
	}
	report.HourlyCounts = hourly

	daily, err := m.aggregateDailyRevenue(ctx, match, now)
	if err != nil {
		return nil, err
	}
	report.DailyRevenue = daily

	top, err := m.aggregateTopCustomers(ctx, match)
	if err != nil {
		return nil, err
	}
	report.TopCustomers = top

	return report, nil
}

func (m *MongoStore) aggregateRevenue(ctx context.Context, match bson.M) (float64, error) {
	filter := cloneMatch(match)
	filter["status"] = bson.M{"$nin": bson.A{models.StatusPending, models.StatusCancelled}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": "$total"}}}},
	}

	var rows []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := m.aggregate(ctx, pipeline, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Revenue, nil
}

func (m *MongoStore) aggregateStatusCounts(ctx context.Context, match bson.M) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	var rows []struct {
		Status string `bson:"_id"`
		Count  int    `bson:"count"`
	}
	if err := m.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (m *MongoStore) aggregateBestSellers(ctx context.Context, match bson.M, now time.Time) ([]reports.ItemSales, error) {
	filter := cloneMatch(match)
	filter["created_at"] = bson.M{"$gte": now.Add(-reports.BestSellerLookback)}
	filter["status"] = bson.M{"$ne": models.StatusCancelled}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$items.name",
			"quantity": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$items.quantity", 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "quantity", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: 10}},
	}

	var rows []struct {
		Name     string `bson:"_id"`
		Quantity int    `bson:"quantity"`
	}
	if err := m.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}

	sales := make([]reports.ItemSales, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, reports.ItemSales{Name: row.Name, Quantity: row.Quantity})
	}
	return sales, nil
}

func (m *MongoStore) aggregateHourly(ctx context.Context, match bson.M, now time.Time) ([]reports.HourCount, error) {
	filter := cloneMatch(match)
	filter["created_at"] = bson.M{"$gte": now.Add(-reports.HourlyLookback)}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$hour": "$created_at"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	var rows []struct {
		Hour  int `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := m.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}

	buckets := make([]reports.HourCount, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	for _, row := range rows {
		if row.Hour >= 0 && row.Hour < 24 {
			buckets[row.Hour].Count = row.Count
		}
	}
	return buckets, nil
}

func (m *MongoStore) aggregateDailyRevenue(ctx context.Context, match bson.M, now time.Time) ([]reports.DayRevenue, error) {
	start := now.AddDate(0, 0, -(reports.DailyLookbackDays - 1))
	cutoff := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	filter := cloneMatch(match)
	filter["created_at"] = bson.M{"$gte": cutoff}
	filter["status"] = bson.M{"$nin": bson.A{models.StatusPending, models.StatusCancelled}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$created_at",
			}},
			"revenue": bson.M{"$sum": "$total"},
		}}},
	}

	var rows []struct {
		Date    string  `bson:"_id"`
		Revenue float64 `bson:"revenue"`
	}
	if err := m.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}

	byDay := make(map[string]float64, len(rows))
	for _, row := range rows {
		byDay[row.Date] = row.Revenue
	}

	// Zero-fill gaps so the series always spans the full window.
	series := make([]reports.DayRevenue, 0, reports.DailyLookbackDays)
	for d := 0; d < reports.DailyLookbackDays; d++ {
		date := cutoff.AddDate(0, 0, d).Format("2006-01-02")
		series = append(series, reports.DayRevenue{Date: date, Revenue: byDay[date]})
	}
	return series, nil
}

func (m *MongoStore) aggregateTopCustomers(ctx context.Context, match bson.M) ([]reports.TopCustomer, error) {
	filter := cloneMatch(match)
	filter["status"] = models.StatusDelivered
	filter["customer_email"] = bson.M{"$ne": ""}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": "$customer_email", "delivered": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "delivered", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: 10}},
	}

	var rows []struct {
		Email     string `bson:"_id"`
		Delivered int    `bson:"delivered"`
	}
	if err := m.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}

	top := make([]reports.TopCustomer, 0, len(rows))
	for _, row := range rows {
		top = append(top, reports.TopCustomer{Email: row.Email, Delivered: row.Delivered})
	}
	return top, nil
}

func (m *MongoStore) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := m.db.Collection(colOrders).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func cloneMatch(match bson.M) bson.M {
	clone := bson.M{}
	for k, v := range match {
		clone[k] = v
	}
	return clone
}
