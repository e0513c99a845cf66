// Package reports derives read-only views over an order set: revenue,
// status breakdowns, best sellers, peak hours, and top customers. All
// views are recomputed per request from the orders handed in; nothing
// here is stored.
package reports

import (
	"math"
	"sort"
	"time"

	"github.com/example/feastly/pkg/models"
)

const (
	BestSellerLookback = 7 * 24 * time.Hour
	HourlyLookback     = 7 * 24 * time.Hour
	DailyLookbackDays  = 30
)

type ItemSales struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type DayRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type TopCustomer struct {
	Email     string `json:"email"`
	Delivered int    `json:"delivered"`
}

// Revenue sums order totals, excluding pending and cancelled orders.
func Revenue(orders []models.Order) float64 {
	var sum float64
	for _, o := range orders {
		if o.Status == models.StatusPending || o.Status == models.StatusCancelled {
			continue
		}
		sum += o.Total
	}
	return round2(sum)
}

// StatusCounts builds the status histogram. Every known status appears
// in the result, zero-counted when absent.
func StatusCounts(orders []models.Order) map[string]int {
	counts := make(map[string]int, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		counts[s] = 0
	}
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

// BestSellers ranks items by quantity sold within the lookback window,
// highest first. Ties break by name.
func BestSellers(orders []models.Order, now time.Time, limit int) []ItemSales {
	cutoff := now.Add(-BestSellerLookback)
	byName := make(map[string]int)
	for _, o := range orders {
		if o.CreatedAt.Before(cutoff) || o.Status == models.StatusCancelled {
			continue
		}
		for _, item := range o.Items {
			byName[item.Name] += item.Qty()
		}
	}

	sales := make([]ItemSales, 0, len(byName))
	for name, qty := range byName {
		sales = append(sales, ItemSales{Name: name, Quantity: qty})
	}
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].Quantity != sales[j].Quantity {
			return sales[i].Quantity > sales[j].Quantity
		}
		return sales[i].Name < sales[j].Name
	})
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales
}

// HourlyCounts returns the order-count histogram by hour of day over
// the last 7 days, all 24 buckets present.
func HourlyCounts(orders []models.Order, now time.Time) []HourCount {
	cutoff := now.Add(-HourlyLookback)
	buckets := make([]HourCount, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	for _, o := range orders {
		if o.CreatedAt.Before(cutoff) {
			continue
		}
		buckets[o.CreatedAt.Hour()].Count++
	}
	return buckets
}

// DailyRevenue returns the revenue series for the last 30 days, oldest
// first, with zero-filled gaps. Pending and cancelled orders are
// excluded, matching Revenue.
func DailyRevenue(orders []models.Order, now time.Time) []DayRevenue {
	byDay := make(map[string]float64)
	start := now.AddDate(0, 0, -(DailyLookbackDays - 1))
	cutoff := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	for _, o := range orders {
		if o.CreatedAt.Before(cutoff) {
			continue
		}
		if o.Status == models.StatusPending || o.Status == models.StatusCancelled {
			continue
		}
		byDay[o.CreatedAt.Format("2006-01-02")] += o.Total
	}

	series := make([]DayRevenue, 0, DailyLookbackDays)
	for d := 0; d < DailyLookbackDays; d++ {
		date := cutoff.AddDate(0, 0, d).Format("2006-01-02")
		series = append(series, DayRevenue{Date: date, Revenue: round2(byDay[date])})
	}
	return series
}

// TopCustomers ranks customers by delivered-order count, highest first.
// Orders without a customer email are skipped.
func TopCustomers(orders []models.Order, limit int) []TopCustomer {
	byEmail := make(map[string]int)
	for _, o := range orders {
		if o.Status != models.StatusDelivered || o.CustomerEmail == "" {
			continue
		}
		byEmail[o.CustomerEmail]++
	}

	top := make([]TopCustomer, 0, len(byEmail))
	for email, n := range byEmail {
		top = append(top, TopCustomer{Email: email, Delivered: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Delivered != top[j].Delivered {
			return top[i].Delivered > top[j].Delivered
		}
		return top[i].Email < top[j].Email
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
