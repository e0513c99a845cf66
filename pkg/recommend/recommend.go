// Package recommend scores menu items against a mood signal, the time
// of day, and a customer's order history. The scoring is a stateless
// heuristic over its inputs.
package recommend

import (
	"sort"
	"strings"
	"time"

	"github.com/example/feastly/pkg/models"
)

// moodTags maps a mood to the item tags it favors.
var moodTags = map[string][]string{
	"comfort":     {"comfort", "creamy", "fried", "cheesy"},
	"healthy":     {"healthy", "salad", "grilled", "vegan", "light"},
	"adventurous": {"spicy", "fusion", "exotic", "street"},
	"sweet":       {"dessert", "sweet", "chocolate"},
	"quick":       {"snack", "fast", "wrap", "sandwich"},
}

// mealCategory maps an hour of day to the favored menu category.
func mealCategory(hour int) string {
	switch {
	case hour >= 6 && hour < 11:
		return "breakfast"
	case hour >= 11 && hour < 16:
		return "lunch"
	case hour >= 16 && hour < 23:
		return "dinner"
	default:
		return "snacks"
	}
}

type Scored struct {
	Item  models.MenuItem `json:"item"`
	Score float64         `json:"score"`
}

// Score rates one menu item. Tag matches against the mood count the
// most, then a category match for the current meal slot, then history:
// reordering something already ordered, or an item priced near the
// customer's usual spend.
func Score(item models.MenuItem, mood string, now time.Time, history []models.Order) float64 {
	var score float64

	tags := moodTags[strings.ToLower(mood)]
	for _, tag := range item.Tags {
		for _, want := range tags {
			if strings.EqualFold(tag, want) {
				score += 3
			}
		}
	}

	if strings.EqualFold(item.Category, mealCategory(now.Hour())) {
		score += 2
	}

	ordered, median := historyProfile(history)
	if ordered[strings.ToLower(item.Name)] {
		score += 2
	}
	if median > 0 {
		price := float64(item.Price)
		if price >= median*0.5 && price <= median*1.5 {
			score += 1
		}
	}

	return score
}

// Recommend returns the top-scoring available items, highest first,
// ties broken by name so results are deterministic.
func Recommend(menu []models.MenuItem, mood string, now time.Time, history []models.Order, limit int) []Scored {
	scored := make([]Scored, 0, len(menu))
	for _, item := range menu {
		if !item.Available {
			continue
		}
		scored = append(scored, Scored{Item: item, Score: Score(item, mood, now, history)})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Item.Name < scored[j].Item.Name
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// historyProfile folds a customer's past orders into the set of item
// names ordered and the median per-item price paid.
func historyProfile(history []models.Order) (map[string]bool, float64) {
	ordered := make(map[string]bool)
	var prices []float64
	for _, o := range history {
		for _, item := range o.Items {
			ordered[strings.ToLower(item.Name)] = true
			prices = append(prices, float64(item.Price))
		}
	}
	if len(prices) == 0 {
		return ordered, 0
	}
	sort.Float64s(prices)
	mid := len(prices) / 2
	if len(prices)%2 == 1 {
		return ordered, prices[mid]
	}
	return ordered, (prices[mid-1] + prices[mid]) / 2
}
