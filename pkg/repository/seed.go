package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/feastly/pkg/models"
)

// SeedData is the static catalog loaded at startup when a seed file is
// configured.
type SeedData struct {
	Restaurants []models.Restaurant `json:"restaurants"`
	MenuItems   []models.MenuItem   `json:"menuItems"`
}

// Seed loads restaurants and menu items into the store, skipping any
// restaurant id that already exists. Backend-agnostic: it only uses
// the Store contract.
func Seed(ctx context.Context, s Store, data []byte) error {
	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed data: %w", err)
	}

	existing, err := s.Restaurants(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, r := range existing {
		known[r.ID] = true
	}

	for i := range seed.Restaurants {
		r := seed.Restaurants[i]
		if known[r.ID] {
			continue
		}
		if err := s.CreateRestaurant(ctx, &r); err != nil {
			return fmt.Errorf("failed to seed restaurant %q: %w", r.Name, err)
		}
		for j := range seed.MenuItems {
			m := seed.MenuItems[j]
			if m.RestaurantID != r.ID {
				continue
			}
			if err := s.CreateMenuItem(ctx, &m); err != nil {
				return fmt.Errorf("failed to seed menu item %q: %w", m.Name, err)
			}
		}
	}
	return nil
}
