package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// OrderStatuses lists every status an order may carry.
var OrderStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusDelivered,
	StatusCancelled,
}

// Price accepts either a JSON number or a numeric string ("250.50").
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*p = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		s = strings.TrimSpace(raw)
		if s == "" {
			*p = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid price %q", s)
	}
	*p = Price(v)
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(p))
}

type OrderItem struct {
	Name     string `json:"name" bson:"name"`
	Price    Price  `json:"price" bson:"price"`
	Quantity *int   `json:"quantity,omitempty" bson:"quantity"`
	Note     string `json:"note,omitempty" bson:"note,omitempty"`
}

// Qty returns the effective quantity, defaulting to 1 when omitted.
// Zero and negative values are returned as-is.
func (i OrderItem) Qty() int {
	if i.Quantity == nil {
		return 1
	}
	return *i.Quantity
}

type Order struct {
	ID            string      `json:"id" bson:"_id"`
	RestaurantID  string      `json:"restaurant_id" bson:"restaurant_id"`
	Items         []OrderItem `json:"items" bson:"items"`
	Total         float64     `json:"total" bson:"total"`
	CustomerName  string      `json:"customer_name,omitempty" bson:"customer_name"`
	CustomerEmail string      `json:"customer_email,omitempty" bson:"customer_email"`
	Status        string      `json:"status" bson:"status"`
	CreatedAt     time.Time   `json:"created_at" bson:"created_at"`
}

// Age reports how long ago the order was created, using the stored
// creation timestamp.
func (o *Order) Age(now time.Time) time.Duration {
	return now.Sub(o.CreatedAt)
}
