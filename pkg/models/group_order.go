package models

import "time"

// Split strategies for dividing a group order total.
const (
	SplitEqual    = "equal"
	SplitItemwise = "itemwise"
	SplitCustom   = "custom"
)

// Aggregate group-order states.
const (
	GroupPending   = "pending"
	GroupPartial   = "partial"
	GroupCompleted = "completed"
	GroupCancelled = "cancelled"
)

// Participant payment states.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type Participant struct {
	ID            string      `json:"id" bson:"id"`
	Name          string      `json:"name" bson:"name"`
	Email         string      `json:"email" bson:"email"`
	Phone         string      `json:"phone,omitempty" bson:"phone,omitempty"`
	Share         float64     `json:"share" bson:"share"`
	Items         []OrderItem `json:"items,omitempty" bson:"items,omitempty"`
	PaymentStatus string      `json:"payment_status" bson:"payment_status"`
	PaymentRef    string      `json:"payment_ref,omitempty" bson:"payment_ref,omitempty"`
	PaidAt        *time.Time  `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
}

type GroupOrder struct {
	Code            string        `json:"code" bson:"_id"`
	OrderID         string        `json:"order_id" bson:"order_id"`
	RestaurantID    string        `json:"restaurant_id" bson:"restaurant_id"`
	OrganizerName   string        `json:"organizer_name" bson:"organizer_name"`
	OrganizerEmail  string        `json:"organizer_email" bson:"organizer_email"`
	OrganizerPhone  string        `json:"organizer_phone,omitempty" bson:"organizer_phone,omitempty"`
	Total           float64       `json:"total" bson:"total"`
	SplitStrategy   string        `json:"split_strategy" bson:"split_strategy"`
	Participants    []Participant `json:"participants" bson:"participants"`
	DeliveryAddress string        `json:"delivery_address,omitempty" bson:"delivery_address,omitempty"`
	Status          string        `json:"status" bson:"status"`
	PaymentDeadline time.Time     `json:"payment_deadline" bson:"payment_deadline"`
	SharedItems     []OrderItem   `json:"shared_items,omitempty" bson:"shared_items,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
}
