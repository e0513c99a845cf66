package models

import "time"

type Restaurant struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Cuisine   string    `json:"cuisine,omitempty" bson:"cuisine,omitempty"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty"`
	Rating    float64   `json:"rating" bson:"rating"`
	IsOpen    bool      `json:"is_open" bson:"is_open"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type MenuItem struct {
	ID           string   `json:"id" bson:"_id"`
	RestaurantID string   `json:"restaurant_id" bson:"restaurant_id"`
	Name         string   `json:"name" bson:"name"`
	Description  string   `json:"description,omitempty" bson:"description,omitempty"`
	Price        Price    `json:"price" bson:"price"`
	Category     string   `json:"category,omitempty" bson:"category,omitempty"`
	Tags         []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Available    bool     `json:"available" bson:"available"`
}

type Rating struct {
	ID           string    `json:"id" bson:"_id"`
	RestaurantID string    `json:"restaurant_id" bson:"restaurant_id"`
	UserEmail    string    `json:"user_email,omitempty" bson:"user_email,omitempty"`
	Value        int       `json:"value" bson:"value"`
	Comment      string    `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type Feedback struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty"`
	Subject   string    `json:"subject,omitempty" bson:"subject,omitempty"`
	Message   string    `json:"message" bson:"message"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
