// Package taco implements the food-ordering domain on top of the key-value
// store: the entity model, exact price computation, the order write path,
// and the fan-out aggregation that reconstructs full order graphs.
package taco

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the order lifecycle states.
type OrderStatus string

const (
	StatusPlaced     OrderStatus = "PLACED"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPlaced, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// FoodItemType categorizes menu catalog entries.
type FoodItemType string

const (
	FoodTypeTaco    FoodItemType = "TACO"
	FoodTypeTopping FoodItemType = "TOPPING"
	FoodTypeSide    FoodItemType = "SIDE"
	FoodTypeDrink   FoodItemType = "DRINK"
)

// Customer is identified by email; the profile is created once and never
// updated by this layer.
type Customer struct {
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// Topping is a child of a taco.
type Topping struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
}

// Taco is a child of an order and may carry toppings.
type Taco struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Toppings   []Topping       `json:"toppings"`
}

// SideItem is a child of an order.
type SideItem struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
}

// Order is the aggregate root. The item graph is immutable after creation
// except for Status; TotalPrice is computed at write time and frozen.
type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customerId"`
	OrderDate  time.Time       `json:"orderDate"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     OrderStatus     `json:"status"`
	Tacos      []Taco          `json:"tacos"`
	SideItems  []SideItem      `json:"sideItems"`
}

// MenuItem is a catalog entry.
type MenuItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description,omitempty"`
	FoodItemType FoodItemType    `json:"foodItemType"`
}
