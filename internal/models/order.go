package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Order struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNumber  string             `json:"order_number" bson:"order_number"`
	RestaurantID string             `json:"restaurant_id" bson:"restaurant_id"`
	CustomerID   string             `json:"customer_id,omitempty" bson:"customer_id,omitempty"` // empty for guest orders
	TableNumber  string             `json:"table_number,omitempty" bson:"table_number,omitempty"`
	OrderType    string             `json:"order_type,omitempty" bson:"order_type,omitempty"` // dine-in, takeout, delivery, catering
	Status       string             `json:"status" bson:"status"`
	IsActive     bool               `json:"is_active" bson:"is_active"`

	Items []OrderItem `json:"items" bson:"items"`

	// Financials. Subtotal, per-item subtotals and Total are derived and
	// recomputed whenever Items change.
	Subtotal      float64 `json:"subtotal" bson:"subtotal"`
	Tax           float64 `json:"tax" bson:"tax"`
	TaxRate       float64 `json:"tax_rate" bson:"tax_rate"`
	Tip           float64 `json:"tip" bson:"tip"`
	TipPercentage float64 `json:"tip_percentage" bson:"tip_percentage"`
	ServiceFee    float64 `json:"service_fee" bson:"service_fee"`
	DeliveryFee   float64 `json:"delivery_fee" bson:"delivery_fee"`
	Discount      float64 `json:"discount" bson:"discount"`
	Total         float64 `json:"total" bson:"total"`

	PaymentStatus string `json:"payment_status" bson:"payment_status"` // unpaid, paid, refunded, partially_refunded
	PaymentMethod string `json:"payment_method,omitempty" bson:"payment_method,omitempty"`

	DeliveryAddress *DeliveryAddress `json:"delivery_address,omitempty" bson:"delivery_address,omitempty"`

	SpecialInstructions string `json:"special_instructions,omitempty" bson:"special_instructions,omitempty"`
	CancellationReason  string `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	Notes               string `json:"notes,omitempty" bson:"notes,omitempty"`

	CreatedBy   string `json:"created_by,omitempty" bson:"created_by,omitempty"`
	UpdatedBy   string `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	CancelledBy string `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`

	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	PreparingAt     *time.Time `json:"preparing_at,omitempty" bson:"preparing_at,omitempty"`
	ReadyAt         *time.Time `json:"ready_at,omitempty" bson:"ready_at,omitempty"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	ActualReadyTime *time.Time `json:"actual_ready_time,omitempty" bson:"actual_ready_time,omitempty"`
}

type OrderItem struct {
	ItemID              string          `json:"item_id" bson:"item_id"`
	Name                string          `json:"name" bson:"name"`
	Quantity            int             `json:"quantity" bson:"quantity"`
	UnitPrice           float64         `json:"unit_price" bson:"unit_price"`
	Customizations      []Customization `json:"customizations,omitempty" bson:"customizations,omitempty"`
	Subtotal            float64         `json:"subtotal" bson:"subtotal"` // derived
	SpecialInstructions string          `json:"special_instructions,omitempty" bson:"special_instructions,omitempty"`
}

type Customization struct {
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
}

type DeliveryAddress struct {
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	Zip     string `json:"zip,omitempty" bson:"zip,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// ValidOrderStatuses is the full target set for a status transition. Any
// status may follow any other; there is no adjacency constraint.
var ValidOrderStatuses = []string{
	string(OrderPending),
	string(OrderConfirmed),
	string(OrderPreparing),
	string(OrderReady),
	string(OrderDelivered),
	string(OrderCompleted),
	string(OrderCancelled),
}

func IsValidOrderStatus(status string) bool {
	for _, s := range ValidOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
