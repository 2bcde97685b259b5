package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuts de commande — machine à états fermée : created → paid | failed.
// Le suivi logistique (expédition, livraison…) est géré ailleurs.
const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
	Size      *float64           `bson:"size,omitempty" json:"size,omitempty"`
	Color     *string            `bson:"color,omitempty" json:"color,omitempty"`

	// Rempli à la lecture (GET /api/orders), jamais persisté
	Product *Product `bson:"-" json:"productDetails,omitempty"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"user" json:"user"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Total           float64            `bson:"total" json:"total"`
	Status          string             `bson:"status" json:"status"`
	PaymentID       string             `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	RazorpayOrderID string             `bson:"razorpay_order_id,omitempty" json:"razorpayOrderId,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Subtotal retourne le sous-total d'une ligne (quantité × prix unitaire)
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}
