package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Price         float64            `bson:"price" json:"price"`
	OriginalPrice *float64           `bson:"original_price,omitempty" json:"originalPrice,omitempty"`
	Stock         int                `bson:"stock" json:"stock"`
	ImageURL      string             `bson:"image_url" json:"imageUrl"`
	Category      string             `bson:"category" json:"category"` // sneakers, boots, sandals, formal, sports
	Gender        string             `bson:"gender" json:"gender"`     // men, women, kids, unisex
	Brand         string             `bson:"brand" json:"brand"`
	Rating        float64            `bson:"rating" json:"rating"`
	Reviews       int                `bson:"reviews" json:"reviews"`
	Sizes         []float64          `bson:"sizes" json:"sizes"`
	Colors        []string           `bson:"colors" json:"colors"`
	Featured      bool               `bson:"featured" json:"featured"`
	New           bool               `bson:"new" json:"new"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}
