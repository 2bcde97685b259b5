package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Setting est un document singleton (un seul par boutique)
type Setting struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SaleActive     bool               `bson:"sale_active" json:"saleActive"`
	GlobalDiscount float64            `bson:"global_discount" json:"globalDiscount"`
	FAQ            string             `bson:"faq" json:"faq"`
	ReturnPolicy   string             `bson:"return_policy" json:"returnPolicy"`
	SizeGuide      string             `bson:"size_guide" json:"sizeGuide"`
	Footer         string             `bson:"footer" json:"footer"`
}
