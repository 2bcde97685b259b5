package setting

import (
	"context"
	"net/http"
	"time"

	"footvibe_back_end/internal/cache"
	"footvibe_back_end/internal/database"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetSettings retourne le document réglages (créé paresseusement)
func GetSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	s, err := cache.GetSettings(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération réglages"})
		return
	}

	c.JSON(http.StatusOK, s)
}

// UpdateSettings met à jour le document réglages (admin, upsert)
func UpdateSettings(c *gin.Context) {
	var input struct {
		SaleActive     bool    `json:"saleActive"`
		GlobalDiscount float64 `json:"globalDiscount"`
		FAQ            string  `json:"faq"`
		ReturnPolicy   string  `json:"returnPolicy"`
		SizeGuide      string  `json:"sizeGuide"`
		Footer         string  `json:"footer"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"sale_active":     input.SaleActive,
		"global_discount": input.GlobalDiscount,
		"faq":             input.FAQ,
		"return_policy":   input.ReturnPolicy,
		"size_guide":      input.SizeGuide,
		"footer":          input.Footer,
	}}

	_, err := database.Settings().UpdateOne(ctx, bson.M{}, update, options.Update().SetUpsert(true))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour réglages"})
		return
	}

	cache.InvalidateSettings(ctx)

	s, err := cache.GetSettings(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération réglages"})
		return
	}
	c.JSON(http.StatusOK, s)
}
