package product

import (
	"context"
	"net/http"
	"time"

	"footvibe_back_end/internal/cache"
	"footvibe_back_end/internal/database"
	"footvibe_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UploadImage stocke l'image d'un produit dans MinIO et met à jour son URL
func UploadImage(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image requis"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	url, err := services.UploadProductImage(ctx, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	res, err := database.Products().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"image_url": url, "updated_at": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	cache.InvalidateProduct(ctx, id)

	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}
