package product

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"footvibe_back_end/internal/cache"
	"footvibe_back_end/internal/database"
	"footvibe_back_end/internal/models"
	"footvibe_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetProducts liste tout le catalogue
func GetProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := database.Products().Find(ctx, bson.M{}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produits"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage produits"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProductByID retourne un produit (cache Redis en lecture)
func GetProductByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	p, err := cache.GetProduct(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// AddProduct crée un produit (admin)
func AddProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.Name == "" || p.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom requis et prix positif"})
		return
	}

	p.ID = primitive.NewObjectID()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if _, err := database.Products().InsertOne(ctx, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// Indexation recherche en arrière-plan
	go services.IndexProduct(p)

	log.Println("✅ Produit créé :", p.Name)
	c.JSON(http.StatusCreated, p)
}

// UpdateProduct met à jour un produit (admin)
func UpdateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.ID = id
	p.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":           p.Name,
		"description":    p.Description,
		"price":          p.Price,
		"original_price": p.OriginalPrice,
		"stock":          p.Stock,
		"image_url":      p.ImageURL,
		"category":       p.Category,
		"gender":         p.Gender,
		"brand":          p.Brand,
		"sizes":          p.Sizes,
		"colors":         p.Colors,
		"featured":       p.Featured,
		"new":            p.New,
		"updated_at":     p.UpdatedAt,
	}}

	res := database.Products().FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var updated models.Product
	if err := res.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	cache.InvalidateProduct(ctx, id)
	go services.IndexProduct(updated)

	c.JSON(http.StatusOK, updated)
}

// DeleteProduct supprime un produit (admin)
func DeleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if _, err := database.Products().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	cache.InvalidateProduct(ctx, id)
	go services.RemoveProductFromIndex(id.Hex())

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

// SearchProducts recherche dans l'index Elasticsearch
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		log.Println("❌ Erreur recherche:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche produits"})
		return
	}

	c.JSON(http.StatusOK, results)
}
