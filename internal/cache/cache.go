package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"footvibe_back_end/internal/database"
	"footvibe_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ProductCacheTTL = 10 * time.Minute
	SettingCacheTTL = 5 * time.Minute

	settingKey = "settings"
)

// GetProduct récupère un produit depuis Redis, sinon MongoDB (read-through)
func GetProduct(ctx context.Context, productID primitive.ObjectID) (*models.Product, error) {
	key := "product:" + productID.Hex()

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var p models.Product
		if json.Unmarshal([]byte(data), &p) == nil {
			return &p, nil
		}
	}

	// 2. Récupérer de MongoDB
	var p models.Product
	err = database.Products().FindOne(ctx, bson.M{"_id": productID}).Decode(&p)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	if jsonData, err := json.Marshal(p); err == nil {
		database.Redis.Set(ctx, key, jsonData, ProductCacheTTL)
	}

	return &p, nil
}

// InvalidateProduct invalide le cache d'un produit
func InvalidateProduct(ctx context.Context, productID primitive.ObjectID) {
	database.Redis.Del(ctx, "product:"+productID.Hex())
}

// GetSettings récupère le document réglages, avec création paresseuse du
// singleton s'il n'existe pas encore
func GetSettings(ctx context.Context) (*models.Setting, error) {
	data, err := database.Redis.Get(ctx, settingKey).Result()
	if err == nil {
		var s models.Setting
		if json.Unmarshal([]byte(data), &s) == nil {
			return &s, nil
		}
	}

	var s models.Setting
	err = database.Settings().FindOne(ctx, bson.M{}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		s = models.Setting{ID: primitive.NewObjectID(), SaleActive: false, GlobalDiscount: 0}
		if _, err := database.Settings().InsertOne(ctx, s); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if jsonData, err := json.Marshal(s); err == nil {
		database.Redis.Set(ctx, settingKey, jsonData, SettingCacheTTL)
	}

	return &s, nil
}

// InvalidateSettings invalide le cache des réglages
func InvalidateSettings(ctx context.Context) {
	database.Redis.Del(ctx, settingKey)
}
