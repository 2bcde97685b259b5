package orders

import (
	"context"
	"errors"
	"time"

	"footvibe_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implémente Store au-dessus des collections MongoDB
type MongoStore struct {
	orders   *mongo.Collection
	products *mongo.Collection
}

func NewMongoStore(orders, products *mongo.Collection) *MongoStore {
	return &MongoStore{orders: orders, products: products}
}

func (s *MongoStore) Insert(ctx context.Context, o *models.Order) error {
	_, err := s.orders.InsertOne(ctx, o)
	return err
}

// MarkPaid fait la transition created → paid en une seule mise à jour
// conditionnelle : deux vérifications concurrentes ne peuvent pas passer
// toutes les deux, le perdant ne matche plus le filtre status = created.
func (s *MongoStore) MarkPaid(ctx context.Context, razorpayOrderID, paymentID string) (*models.Order, error) {
	filter := bson.M{
		"razorpay_order_id": razorpayOrderID,
		"status":            models.OrderStatusCreated,
	}
	update := bson.M{"$set": bson.M{
		"status":     models.OrderStatusPaid,
		"payment_id": paymentID,
		"updated_at": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := s.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotApplied
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkFailed fait la transition created → failed, conditionnelle elle aussi :
// une commande déjà payée ne peut pas être rétrogradée
func (s *MongoStore) MarkFailed(ctx context.Context, razorpayOrderID string) (*models.Order, error) {
	filter := bson.M{
		"razorpay_order_id": razorpayOrderID,
		"status":            models.OrderStatusCreated,
	}
	update := bson.M{"$set": bson.M{
		"status":     models.OrderStatusFailed,
		"updated_at": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := s.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotApplied
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoStore) FindByRazorpayID(ctx context.Context, razorpayOrderID string) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"razorpay_order_id": razorpayOrderID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.orders.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *MongoStore) FindProducts(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	cursor, err := s.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := make(map[primitive.ObjectID]models.Product)
	for cursor.Next(ctx) {
		var p models.Product
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	return result, cursor.Err()
}
