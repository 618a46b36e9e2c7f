package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/karigar/app/models"
	"github.com/shashiranjanraj/karigar/pkg/metrics"
)

// OrderRepository persists orders and answers the role-scoped listing with
// the referenced service expanded via a $lookup aggregation.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(col *mongo.Collection) *OrderRepository {
	return &OrderRepository{col: col}
}

// Create inserts order with a fresh pending status.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	defer metrics.ObserveStoreOp(ColOrders, "insert", time.Now())

	now := time.Now().UTC()
	order.Status = models.StatusPending
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("orders: insert: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

// FindByID returns the order with the given hex id or ErrNotFound.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (models.Order, error) {
	defer metrics.ObserveStoreOp(ColOrders, "find", time.Now())

	oid, err := parseID(id)
	if err != nil {
		return models.Order{}, err
	}

	var order models.Order
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&order); err != nil {
		return models.Order{}, notFound(err)
	}
	return order, nil
}

// List returns orders in insertion order, each with its service expanded to
// {title, description, price}. An empty email means no scoping (admin view);
// otherwise only that customer's orders are returned.
func (r *OrderRepository) List(ctx context.Context, email string) ([]models.OrderWithService, error) {
	defer metrics.ObserveStoreOp(ColOrders, "aggregate", time.Now())

	match := bson.M{}
	if email != "" {
		match["email"] = email
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         ColServices,
			"localField":   "service_id",
			"foreignField": "_id",
			"as":           "service",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$service",
			"preserveNullAndEmptyArrays": true,
		}}},
		// A dangling reference (service deleted after ordering) must keep
		// the field absent, not decode into a zero-valued summary.
		{{Key: "$addFields", Value: bson.M{
			"service": bson.M{"$cond": bson.M{
				"if":   bson.M{"$eq": bson.A{bson.M{"$type": "$service"}, "missing"}},
				"then": "$$REMOVE",
				"else": bson.M{
					"title":       "$service.title",
					"description": "$service.description",
					"price":       "$service.price",
				},
			}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("orders: aggregate: %w", err)
	}

	orders := []models.OrderWithService{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode: %w", err)
	}
	return orders, nil
}

// SetStatus updates only the status field and returns the updated order.
// Transition legality is checked by the caller against the current record.
func (r *OrderRepository) SetStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	defer metrics.ObserveStoreOp(ColOrders, "update", time.Now())

	oid, err := parseID(id)
	if err != nil {
		return models.Order{}, err
	}

	var order models.Order
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err != nil {
		return models.Order{}, notFound(err)
	}
	return order, nil
}
