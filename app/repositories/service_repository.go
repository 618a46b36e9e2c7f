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

// ServiceRepository persists admin-created service offerings.
type ServiceRepository struct {
	col *mongo.Collection
}

func NewServiceRepository(col *mongo.Collection) *ServiceRepository {
	return &ServiceRepository{col: col}
}

// Create inserts service and fills in its generated ID.
func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	defer metrics.ObserveStoreOp(ColServices, "insert", time.Now())

	service.CreatedAt = time.Now().UTC()
	res, err := r.col.InsertOne(ctx, service)
	if err != nil {
		return fmt.Errorf("services: insert: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		service.ID = oid
	}
	return nil
}

// All returns every service in insertion order.
func (r *ServiceRepository) All(ctx context.Context) ([]models.Service, error) {
	defer metrics.ObserveStoreOp(ColServices, "find", time.Now())

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("services: find: %w", err)
	}

	services := []models.Service{}
	if err := cur.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("services: decode: %w", err)
	}
	return services, nil
}

// FindByID returns the service with the given hex id or ErrNotFound.
func (r *ServiceRepository) FindByID(ctx context.Context, id string) (models.Service, error) {
	defer metrics.ObserveStoreOp(ColServices, "find", time.Now())

	oid, err := parseID(id)
	if err != nil {
		return models.Service{}, err
	}

	var service models.Service
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&service); err != nil {
		return models.Service{}, notFound(err)
	}
	return service, nil
}

// Delete removes the service with the given hex id and returns it.
func (r *ServiceRepository) Delete(ctx context.Context, id string) (models.Service, error) {
	defer metrics.ObserveStoreOp(ColServices, "delete", time.Now())

	oid, err := parseID(id)
	if err != nil {
		return models.Service{}, err
	}

	var service models.Service
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&service); err != nil {
		return models.Service{}, notFound(err)
	}
	return service, nil
}
