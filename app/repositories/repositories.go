// Package repositories implements the document store access layer on the
// MongoDB driver. Every repository is constructed with its collection handle;
// nothing in this package holds global state.
package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a lookup, update, or delete target does not
// exist. Handlers translate it into a 404; it is never surfaced as a 200
// with a null body.
var ErrNotFound = errors.New("record not found")

// Collection names used across the app.
const (
	ColUsers    = "users"
	ColServices = "services"
	ColReviews  = "reviews"
	ColOrders   = "orders"
	ColLogs     = "request_logs"
)

// parseID converts a path parameter to an ObjectID. A malformed id behaves
// like a missing record.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

// notFound maps the driver's no-documents sentinel onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
