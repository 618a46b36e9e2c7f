package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the order lifecycle state. Status only moves forward
// through Transition; an order is created as StatusPending.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusApproved  OrderStatus = "approved"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var ErrBadTransition = errors.New("invalid status transition")

// transitions maps each status to the set it may move to.
// completed and cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusApproved: {StatusCompleted, StatusCancelled},
}

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Transition validates a move from s to next.
func (s OrderStatus) Transition(next OrderStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrBadTransition, string(next))
	}
	for _, allowed := range transitions[s] {
		if next == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrBadTransition, s, next)
}

// Order references a Service and carries the ordering customer's verified
// email as its ownership stamp.
type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ServiceID primitive.ObjectID `bson:"service_id" json:"service_id"`
	Email     string             `bson:"email" json:"email"`
	Status    OrderStatus        `bson:"status" json:"status"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// ServiceSummary is the subset of Service fields expanded into order listings.
type ServiceSummary struct {
	Title       string  `bson:"title" json:"title"`
	Description string  `bson:"description" json:"description"`
	Price       float64 `bson:"price" json:"price"`
}

// OrderWithService is an Order with its referenced service expanded.
type OrderWithService struct {
	Order   `bson:",inline"`
	Service *ServiceSummary `bson:"service,omitempty" json:"service,omitempty"`
}
