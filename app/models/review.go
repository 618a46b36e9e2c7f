package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is append-only: there is no update or delete path. Email is the
// author's verified email stamped at creation.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Comment   string             `bson:"comment" json:"comment"`
	Rating    int                `bson:"rating" json:"rating"`
	Email     string             `bson:"email" json:"email"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
