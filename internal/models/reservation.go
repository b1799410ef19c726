package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reservation is a table booking request.
type Reservation struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          *primitive.ObjectID `bson:"userId" json:"userId"`
	Name            string              `bson:"name" json:"name"`
	Email           string              `bson:"email" json:"email"`
	Phone           string              `bson:"phone" json:"phone"`
	Date            string              `bson:"date" json:"date"`
	Time            string              `bson:"time" json:"time"`
	Guests          int                 `bson:"guests" json:"guests"`
	SpecialRequests string              `bson:"specialRequests,omitempty" json:"specialRequests,omitempty"`
	Status          ReservationStatus   `bson:"status" json:"status"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}
