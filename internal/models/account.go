package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account represents a registered user in the social graph.
type Account struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Role           string             `bson:"role" json:"role"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// PublicAccount is the subset of Account safe to return to other users.
type PublicAccount struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
}

// Public strips the private fields from an account.
func (a *Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, Username: a.Username}
}
