package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendRequest is a pending inbound request living in the recipient's ledger.
// The document ID is the request's slot within that ledger.
type FriendRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"request_id"`
	RecipientID    primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	SenderID       primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	SenderUsername string             `bson:"sender_username" json:"sender_username"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// Friendship is one side of a confirmed relationship. Every accepted pair
// produces two Friendship documents, one under each owner, correlated by
// RequestID.
type Friendship struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"friend_slot_id"`
	OwnerID   primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	FriendID  primitive.ObjectID `bson:"friend_id" json:"friend_id"`
	RequestID primitive.ObjectID `bson:"request_id" json:"request_id"`
	Username  string             `bson:"username" json:"username"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
