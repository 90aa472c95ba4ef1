package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adilet23/Friend_Circle/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FriendshipRepository is the per-owner ledger of confirmed friendships.
// A relationship is two documents, one under each owner.
type FriendshipRepository struct {
	collection *mongo.Collection
}

// NewFriendshipRepository creates a new instance of FriendshipRepository.
func NewFriendshipRepository(db *mongo.Database) *FriendshipRepository {
	return &FriendshipRepository{
		collection: db.Collection("friends"),
	}
}

// Append adds a friendship record under the owner and returns its slot ID.
func (r *FriendshipRepository) Append(ctx context.Context, friendship *models.Friendship) (primitive.ObjectID, error) {
	friendship.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, friendship)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to append friendship: %v", err)
	}

	slotID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("failed to cast inserted ID")
	}
	friendship.ID = slotID

	logrus.WithFields(logrus.Fields{
		"ownerID":  friendship.OwnerID.Hex(),
		"friendID": friendship.FriendID.Hex(),
		"slotID":   slotID.Hex(),
	}).Info("Friendship appended")
	return slotID, nil
}

// List returns the owner's confirmed friendships.
func (r *FriendshipRepository) List(ctx context.Context, owner primitive.ObjectID) ([]models.Friendship, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": owner})
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %v", err)
	}
	defer cursor.Close(ctx)

	friendships := []models.Friendship{}
	for cursor.Next(ctx) {
		var friendship models.Friendship
		if err := cursor.Decode(&friendship); err != nil {
			return nil, fmt.Errorf("failed to decode friendship: %v", err)
		}
		friendships = append(friendships, friendship)
	}

	return friendships, cursor.Err()
}

// All returns every friendship document. Used by the consistency sweeper.
func (r *FriendshipRepository) All(ctx context.Context) ([]models.Friendship, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list all friendships: %v", err)
	}
	defer cursor.Close(ctx)

	var friendships []models.Friendship
	for cursor.Next(ctx) {
		var friendship models.Friendship
		if err := cursor.Decode(&friendship); err != nil {
			return nil, fmt.Errorf("failed to decode friendship: %v", err)
		}
		friendships = append(friendships, friendship)
	}

	return friendships, cursor.Err()
}

// GetBySlot fetches a single friendship by owner and slot. A miss returns nil, nil.
func (r *FriendshipRepository) GetBySlot(ctx context.Context, owner, slot primitive.ObjectID) (*models.Friendship, error) {
	var friendship models.Friendship
	err := r.collection.FindOne(ctx, bson.M{"_id": slot, "owner_id": owner}).Decode(&friendship)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friendship: %v", err)
	}
	return &friendship, nil
}

// Has reports whether owner already has a friendship naming the counterpart.
func (r *FriendshipRepository) Has(ctx context.Context, owner, friend primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": owner, "friend_id": friend})
	if err != nil {
		return false, fmt.Errorf("failed to count friendships: %v", err)
	}
	return count > 0, nil
}

// RemoveBySlot deletes the friendship at the given slot. Deleting an absent
// slot is not an error.
func (r *FriendshipRepository) RemoveBySlot(ctx context.Context, owner, slot primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": slot, "owner_id": owner})
	if err != nil {
		return fmt.Errorf("failed to remove friendship: %v", err)
	}
	return nil
}

// RemoveByFriend deletes every friendship under owner that names the
// counterpart, and reports how many were removed.
func (r *FriendshipRepository) RemoveByFriend(ctx context.Context, owner, friend primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"owner_id": owner, "friend_id": friend})
	if err != nil {
		return 0, fmt.Errorf("failed to remove friendships by counterpart: %v", err)
	}
	return result.DeletedCount, nil
}

// Watch streams the owner's full friend list to onChange after every change
// to the ledger. It blocks until ctx is cancelled or the stream fails.
func (r *FriendshipRepository) Watch(ctx context.Context, owner primitive.ObjectID, onChange func([]models.Friendship)) error {
	stream, err := r.collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("failed to open change stream: %v", err)
	}
	defer stream.Close(ctx)

	for stream.Next(ctx) {
		friendships, err := r.List(ctx, owner)
		if err != nil {
			logrus.WithError(err).Warn("Failed to relist friendships after change event")
			continue
		}
		onChange(friendships)
	}

	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("change stream failed: %v", err)
	}
	return nil
}
