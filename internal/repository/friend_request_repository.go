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

// ErrDuplicateRequest is returned when a pending request for the same
// (sender, recipient) pair already exists.
var ErrDuplicateRequest = errors.New("friend request already pending")

// FriendRequestRepository is the per-recipient ledger of pending inbound
// requests. A request's slot is its document ID.
type FriendRequestRepository struct {
	collection *mongo.Collection
}

// NewFriendRequestRepository creates a new instance of FriendRequestRepository.
func NewFriendRequestRepository(db *mongo.Database) *FriendRequestRepository {
	return &FriendRequestRepository{
		collection: db.Collection("friend_requests"),
	}
}

// Append adds a pending request under the recipient and returns its slot ID.
func (r *FriendRequestRepository) Append(ctx context.Context, req *models.FriendRequest) (primitive.ObjectID, error) {
	req.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateRequest
		}
		return primitive.NilObjectID, fmt.Errorf("failed to append friend request: %v", err)
	}

	slotID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("failed to cast inserted ID")
	}
	req.ID = slotID

	logrus.WithFields(logrus.Fields{
		"senderID":    req.SenderID.Hex(),
		"recipientID": req.RecipientID.Hex(),
		"requestID":   slotID.Hex(),
	}).Info("Friend request appended")
	return slotID, nil
}

// ListInbound returns the pending requests addressed to the owner.
func (r *FriendRequestRepository) ListInbound(ctx context.Context, owner primitive.ObjectID) ([]models.FriendRequest, error) {
	return r.list(ctx, bson.M{"recipient_id": owner})
}

// ListOutbound returns the pending requests the sender has issued.
func (r *FriendRequestRepository) ListOutbound(ctx context.Context, sender primitive.ObjectID) ([]models.FriendRequest, error) {
	return r.list(ctx, bson.M{"sender_id": sender})
}

func (r *FriendRequestRepository) list(ctx context.Context, filter bson.M) ([]models.FriendRequest, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %v", err)
	}
	defer cursor.Close(ctx)

	requests := []models.FriendRequest{}
	for cursor.Next(ctx) {
		var req models.FriendRequest
		if err := cursor.Decode(&req); err != nil {
			return nil, fmt.Errorf("failed to decode friend request: %v", err)
		}
		requests = append(requests, req)
	}

	return requests, cursor.Err()
}

// Get fetches a single request by owner and slot. A miss returns nil, nil.
func (r *FriendRequestRepository) Get(ctx context.Context, owner, slot primitive.ObjectID) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": slot, "recipient_id": owner}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friend request: %v", err)
	}
	return &req, nil
}

// Remove deletes the pending request at the given slot. Deleting an absent
// slot is not an error.
func (r *FriendRequestRepository) Remove(ctx context.Context, owner, slot primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": slot, "recipient_id": owner})
	if err != nil {
		return fmt.Errorf("failed to remove friend request: %v", err)
	}
	return nil
}

// RemoveBySender deletes every pending request under owner that was sent by
// the given sender, and reports how many were removed.
func (r *FriendRequestRepository) RemoveBySender(ctx context.Context, owner, sender primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"recipient_id": owner, "sender_id": sender})
	if err != nil {
		return 0, fmt.Errorf("failed to remove friend requests by sender: %v", err)
	}
	return result.DeletedCount, nil
}

// HasPending reports whether a pending request exists for the ordered pair.
func (r *FriendRequestRepository) HasPending(ctx context.Context, sender, recipient primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"sender_id": sender, "recipient_id": recipient})
	if err != nil {
		return false, fmt.Errorf("failed to count friend requests: %v", err)
	}
	return count > 0, nil
}

// Watch streams the owner's full inbound sequence to onChange after every
// change to the ledger. It blocks until ctx is cancelled or the stream fails.
func (r *FriendRequestRepository) Watch(ctx context.Context, owner primitive.ObjectID, onChange func([]models.FriendRequest)) error {
	stream, err := r.collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("failed to open change stream: %v", err)
	}
	defer stream.Close(ctx)

	for stream.Next(ctx) {
		requests, err := r.ListInbound(ctx, owner)
		if err != nil {
			logrus.WithError(err).Warn("Failed to relist inbound requests after change event")
			continue
		}
		onChange(requests)
	}

	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("change stream failed: %v", err)
	}
	return nil
}
