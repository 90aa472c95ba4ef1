package services

import (
	"context"
	"fmt"

	"github.com/Adilet23/Friend_Circle/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestLedger is the pending-request surface the coordinator depends on.
type RequestLedger interface {
	Append(ctx context.Context, req *models.FriendRequest) (primitive.ObjectID, error)
	ListInbound(ctx context.Context, owner primitive.ObjectID) ([]models.FriendRequest, error)
	ListOutbound(ctx context.Context, sender primitive.ObjectID) ([]models.FriendRequest, error)
	Get(ctx context.Context, owner, slot primitive.ObjectID) (*models.FriendRequest, error)
	Remove(ctx context.Context, owner, slot primitive.ObjectID) error
	RemoveBySender(ctx context.Context, owner, sender primitive.ObjectID) (int64, error)
	HasPending(ctx context.Context, sender, recipient primitive.ObjectID) (bool, error)
	Watch(ctx context.Context, owner primitive.ObjectID, onChange func([]models.FriendRequest)) error
}

// FriendshipLedger is the confirmed-friendship surface the coordinator
// depends on.
type FriendshipLedger interface {
	Append(ctx context.Context, friendship *models.Friendship) (primitive.ObjectID, error)
	List(ctx context.Context, owner primitive.ObjectID) ([]models.Friendship, error)
	GetBySlot(ctx context.Context, owner, slot primitive.ObjectID) (*models.Friendship, error)
	Has(ctx context.Context, owner, friend primitive.ObjectID) (bool, error)
	RemoveBySlot(ctx context.Context, owner, slot primitive.ObjectID) error
	RemoveByFriend(ctx context.Context, owner, friend primitive.ObjectID) (int64, error)
	Watch(ctx context.Context, owner primitive.ObjectID, onChange func([]models.Friendship)) error
}

// TxnRunner executes a function atomically against the backend.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// FriendService coordinates the friend-request and friendship ledgers.
//
// Per ordered pair (A, B) the relationship moves through
//
//	NONE -> PENDING(A->B) -> FRIENDS(A,B) -> NONE
//
// and the multi-document transitions (accept, remove) run inside the
// transaction runner so both sides of a pair commit or abort together.
type FriendService struct {
	requests RequestLedger
	friends  FriendshipLedger
	accounts AccountStore
	txn      TxnRunner
}

// NewFriendService creates a new FriendService.
func NewFriendService(requests RequestLedger, friends FriendshipLedger, accounts AccountStore, txn TxnRunner) *FriendService {
	return &FriendService{
		requests: requests,
		friends:  friends,
		accounts: accounts,
		txn:      txn,
	}
}

// Send creates a pending request from sender to the recipient. A request is
// refused when the pair is already pending (either direction) or already
// friends.
func (s *FriendService) Send(ctx context.Context, sender *models.Account, recipientID primitive.ObjectID) (*models.FriendRequest, error) {
	if sender.ID == recipientID {
		return nil, fmt.Errorf("cannot send a friend request to yourself")
	}

	recipient, err := s.accounts.FindByID(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipient: %v", err)
	}
	if recipient == nil {
		return nil, fmt.Errorf("recipient not found")
	}

	alreadyFriends, err := s.friends.Has(ctx, sender.ID, recipientID)
	if err != nil {
		return nil, err
	}
	if alreadyFriends {
		return nil, fmt.Errorf("already friends with %s", recipient.Username)
	}

	for _, pair := range [][2]primitive.ObjectID{
		{sender.ID, recipientID},
		{recipientID, sender.ID},
	} {
		pending, err := s.requests.HasPending(ctx, pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		if pending {
			return nil, fmt.Errorf("a friend request between you and %s is already pending", recipient.Username)
		}
	}

	request := &models.FriendRequest{
		RecipientID:    recipientID,
		SenderID:       sender.ID,
		SenderUsername: sender.Username,
	}
	if _, err := s.requests.Append(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

// Accept confirms a pending request addressed to me. Four effects, committed
// atomically: a friendship row under me, the mirror row under the sender,
// deletion of the accepted request, and deletion of any reverse pending
// request the sender still has from me. Returns my new friendship slot.
func (s *FriendService) Accept(ctx context.Context, me *models.Account, requestID primitive.ObjectID) (primitive.ObjectID, error) {
	request, err := s.requests.Get(ctx, me.ID, requestID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if request == nil {
		return primitive.NilObjectID, fmt.Errorf("friend request not found")
	}

	var mySlot primitive.ObjectID
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		mine := &models.Friendship{
			OwnerID:   me.ID,
			FriendID:  request.SenderID,
			RequestID: request.ID,
			Username:  request.SenderUsername,
		}
		slot, err := s.friends.Append(ctx, mine)
		if err != nil {
			return err
		}
		mySlot = slot

		theirs := &models.Friendship{
			OwnerID:   request.SenderID,
			FriendID:  me.ID,
			RequestID: request.ID,
			Username:  me.Username,
		}
		if _, err := s.friends.Append(ctx, theirs); err != nil {
			return err
		}

		if err := s.requests.Remove(ctx, me.ID, request.ID); err != nil {
			return err
		}

		if _, err := s.requests.RemoveBySender(ctx, request.SenderID, me.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"accountID": me.ID.Hex(),
			"requestID": requestID.Hex(),
			"error":     err,
		}).Error("Failed to accept friend request")
		return primitive.NilObjectID, err
	}

	logrus.WithFields(logrus.Fields{
		"accountID": me.ID.Hex(),
		"friendID":  request.SenderID.Hex(),
	}).Info("Friend request accepted")
	return mySlot, nil
}

// Reject deletes a pending request from my inbound ledger. Rejecting an
// already-absent request succeeds.
func (s *FriendService) Reject(ctx context.Context, me *models.Account, requestID primitive.ObjectID) error {
	if err := s.requests.Remove(ctx, me.ID, requestID); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"accountID": me.ID.Hex(),
		"requestID": requestID.Hex(),
	}).Info("Friend request rejected")
	return nil
}

// Remove deletes both sides of a friendship given my slot ID. Removing an
// already-absent slot succeeds. The counterpart side is resolved by identity
// and every match is deleted.
func (s *FriendService) Remove(ctx context.Context, me *models.Account, slotID primitive.ObjectID) error {
	friendship, err := s.friends.GetBySlot(ctx, me.ID, slotID)
	if err != nil {
		return err
	}
	if friendship == nil {
		return nil
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.friends.RemoveBySlot(ctx, me.ID, slotID); err != nil {
			return err
		}
		if _, err := s.friends.RemoveByFriend(ctx, friendship.FriendID, me.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"accountID": me.ID.Hex(),
			"friendID":  friendship.FriendID.Hex(),
			"error":     err,
		}).Error("Failed to remove friend")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"accountID": me.ID.Hex(),
		"friendID":  friendship.FriendID.Hex(),
	}).Info("Friendship removed")
	return nil
}

// Inbound returns my pending inbound requests.
func (s *FriendService) Inbound(ctx context.Context, me primitive.ObjectID) ([]models.FriendRequest, error) {
	return s.requests.ListInbound(ctx, me)
}

// Outbound returns the pending requests I have sent.
func (s *FriendService) Outbound(ctx context.Context, me primitive.ObjectID) ([]models.FriendRequest, error) {
	return s.requests.ListOutbound(ctx, me)
}

// Friends returns my confirmed friendships.
func (s *FriendService) Friends(ctx context.Context, me primitive.ObjectID) ([]models.Friendship, error) {
	return s.friends.List(ctx, me)
}

// Search looks up accounts by exact username and filters out myself plus
// anyone already related to me: pending-sent, pending-received, or friends.
func (s *FriendService) Search(ctx context.Context, me *models.Account, username string) ([]models.PublicAccount, error) {
	matches, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	exclude := map[primitive.ObjectID]bool{me.ID: true}

	outbound, err := s.requests.ListOutbound(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	for _, req := range outbound {
		exclude[req.RecipientID] = true
	}

	inbound, err := s.requests.ListInbound(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	for _, req := range inbound {
		exclude[req.SenderID] = true
	}

	friendships, err := s.friends.List(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	for _, friendship := range friendships {
		exclude[friendship.FriendID] = true
	}

	results := []models.PublicAccount{}
	for _, account := range matches {
		if exclude[account.ID] {
			continue
		}
		results = append(results, account.Public())
	}
	return results, nil
}

// SubscribeInbound starts a live subscription on my inbound requests.
// onChange receives the full current sequence after every ledger change.
// Calling the returned cancel stops further invocations.
func (s *FriendService) SubscribeInbound(ctx context.Context, me primitive.ObjectID, onChange func([]models.FriendRequest)) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		if err := s.requests.Watch(ctx, me, onChange); err != nil {
			logrus.WithFields(logrus.Fields{
				"accountID": me.Hex(),
				"error":     err,
			}).Warn("Inbound request subscription ended")
		}
	}()
	return cancel
}

// SubscribeFriends starts a live subscription on my friend list, with the
// same cancellation contract as SubscribeInbound.
func (s *FriendService) SubscribeFriends(ctx context.Context, me primitive.ObjectID, onChange func([]models.Friendship)) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		if err := s.friends.Watch(ctx, me, onChange); err != nil {
			logrus.WithFields(logrus.Fields{
				"accountID": me.Hex(),
				"error":     err,
			}).Warn("Friend list subscription ended")
		}
	}()
	return cancel
}
