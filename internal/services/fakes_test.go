package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/Adilet23/Friend_Circle/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory ledger fakes implementing the coordinator's interfaces. They
// keep documents in maps keyed by slot ID and support snapshot/restore so
// the fake transaction runner can roll back.

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[primitive.ObjectID]models.Account
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[primitive.ObjectID]models.Account{}}
}

func (f *fakeAccountStore) Insert(_ context.Context, account *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == account.Email {
			return nil, fmt.Errorf("account already exists")
		}
	}
	account.ID = primitive.NewObjectID()
	f.accounts[account.ID] = *account
	return account, nil
}

func (f *fakeAccountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			match := account
			return &match, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[id]; ok {
		match := account
		return &match, nil
	}
	return nil, nil
}

func (f *fakeAccountStore) FindByUsername(_ context.Context, username string) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matches := []models.Account{}
	for _, account := range f.accounts {
		if account.Username == username {
			matches = append(matches, account)
		}
	}
	return matches, nil
}

func (f *fakeAccountStore) All(_ context.Context) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := []models.Account{}
	for _, account := range f.accounts {
		all = append(all, account)
	}
	return all, nil
}

type fakeRequestLedger struct {
	mu     sync.Mutex
	docs   map[primitive.ObjectID]models.FriendRequest
	notify chan struct{}
}

func newFakeRequestLedger() *fakeRequestLedger {
	return &fakeRequestLedger{
		docs:   map[primitive.ObjectID]models.FriendRequest{},
		notify: make(chan struct{}, 16),
	}
}

func (f *fakeRequestLedger) snapshot() map[primitive.ObjectID]models.FriendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := map[primitive.ObjectID]models.FriendRequest{}
	for k, v := range f.docs {
		copied[k] = v
	}
	return copied
}

func (f *fakeRequestLedger) restore(snap map[primitive.ObjectID]models.FriendRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = snap
}

func (f *fakeRequestLedger) Append(_ context.Context, req *models.FriendRequest) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.docs {
		if existing.SenderID == req.SenderID && existing.RecipientID == req.RecipientID {
			return primitive.NilObjectID, fmt.Errorf("friend request already pending")
		}
	}
	req.ID = primitive.NewObjectID()
	f.docs[req.ID] = *req
	return req.ID, nil
}

func (f *fakeRequestLedger) ListInbound(_ context.Context, owner primitive.ObjectID) ([]models.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	requests := []models.FriendRequest{}
	for _, req := range f.docs {
		if req.RecipientID == owner {
			requests = append(requests, req)
		}
	}
	return requests, nil
}

func (f *fakeRequestLedger) ListOutbound(_ context.Context, sender primitive.ObjectID) ([]models.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	requests := []models.FriendRequest{}
	for _, req := range f.docs {
		if req.SenderID == sender {
			requests = append(requests, req)
		}
	}
	return requests, nil
}

func (f *fakeRequestLedger) Get(_ context.Context, owner, slot primitive.ObjectID) (*models.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req, ok := f.docs[slot]; ok && req.RecipientID == owner {
		match := req
		return &match, nil
	}
	return nil, nil
}

func (f *fakeRequestLedger) Remove(_ context.Context, owner, slot primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req, ok := f.docs[slot]; ok && req.RecipientID == owner {
		delete(f.docs, slot)
	}
	return nil
}

func (f *fakeRequestLedger) RemoveBySender(_ context.Context, owner, sender primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for slot, req := range f.docs {
		if req.RecipientID == owner && req.SenderID == sender {
			delete(f.docs, slot)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeRequestLedger) HasPending(_ context.Context, sender, recipient primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.docs {
		if req.SenderID == sender && req.RecipientID == recipient {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestLedger) Watch(ctx context.Context, owner primitive.ObjectID, onChange func([]models.FriendRequest)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-f.notify:
			requests, _ := f.ListInbound(ctx, owner)
			onChange(requests)
		}
	}
}

type fakeFriendshipLedger struct {
	mu     sync.Mutex
	docs   map[primitive.ObjectID]models.Friendship
	notify chan struct{}

	// failNextAppend makes the Nth upcoming Append fail; 0 disables.
	failNextAppend int
}

func newFakeFriendshipLedger() *fakeFriendshipLedger {
	return &fakeFriendshipLedger{
		docs:   map[primitive.ObjectID]models.Friendship{},
		notify: make(chan struct{}, 16),
	}
}

func (f *fakeFriendshipLedger) snapshot() map[primitive.ObjectID]models.Friendship {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := map[primitive.ObjectID]models.Friendship{}
	for k, v := range f.docs {
		copied[k] = v
	}
	return copied
}

func (f *fakeFriendshipLedger) restore(snap map[primitive.ObjectID]models.Friendship) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = snap
}

func (f *fakeFriendshipLedger) Append(_ context.Context, friendship *models.Friendship) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextAppend > 0 {
		f.failNextAppend--
		if f.failNextAppend == 0 {
			return primitive.NilObjectID, fmt.Errorf("backend write failed")
		}
	}
	friendship.ID = primitive.NewObjectID()
	f.docs[friendship.ID] = *friendship
	return friendship.ID, nil
}

func (f *fakeFriendshipLedger) List(_ context.Context, owner primitive.ObjectID) ([]models.Friendship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	friendships := []models.Friendship{}
	for _, friendship := range f.docs {
		if friendship.OwnerID == owner {
			friendships = append(friendships, friendship)
		}
	}
	return friendships, nil
}

func (f *fakeFriendshipLedger) GetBySlot(_ context.Context, owner, slot primitive.ObjectID) (*models.Friendship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if friendship, ok := f.docs[slot]; ok && friendship.OwnerID == owner {
		match := friendship
		return &match, nil
	}
	return nil, nil
}

func (f *fakeFriendshipLedger) Has(_ context.Context, owner, friend primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, friendship := range f.docs {
		if friendship.OwnerID == owner && friendship.FriendID == friend {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFriendshipLedger) RemoveBySlot(_ context.Context, owner, slot primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if friendship, ok := f.docs[slot]; ok && friendship.OwnerID == owner {
		delete(f.docs, slot)
	}
	return nil
}

func (f *fakeFriendshipLedger) RemoveByFriend(_ context.Context, owner, friend primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for slot, friendship := range f.docs {
		if friendship.OwnerID == owner && friendship.FriendID == friend {
			delete(f.docs, slot)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeFriendshipLedger) Watch(ctx context.Context, owner primitive.ObjectID, onChange func([]models.Friendship)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-f.notify:
			friendships, _ := f.List(ctx, owner)
			onChange(friendships)
		}
	}
}

// fakeTxnRunner snapshots both ledgers before running fn and restores them
// if fn fails, mimicking an aborted transaction.
type fakeTxnRunner struct {
	requests *fakeRequestLedger
	friends  *fakeFriendshipLedger
}

func (t *fakeTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	reqSnap := t.requests.snapshot()
	friendSnap := t.friends.snapshot()
	if err := fn(ctx); err != nil {
		t.requests.restore(reqSnap)
		t.friends.restore(friendSnap)
		return err
	}
	return nil
}
