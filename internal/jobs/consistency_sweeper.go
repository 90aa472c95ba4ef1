package jobs

import (
	"context"
	"fmt"

	"github.com/Adilet23/Friend_Circle/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SweepLedger is the friendship surface the sweeper needs.
type SweepLedger interface {
	All(ctx context.Context) ([]models.Friendship, error)
	Has(ctx context.Context, owner, friend primitive.ObjectID) (bool, error)
	Append(ctx context.Context, friendship *models.Friendship) (primitive.ObjectID, error)
}

// SweepDirectory resolves usernames for repaired mirror rows.
type SweepDirectory interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
}

// ConsistencySweeper repairs friendships whose mirror row is missing.
// A partial failure during accept or remove can leave one side of a pair
// without the other; the sweeper re-inserts the missing side.
type ConsistencySweeper struct {
	Friends  SweepLedger
	Accounts SweepDirectory
}

// NewConsistencySweeper creates a new instance of ConsistencySweeper.
func NewConsistencySweeper(friends SweepLedger, accounts SweepDirectory) *ConsistencySweeper {
	return &ConsistencySweeper{Friends: friends, Accounts: accounts}
}

// RunSweep scans every friendship row and restores missing mirrors.
// It returns the number of repairs made.
func (s *ConsistencySweeper) RunSweep(ctx context.Context) (int, error) {
	all, err := s.Friends.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to scan friendships: %v", err)
	}

	repaired := 0
	seen := map[[2]primitive.ObjectID]bool{}

	for _, friendship := range all {
		key := [2]primitive.ObjectID{friendship.FriendID, friendship.OwnerID}
		if seen[key] {
			continue
		}
		seen[key] = true

		hasMirror, err := s.Friends.Has(ctx, friendship.FriendID, friendship.OwnerID)
		if err != nil {
			return repaired, err
		}
		if hasMirror {
			continue
		}

		owner, err := s.Accounts.FindByID(ctx, friendship.OwnerID)
		if err != nil {
			return repaired, err
		}
		if owner == nil {
			logrus.WithField("ownerID", friendship.OwnerID.Hex()).Warn("Friendship owner no longer exists, skipping repair")
			continue
		}

		mirror := &models.Friendship{
			OwnerID:   friendship.FriendID,
			FriendID:  friendship.OwnerID,
			RequestID: friendship.RequestID,
			Username:  owner.Username,
		}
		if _, err := s.Friends.Append(ctx, mirror); err != nil {
			return repaired, err
		}

		logrus.WithFields(logrus.Fields{
			"ownerID":  mirror.OwnerID.Hex(),
			"friendID": mirror.FriendID.Hex(),
		}).Info("Repaired missing friendship mirror")
		repaired++
	}

	if repaired > 0 {
		logrus.WithField("repaired", repaired).Warn("Consistency sweep made repairs")
	}
	return repaired, nil
}
