package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Adilet23/Friend_Circle/internal/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes the MongoDB connection and verifies it with a ping.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %v", err)
	}

	logrus.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return client.Database(cfg.MongoDB), nil
}

// EnsureIndexes creates the unique constraints the ledgers rely on:
// one account per email and per username, and at most one pending request
// per (sender, recipient) ordered pair.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := db.Collection("users")
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %v", err)
	}

	requests := db.Collection("friend_requests")
	_, err = requests.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sender_id", Value: 1}, {Key: "recipient_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "recipient_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create friend_request indexes: %v", err)
	}

	friends := db.Collection("friends")
	_, err = friends.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "friend_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create friends indexes: %v", err)
	}

	logrus.Info("MongoDB indexes ensured")
	return nil
}

// TxnRunner executes a function atomically against the backend.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SessionTxnRunner runs the function inside a MongoDB session transaction.
// All writes either commit together or abort together.
type SessionTxnRunner struct {
	client *mongo.Client
}

func NewSessionTxnRunner(db *mongo.Database) *SessionTxnRunner {
	return &SessionTxnRunner{client: db.Client()}
}

func (r *SessionTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		return fmt.Errorf("transaction aborted: %v", err)
	}
	return nil
}

// SequentialTxnRunner executes the function directly, with no atomicity.
// Used on standalone Mongo deployments where transactions are unavailable;
// the consistency sweeper covers the partial-failure window.
type SequentialTxnRunner struct{}

func (SequentialTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
