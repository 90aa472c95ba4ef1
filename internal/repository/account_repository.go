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

// ErrDuplicateAccount is returned when an insert collides with the unique
// email or username index.
var ErrDuplicateAccount = errors.New("account already exists")

// AccountRepository handles database operations on the account directory.
type AccountRepository struct {
	collection *mongo.Collection
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		collection: db.Collection("users"),
	}
}

// Insert registers a new account record.
func (r *AccountRepository) Insert(ctx context.Context, account *models.Account) (*models.Account, error) {
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			logrus.WithField("username", account.Username).Warn("Duplicate account insert rejected")
			return nil, ErrDuplicateAccount
		}
		logrus.WithError(err).Error("Failed to insert account into database")
		return nil, fmt.Errorf("failed to insert account: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	account.ID = insertedID

	logrus.WithField("accountID", account.ID.Hex()).Info("Account inserted successfully")
	return account, nil
}

// FindByEmail retrieves an account by email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logrus.WithFields(logrus.Fields{
			"email": email,
			"error": err,
		}).Warn("Failed to find account by email")
		return nil, fmt.Errorf("failed to find account by email: %v", err)
	}
	return &account, nil
}

// FindByID retrieves an account by its identity.
func (r *AccountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logrus.WithFields(logrus.Fields{
			"accountID": id.Hex(),
			"error":     err,
		}).Warn("Failed to find account by ID")
		return nil, fmt.Errorf("failed to find account by id: %v", err)
	}
	return &account, nil
}

// FindByUsername returns every account whose username matches exactly.
// A miss is an empty slice, never an error.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) ([]models.Account, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"username": username})
	if err != nil {
		return nil, fmt.Errorf("failed to search accounts: %v", err)
	}
	defer cursor.Close(ctx)

	accounts := []models.Account{}
	for cursor.Next(ctx) {
		var account models.Account
		if err := cursor.Decode(&account); err != nil {
			return nil, fmt.Errorf("failed to decode account: %v", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, cursor.Err()
}

// All returns every account in the directory.
func (r *AccountRepository) All(ctx context.Context) ([]models.Account, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %v", err)
	}
	defer cursor.Close(ctx)

	var accounts []models.Account
	for cursor.Next(ctx) {
		var account models.Account
		if err := cursor.Decode(&account); err != nil {
			return nil, fmt.Errorf("failed to decode account: %v", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, cursor.Err()
}
