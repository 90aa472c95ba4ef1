package services

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/Adilet23/Friend_Circle/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// AccountStore is the account-directory surface the services depend on.
type AccountStore interface {
	Insert(ctx context.Context, account *models.Account) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	FindByUsername(ctx context.Context, username string) ([]models.Account, error)
	All(ctx context.Context) ([]models.Account, error)
}

// AccountService encapsulates signup and login logic.
type AccountService struct {
	accounts AccountStore
}

// NewAccountService creates a new instance of AccountService.
func NewAccountService(accounts AccountStore) *AccountService {
	return &AccountService{accounts: accounts}
}

// Register creates a new account after hashing the password. Username and
// email uniqueness are enforced by the directory's indexes.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	logrus.WithField("username", username).Info("Registering new account")

	if username == "" || email == "" || password == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, fmt.Errorf("missing required account fields")
	}

	if !emailRegex.MatchString(email) {
		logrus.WithField("email", email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("invalid email format")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	account := &models.Account{
		Username:       username,
		Email:          email,
		HashedPassword: string(hashedPwd),
		Role:           "user",
	}

	created, err := s.accounts.Insert(ctx, account)
	if err != nil {
		logrus.WithError(err).Error("Account registration failed")
		return nil, err
	}

	logrus.WithField("accountID", created.ID.Hex()).Info("Account registered successfully")
	return created, nil
}

// Authenticate verifies the email and password and returns the account if
// the credentials are valid.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	logrus.WithField("email", email).Info("Authenticating account")

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %v", err)
	}
	if account == nil {
		logrus.WithField("email", email).Warn("Account not found")
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, fmt.Errorf("invalid credentials")
	}

	logrus.WithField("accountID", account.ID.Hex()).Info("Account authenticated successfully")
	return account, nil
}

// Get retrieves an account by its hex identity.
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid account ID: %v", err)
	}

	account, err := s.accounts.FindByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %v", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account not found")
	}
	return account, nil
}

// GetAll returns every account. Admin use only.
func (s *AccountService) GetAll(ctx context.Context) ([]models.Account, error) {
	return s.accounts.All(ctx)
}
