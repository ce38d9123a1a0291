// internal/app/system/identity/mongo.go
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/mobilizabr/mobiliza/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// MongoProvider stores accounts in the auth_accounts collection with
// bcrypt-hashed passwords. Account IDs are random UUIDs, not ObjectIDs, so
// they stay opaque to the rest of the application.
type MongoProvider struct {
	col *mongo.Collection
}

// NewMongoProvider creates a provider over the given database.
func NewMongoProvider(db *mongo.Database) *MongoProvider {
	return &MongoProvider{col: db.Collection("auth_accounts")}
}

var _ Provider = (*MongoProvider)(nil)

func (p *MongoProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	acct := models.AuthAccount{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := p.col.InsertOne(ctx, acct); err != nil {
		if wafflemongo.IsDup(err) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("insert account: %w", err)
	}
	return acct.ID, nil
}

func (p *MongoProvider) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	var acct models.AuthAccount
	err := p.col.FindOne(ctx, bson.M{"email": email}).Decode(&acct)
	if err == mongo.ErrNoDocuments {
		// Burn a hash comparison anyway so unknown emails take as long
		// as wrong passwords.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", fmt.Errorf("find account: %w", err)
	}

	if bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)) != nil {
		return "", ErrBadCredentials
	}
	return acct.ID, nil
}

func (p *MongoProvider) UpdateEmail(ctx context.Context, accountID, newEmail string) error {
	res, err := p.col.UpdateOne(ctx,
		bson.M{"_id": accountID},
		bson.M{"$set": bson.M{"email": newEmail, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("update account email: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *MongoProvider) UpdatePassword(ctx context.Context, accountID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	res, err := p.col.UpdateOne(ctx,
		bson.M{"_id": accountID},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update account password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *MongoProvider) EmailByID(ctx context.Context, accountID string) (string, error) {
	var acct models.AuthAccount
	err := p.col.FindOne(ctx, bson.M{"_id": accountID}).Decode(&acct)
	if err == mongo.ErrNoDocuments {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find account: %w", err)
	}
	return acct.Email, nil
}

func (p *MongoProvider) Delete(ctx context.Context, accountID string) error {
	if _, err := p.col.DeleteOne(ctx, bson.M{"_id": accountID}); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// dummyHash is a bcrypt hash of an unguessable value, used only for constant
// work on unknown-email logins.
var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	return h
}()
