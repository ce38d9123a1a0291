package resettokenstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reset_tokens")}
}

// ErrInvalidToken covers every way a token can be unusable: unknown,
// expired, or already consumed. Callers show one generic message so the
// reset form never reveals which case it was.
var ErrInvalidToken = errors.New("reset token is invalid or expired")

// TTL is how long a reset token stays valid.
const TTL = time.Hour

// Issue creates a fresh single-use token for the account.
func (s *Store) Issue(ctx context.Context, accountID string) (models.ResetToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return models.ResetToken{}, fmt.Errorf("generate token: %w", err)
	}

	tok := models.ResetToken{
		Token:     hex.EncodeToString(buf),
		AccountID: accountID,
		ExpiresAt: time.Now().Add(TTL),
		CreatedAt: time.Now(),
	}
	if _, err := s.c.InsertOne(ctx, tok); err != nil {
		return models.ResetToken{}, err
	}
	return tok, nil
}

// Consume atomically marks a token used and returns the account it belongs
// to. The single findAndModify means a token can never be redeemed twice,
// even by concurrent requests.
func (s *Store) Consume(ctx context.Context, token string) (string, error) {
	var tok models.ResetToken
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{
			"_id":        token,
			"used":       false,
			"expires_at": bson.M{"$gt": time.Now()},
		},
		bson.M{"$set": bson.M{"used": true}},
	).Decode(&tok)
	if err == mongo.ErrNoDocuments {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return tok.AccountID, nil
}

// Peek checks a token without consuming it, so the reset form can refuse a
// dead link before the user types a new password.
func (s *Store) Peek(ctx context.Context, token string) error {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"_id":        token,
		"used":       false,
		"expires_at": bson.M{"$gt": time.Now()},
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidToken
	}
	return nil
}
