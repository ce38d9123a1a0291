package resettokenstore_test

import (
	"errors"
	"testing"
	"time"

	resettokenstore "github.com/mobilizabr/mobiliza/internal/app/store/resettokens"
	"github.com/mobilizabr/mobiliza/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestIssueAndConsume(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := resettokenstore.New(db)
	tok, err := store.Issue(ctx, "account-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(tok.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(tok.Token))
	}

	if err := store.Peek(ctx, tok.Token); err != nil {
		t.Fatalf("Peek before consume: %v", err)
	}

	accountID, err := store.Consume(ctx, tok.Token)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if accountID != "account-1" {
		t.Errorf("accountID = %q", accountID)
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := resettokenstore.New(db)
	tok, err := store.Issue(ctx, "account-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := store.Consume(ctx, tok.Token); err != nil {
		t.Fatalf("first Consume: %v", err)
	}
	if _, err := store.Consume(ctx, tok.Token); !errors.Is(err, resettokenstore.ErrInvalidToken) {
		t.Fatalf("second Consume err = %v, want ErrInvalidToken", err)
	}
	if err := store.Peek(ctx, tok.Token); !errors.Is(err, resettokenstore.ErrInvalidToken) {
		t.Fatalf("Peek after consume err = %v, want ErrInvalidToken", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := resettokenstore.New(db)
	tok, err := store.Issue(ctx, "account-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Backdate the expiry instead of waiting.
	_, err = db.Collection("reset_tokens").UpdateOne(ctx,
		bson.M{"_id": tok.Token},
		bson.M{"$set": bson.M{"expires_at": time.Now().Add(-time.Minute)}},
	)
	if err != nil {
		t.Fatalf("backdate: %v", err)
	}

	if _, err := store.Consume(ctx, tok.Token); !errors.Is(err, resettokenstore.ErrInvalidToken) {
		t.Fatalf("Consume expired err = %v, want ErrInvalidToken", err)
	}
}

func TestConsumeUnknownToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := resettokenstore.New(db).Consume(ctx, "deadbeef"); !errors.Is(err, resettokenstore.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
