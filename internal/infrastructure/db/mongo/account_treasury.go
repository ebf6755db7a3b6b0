package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionAccounts = "accounts"

// AccountTreasury implements ports.Treasury over an accounts collection.
// Transfer credits the recipient's balance; the amount was already debited
// from escrow by the ledger core before this call.
type AccountTreasury struct {
	col *mongo.Collection
}

func NewAccountTreasury(db *mongo.Database) *AccountTreasury {
	return &AccountTreasury{col: db.Collection(collectionAccounts)}
}

func (t *AccountTreasury) Transfer(ctx context.Context, recipient string, amount int64) error {
	if recipient == "" || amount <= 0 {
		return fmt.Errorf("transfer: invalid recipient %q or amount %d", recipient, amount)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := t.col.UpdateOne(ctx,
		bson.M{"_id": recipient},
		bson.M{"$inc": bson.M{"balance": amount}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("transfer %d to %s: %w", amount, recipient, err)
	}
	return nil
}

// Balance returns the current credited balance for an identity.
func (t *AccountTreasury) Balance(ctx context.Context, identity string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var account struct {
		Balance int64 `bson:"balance"`
	}
	err := t.col.FindOne(ctx, bson.M{"_id": identity}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}
	return account.Balance, nil
}
