package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionRoles = "roles"

// RoleRepository persists (identity, role) memberships as one document per
// grant, upserted so repeated grants stay idempotent.
type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(collectionRoles)}
}

func (r *RoleRepository) Grant(ctx context.Context, identity, role string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"identity": identity, "role": role}
	update := bson.M{"$setOnInsert": filter}
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

func (r *RoleRepository) Has(ctx context.Context, identity, role string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"identity": identity, "role": role})
	if err != nil {
		return false, fmt.Errorf("role lookup: %w", err)
	}
	return n > 0, nil
}

// EnsureIndexes creates the unique membership index.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "identity", Value: 1}, {Key: "role", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
