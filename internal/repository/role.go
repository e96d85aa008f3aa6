package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tenantly/tenantly-api/internal/model"
)

// RoleRepository defines the interface for role lookup and assignment.
type RoleRepository interface {
	GetRoleByName(ctx context.Context, name model.RoleName) (*model.Role, error)
	AssignRole(ctx context.Context, accountID, roleID bson.ObjectID) error
	ListAccountRoles(ctx context.Context, accountID bson.ObjectID) ([]*model.AccountRole, error)
}

const (
	roleCollection        = "roles"
	accountRoleCollection = "account_roles"
)

type roleMongoRepository struct {
	db *mongo.Database
}

// NewRoleMongoRepository creates a new MongoDB repository for roles and
// seeds the built-in role set.
func NewRoleMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) RoleRepository {
	collection := db.Collection(roleCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create role indexes")
	}

	for _, name := range []model.RoleName{model.RoleAdmin, model.RoleMember} {
		now := time.Now()
		_, err := collection.UpdateOne(
			ctx,
			bson.M{"name": name},
			bson.M{
				"$setOnInsert": bson.M{"name": name, "created_at": now, "updated_at": now},
			},
			options.UpdateOne().SetUpsert(true),
		)
		if err != nil {
			logger.Fatal().Err(err).Str("role", string(name)).Msg("failed to seed role")
		}
	}

	return &roleMongoRepository{db: db}
}

func (r *roleMongoRepository) GetRoleByName(ctx context.Context, name model.RoleName) (*model.Role, error) {
	var role model.Role
	err := r.db.Collection(roleCollection).FindOne(ctx, bson.M{"name": name}).Decode(&role)
	if err != nil {
		return nil, err
	}

	return &role, nil
}

func (r *roleMongoRepository) AssignRole(ctx context.Context, accountID, roleID bson.ObjectID) error {
	_, err := r.db.Collection(accountRoleCollection).InsertOne(ctx, &model.AccountRole{
		AccountID: accountID,
		RoleID:    roleID,
		CreatedAt: time.Now(),
	})
	return err
}

func (r *roleMongoRepository) ListAccountRoles(
	ctx context.Context,
	accountID bson.ObjectID,
) ([]*model.AccountRole, error) {
	cursor, err := r.db.Collection(accountRoleCollection).Find(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []*model.AccountRole
	for cursor.Next(ctx) {
		var assignment model.AccountRole
		if err := cursor.Decode(&assignment); err != nil {
			return nil, err
		}
		assignments = append(assignments, &assignment)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}
