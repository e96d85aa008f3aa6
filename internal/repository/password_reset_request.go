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

// PasswordResetRepository defines the interface for password reset request operations.
type PasswordResetRepository interface {
	// CreateRequest persists a new password reset request.
	CreateRequest(ctx context.Context, request *model.PasswordResetRequest) (*model.PasswordResetRequest, error)

	// GetRequestByHash retrieves a request by its hash.
	GetRequestByHash(ctx context.Context, hash string) (*model.PasswordResetRequest, error)

	// InvalidateRequestByHash flips is_valid to false. The transition is
	// one-way; a request is never made valid again.
	InvalidateRequestByHash(ctx context.Context, hash string) error

	// ListRequestsByAccountID returns every request ever created for an account.
	ListRequestsByAccountID(ctx context.Context, accountID string) ([]*model.PasswordResetRequest, error)
}

const passwordResetRequestCollection = "password_reset_requests"

type passwordResetMongoRepository struct {
	db *mongo.Database
}

// NewPasswordResetMongoRepository creates a new MongoDB repository for
// password reset requests.
func NewPasswordResetMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) PasswordResetRepository {
	collection := db.Collection(passwordResetRequestCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "account_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create password reset request indexes")
	}

	return &passwordResetMongoRepository{db: db}
}

func (r *passwordResetMongoRepository) CreateRequest(
	ctx context.Context,
	request *model.PasswordResetRequest,
) (*model.PasswordResetRequest, error) {
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now
	request.IsValid = true

	result, err := r.db.Collection(passwordResetRequestCollection).InsertOne(ctx, request)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		request.ID = objectID
	}

	return request, nil
}

func (r *passwordResetMongoRepository) GetRequestByHash(
	ctx context.Context,
	hash string,
) (*model.PasswordResetRequest, error) {
	var request model.PasswordResetRequest
	err := r.db.Collection(passwordResetRequestCollection).FindOne(ctx, bson.M{"hash": hash}).Decode(&request)
	if err != nil {
		return nil, err
	}

	return &request, nil
}

func (r *passwordResetMongoRepository) InvalidateRequestByHash(ctx context.Context, hash string) error {
	update := bson.M{
		"$set": bson.M{
			"is_valid":   false,
			"updated_at": time.Now(),
		},
	}

	_, err := r.db.Collection(passwordResetRequestCollection).UpdateOne(ctx, bson.M{"hash": hash}, update)
	return err
}

func (r *passwordResetMongoRepository) ListRequestsByAccountID(
	ctx context.Context,
	accountID string,
) ([]*model.PasswordResetRequest, error) {
	objectID, err := bson.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.db.Collection(passwordResetRequestCollection).Find(ctx, bson.M{"account_id": objectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []*model.PasswordResetRequest
	for cursor.Next(ctx) {
		var request model.PasswordResetRequest
		if err := cursor.Decode(&request); err != nil {
			return nil, err
		}
		requests = append(requests, &request)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}
