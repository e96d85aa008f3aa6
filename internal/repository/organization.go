package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tenantly/tenantly-api/internal/model"
)

// OrganizationRepository defines the interface for organization operations.
type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, organization *model.Organization) (*model.Organization, error)
	GetOrganization(ctx context.Context, id string) (*model.Organization, error)
}

const organizationCollection = "organizations"

type organizationMongoRepository struct {
	db *mongo.Database
}

// NewOrganizationMongoRepository creates a new MongoDB repository for organizations.
func NewOrganizationMongoRepository(db *mongo.Database) OrganizationRepository {
	return &organizationMongoRepository{db: db}
}

func (r *organizationMongoRepository) CreateOrganization(
	ctx context.Context,
	organization *model.Organization,
) (*model.Organization, error) {
	now := time.Now()
	organization.CreatedAt = now
	organization.UpdatedAt = now

	result, err := r.db.Collection(organizationCollection).InsertOne(ctx, organization)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		organization.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return organization, nil
}

func (r *organizationMongoRepository) GetOrganization(ctx context.Context, id string) (*model.Organization, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var organization model.Organization
	err = r.db.Collection(organizationCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&organization)
	if err != nil {
		return nil, err
	}

	return &organization, nil
}
