package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tenantly/tenantly-api/internal/model"
)

// ProjectRepository defines the interface for project operations.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) (*model.Project, error)
	ListProjectsByAccountID(ctx context.Context, accountID bson.ObjectID) ([]*model.Project, error)
}

const projectCollection = "projects"

type projectMongoRepository struct {
	db *mongo.Database
}

// NewProjectMongoRepository creates a new MongoDB repository for projects.
func NewProjectMongoRepository(db *mongo.Database) ProjectRepository {
	return &projectMongoRepository{db: db}
}

func (r *projectMongoRepository) CreateProject(ctx context.Context, project *model.Project) (*model.Project, error) {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	result, err := r.db.Collection(projectCollection).InsertOne(ctx, project)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		project.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return project, nil
}

func (r *projectMongoRepository) ListProjectsByAccountID(
	ctx context.Context,
	accountID bson.ObjectID,
) ([]*model.Project, error) {
	cursor, err := r.db.Collection(projectCollection).Find(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var projects []*model.Project
	for cursor.Next(ctx) {
		var project model.Project
		if err := cursor.Decode(&project); err != nil {
			return nil, err
		}
		projects = append(projects, &project)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}
