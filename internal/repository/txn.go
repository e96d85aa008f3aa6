package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// TxnManager runs a function inside a transaction. Every repository call
// made with the context passed to fn joins the transaction; the writes
// commit atomically when fn returns nil and roll back when it returns an
// error. A concurrent reader sees either none of the writes or all of them.
type TxnManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTxnManager struct {
	client *mongo.Client
}

// NewMongoTxnManager creates a TxnManager backed by MongoDB sessions.
func NewMongoTxnManager(client *mongo.Client) TxnManager {
	return &mongoTxnManager{client: client}
}

func (m *mongoTxnManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}
