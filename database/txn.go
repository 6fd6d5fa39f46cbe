package database

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxnRunner runs a function inside one storage transaction. Repositories
// called with the supplied context participate in that transaction.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTxnRunner struct {
	client *mongo.Client
}

// NewTxnRunner returns a TxnRunner backed by a MongoDB causal session.
func NewTxnRunner(client *mongo.Client) TxnRunner {
	return &mongoTxnRunner{client: client}
}

func (r *mongoTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
