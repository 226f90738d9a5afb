package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs fn so that every store write made with the ctx it receives
// commits together or not at all
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTransactor struct {
	client ClientHelper
}

// NewTransactor returns a Transactor backed by mongo sessions. The deployment
// must be a replica set for transactions to be available.
func NewTransactor(client ClientHelper) Transactor {
	return &mongoTransactor{client: client}
}

func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
