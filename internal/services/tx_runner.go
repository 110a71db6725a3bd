package services

import (
	"context"

	"tripsalama/pkg/database"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner executes fn atomically: every repository call made with the ctx
// passed to fn commits or aborts as one unit. The wallet service uses it to
// keep balance mutations and their audit rows together.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTxRunner struct {
	db *database.MongoDB
}

func NewMongoTxRunner(db *database.MongoDB) TxRunner {
	return &mongoTxRunner{db: db}
}

func (r *mongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := r.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
