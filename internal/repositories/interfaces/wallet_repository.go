package interfaces

import (
	"context"

	"tripsalama/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WalletRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error)

	// GetOrCreate upserts the per-user row and re-reads it, relying on the
	// unique index on user_id to collapse concurrent creates.
	GetOrCreate(ctx context.Context, userID primitive.ObjectID, currency string) (*models.Wallet, error)

	// Credit adds amount to the balance and returns the updated wallet.
	// The wallet is lazily created if absent.
	Credit(ctx context.Context, userID primitive.ObjectID, amount float64, currency string) (*models.Wallet, error)

	// Debit subtracts amount in a single conditional update whose filter
	// requires balance >= amount. This is the only mutation path that lowers
	// a balance, so the balance can never go negative. Returns
	// ErrInsufficientFunds when the guard rejects the write and ErrNotFound
	// when no wallet exists.
	Debit(ctx context.Context, userID primitive.ObjectID, amount float64) (*models.Wallet, error)
}
