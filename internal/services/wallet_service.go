package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"tripsalama/internal/config"
	"tripsalama/internal/models"
	"tripsalama/internal/repositories/interfaces"
	"tripsalama/internal/utils"
	"tripsalama/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WalletService owns every balance mutation. Each credit or debit runs inside
// a database transaction together with exactly one ledger row, so the wallet
// balance and the completed-transaction sum move in lockstep and Reconcile
// can verify them against each other at any time.
type WalletService struct {
	walletRepo interfaces.WalletRepository
	txRepo     interfaces.TransactionRepository
	rideRepo   interfaces.RideRepository
	txRunner   TxRunner
	payment    *config.PaymentConfig
	logger     *logger.Logger
	now        func() time.Time
}

func NewWalletService(
	walletRepo interfaces.WalletRepository,
	txRepo interfaces.TransactionRepository,
	rideRepo interfaces.RideRepository,
	txRunner TxRunner,
	payment *config.PaymentConfig,
	log *logger.Logger,
) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		rideRepo:   rideRepo,
		txRunner:   txRunner,
		payment:    payment,
		logger:     log,
		now:        time.Now,
	}
}

func (s *WalletService) GetWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	return s.walletRepo.GetOrCreate(ctx, userID, s.payment.Currency)
}

func (s *WalletService) GetTransactions(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return s.txRepo.GetByUser(ctx, userID, params)
}

func (s *WalletService) GetStats(ctx context.Context, userID primitive.ObjectID) (*models.TransactionStats, error) {
	return s.txRepo.GetStats(ctx, userID)
}

// Topup credits the user's wallet from an external payment, bounded by the
// configured min/max amounts.
func (s *WalletService) Topup(ctx context.Context, userID primitive.ObjectID, amount float64, provider string) (*models.Transaction, error) {
	if amount < s.payment.MinTopupAmount || amount > s.payment.MaxTopupAmount {
		return nil, fmt.Errorf("topup amount %.2f outside [%.2f, %.2f]: %w",
			amount, s.payment.MinTopupAmount, s.payment.MaxTopupAmount, ErrValidation)
	}

	tx := s.newTransaction(userID, models.TransactionTypeTopup, amount, "wallet topup")
	tx.Provider = provider

	return tx, s.credit(ctx, userID, tx)
}

// Withdraw debits the user's wallet for an external payout. The daily cap is
// cumulative: today's completed withdrawals plus this one must stay within
// the configured limit.
func (s *WalletService) Withdraw(ctx context.Context, userID primitive.ObjectID, amount float64, provider string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive: %w", ErrValidation)
	}

	startOfDay := s.now().UTC().Truncate(24 * time.Hour)
	withdrawnToday, err := s.txRepo.SumWithdrawalsSince(ctx, userID, startOfDay)
	if err != nil {
		return nil, err
	}
	if withdrawnToday+amount > s.payment.MaxWithdrawalDaily {
		return nil, fmt.Errorf("withdrawal of %.2f would exceed the daily limit %.2f (%.2f already withdrawn today): %w",
			amount, s.payment.MaxWithdrawalDaily, withdrawnToday, ErrValidation)
	}

	tx := s.newTransaction(userID, models.TransactionTypeWithdrawal, -amount, "wallet withdrawal")
	tx.Provider = provider

	return tx, s.debit(ctx, userID, amount, tx)
}

// Tip moves amount from the passenger to the driver who drove the ride. The
// ride is resolved server-side: the caller must be its passenger and the ride
// must be completed, so tips cannot be routed to arbitrary accounts.
func (s *WalletService) Tip(ctx context.Context, passengerID, rideID primitive.ObjectID, amount float64) error {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.PassengerID != passengerID {
		return fmt.Errorf("ride belongs to another passenger: %w", ErrForbidden)
	}
	if ride.DriverID == nil {
		return fmt.Errorf("ride has no driver to tip: %w", ErrConflict)
	}
	if ride.Status != models.RideStatusCompleted {
		return fmt.Errorf("tips apply to completed rides only, ride is %s: %w", ride.Status, ErrConflict)
	}
	driverID := *ride.DriverID

	debitTx := s.newTransaction(passengerID, models.TransactionTypeTip, -amount, "tip paid")
	debitTx.RideID = &rideID
	creditTx := s.newTransaction(driverID, models.TransactionTypeTip, amount, "tip received")
	creditTx.RideID = &rideID

	return s.transfer(ctx, passengerID, driverID, amount, debitTx, creditTx)
}

// Refund credits a passenger back for a ride, e.g. after a dispute.
func (s *WalletService) Refund(ctx context.Context, userID primitive.ObjectID, rideID primitive.ObjectID, amount float64, reason string) (*models.Transaction, error) {
	tx := s.newTransaction(userID, models.TransactionTypeRefund, amount, reason)
	tx.RideID = &rideID

	return tx, s.credit(ctx, userID, tx)
}

// GrantPromo credits a promotional discount.
func (s *WalletService) GrantPromo(ctx context.Context, userID primitive.ObjectID, amount float64, code string) (*models.Transaction, error) {
	tx := s.newTransaction(userID, models.TransactionTypePromo, amount, "promo credit")
	tx.Metadata = map[string]string{"promo_code": code}

	return tx, s.credit(ctx, userID, tx)
}

// GrantReferralBonus credits a referral reward.
func (s *WalletService) GrantReferralBonus(ctx context.Context, userID, referredID primitive.ObjectID, amount float64) (*models.Transaction, error) {
	tx := s.newTransaction(userID, models.TransactionTypeReferral, amount, "referral bonus")
	tx.Metadata = map[string]string{"referred_user_id": referredID.Hex()}

	return tx, s.credit(ctx, userID, tx)
}

// Transfer moves amount from one wallet to another. Both legs run in one
// database transaction; if the credit leg fails the debit rolls back with it.
func (s *WalletService) Transfer(ctx context.Context, fromID, toID primitive.ObjectID, amount float64, description string) error {
	debitTx := s.newTransaction(fromID, models.TransactionTypePayment, -amount, description)
	creditTx := s.newTransaction(toID, models.TransactionTypePayment, amount, description)

	return s.transfer(ctx, fromID, toID, amount, debitTx, creditTx)
}

// PayForRide settles a completed ride: the passenger pays the full price, the
// driver receives the price minus the platform commission, and a negative
// commission row is written against the driver as an audit-only record with
// no balance effect.
func (s *WalletService) PayForRide(ctx context.Context, ride *models.Ride) error {
	if ride.DriverID == nil {
		return fmt.Errorf("ride %s has no driver: %w", ride.ID.Hex(), ErrValidation)
	}
	price := ride.EstimatedPrice
	if price <= 0 {
		return fmt.Errorf("ride price must be positive: %w", ErrValidation)
	}

	driverID := *ride.DriverID
	commission := price * s.payment.CommissionRate
	driverShare := price - commission

	debitTx := s.newTransaction(ride.PassengerID, models.TransactionTypePayment, -price, "ride payment")
	debitTx.RideID = &ride.ID
	creditTx := s.newTransaction(driverID, models.TransactionTypePayment, driverShare, "ride earnings")
	creditTx.RideID = &ride.ID

	err := s.txRunner.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.debitLocked(txCtx, ride.PassengerID, price, debitTx); err != nil {
			return err
		}
		if err := s.creditLocked(txCtx, driverID, creditTx); err != nil {
			return err
		}

		commissionTx := s.newTransaction(driverID, models.TransactionTypeCommission, -math.Abs(commission), "platform commission")
		commissionTx.RideID = &ride.ID
		commissionTx.Status = models.TransactionStatusCompleted
		return s.txRepo.Create(txCtx, commissionTx)
	})
	if err != nil {
		return err
	}

	s.logger.LogLedgerEvent(ride.PassengerID, "ride_paid", price, s.payment.Currency)
	s.logger.LogLedgerEvent(driverID, "ride_earnings_credited", driverShare, s.payment.Currency)

	return nil
}

// Reconcile compares the wallet balance with the sum of the user's completed
// ledger rows and returns both together with the drift.
type ReconcileResult struct {
	Balance   float64 `json:"balance"`
	LedgerSum float64 `json:"ledger_sum"`
	Drift     float64 `json:"drift"`
	Balanced  bool    `json:"balanced"`
}

func (s *WalletService) Reconcile(ctx context.Context, userID primitive.ObjectID) (*ReconcileResult, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum, err := s.txRepo.SumCompletedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	drift := wallet.Balance - sum
	return &ReconcileResult{
		Balance:   wallet.Balance,
		LedgerSum: sum,
		Drift:     drift,
		Balanced:  math.Abs(drift) < 0.005,
	}, nil
}

// credit runs one credit leg plus its ledger row atomically.
func (s *WalletService) credit(ctx context.Context, userID primitive.ObjectID, tx *models.Transaction) error {
	if tx.Amount <= 0 {
		return fmt.Errorf("credit amount must be positive: %w", ErrValidation)
	}
	err := s.txRunner.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.creditLocked(txCtx, userID, tx)
	})
	if err != nil {
		return err
	}
	s.logger.LogLedgerEvent(userID, string(tx.Type)+"_credited", tx.Amount, tx.Currency)
	return nil
}

// debit runs one debit leg plus its ledger row atomically. tx.Amount carries
// the signed (negative) ledger value; amount is the positive debit.
func (s *WalletService) debit(ctx context.Context, userID primitive.ObjectID, amount float64, tx *models.Transaction) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive: %w", ErrValidation)
	}
	err := s.txRunner.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.debitLocked(txCtx, userID, amount, tx)
	})
	if err != nil {
		return err
	}
	s.logger.LogLedgerEvent(userID, string(tx.Type)+"_debited", amount, tx.Currency)
	return nil
}

func (s *WalletService) transfer(ctx context.Context, fromID, toID primitive.ObjectID, amount float64, debitTx, creditTx *models.Transaction) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive: %w", ErrValidation)
	}
	if fromID == toID {
		return fmt.Errorf("cannot transfer to the same wallet: %w", ErrValidation)
	}

	err := s.txRunner.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.debitLocked(txCtx, fromID, amount, debitTx); err != nil {
			return err
		}
		return s.creditLocked(txCtx, toID, creditTx)
	})
	if err != nil {
		return err
	}

	s.logger.LogLedgerEvent(fromID, "transfer_out", amount, debitTx.Currency)
	s.logger.LogLedgerEvent(toID, "transfer_in", amount, creditTx.Currency)
	return nil
}

// creditLocked must run inside a transaction context.
func (s *WalletService) creditLocked(ctx context.Context, userID primitive.ObjectID, tx *models.Transaction) error {
	before, err := s.walletRepo.GetOrCreate(ctx, userID, tx.Currency)
	if err != nil {
		return err
	}

	after, err := s.walletRepo.Credit(ctx, userID, tx.Amount, tx.Currency)
	if err != nil {
		return err
	}

	tx.WalletID = &after.ID
	tx.BalanceBefore = before.Balance
	tx.BalanceAfter = after.Balance
	tx.Status = models.TransactionStatusCompleted

	return s.txRepo.Create(ctx, tx)
}

// debitLocked must run inside a transaction context.
func (s *WalletService) debitLocked(ctx context.Context, userID primitive.ObjectID, amount float64, tx *models.Transaction) error {
	before, err := s.walletRepo.GetOrCreate(ctx, userID, tx.Currency)
	if err != nil {
		return err
	}

	after, err := s.walletRepo.Debit(ctx, userID, amount)
	if err != nil {
		return err
	}

	tx.WalletID = &after.ID
	tx.BalanceBefore = before.Balance
	tx.BalanceAfter = after.Balance
	tx.Status = models.TransactionStatusCompleted

	return s.txRepo.Create(ctx, tx)
}

func (s *WalletService) newTransaction(userID primitive.ObjectID, txType models.TransactionType, amount float64, description string) *models.Transaction {
	return &models.Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Currency:    s.payment.Currency,
		Description: description,
		Reference:   utils.GenerateTransactionReference(string(txType)),
	}
}
