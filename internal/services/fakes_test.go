package services

import (
	"context"
	"fmt"
	"time"

	"tripsalama/internal/models"
	"tripsalama/internal/utils"
	"tripsalama/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logger.Logger {
	log, err := logger.NewLogger(&logger.Config{Level: "error", Format: "text", Output: "stderr"})
	if err != nil {
		panic(err)
	}
	return log
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return fmt.Errorf("email taken: %w", ErrConflict)
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user: %w", ErrNotFound)
}

func (r *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	if v, ok := updates["is_verified"]; ok {
		user.IsVerified = v.(bool)
	}
	if v, ok := updates["is_active"]; ok {
		user.IsActive = v.(bool)
	}
	if v, ok := updates["last_login_at"]; ok {
		t := v.(time.Time)
		user.LastLoginAt = &t
	}
	if v, ok := updates["first_name"]; ok {
		user.FirstName = v.(string)
	}
	if v, ok := updates["password"]; ok {
		user.Password = v.(string)
	}
	user.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) error {
	return r.Update(ctx, id, map[string]interface{}{"is_verified": verified})
}

func (r *fakeUserRepo) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	return r.Update(ctx, id, map[string]interface{}{"is_active": active})
}

func (r *fakeUserRepo) GetByRole(ctx context.Context, role models.UserRole, params *utils.PaginationParams) ([]*models.User, int64, error) {
	var out []*models.User
	for _, user := range r.users {
		if user.Role == role {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) addDriver(verified bool) *models.User {
	user := &models.User{
		ID:         primitive.NewObjectID(),
		FirstName:  "Test",
		LastName:   "Driver",
		Email:      fmt.Sprintf("driver-%s@example.com", primitive.NewObjectID().Hex()),
		Role:       models.UserRoleDriver,
		IsVerified: verified,
		IsActive:   verified,
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) addPassenger() *models.User {
	user := &models.User{
		ID:         primitive.NewObjectID(),
		FirstName:  "Test",
		LastName:   "Passenger",
		Email:      fmt.Sprintf("passenger-%s@example.com", primitive.NewObjectID().Hex()),
		Role:       models.UserRolePassenger,
		IsVerified: true,
		IsActive:   true,
	}
	r.users[user.ID] = user
	return user
}

// fakeVehicleRepo is an in-memory VehicleRepository that keeps the
// at-most-one-active rule the same way the real repository does.
type fakeVehicleRepo struct {
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
}

func (r *fakeVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	vehicle.ID = primitive.NewObjectID()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = vehicle.CreatedAt
	r.vehicles[vehicle.ID] = vehicle
	return nil
}

func (r *fakeVehicleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("vehicle: %w", ErrNotFound)
	}
	copied := *vehicle
	return &copied, nil
}

func (r *fakeVehicleRepo) GetByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Vehicle, error) {
	var out []*models.Vehicle
	for _, vehicle := range r.vehicles {
		if vehicle.DriverID == driverID {
			copied := *vehicle
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeVehicleRepo) GetActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Vehicle, error) {
	for _, vehicle := range r.vehicles {
		if vehicle.DriverID == driverID && vehicle.IsActive {
			copied := *vehicle
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("active vehicle: %w", ErrNotFound)
}

func (r *fakeVehicleRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	if _, ok := r.vehicles[id]; !ok {
		return fmt.Errorf("vehicle: %w", ErrNotFound)
	}
	return nil
}

func (r *fakeVehicleRepo) SetActive(ctx context.Context, driverID, vehicleID primitive.ObjectID) error {
	target, ok := r.vehicles[vehicleID]
	if !ok || target.DriverID != driverID {
		return fmt.Errorf("vehicle: %w", ErrNotFound)
	}
	for _, vehicle := range r.vehicles {
		if vehicle.DriverID == driverID {
			vehicle.IsActive = vehicle.ID == vehicleID
		}
	}
	return nil
}

// fakeStatusRepo is an in-memory DriverStatusRepository.
type fakeStatusRepo struct {
	statuses map[primitive.ObjectID]*models.DriverStatus
}

func newFakeStatusRepo() *fakeStatusRepo {
	return &fakeStatusRepo{statuses: make(map[primitive.ObjectID]*models.DriverStatus)}
}

func (r *fakeStatusRepo) GetOrCreate(ctx context.Context, driverID primitive.ObjectID) (*models.DriverStatus, error) {
	if status, ok := r.statuses[driverID]; ok {
		copied := *status
		return &copied, nil
	}
	status := &models.DriverStatus{
		ID:         primitive.NewObjectID(),
		DriverID:   driverID,
		LastUpdate: time.Now(),
		CreatedAt:  time.Now(),
	}
	r.statuses[driverID] = status
	copied := *status
	return &copied, nil
}

func (r *fakeStatusRepo) GetByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.DriverStatus, error) {
	status, ok := r.statuses[driverID]
	if !ok {
		return nil, fmt.Errorf("driver status: %w", ErrNotFound)
	}
	copied := *status
	return &copied, nil
}

func (r *fakeStatusRepo) UpdateAvailability(ctx context.Context, driverID primitive.ObjectID, available bool) error {
	status, ok := r.statuses[driverID]
	if !ok {
		return fmt.Errorf("driver status: %w", ErrNotFound)
	}
	status.IsAvailable = available
	status.LastUpdate = time.Now()
	return nil
}

func (r *fakeStatusRepo) UpdatePosition(ctx context.Context, driverID primitive.ObjectID, lat, lng, heading, speed float64) error {
	status, ok := r.statuses[driverID]
	if !ok {
		return fmt.Errorf("driver status: %w", ErrNotFound)
	}
	status.Latitude = &lat
	status.Longitude = &lng
	status.Heading = heading
	status.Speed = speed
	status.LastUpdate = time.Now()
	return nil
}

func (r *fakeStatusRepo) GetAvailableSince(ctx context.Context, cutoff time.Time) ([]*models.DriverStatus, error) {
	var out []*models.DriverStatus
	for _, status := range r.statuses {
		if status.IsAvailable && !status.LastUpdate.Before(cutoff) && status.HasPosition() {
			copied := *status
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeStatusRepo) DeactivateInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	for _, status := range r.statuses {
		if status.IsAvailable && status.LastUpdate.Before(cutoff) {
			status.IsAvailable = false
			count++
		}
	}
	return count, nil
}

// put seeds a status row directly.
func (r *fakeStatusRepo) put(driverID primitive.ObjectID, available bool, lat, lng float64, lastUpdate time.Time) {
	r.statuses[driverID] = &models.DriverStatus{
		ID:          primitive.NewObjectID(),
		DriverID:    driverID,
		IsAvailable: available,
		Latitude:    &lat,
		Longitude:   &lng,
		LastUpdate:  lastUpdate,
		CreatedAt:   lastUpdate,
	}
}

// fakeRideRepo is an in-memory RideRepository with the same conditional
// update semantics as the MongoDB implementation.
type fakeRideRepo struct {
	rides     map[primitive.ObjectID]*models.Ride
	positions []*models.RidePosition
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func (r *fakeRideRepo) Create(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.Status = models.RideStatusPending
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt
	r.rides[ride.ID] = ride
	return nil
}

func (r *fakeRideRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	ride, ok := r.rides[id]
	if !ok {
		return nil, fmt.Errorf("ride: %w", ErrNotFound)
	}
	copied := *ride
	return &copied, nil
}

func (r *fakeRideRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	if _, ok := r.rides[id]; !ok {
		return fmt.Errorf("ride: %w", ErrNotFound)
	}
	return nil
}

func (r *fakeRideRepo) AssignDriver(ctx context.Context, id, driverID, vehicleID primitive.ObjectID) error {
	ride, ok := r.rides[id]
	if !ok {
		return fmt.Errorf("ride: %w", ErrNotFound)
	}
	if ride.Status != models.RideStatusPending {
		return fmt.Errorf("ride no longer pending: %w", ErrConflict)
	}
	now := time.Now()
	ride.DriverID = &driverID
	ride.VehicleID = &vehicleID
	ride.Status = models.RideStatusAccepted
	ride.AcceptedAt = &now
	ride.UpdatedAt = now
	return nil
}

func (r *fakeRideRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.RideStatus) error {
	ride, ok := r.rides[id]
	if !ok {
		return fmt.Errorf("ride: %w", ErrNotFound)
	}
	if ride.Status != from {
		return fmt.Errorf("ride moved concurrently: %w", ErrConflict)
	}
	now := time.Now()
	ride.Status = to
	ride.UpdatedAt = now
	switch to {
	case models.RideStatusAccepted:
		ride.AcceptedAt = &now
	case models.RideStatusDriverArrived:
		ride.ArrivingAt = &now
	case models.RideStatusInProgress:
		ride.StartedAt = &now
	case models.RideStatusCompleted:
		ride.CompletedAt = &now
	case models.RideStatusCancelled:
		ride.CancelledAt = &now
	}
	return nil
}

func (r *fakeRideRepo) Cancel(ctx context.Context, id primitive.ObjectID, from models.RideStatus, reason, cancelledBy string) error {
	if err := r.UpdateStatus(ctx, id, from, models.RideStatusCancelled); err != nil {
		return err
	}
	ride := r.rides[id]
	ride.CancellationReason = reason
	ride.CancelledBy = cancelledBy
	return nil
}

func (r *fakeRideRepo) getActive(match func(*models.Ride) bool) (*models.Ride, error) {
	var latest *models.Ride
	for _, ride := range r.rides {
		if ride.Status.IsTerminal() || !match(ride) {
			continue
		}
		if latest == nil || ride.CreatedAt.After(latest.CreatedAt) {
			latest = ride
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("active ride: %w", ErrNotFound)
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeRideRepo) GetActiveByPassenger(ctx context.Context, passengerID primitive.ObjectID) (*models.Ride, error) {
	return r.getActive(func(ride *models.Ride) bool { return ride.PassengerID == passengerID })
}

func (r *fakeRideRepo) GetActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Ride, error) {
	return r.getActive(func(ride *models.Ride) bool { return ride.DriverID != nil && *ride.DriverID == driverID })
}

func (r *fakeRideRepo) GetPending(ctx context.Context, limit int) ([]*models.Ride, error) {
	if limit <= 0 || limit > utils.MaxPendingRides {
		limit = utils.MaxPendingRides
	}
	now := time.Now()
	var out []*models.Ride
	for _, ride := range r.rides {
		if ride.Status == models.RideStatusPending && (ride.ScheduledAt == nil || !ride.ScheduledAt.After(now)) {
			copied := *ride
			out = append(out, &copied)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRideRepo) GetScheduledByPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.Ride, error) {
	now := time.Now()
	var out []*models.Ride
	for _, ride := range r.rides {
		if ride.PassengerID == passengerID && ride.Status == models.RideStatusPending &&
			ride.ScheduledAt != nil && ride.ScheduledAt.After(now) {
			copied := *ride
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRideRepo) GetByPassenger(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	var out []*models.Ride
	for _, ride := range r.rides {
		if ride.PassengerID == passengerID {
			copied := *ride
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRideRepo) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	var out []*models.Ride
	for _, ride := range r.rides {
		if ride.DriverID != nil && *ride.DriverID == driverID {
			copied := *ride
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRideRepo) SavePosition(ctx context.Context, position *models.RidePosition) error {
	position.ID = primitive.NewObjectID()
	position.RecordedAt = time.Now()
	r.positions = append(r.positions, position)
	return nil
}

func (r *fakeRideRepo) GetLastPosition(ctx context.Context, rideID primitive.ObjectID) (*models.RidePosition, error) {
	for i := len(r.positions) - 1; i >= 0; i-- {
		if r.positions[i].RideID == rideID {
			copied := *r.positions[i]
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("position: %w", ErrNotFound)
}

func (r *fakeRideRepo) GetEarningsByDriver(ctx context.Context, driverID primitive.ObjectID) (float64, error) {
	var total float64
	for _, ride := range r.rides {
		if ride.Status == models.RideStatusCompleted && ride.DriverID != nil && *ride.DriverID == driverID {
			total += ride.EstimatedPrice * (1 - utils.PlatformCommissionRate)
		}
	}
	return total, nil
}

func (r *fakeRideRepo) GetTotalDistanceByDriver(ctx context.Context, driverID primitive.ObjectID) (float64, error) {
	var total float64
	for _, ride := range r.rides {
		if ride.Status == models.RideStatusCompleted && ride.DriverID != nil && *ride.DriverID == driverID {
			total += ride.EstimatedDistance
		}
	}
	return total, nil
}

func (r *fakeRideRepo) GetDriverStats(ctx context.Context, driverID primitive.ObjectID) (*models.DriverStats, error) {
	stats := &models.DriverStats{}
	for _, ride := range r.rides {
		if ride.DriverID == nil || *ride.DriverID != driverID {
			continue
		}
		stats.TotalRides++
		switch ride.Status {
		case models.RideStatusCompleted:
			stats.CompletedRides++
			stats.TotalEarnings += ride.EstimatedPrice * (1 - utils.PlatformCommissionRate)
			stats.TotalDistanceKM += ride.EstimatedDistance
		case models.RideStatusCancelled:
			stats.CancelledRides++
		}
	}
	return stats, nil
}

// addCompletedRide seeds a finished ride directly, for tests that only need
// the ride to exist.
func (r *fakeRideRepo) addCompletedRide(passengerID, driverID primitive.ObjectID, price, distanceKM float64) *models.Ride {
	now := time.Now()
	ride := &models.Ride{
		ID:                primitive.NewObjectID(),
		PassengerID:       passengerID,
		DriverID:          &driverID,
		Status:            models.RideStatusCompleted,
		EstimatedPrice:    price,
		EstimatedDistance: distanceKM,
		CompletedAt:       &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	r.rides[ride.ID] = ride
	return ride
}

// fakeMessageRepo is an in-memory MessageRepository.
type fakeMessageRepo struct {
	messages []*models.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) GetByRide(ctx context.Context, rideID primitive.ObjectID, limit int) ([]*models.Message, error) {
	var out []*models.Message
	for _, message := range r.messages {
		if message.RideID == rideID {
			copied := *message
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, rideID, readerID primitive.ObjectID) (int64, error) {
	var count int64
	for _, message := range r.messages {
		if message.RideID == rideID && message.SenderID != readerID && !message.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, rideID, readerID primitive.ObjectID) error {
	for _, message := range r.messages {
		if message.RideID == rideID && message.SenderID != readerID {
			message.IsRead = true
		}
	}
	return nil
}

// fakeWalletRepo is an in-memory WalletRepository with the same balance
// guard as the MongoDB implementation. failCreditFor forces a credit leg to
// fail, which the transfer atomicity tests use.
type fakeWalletRepo struct {
	wallets       map[primitive.ObjectID]*models.Wallet
	failCreditFor map[primitive.ObjectID]error
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{
		wallets:       make(map[primitive.ObjectID]*models.Wallet),
		failCreditFor: make(map[primitive.ObjectID]error),
	}
}

func (r *fakeWalletRepo) snapshot() map[primitive.ObjectID]models.Wallet {
	snap := make(map[primitive.ObjectID]models.Wallet, len(r.wallets))
	for id, wallet := range r.wallets {
		snap[id] = *wallet
	}
	return snap
}

func (r *fakeWalletRepo) restore(snap map[primitive.ObjectID]models.Wallet) {
	r.wallets = make(map[primitive.ObjectID]*models.Wallet, len(snap))
	for id, wallet := range snap {
		copied := wallet
		r.wallets[id] = &copied
	}
}

func (r *fakeWalletRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	for _, wallet := range r.wallets {
		if wallet.UserID == userID {
			copied := *wallet
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("wallet: %w", ErrNotFound)
}

func (r *fakeWalletRepo) GetOrCreate(ctx context.Context, userID primitive.ObjectID, currency string) (*models.Wallet, error) {
	if wallet, err := r.GetByUserID(ctx, userID); err == nil {
		return wallet, nil
	}
	wallet := &models.Wallet{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Currency:  currency,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.wallets[wallet.ID] = wallet
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) Credit(ctx context.Context, userID primitive.ObjectID, amount float64, currency string) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive: %w", ErrValidation)
	}
	if err, ok := r.failCreditFor[userID]; ok {
		return nil, err
	}
	if _, err := r.GetOrCreate(ctx, userID, currency); err != nil {
		return nil, err
	}
	for _, wallet := range r.wallets {
		if wallet.UserID == userID {
			wallet.Balance += amount
			wallet.UpdatedAt = time.Now()
			copied := *wallet
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("wallet: %w", ErrNotFound)
}

func (r *fakeWalletRepo) Debit(ctx context.Context, userID primitive.ObjectID, amount float64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive: %w", ErrValidation)
	}
	for _, wallet := range r.wallets {
		if wallet.UserID == userID {
			if wallet.Balance < amount {
				return nil, fmt.Errorf("balance %.2f below %.2f: %w", wallet.Balance, amount, ErrInsufficientFunds)
			}
			wallet.Balance -= amount
			wallet.UpdatedAt = time.Now()
			copied := *wallet
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("wallet: %w", ErrNotFound)
}

// fakeTxRepo is an in-memory TransactionRepository.
type fakeTxRepo struct {
	transactions []*models.Transaction
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{}
}

func (r *fakeTxRepo) snapshot() int {
	return len(r.transactions)
}

func (r *fakeTxRepo) restore(n int) {
	r.transactions = r.transactions[:n]
}

func (r *fakeTxRepo) Create(ctx context.Context, transaction *models.Transaction) error {
	for _, existing := range r.transactions {
		if existing.Reference == transaction.Reference {
			return fmt.Errorf("duplicate reference: %w", ErrConflict)
		}
	}
	transaction.ID = primitive.NewObjectID()
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	if transaction.Status == "" {
		transaction.Status = models.TransactionStatusPending
	}
	copied := *transaction
	r.transactions = append(r.transactions, &copied)
	return nil
}

func (r *fakeTxRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	for _, tx := range r.transactions {
		if tx.ID == id {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("transaction: %w", ErrNotFound)
}

func (r *fakeTxRepo) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	for _, tx := range r.transactions {
		if tx.Reference == reference {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("transaction: %w", ErrNotFound)
}

func (r *fakeTxRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus, errorMessage string) error {
	for _, tx := range r.transactions {
		if tx.ID == id {
			tx.Status = status
			tx.ErrorMessage = errorMessage
			if status == models.TransactionStatusCompleted || status == models.TransactionStatusFailed {
				now := time.Now()
				tx.ProcessedAt = &now
			}
			return nil
		}
	}
	return fmt.Errorf("transaction: %w", ErrNotFound)
}

func (r *fakeTxRepo) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	var out []*models.Transaction
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			copied := *tx
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTxRepo) GetByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range r.transactions {
		if tx.RideID != nil && *tx.RideID == rideID {
			copied := *tx
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) GetStats(ctx context.Context, userID primitive.ObjectID) (*models.TransactionStats, error) {
	stats := &models.TransactionStats{}
	for _, tx := range r.transactions {
		if tx.UserID != userID {
			continue
		}
		stats.TotalCount++
		switch tx.Status {
		case models.TransactionStatusCompleted:
			stats.CompletedCount++
			if tx.Amount > 0 {
				stats.TotalCredited += tx.Amount
			} else {
				stats.TotalDebited += -tx.Amount
			}
		case models.TransactionStatusFailed:
			stats.FailedCount++
		}
	}
	return stats, nil
}

func (r *fakeTxRepo) GetDriverEarnings(ctx context.Context, driverID primitive.ObjectID) (float64, error) {
	var total float64
	for _, tx := range r.transactions {
		if tx.UserID != driverID || tx.Status != models.TransactionStatusCompleted || tx.Amount <= 0 {
			continue
		}
		if tx.Type == models.TransactionTypePayment || tx.Type == models.TransactionTypeTip {
			total += tx.Amount
		}
	}
	return total, nil
}

func (r *fakeTxRepo) SumCompletedByUser(ctx context.Context, userID primitive.ObjectID) (float64, error) {
	var sum float64
	for _, tx := range r.transactions {
		if tx.UserID != userID || tx.Status != models.TransactionStatusCompleted {
			continue
		}
		if tx.Type == models.TransactionTypeCommission {
			continue
		}
		sum += tx.Amount
	}
	return sum, nil
}

func (r *fakeTxRepo) SumWithdrawalsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (float64, error) {
	var sum float64
	for _, tx := range r.transactions {
		if tx.UserID != userID || tx.Type != models.TransactionTypeWithdrawal || tx.Status != models.TransactionStatusCompleted {
			continue
		}
		if tx.CreatedAt.Before(since) {
			continue
		}
		if tx.Amount < 0 {
			sum += -tx.Amount
		} else {
			sum += tx.Amount
		}
	}
	return sum, nil
}

// fakeVerificationRepo is an in-memory VerificationRepository.
type fakeVerificationRepo struct {
	verifications map[primitive.ObjectID]*models.IdentityVerification
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{verifications: make(map[primitive.ObjectID]*models.IdentityVerification)}
}

func (r *fakeVerificationRepo) Create(ctx context.Context, verification *models.IdentityVerification) error {
	verification.ID = primitive.NewObjectID()
	verification.CreatedAt = time.Now()
	verification.UpdatedAt = verification.CreatedAt
	if verification.Status == "" {
		verification.Status = models.VerificationStatusPending
	}
	r.verifications[verification.ID] = verification
	return nil
}

func (r *fakeVerificationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.IdentityVerification, error) {
	verification, ok := r.verifications[id]
	if !ok {
		return nil, fmt.Errorf("verification: %w", ErrNotFound)
	}
	copied := *verification
	return &copied, nil
}

func (r *fakeVerificationRepo) GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*models.IdentityVerification, error) {
	var latest *models.IdentityVerification
	for _, verification := range r.verifications {
		if verification.UserID != userID {
			continue
		}
		if latest == nil || verification.CreatedAt.After(latest.CreatedAt) {
			latest = verification
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("verification: %w", ErrNotFound)
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeVerificationRepo) GetPendingManualReviews(ctx context.Context, limit int) ([]*models.IdentityVerification, error) {
	var out []*models.IdentityVerification
	for _, verification := range r.verifications {
		if verification.Status == models.VerificationStatusPending {
			copied := *verification
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeVerificationRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus, reviewerID *primitive.ObjectID, note string) error {
	verification, ok := r.verifications[id]
	if !ok {
		return fmt.Errorf("verification: %w", ErrNotFound)
	}
	if verification.Status != models.VerificationStatusPending {
		return fmt.Errorf("already decided: %w", ErrConflict)
	}
	now := time.Now()
	verification.Status = status
	verification.ReviewerID = reviewerID
	verification.ReviewNote = note
	verification.ReviewedAt = &now
	verification.UpdatedAt = now
	return nil
}

// fakeTxRunner mimics transaction semantics over the in-memory stores: it
// snapshots wallet and ledger state before fn and restores both if fn fails.
type fakeTxRunner struct {
	wallets *fakeWalletRepo
	ledger  *fakeTxRepo
}

func newFakeTxRunner(wallets *fakeWalletRepo, ledger *fakeTxRepo) *fakeTxRunner {
	return &fakeTxRunner{wallets: wallets, ledger: ledger}
}

func (r *fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	walletSnap := r.wallets.snapshot()
	ledgerSnap := r.ledger.snapshot()
	if err := fn(ctx); err != nil {
		r.wallets.restore(walletSnap)
		r.ledger.restore(ledgerSnap)
		return err
	}
	return nil
}

// fakeSOSRepo is an in-memory SOSRepository.
type fakeSOSRepo struct {
	alerts map[primitive.ObjectID]*models.SOS
}

func newFakeSOSRepo() *fakeSOSRepo {
	return &fakeSOSRepo{alerts: make(map[primitive.ObjectID]*models.SOS)}
}

func (r *fakeSOSRepo) Create(ctx context.Context, sos *models.SOS) error {
	sos.ID = primitive.NewObjectID()
	sos.Status = models.SOSStatusActive
	sos.CreatedAt = time.Now()
	sos.UpdatedAt = sos.CreatedAt
	r.alerts[sos.ID] = sos
	return nil
}

func (r *fakeSOSRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SOS, error) {
	sos, ok := r.alerts[id]
	if !ok {
		return nil, fmt.Errorf("sos alert: %w", ErrNotFound)
	}
	copied := *sos
	return &copied, nil
}

func (r *fakeSOSRepo) GetActive(ctx context.Context) ([]*models.SOS, error) {
	var out []*models.SOS
	for _, sos := range r.alerts {
		if sos.Status == models.SOSStatusActive {
			copied := *sos
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSOSRepo) Resolve(ctx context.Context, id primitive.ObjectID, status models.SOSStatus) error {
	sos, ok := r.alerts[id]
	if !ok {
		return fmt.Errorf("sos alert: %w", ErrNotFound)
	}
	if sos.Status != models.SOSStatusActive {
		return fmt.Errorf("alert already resolved: %w", ErrConflict)
	}
	now := time.Now()
	sos.Status = status
	sos.ResolvedAt = &now
	sos.UpdatedAt = now
	return nil
}

// fakeReferralRepo is an in-memory ReferralRepository with the same
// claim-once semantics as the MongoDB implementation.
type fakeReferralRepo struct {
	referrals map[primitive.ObjectID]*models.Referral
}

func newFakeReferralRepo() *fakeReferralRepo {
	return &fakeReferralRepo{referrals: make(map[primitive.ObjectID]*models.Referral)}
}

func (r *fakeReferralRepo) Create(ctx context.Context, referral *models.Referral) error {
	for _, existing := range r.referrals {
		if existing.ReferralCode == referral.ReferralCode {
			return fmt.Errorf("referral code taken: %w", ErrConflict)
		}
	}
	referral.ID = primitive.NewObjectID()
	referral.CreatedAt = time.Now()
	referral.UpdatedAt = referral.CreatedAt
	if referral.Status == "" {
		referral.Status = models.ReferralStatusPending
	}
	r.referrals[referral.ID] = referral
	return nil
}

func (r *fakeReferralRepo) GetByCode(ctx context.Context, code string) (*models.Referral, error) {
	for _, referral := range r.referrals {
		if referral.ReferralCode == code {
			copied := *referral
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("referral code: %w", ErrNotFound)
}

func (r *fakeReferralRepo) GetOpenByReferrer(ctx context.Context, referrerID primitive.ObjectID) (*models.Referral, error) {
	for _, referral := range r.referrals {
		if referral.ReferrerID == referrerID && referral.Status == models.ReferralStatusPending && referral.RefereeID == nil {
			copied := *referral
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("open referral: %w", ErrNotFound)
}

func (r *fakeReferralRepo) GetByReferee(ctx context.Context, refereeID primitive.ObjectID) (*models.Referral, error) {
	for _, referral := range r.referrals {
		if referral.RefereeID != nil && *referral.RefereeID == refereeID {
			copied := *referral
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("referral: %w", ErrNotFound)
}

func (r *fakeReferralRepo) Complete(ctx context.Context, id, refereeID primitive.ObjectID) error {
	referral, ok := r.referrals[id]
	if !ok {
		return fmt.Errorf("referral: %w", ErrNotFound)
	}
	if referral.Status != models.ReferralStatusPending || referral.RefereeID != nil {
		return fmt.Errorf("referral already claimed: %w", ErrConflict)
	}
	now := time.Now()
	referral.RefereeID = &refereeID
	referral.Status = models.ReferralStatusCompleted
	referral.CompletedAt = &now
	referral.UpdatedAt = now
	return nil
}

func (r *fakeReferralRepo) GetByReferrer(ctx context.Context, referrerID primitive.ObjectID) ([]*models.Referral, error) {
	var out []*models.Referral
	for _, referral := range r.referrals {
		if referral.ReferrerID == referrerID {
			copied := *referral
			out = append(out, &copied)
		}
	}
	return out, nil
}
