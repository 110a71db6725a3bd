package services

import (
	"context"
	"testing"
	"time"

	"tripsalama/internal/models"
	"tripsalama/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type rideFixture struct {
	svc      *RideService
	rides    *fakeRideRepo
	users    *fakeUserRepo
	vehicles *fakeVehicleRepo
	statuses *fakeStatusRepo
}

func newRideFixture() *rideFixture {
	rides := newFakeRideRepo()
	users := newFakeUserRepo()
	vehicles := newFakeVehicleRepo()
	statuses := newFakeStatusRepo()
	svc := NewRideService(rides, users, vehicles, statuses, nil, testLogger())
	return &rideFixture{svc: svc, rides: rides, users: users, vehicles: vehicles, statuses: statuses}
}

func (f *rideFixture) addDriverWithVehicle(t *testing.T) *models.User {
	t.Helper()
	driver := f.users.addDriver(true)
	require.NoError(t, f.vehicles.Create(context.Background(), &models.Vehicle{
		DriverID:     driver.ID,
		Brand:        "Dacia",
		Model:        "Logan",
		Color:        "white",
		LicensePlate: "12345-A-6",
		IsActive:     true,
	}))
	return driver
}

func defaultRideRequest() *CreateRideRequest {
	return &CreateRideRequest{
		PickupLatitude:   33.5731,
		PickupLongitude:  -7.5898,
		PickupAddress:    "Casablanca",
		DropoffLatitude:  33.5992,
		DropoffLongitude: -7.6327,
		DropoffAddress:   "Ain Diab",
		EstimatedPrice:   45,
	}
}

func TestCreateRideStartsPending(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()

	ride, err := f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	require.NoError(t, err)

	assert.Equal(t, models.RideStatusPending, ride.Status)
	assert.Nil(t, ride.DriverID)
	assert.Nil(t, ride.VehicleID)
	assert.NotEmpty(t, ride.RideNumber)
	assert.Greater(t, ride.EstimatedDistance, 0.0)
	assert.Greater(t, ride.EstimatedDuration, 0)
}

func TestCreateRideRejectsSecondActiveRide(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()

	_, err := f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	require.NoError(t, err)

	_, err = f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateRideRejectsBadCoordinates(t *testing.T) {
	f := newRideFixture()
	passenger := f.users.addPassenger()

	req := defaultRideRequest()
	req.PickupLatitude = 91

	_, err := f.svc.CreateRide(context.Background(), passenger.ID, req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAcceptRideSetsDriverVehicleAndTimestamp(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()
	driver := f.addDriverWithVehicle(t)

	ride, err := f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	require.NoError(t, err)

	accepted, err := f.svc.AcceptRide(ctx, ride.ID, driver.ID)
	require.NoError(t, err)

	assert.Equal(t, models.RideStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.DriverID)
	assert.Equal(t, driver.ID, *accepted.DriverID)
	assert.NotNil(t, accepted.VehicleID)
	assert.NotNil(t, accepted.AcceptedAt)
	assert.Nil(t, accepted.StartedAt)
	assert.Nil(t, accepted.CompletedAt)
}

func TestAcceptRideRequiresVerifiedDriver(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()
	driver := f.users.addDriver(false)

	ride, err := f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	require.NoError(t, err)

	_, err = f.svc.AcceptRide(ctx, ride.ID, driver.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAcceptRideRequiresActiveVehicle(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()
	driver := f.users.addDriver(true)

	ride, err := f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	require.NoError(t, err)

	_, err = f.svc.AcceptRide(ctx, ride.ID, driver.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAcceptRideLosesRaceOnAssignedRide(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()
	first := f.addDriverWithVehicle(t)
	second := f.addDriverWithVehicle(t)

	ride, err := f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	require.NoError(t, err)

	_, err = f.svc.AcceptRide(ctx, ride.ID, first.ID)
	require.NoError(t, err)

	_, err = f.svc.AcceptRide(ctx, ride.ID, second.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRideLifecycleTimestamps(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()
	driver := f.addDriverWithVehicle(t)

	ride, err := f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	require.NoError(t, err)
	_, err = f.svc.AcceptRide(ctx, ride.ID, driver.ID)
	require.NoError(t, err)

	arriving, err := f.svc.MarkArriving(ctx, ride.ID, driver.ID)
	require.NoError(t, err)
	assert.NotNil(t, arriving.ArrivingAt)
	assert.Nil(t, arriving.StartedAt)

	started, err := f.svc.StartRide(ctx, ride.ID, driver.ID)
	require.NoError(t, err)
	assert.NotNil(t, started.StartedAt)
	assert.Nil(t, started.CompletedAt)

	completed, err := f.svc.CompleteRide(ctx, ride.ID, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.Nil(t, completed.CancelledAt)
}

func TestRideIllegalTransitions(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()
	driver := f.addDriverWithVehicle(t)

	ride, err := f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	require.NoError(t, err)
	_, err = f.svc.AcceptRide(ctx, ride.ID, driver.ID)
	require.NoError(t, err)

	// Completing before starting is illegal.
	_, err = f.svc.CompleteRide(ctx, ride.ID, driver.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.StartRide(ctx, ride.ID, driver.ID)
	require.NoError(t, err)
	_, err = f.svc.CompleteRide(ctx, ride.ID, driver.ID)
	require.NoError(t, err)

	// A terminal ride accepts nothing further.
	_, err = f.svc.StartRide(ctx, ride.ID, driver.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.CancelRide(ctx, ride.ID, passenger.ID, models.UserRolePassenger, "too late")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelRidePermissions(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()
	stranger := f.users.addPassenger()

	ride, err := f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	require.NoError(t, err)

	_, err = f.svc.CancelRide(ctx, ride.ID, stranger.ID, models.UserRolePassenger, "not mine")
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := f.svc.CancelRide(ctx, ride.ID, passenger.ID, models.UserRolePassenger, "changed plans")
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCancelled, cancelled.Status)
	assert.Equal(t, "passenger", cancelled.CancelledBy)
	assert.Equal(t, "changed plans", cancelled.CancellationReason)
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestCancelFromEveryNonTerminalState(t *testing.T) {
	states := []struct {
		name    string
		advance func(f *rideFixture, t *testing.T, rideID, driverID primitive.ObjectID)
	}{
		{"pending", func(f *rideFixture, t *testing.T, rideID, driverID primitive.ObjectID) {}},
		{"accepted", func(f *rideFixture, t *testing.T, rideID, driverID primitive.ObjectID) {
			_, err := f.svc.AcceptRide(context.Background(), rideID, driverID)
			require.NoError(t, err)
		}},
		{"driver_arriving", func(f *rideFixture, t *testing.T, rideID, driverID primitive.ObjectID) {
			_, err := f.svc.AcceptRide(context.Background(), rideID, driverID)
			require.NoError(t, err)
			_, err = f.svc.MarkArriving(context.Background(), rideID, driverID)
			require.NoError(t, err)
		}},
		{"in_progress", func(f *rideFixture, t *testing.T, rideID, driverID primitive.ObjectID) {
			_, err := f.svc.AcceptRide(context.Background(), rideID, driverID)
			require.NoError(t, err)
			_, err = f.svc.StartRide(context.Background(), rideID, driverID)
			require.NoError(t, err)
		}},
	}

	for _, tc := range states {
		t.Run(tc.name, func(t *testing.T) {
			f := newRideFixture()
			passenger := f.users.addPassenger()
			driver := f.addDriverWithVehicle(t)

			ride, err := f.svc.CreateRide(context.Background(), passenger.ID, defaultRideRequest())
			require.NoError(t, err)
			tc.advance(f, t, ride.ID, driver.ID)

			cancelled, err := f.svc.CancelRide(context.Background(), ride.ID, passenger.ID, models.UserRolePassenger, "test")
			require.NoError(t, err)
			assert.Equal(t, models.RideStatusCancelled, cancelled.Status)
		})
	}
}

func TestSavePositionRules(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()
	driver := f.addDriverWithVehicle(t)

	ride, err := f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	require.NoError(t, err)

	update := &PositionUpdate{Latitude: 33.58, Longitude: -7.60, Heading: 90, Speed: 40}

	// No positions while pending.
	err = f.svc.SavePosition(ctx, ride.ID, driver.ID, update)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.AcceptRide(ctx, ride.ID, driver.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.SavePosition(ctx, ride.ID, driver.ID, update))

	last, err := f.svc.GetLastPosition(ctx, ride.ID, passenger.ID, models.UserRolePassenger)
	require.NoError(t, err)
	assert.Equal(t, 33.58, last.Latitude)

	// Only the assigned driver reports.
	other := f.addDriverWithVehicle(t)
	err = f.svc.SavePosition(ctx, ride.ID, other.ID, update)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetRideAccessControl(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()
	stranger := f.users.addPassenger()

	ride, err := f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	require.NoError(t, err)

	_, err = f.svc.GetRide(ctx, ride.ID, stranger.ID, models.UserRolePassenger)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetRide(ctx, ride.ID, passenger.ID, models.UserRolePassenger)
	assert.NoError(t, err)

	_, err = f.svc.GetRide(ctx, ride.ID, stranger.ID, models.UserRoleAdmin)
	assert.NoError(t, err)
}

func TestScheduledRideValidation(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()

	past := time.Now().Add(-time.Hour)
	req := defaultRideRequest()
	req.ScheduledAt = &past
	_, err := f.svc.CreateRide(ctx, passenger.ID, req)
	assert.ErrorIs(t, err, ErrValidation)

	tooFar := time.Now().Add(utils.MaxScheduleAhead + time.Hour)
	req = defaultRideRequest()
	req.ScheduledAt = &tooFar
	_, err = f.svc.CreateRide(ctx, passenger.ID, req)
	assert.ErrorIs(t, err, ErrValidation)

	tomorrow := time.Now().Add(24 * time.Hour)
	req = defaultRideRequest()
	req.ScheduledAt = &tomorrow
	ride, err := f.svc.CreateRide(ctx, passenger.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusPending, ride.Status)
	require.NotNil(t, ride.ScheduledAt)
}

func TestScheduledRideHiddenFromDriversUntilDue(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	walkup := f.users.addPassenger()
	booker := f.users.addPassenger()

	_, err := f.svc.CreateRide(ctx, walkup.ID, defaultRideRequest())
	require.NoError(t, err)

	tomorrow := time.Now().Add(24 * time.Hour)
	req := defaultRideRequest()
	req.ScheduledAt = &tomorrow
	scheduled, err := f.svc.CreateRide(ctx, booker.ID, req)
	require.NoError(t, err)

	pending, err := f.svc.GetPendingRides(ctx, 33.57, -7.59, 20)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, walkup.ID, pending[0].PassengerID)

	listed, err := f.svc.GetScheduledRides(ctx, booker.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, scheduled.ID, listed[0].ID)

	// A booking whose time has arrived shows up like any other request.
	due := time.Now().Add(-time.Minute)
	f.rides.rides[scheduled.ID].ScheduledAt = &due
	pending, err = f.svc.GetPendingRides(ctx, 33.57, -7.59, 20)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestScheduledRideCountsAsActive(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()

	tomorrow := time.Now().Add(24 * time.Hour)
	req := defaultRideRequest()
	req.ScheduledAt = &tomorrow
	_, err := f.svc.CreateRide(ctx, passenger.ID, req)
	require.NoError(t, err)

	_, err = f.svc.CreateRide(ctx, passenger.ID, defaultRideRequest())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDriverEarningsSummary(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()
	passenger := f.users.addPassenger()
	driver := f.addDriverWithVehicle(t)

	f.rides.addCompletedRide(passenger.ID, driver.ID, 100, 12)

	earnings, err := f.svc.GetDriverEarnings(ctx, driver.ID)
	require.NoError(t, err)
	assert.InDelta(t, 88.0, earnings.TotalEarnings, 0.001)
	assert.InDelta(t, 12.0, earnings.TotalDistanceKM, 0.001)
	assert.Equal(t, utils.DefaultCurrency, earnings.Currency)
}
