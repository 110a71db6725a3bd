package utils

import "time"

// Application Constants
const (
	AppName    = "TripSalama"
	AppVersion = "1.0.0"

	// Default values
	DefaultCurrency = "MAD"
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 8

	// Ride Constants
	DefaultSearchRadius = 10.0 // kilometers
	MaxSearchRadius     = 50.0 // kilometers
	MaxNearbyDrivers    = 20
	MaxPendingRides     = 20
	MaxScheduleAhead    = 7 * 24 * time.Hour

	// Payment Constants
	PlatformCommissionRate = 0.12
	EarthRadiusKM          = 6371.0

	// Chat
	MaxMessageLength = 1000

	// Rate Limiting
	DefaultRateLimit = 100

	// Geo
	DefaultCitySpeedKMH = 30.0
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrUserNotFound       = "user not found"
	ErrUserExists         = "user already exists"
	ErrInvalidToken       = "invalid token"
	ErrInvalidInput       = "invalid input"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
	ErrValidationFailed   = "validation failed"
	ErrRideNotFound       = "ride not found"
	ErrDriverNotFound     = "driver not found"
	ErrNoDriversAvailable = "no drivers available"
)
