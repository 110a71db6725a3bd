package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tripsalama/internal/models"
	"tripsalama/internal/repositories/interfaces"
	"tripsalama/internal/utils"
	"tripsalama/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	FirstName string          `json:"first_name" binding:"required,min=2,max=50"`
	LastName  string          `json:"last_name" binding:"required,min=2,max=50"`
	Email     string          `json:"email" binding:"required,email"`
	Phone     string          `json:"phone"`
	Password  string          `json:"password" binding:"required,min=8"`
	Role      models.UserRole `json:"role" binding:"required,oneof=passenger driver"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User   *models.User     `json:"user"`
	Tokens *utils.TokenPair `json:"tokens"`
}

// AuthService owns registration, login and token refresh. Role is fixed at
// registration: passengers come out verified and active, drivers come out
// unverified and inactive until the identity verification gate passes them.
type AuthService struct {
	userRepo  interfaces.UserRepository
	jwtSecret string
	logger    *logger.Logger
}

func NewAuthService(userRepo interfaces.UserRepository, jwtSecret string, log *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if req.Role != models.UserRolePassenger && req.Role != models.UserRoleDriver {
		return nil, fmt.Errorf("role %q not allowed at registration: %w", req.Role, ErrValidation)
	}
	if len(req.Password) < utils.PasswordMinLength {
		return nil, fmt.Errorf("password shorter than %d characters: %w", utils.PasswordMinLength, ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      email,
		Phone:      strings.TrimSpace(req.Phone),
		Password:   string(hashed),
		Role:       req.Role,
		IsVerified: req.Role == models.UserRolePassenger,
		IsActive:   req.Role == models.UserRolePassenger,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithUserID(user.ID).WithField("role", user.Role).Info("user registered")

	tokens, err := utils.GenerateTokenPair(user.ID, string(user.Role), user.Email, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Same error for unknown email and wrong password.
		return nil, fmt.Errorf("%s: %w", utils.ErrInvalidCredentials, ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%s: %w", utils.ErrInvalidCredentials, ErrForbidden)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated: %w", ErrForbidden)
	}

	now := time.Now()
	if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("failed to stamp last login")
	}
	user.LastLoginAt = &now

	tokens, err := utils.GenerateTokenPair(user.ID, string(user.Role), user.Email, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.logger.WithUserID(user.ID).Info("user logged in")

	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := utils.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", utils.ErrInvalidToken, ErrForbidden)
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", utils.ErrInvalidToken, ErrForbidden)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated: %w", ErrForbidden)
	}

	return utils.GenerateTokenPair(user.ID, string(user.Role), user.Email, s.jwtSecret)
}

func (s *AuthService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, updates map[string]interface{}) (*models.User, error) {
	// Role, verification and activation flags are never client-writable.
	for _, forbidden := range []string{"role", "is_verified", "is_active", "password", "email"} {
		delete(updates, forbidden)
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no updatable fields supplied: %w", ErrValidation)
	}

	if err := s.userRepo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) error {
	if len(newPassword) < utils.PasswordMinLength {
		return fmt.Errorf("password shorter than %d characters: %w", utils.PasswordMinLength, ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return fmt.Errorf("%s: %w", utils.ErrInvalidCredentials, ErrForbidden)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.Update(ctx, userID, map[string]interface{}{"password": string(hashed)})
}
