package services

import (
	"context"
	"fmt"
	"strings"

	"tripsalama/internal/models"
	"tripsalama/internal/repositories/interfaces"
	"tripsalama/internal/utils"
	"tripsalama/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SendMessageRequest struct {
	Type    models.MessageType `json:"type"`
	Content string             `json:"content" binding:"required"`
}

// ChatService handles per-ride messaging. Every operation resolves the ride
// first and rejects callers who are neither its passenger nor its driver.
type ChatService struct {
	messageRepo interfaces.MessageRepository
	rideRepo    interfaces.RideRepository
	logger      *logger.Logger
}

func NewChatService(messageRepo interfaces.MessageRepository, rideRepo interfaces.RideRepository, log *logger.Logger) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		rideRepo:    rideRepo,
		logger:      log,
	}
}

func (s *ChatService) SendMessage(ctx context.Context, rideID, senderID primitive.ObjectID, req *SendMessageRequest) (*models.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("message content required: %w", ErrValidation)
	}
	if len(content) > utils.MaxMessageLength {
		return nil, fmt.Errorf("message longer than %d characters: %w", utils.MaxMessageLength, ErrValidation)
	}

	ride, err := s.participantRide(ctx, rideID, senderID)
	if err != nil {
		return nil, err
	}
	if ride.Status.IsTerminal() {
		return nil, fmt.Errorf("ride chat is closed in state %s: %w", ride.Status, ErrConflict)
	}

	msgType := req.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	message := &models.Message{
		RideID:   rideID,
		SenderID: senderID,
		Type:     msgType,
		Content:  content,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

func (s *ChatService) GetMessages(ctx context.Context, rideID, readerID primitive.ObjectID, limit int) ([]*models.Message, error) {
	if _, err := s.participantRide(ctx, rideID, readerID); err != nil {
		return nil, err
	}
	return s.messageRepo.GetByRide(ctx, rideID, limit)
}

func (s *ChatService) CountUnread(ctx context.Context, rideID, readerID primitive.ObjectID) (int64, error) {
	if _, err := s.participantRide(ctx, rideID, readerID); err != nil {
		return 0, err
	}
	return s.messageRepo.CountUnread(ctx, rideID, readerID)
}

func (s *ChatService) MarkRead(ctx context.Context, rideID, readerID primitive.ObjectID) error {
	if _, err := s.participantRide(ctx, rideID, readerID); err != nil {
		return err
	}
	return s.messageRepo.MarkRead(ctx, rideID, readerID)
}

func (s *ChatService) participantRide(ctx context.Context, rideID, userID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.PassengerID == userID {
		return ride, nil
	}
	if ride.DriverID != nil && *ride.DriverID == userID {
		return ride, nil
	}
	return nil, fmt.Errorf("not a participant of this ride: %w", ErrForbidden)
}
