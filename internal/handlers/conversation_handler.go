package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lumeo-app/backend/internal/models"
	"github.com/lumeo-app/backend/internal/repositories"
	"github.com/lumeo-app/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConversationHandler handles conversation and message HTTP requests
type ConversationHandler struct {
	conversationRepository repositories.ConversationRepository
	messageRepository      repositories.MessageRepository
	userRepository         repositories.UserRepository
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(
	conversationRepo repositories.ConversationRepository,
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
) *ConversationHandler {
	return &ConversationHandler{
		conversationRepository: conversationRepo,
		messageRepository:      messageRepo,
		userRepository:         userRepo,
	}
}

// RegisterConversationRoutes registers conversation and message routes
func (h *ConversationHandler) RegisterConversationRoutes(g *echo.Group) {
	g.POST("/conversations", h.CreateConversation)
	g.GET("/conversations", h.ListConversations)
	g.GET("/conversations/:id", h.GetConversation)
	g.GET("/conversations/:id/messages", h.ListMessages)
	g.POST("/messages", h.SendMessage)
}

// resolveParticipant turns an id-or-email identifier into a user id
func (h *ConversationHandler) resolveParticipant(c echo.Context, identifier string) (primitive.ObjectID, error) {
	if id, err := primitive.ObjectIDFromHex(identifier); err == nil {
		return id, nil
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), identifier)
	if err != nil {
		if err == repositories.ErrNotFound {
			return primitive.NilObjectID, echo.NewHTTPError(http.StatusNotFound,
				fmt.Sprintf("User not found for email: %s", identifier))
		}
		logger.Error.Printf("participant lookup: %v", err)
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return user.ID, nil
}

// CreateConversation starts a conversation with the given participants.
// The caller is always included. A fresh document is inserted even when
// one already exists for the same participant set.
func (h *ConversationHandler) CreateConversation(c echo.Context) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Participants are required")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Participants are required")
	}

	participants := make([]primitive.ObjectID, 0, len(req.Participants)+1)
	for _, identifier := range req.Participants {
		id, err := h.resolveParticipant(c, identifier)
		if err != nil {
			return err
		}
		participants = append(participants, id)
	}

	callerIncluded := false
	for _, id := range participants {
		if id == callerID {
			callerIncluded = true
			break
		}
	}
	if !callerIncluded {
		participants = append(participants, callerID)
	}

	conversation := &models.Conversation{
		Participants: participants,
		LastMessage:  nil,
	}

	if err := h.conversationRepository.CreateConversation(c.Request().Context(), conversation); err != nil {
		logger.Error.Printf("conversation insert: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Conversation created", "conversationId": conversation.ID})
}

// ListConversations returns the caller's conversations newest-updated
// first, with participant profiles joined in
func (h *ConversationHandler) ListConversations(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	conversations, err := h.conversationRepository.ListByParticipant(c.Request().Context(), userID)
	if err != nil {
		logger.Error.Printf("conversations query: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"conversations": conversations})
}

// GetConversation returns one conversation with its transcript embedded
func (h *ConversationHandler) GetConversation(c echo.Context) error {
	conversationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID format")
	}

	conversation, err := h.conversationRepository.GetWithMessages(c.Request().Context(), conversationID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
		}
		logger.Error.Printf("conversation query: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"conversation": conversation})
}

// SendMessage delivers a message into an existing conversation, or into
// a looked-up-or-created one when only a recipient is given.
//
// The lookup-or-create, message insert, and lastMessage update are three
// separate writes; concurrent senders can race them into a duplicate
// conversation or a stale lastMessage snapshot.
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	senderID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Text is required")
	}

	var conversationID primitive.ObjectID
	if req.ConversationID != "" {
		conversationID, err = primitive.ObjectIDFromHex(req.ConversationID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID format")
		}
	} else {
		recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "A conversation ID or recipient ID is required")
		}

		existing, err := h.conversationRepository.FindByParticipants(c.Request().Context(), senderID, recipientID)
		switch err {
		case nil:
			conversationID = existing.ID
		case repositories.ErrNotFound:
			conversation := &models.Conversation{
				Participants: []primitive.ObjectID{senderID, recipientID},
				LastMessage:  nil,
			}
			if err := h.conversationRepository.CreateConversation(c.Request().Context(), conversation); err != nil {
				logger.Error.Printf("conversation insert: %v", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
			}
			conversationID = conversation.ID
		default:
			logger.Error.Printf("conversation lookup: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
		}
	}

	message := &models.Message{
		ConversationID: conversationID,
		Sender:         senderID,
		Text:           req.Text,
	}

	if err := h.messageRepository.CreateMessage(c.Request().Context(), message); err != nil {
		logger.Error.Printf("message insert: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	last := models.LastMessage{
		Text:   req.Text,
		SentAt: time.Now(),
		Sender: senderID,
	}
	if err := h.conversationRepository.SetLastMessage(c.Request().Context(), conversationID, last); err != nil {
		logger.Error.Printf("lastMessage update: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":        "Message sent",
		"messageId":      message.ID,
		"conversationId": conversationID,
	})
}

// ListMessages returns a conversation's messages enriched with sender
// profiles, newest-first
func (h *ConversationHandler) ListMessages(c echo.Context) error {
	conversationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID format")
	}

	messages, err := h.messageRepository.ListByConversation(c.Request().Context(), conversationID)
	if err != nil {
		logger.Error.Printf("messages query: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"messages": messages})
}
