package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lumeo-app/backend/internal/models"
	"github.com/lumeo-app/backend/internal/repositories"
	"github.com/lumeo-app/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commentRepository repositories.CommentRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository) *CommentHandler {
	return &CommentHandler{commentRepository: commentRepo}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comment/create", h.CreateComment)
	g.GET("/post/:id/comments", h.GetCommentsByPost)
}

// CreateComment adds a comment to a post. The commenter identity is the
// authenticated email.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	claims := currentClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Post ID and content are required")
	}

	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID format")
	}

	comment := &models.Comment{
		PostID:  postID,
		User:    claims.Email,
		Content: req.Content,
	}

	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		logger.Error.Printf("comment insert: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Comment created", "commentId": comment.ID})
}

// GetCommentsByPost returns a post's comments oldest-first
func (h *CommentHandler) GetCommentsByPost(c echo.Context) error {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID format")
	}

	comments, err := h.commentRepository.GetCommentsByPost(c.Request().Context(), postID)
	if err != nil {
		logger.Error.Printf("comments query: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}
