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

// FavoriteHandler handles favorite-related HTTP requests
type FavoriteHandler struct {
	favoriteRepository repositories.FavoriteRepository
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteRepo repositories.FavoriteRepository) *FavoriteHandler {
	return &FavoriteHandler{favoriteRepository: favoriteRepo}
}

// RegisterFavoriteRoutes registers favorite-related routes
func (h *FavoriteHandler) RegisterFavoriteRoutes(g *echo.Group) {
	g.POST("/favorites/add", h.AddFavorite)
	g.DELETE("/favorites/remove", h.RemoveFavorite)
	g.GET("/favorites", h.ListFavorites)
	g.GET("/favorites/posts", h.ListFavoritePosts)
}

// bindFavoriteRequest reads and validates the postId payload shared by
// add and remove
func bindFavoriteRequest(c echo.Context) (primitive.ObjectID, error) {
	var req models.FavoriteRequest
	if err := c.Bind(&req); err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Post ID is required")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Post ID is required")
	}

	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID format")
	}
	return postID, nil
}

// AddFavorite marks a post as favorited by the caller
func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	postID, err := bindFavoriteRequest(c)
	if err != nil {
		return err
	}

	// Pre-insert check; concurrent adds can still slip through since
	// there is no unique index on (userId, postId).
	exists, err := h.favoriteRepository.Exists(c.Request().Context(), userID, postID)
	if err != nil {
		logger.Error.Printf("favorite exists check: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	if exists {
		return echo.NewHTTPError(http.StatusBadRequest, "Post is already favorited")
	}

	favorite := &models.Favorite{
		UserID: userID,
		PostID: postID,
	}

	if err := h.favoriteRepository.AddFavorite(c.Request().Context(), favorite); err != nil {
		logger.Error.Printf("favorite insert: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Favorite added", "favoriteId": favorite.ID})
}

// RemoveFavorite deletes the caller's favorite for a post
func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	postID, err := bindFavoriteRequest(c)
	if err != nil {
		return err
	}

	if err := h.favoriteRepository.RemoveFavorite(c.Request().Context(), userID, postID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Favorite not found")
		}
		logger.Error.Printf("favorite delete: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Favorite removed"})
}

// ListFavorites returns the caller's raw favorite documents
func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	favorites, err := h.favoriteRepository.ListByUser(c.Request().Context(), userID)
	if err != nil {
		logger.Error.Printf("favorites query: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"favorites": favorites})
}

// ListFavoritePosts returns the full post documents behind the caller's
// favorites
func (h *FavoriteHandler) ListFavoritePosts(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	posts, err := h.favoriteRepository.ListPostsByUser(c.Request().Context(), userID)
	if err != nil {
		logger.Error.Printf("favorite posts query: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}
