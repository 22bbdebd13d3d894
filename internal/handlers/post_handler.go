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

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postRepository repositories.PostRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository) *PostHandler {
	return &PostHandler{postRepository: postRepo}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/post/create", h.CreatePost)
	g.GET("/post/all", h.GetAllPosts)
	g.GET("/posts/:email", h.GetPostsByAuthor)
	g.GET("/post/:id", h.GetPost)
}

// CreatePost creates a new post. The author email comes from the
// request body as the client sends it; it is not cross-checked against
// the token identity.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Title, content, and author are required")
	}

	post := &models.Post{
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		logger.Error.Printf("post insert: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Post created", "postId": post.ID})
}

// GetAllPosts returns the feed: every post newest-first, annotated with
// the caller's favorite flag and the author's username
func (h *PostHandler) GetAllPosts(c echo.Context) error {
	viewerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	posts, err := h.postRepository.GetFeed(c.Request().Context(), viewerID)
	if err != nil {
		logger.Error.Printf("feed query: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// GetPostsByAuthor returns the posts of one author, newest-first and
// unenriched
func (h *PostHandler) GetPostsByAuthor(c echo.Context) error {
	email := c.Param("email")

	posts, err := h.postRepository.GetPostsByAuthor(c.Request().Context(), email)
	if err != nil {
		logger.Error.Printf("author posts query: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// GetPost returns a single post with the caller's favorite flag
func (h *PostHandler) GetPost(c echo.Context) error {
	viewerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID format")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID, viewerID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		logger.Error.Printf("post query: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"post": post})
}
