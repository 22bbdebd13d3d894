package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lumeo-app/backend/internal/models"
	"github.com/lumeo-app/backend/internal/repositories"
	"github.com/lumeo-app/backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterUserRoutes registers user profile-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.PUT("/user/update", h.UpdateProfile)
	g.GET("/user/get/:email", h.GetUserByEmail)
}

// UpdateProfile updates only the provided fields of the caller's
// profile, re-hashing the password when one is supplied
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	update := repositories.ProfileUpdate{
		Username: req.Username,
		PhotoURL: req.PhotoURL,
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error.Printf("profile password hash: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
		}
		update.PasswordHash = string(hashed)
	}

	if err := h.userRepository.UpdateProfile(c.Request().Context(), userID, update); err != nil {
		if err == repositories.ErrNotModified {
			return echo.NewHTTPError(http.StatusBadRequest, "No changes were made")
		}
		logger.Error.Printf("profile update: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		logger.Error.Printf("profile refetch: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully", "user": user})
}

// GetUserByEmail fetches a profile by email, without the password hash
func (h *UserHandler) GetUserByEmail(c echo.Context) error {
	email := c.Param("email")

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), email)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		logger.Error.Printf("user lookup: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
