package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lumeo-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentClaims returns the token claims stored by the auth middleware,
// or nil when the route was reached without them.
func currentClaims(c echo.Context) *models.JwtCustomClaims {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUserID resolves the authenticated user's ObjectID from claims
func currentUserID(c echo.Context) (primitive.ObjectID, error) {
	claims := currentClaims(c)
	if claims == nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusForbidden, "Invalid user ID in token")
	}
	return id, nil
}
