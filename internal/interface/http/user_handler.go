package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tourism-booking-api/internal/application"
	"github.com/oksasatya/tourism-booking-api/internal/domain/entity"
	"github.com/oksasatya/tourism-booking-api/internal/interface/middleware"
	"github.com/oksasatya/tourism-booking-api/pkg/response"
)

// UserHandler serves the authenticated user's profile and favorites.
type UserHandler struct {
	Svc    *application.AuthService
	Logger logrus.FieldLogger
}

func NewUserHandler(svc *application.AuthService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone" binding:"omitempty,indianmobile"`
}

type favoriteRequest struct {
	PlaceID string `json:"placeId"`
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	p, err := h.Svc.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": p})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.UserID(c), entity.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Profile updated", gin.H{"user": p})
}

// AddFavorite POST /api/auth/favorites {placeId}
func (h *UserHandler) AddFavorite(c *gin.Context) {
	var req favoriteRequest
	if !bindJSON(c, &req) {
		return
	}
	favs, err := h.Svc.AddFavorite(c.Request.Context(), middleware.UserID(c), req.PlaceID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Added to favorites", gin.H{"favorites": favs})
}

// RemoveFavorite DELETE /api/auth/favorites/:placeId
func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	favs, err := h.Svc.RemoveFavorite(c.Request.Context(), middleware.UserID(c), c.Param("placeId"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Removed from favorites", gin.H{"favorites": favs})
}
