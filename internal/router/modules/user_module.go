package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/tourism-booking-api/internal/interface/http"
	"github.com/oksasatya/tourism-booking-api/internal/interface/middleware"
)

// UserModule wires profile and favorites routes, all behind the bearer token.
// GET/PUT /auth/profile, POST /auth/favorites, DELETE /auth/favorites/:placeId
type UserModule struct {
	Handler  *handlers.UserHandler
	Verifier middleware.TokenVerifier
}

func NewUserModule(h *handlers.UserHandler, v middleware.TokenVerifier) *UserModule {
	return &UserModule{Handler: h, Verifier: v}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.Use(middleware.JWTAuth(m.Verifier))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/favorites", m.Handler.AddFavorite)
		auth.DELETE("/favorites/:placeId", m.Handler.RemoveFavorite)
	}
}
