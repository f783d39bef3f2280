package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/tourism-booking-api/internal/interface/http"
	"github.com/oksasatya/tourism-booking-api/internal/interface/middleware"
)

// AuthModule wires the public login endpoints and the token check.
// Public: POST /auth/register, /auth/login, /auth/send-otp, /auth/verify-otp, /auth/resend-otp
// Protected: POST /auth/verify
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Verifier middleware.TokenVerifier
}

func NewAuthModule(h *handlers.AuthHandler, v middleware.TokenVerifier) *AuthModule {
	return &AuthModule{Handler: h, Verifier: v}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/register", m.Handler.Register)
	auth.POST("/login", m.Handler.Login)
	auth.POST("/send-otp", m.Handler.SendOTP)
	auth.POST("/verify-otp", m.Handler.VerifyOTP)
	auth.POST("/resend-otp", m.Handler.ResendOTP)
	auth.POST("/verify", middleware.JWTAuth(m.Verifier), m.Handler.VerifyToken)
}
