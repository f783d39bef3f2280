package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tourism-booking-api/internal/application"
	"github.com/oksasatya/tourism-booking-api/internal/interface/middleware"
	"github.com/oksasatya/tourism-booking-api/pkg/response"
)

// AuthHandler serves registration, password login and the OTP flow.
type AuthHandler struct {
	Svc    *application.AuthService
	Logger logrus.FieldLogger
}

func NewAuthHandler(svc *application.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" binding:"omitempty,pwd"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type phoneRequest struct {
	Phone string `json:"phone"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusCreated, "User registered successfully", gin.H{
		"token":     res.Token,
		"user":      res.User,
	})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Login successful", gin.H{
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      res.User,
	})
}

// SendOTP POST /api/auth/send-otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req phoneRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.RequestOTP(c.Request.Context(), req.Phone)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ResendOTP POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req phoneRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.ResendOTP(c.Request.Context(), req.Phone)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// VerifyOTP POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.VerifyOTP(c.Request.Context(), req.Phone, req.OTP)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Login successful", gin.H{
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      res.User,
	})
}

// VerifyToken POST /api/auth/verify (behind JWTAuth)
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	response.Message(c, http.StatusOK, "Token valid", gin.H{"userId": middleware.UserID(c)})
}
