package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rcmalta/laytrack/internal/api/middleware"
	"github.com/rcmalta/laytrack/internal/domain"
	"github.com/rcmalta/laytrack/internal/service"
)

// AuthHandler serves registration, confirmation, and session endpoints.
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register godoc
// POST /api/auth/register
// Body: {"email":"a@b.c","password":"…","display_name":"…"}
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	resp, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		switch err {
		case domain.ErrEmailTaken:
			respondError(c, http.StatusConflict, "ERR_EMAIL_TAKEN", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not create account")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, resp)
}

// Confirm godoc
// GET /api/auth/confirm?token=…
func (h *AuthHandler) Confirm(c *gin.Context) {
	token := c.Query("token")

	if err := h.authSvc.Confirm(c.Request.Context(), token); err != nil {
		switch err {
		case domain.ErrInvalidConfirmToken:
			respondError(c, http.StatusBadRequest, "ERR_INVALID_CONFIRM_TOKEN", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not confirm account")
		}
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "email confirmed — you can sign in now"})
}

// Resend godoc
// POST /api/auth/resend
// Body: {"email":"a@b.c"}
// Always answers generically so the endpoint cannot be used to probe
// which addresses are registered.
func (h *AuthHandler) Resend(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	if err := h.authSvc.ResendConfirmation(c.Request.Context(), body.Email); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not resend confirmation")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"message": "if that address has a pending account, a new confirmation link was sent",
	})
}

// Login godoc
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		switch err {
		case domain.ErrInvalidCredentials:
			respondError(c, http.StatusUnauthorized, "ERR_INVALID_CREDENTIALS", err.Error())
		case domain.ErrEmailNotConfirmed:
			respondError(c, http.StatusForbidden, "ERR_EMAIL_NOT_CONFIRMED", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not sign in")
		}
		return
	}
	respondSuccess(c, http.StatusOK, resp)
}

// Refresh godoc
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	access, refresh, err := h.authSvc.RefreshToken(c.Request.Context(), body.RefreshToken)
	if err != nil {
		if err == domain.ErrTokenExpired {
			respondError(c, http.StatusUnauthorized, "ERR_TOKEN_EXPIRED", err.Error())
			return
		}
		respondError(c, http.StatusUnauthorized, "ERR_TOKEN_INVALID", domain.ErrTokenInvalid.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Me godoc
// GET /api/me [JWT]
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)

	profile, err := h.authSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", "user not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch profile")
		return
	}
	respondSuccess(c, http.StatusOK, profile)
}
