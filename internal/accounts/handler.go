package accounts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiment-scoop/internal/shared/server/middleware"
	"sentiment-scoop/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
	// Env controls whether reset tokens are returned in the response body.
	// Outside production there is no mail delivery, so dev and staging hand
	// the token straight back.
	Env string
}

func NewHandler(svc *Service, env string) *Handler {
	return &Handler{Svc: svc, Env: env}
}

// RegisterPublicRoutes attaches the unauthenticated account endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.POST("/forgot-password", h.forgotPassword)
	rg.POST("/reset-password", h.resetPassword)
}

// RegisterProtectedRoutes attaches endpoints that require a valid token.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "All fields are required.")
		return
	}

	_, err := h.Svc.Register(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			respond.Error(c, http.StatusBadRequest, "All fields are required.")
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusBadRequest, "Email already registered.")
		default:
			respond.Error(c, http.StatusInternalServerError, "Registration failed.")
		}
		return
	}

	respond.Message(c, http.StatusOK, "Registration successful. Please log in.")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Email and password are required.")
		return
	}

	token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Login failed.")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"message": "Login successful.",
		"token":   token,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Email is required.")
		return
	}

	token, err := h.Svc.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			respond.Error(c, http.StatusBadRequest, "Email is required.")
			return
		case errors.Is(err, ErrNotFound):
			// Same response as the happy path, no account enumeration.
			respond.Message(c, http.StatusOK, "If that email is registered, a reset token has been issued.")
			return
		default:
			respond.Error(c, http.StatusInternalServerError, "Could not issue reset token.")
			return
		}
	}

	if h.Env != "production" {
		respond.JSON(c, http.StatusOK, gin.H{
			"message":    "If that email is registered, a reset token has been issued.",
			"resetToken": token,
		})
		return
	}
	respond.Message(c, http.StatusOK, "If that email is registered, a reset token has been issued.")
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Token and new password are required.")
		return
	}

	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			respond.Error(c, http.StatusBadRequest, "Token and new password are required.")
		case errors.Is(err, ErrInvalidResetToken):
			respond.Error(c, http.StatusBadRequest, "Invalid or expired reset token.")
		default:
			respond.Error(c, http.StatusInternalServerError, "Could not reset password.")
		}
		return
	}

	respond.Message(c, http.StatusOK, "Password has been reset. Please log in.")
}

func (h *Handler) me(c *gin.Context) {
	accountID := middleware.UserIDFromContext(c)
	account, err := h.Svc.GetByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "Account not found.")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Failed to load account.")
		return
	}
	respond.OK(c, account)
}
