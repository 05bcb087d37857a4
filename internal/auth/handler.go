package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yahyalegrini24/AttendEase/internal/identity"
	"github.com/yahyalegrini24/AttendEase/internal/models"
)

const stateCookie = "oauth_state"

type Handler struct {
	svc      *Service
	contexts *identity.Registry
	logger   *zap.Logger
}

func NewHandler(svc *Service, contexts *identity.Registry, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, contexts: contexts, logger: logger}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required,max=120"`
}

type LoginResponse struct {
	TokenPair
	Teacher *models.Teacher `json:"teacher"`
}

func (h *Handler) setAccessCookie(c *gin.Context, pair *TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, pair.AccessToken, pair.ExpiresIn, "/", "", c.Request.TLS != nil, true)
}

// Login godoc
// @Summary      Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body LoginRequest true "Credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} map[string]string
// @Failure      401 {object} map[string]string
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}
	pair, teacher, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	h.setAccessCookie(c, pair)
	c.JSON(http.StatusOK, LoginResponse{TokenPair: *pair, Teacher: teacher})
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body RefreshRequest true "Refresh token"
// @Success      200 {object} TokenPair
// @Failure      401 {object} map[string]string
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing refresh token"})
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	h.setAccessCookie(c, pair)
	c.JSON(http.StatusOK, pair)
}

// Logout godoc
// @Summary      Sign out the current session
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401 {object} map[string]string
// @Router       /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	claims := CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.svc.Logout(c.Request.Context(), claims); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	h.contexts.Drop(claims.SessionID)
	c.SetCookie(AccessCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Status(http.StatusNoContent)
}

// GoogleLogin godoc
// @Summary      Start Google sign-in
// @Tags         auth
// @Success      307
// @Failure      404 {object} map[string]string
// @Router       /auth/google/login [get]
func (h *Handler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	url, err := h.svc.GoogleAuthURL(state)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not enabled"})
		return
	}
	c.SetCookie(stateCookie, state, 600, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback godoc
// @Summary      Google sign-in callback
// @Tags         auth
// @Produce      json
// @Param        code  query string true "Authorization code"
// @Param        state query string true "State"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} map[string]string
// @Failure      403 {object} map[string]string
// @Router       /auth/google/callback [get]
func (h *Handler) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OAuth state"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	pair, teacher, err := h.svc.LoginWithGoogle(c.Request.Context(), c.Query("code"))
	if err != nil {
		if errors.Is(err, ErrUnknownTeacher) {
			c.JSON(http.StatusForbidden, gin.H{"error": "No teacher account for this Google user"})
			return
		}
		h.logger.Warn("google sign-in failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to sign in with Google"})
		return
	}
	h.setAccessCookie(c, pair)
	c.JSON(http.StatusOK, LoginResponse{TokenPair: *pair, Teacher: teacher})
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} identity.User
// @Failure      401 {object} map[string]string
// @Router       /me [get]
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentUser(c))
}

// UpdateMe godoc
// @Summary      Update the current user's profile
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body UpdateProfileRequest true "Profile"
// @Success      200 {object} identity.User
// @Failure      400 {object} map[string]string
// @Failure      401 {object} map[string]string
// @Router       /me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A name of at most 120 characters is required"})
		return
	}
	claims := CurrentClaims(c)
	if err := h.svc.UpdateProfile(c.Request.Context(), claims.Subject, req.Name); err != nil {
		if errors.Is(err, ErrEmptyName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("profile update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	if ic := h.contexts.Lookup(claims.SessionID); ic != nil && ic.User() != nil {
		c.JSON(http.StatusOK, ic.User())
		return
	}
	c.JSON(http.StatusOK, CurrentUser(c))
}
