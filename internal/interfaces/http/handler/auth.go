package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	identityapp "github.com/sadsod/storefront/internal/application/identity"
	"github.com/sadsod/storefront/internal/interfaces/http/dto"
	"github.com/sadsod/storefront/internal/interfaces/http/middleware"
)

// AuthHandler handles admin sign-in and sign-out
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login exchanges admin credentials for an access token.
// @Summary      Admin login
// @Description  Exchange admin credentials for an access token
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=identityapp.LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout revokes the presented token until it would have expired.
// @Summary      Admin logout
// @Description  Revoke the presented access token
// @Tags         admin-auth
// @Produce      json
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.ID, claims.GetRemainingTTL()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me returns the signed-in admin.
// @Summary      Current admin
// @Description  The signed-in admin
// @Tags         admin-auth
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	me := gin.H{
		"id":       claims.AdminID,
		"username": claims.Username,
	}
	if claims.ExpiresAt != nil {
		me["expires_at"] = claims.ExpiresAt.Time
	}
	h.Success(c, me)
}
