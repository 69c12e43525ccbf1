package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/romyseb/wedding/internal/middleware"
	"github.com/romyseb/wedding/internal/services"
)

// LoginConfirmer confirms a guest and opens a session.
type LoginConfirmer interface {
	Confirm(ctx context.Context, token, forcedLocale string) (*services.GuestSession, error)
}

// LoginHandler exchanges an access token for a guest session cookie.
type LoginHandler struct {
	access LoginConfirmer
}

// NewLoginHandler constructs a LoginHandler.
func NewLoginHandler(access LoginConfirmer) (*LoginHandler, error) {
	if access == nil {
		return nil, errors.New("login handler: confirmer is required")
	}
	return &LoginHandler{access: access}, nil
}

type loginRequest struct {
	Token  string `json:"token" validate:"required"`
	Locale string `json:"locale"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
}

// Login marks the member as confirmed and sets the session cookie.
//
// POST /api/login
func (h *LoginHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.access.Confirm(requestContext(c), req.Token, req.Locale)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	middleware.SetGuestCookie(c, session.Token)
	c.JSON(http.StatusOK, loginResponse{Success: true, Redirect: invitationPath(session.Locale)})
}
