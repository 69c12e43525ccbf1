package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/romyseb/wedding/internal/services"
	"github.com/romyseb/wedding/pkg/response"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// InvitationReader loads the protected invitation content.
type InvitationReader interface {
	Overview(ctx context.Context, session *services.GuestSession) (*services.InvitationOverview, error)
}

// InvitationHandler serves the pages behind the guest gate.
type InvitationHandler struct {
	access InvitationReader
}

// NewInvitationHandler constructs an InvitationHandler.
func NewInvitationHandler(access InvitationReader) (*InvitationHandler, error) {
	if access == nil {
		return nil, errors.New("invitation handler: reader is required")
	}
	return &InvitationHandler{access: access}, nil
}

// Show returns the guest's household invitation.
//
// GET /:locale/invitation
func (h *InvitationHandler) Show(c *gin.Context) {
	overview, ok := h.overview(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, overview)
}

// QRCode renders the guest's personal access link as a PNG for printed cards.
//
// GET /:locale/invitation/qr?size=
func (h *InvitationHandler) QRCode(c *gin.Context) {
	overview, ok := h.overview(c)
	if !ok {
		return
	}

	size := parseIntQuery(c, "size", defaultQRSize)
	if size <= 0 || size > maxQRSize {
		size = defaultQRSize
	}

	png, err := qrcode.Encode(overview.Guest.AccessLink, qrcode.Medium, size)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *InvitationHandler) overview(c *gin.Context) (*services.InvitationOverview, bool) {
	session, ok := currentGuest(c)
	if !ok {
		return nil, false
	}

	overview, err := h.access.Overview(requestContext(c), session)
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	return overview, true
}
