package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/romyseb/wedding/internal/services"
	"github.com/romyseb/wedding/pkg/response"
)

// InviteIssuer issues group invitations and rotates member tokens.
type InviteIssuer interface {
	RequestBulk(ctx context.Context, req services.BulkInviteRequest) (*services.BulkInviteResult, error)
	Resend(ctx context.Context, email string) (*services.ResendResult, error)
}

// InviteHandler exposes the invitation request and resend endpoints.
type InviteHandler struct {
	invites InviteIssuer
}

// NewInviteHandler constructs an InviteHandler.
func NewInviteHandler(invites InviteIssuer) (*InviteHandler, error) {
	if invites == nil {
		return nil, errors.New("invite handler: issuer is required")
	}
	return &InviteHandler{invites: invites}, nil
}

// Bulk creates a household invitation and emails every member. Responds 207 when some
// emails could not be delivered.
//
// POST /api/invite/request-bulk (alias POST /api/invite/bulk)
func (h *InviteHandler) Bulk(c *gin.Context) {
	var req services.BulkInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.invites.RequestBulk(requestContext(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	status := http.StatusOK
	if result.Status == services.DeliveryPartial {
		status = http.StatusMultiStatus
	}
	response.Success(c, status, result)
}

type resendRequest struct {
	Email string `json:"email" validate:"required,max=320"`
}

// Resend mints a new access link for the member addressed by email.
//
// POST /api/invite/resend
func (h *InviteHandler) Resend(c *gin.Context) {
	var req resendRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.invites.Resend(requestContext(c), req.Email)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
