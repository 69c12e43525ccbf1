package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/romyseb/wedding/internal/models"
	"github.com/romyseb/wedding/internal/services"
	"github.com/romyseb/wedding/pkg/response"
)

// RSVPRecorder stores RSVP answers.
type RSVPRecorder interface {
	Submit(ctx context.Context, input services.RSVPInput) (*models.RSVP, error)
}

// RSVPHandler accepts the public RSVP form.
type RSVPHandler struct {
	rsvps RSVPRecorder
}

// NewRSVPHandler constructs an RSVPHandler.
func NewRSVPHandler(rsvps RSVPRecorder) (*RSVPHandler, error) {
	if rsvps == nil {
		return nil, errors.New("rsvp handler: recorder is required")
	}
	return &RSVPHandler{rsvps: rsvps}, nil
}

type rsvpRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=200"`
	Email   string `json:"email" validate:"omitempty,max=320,emailshape"`
	Status  string `json:"status"`
	Message string `json:"message" validate:"max=2000"`
}

// Submit records an answer.
//
// POST /api/rsvp
func (h *RSVPHandler) Submit(c *gin.Context) {
	var req rsvpRequest
	if !bindAndValidate(c, &req) {
		return
	}

	rsvp, err := h.rsvps.Submit(requestContext(c), services.RSVPInput{
		Name:    req.Name,
		Email:   req.Email,
		Status:  req.Status,
		Message: req.Message,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rsvp)
}
