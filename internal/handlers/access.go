package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/romyseb/wedding/internal/locale"
	"github.com/romyseb/wedding/internal/middleware"
	"github.com/romyseb/wedding/internal/services"
)

// Reason codes used in resend page redirects.
const (
	reasonMissing  = "missing"
	reasonInvalid  = "invalid"
	reasonNotFound = "not_found"
)

// AccessVerifier decides whether an access link token grants entry.
type AccessVerifier interface {
	Verify(ctx context.Context, token string) (services.AccessDecision, error)
}

// AccessHandler serves the personal access links sent by email.
type AccessHandler struct {
	access     AccessVerifier
	negotiator *locale.Negotiator
}

// NewAccessHandler constructs an AccessHandler.
func NewAccessHandler(access AccessVerifier, negotiator *locale.Negotiator) (*AccessHandler, error) {
	if access == nil {
		return nil, errors.New("access handler: verifier is required")
	}
	if negotiator == nil {
		negotiator = locale.NewNegotiator(locale.Default)
	}
	return &AccessHandler{access: access, negotiator: negotiator}, nil
}

// Entry handles the unlocalised link from emails by forwarding it to the guest's locale.
//
// GET /acces?token=
func (h *AccessHandler) Entry(c *gin.Context) {
	target := url.URL{
		Path:     "/" + h.negotiator.FromRequest(c.Request) + "/acces",
		RawQuery: c.Request.URL.RawQuery,
	}
	c.Redirect(http.StatusFound, target.String())
}

// Page verifies the token, stores it in the guest cookie and redirects to the invitation.
// Every failure lands on the resend page with a reason code.
//
// GET /:locale/acces?token=
func (h *AccessHandler) Page(c *gin.Context) {
	loc := middleware.RouteLocale(c, h.negotiator)

	decision, err := h.access.Verify(requestContext(c), c.Query("token"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if !decision.Granted() {
		c.Redirect(http.StatusFound, resendPath(loc, decision.Outcome))
		return
	}

	middleware.SetGuestCookie(c, c.Query("token"))
	c.Redirect(http.StatusFound, invitationPath(loc))
}

type accessResponse struct {
	OK       bool   `json:"ok"`
	Reason   string `json:"reason,omitempty"`
	Redirect string `json:"redirect"`
}

// API is the JSON variant of Page for clients that navigate themselves.
//
// GET /api/acces?token=&locale=
func (h *AccessHandler) API(c *gin.Context) {
	loc := h.negotiator.Fallback()
	if requested := c.Query("locale"); requested != "" {
		loc = h.negotiator.Normalize(requested)
	}

	decision, err := h.access.Verify(requestContext(c), c.Query("token"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	switch decision.Outcome {
	case services.AccessGranted:
		middleware.SetGuestCookie(c, c.Query("token"))
		c.JSON(http.StatusOK, accessResponse{OK: true, Redirect: invitationPath(loc)})
	case services.AccessMissing:
		c.JSON(http.StatusBadRequest, accessResponse{Reason: "missing_token", Redirect: resendPath(loc, decision.Outcome)})
	case services.AccessNotFound:
		c.JSON(http.StatusNotFound, accessResponse{Reason: "not_found", Redirect: resendPath(loc, decision.Outcome)})
	default:
		c.JSON(http.StatusUnauthorized, accessResponse{Reason: "invalid_token", Redirect: resendPath(loc, decision.Outcome)})
	}
}

func invitationPath(loc string) string {
	return "/" + loc + "/invitation"
}

func resendPath(loc string, outcome services.AccessOutcome) string {
	reason := reasonInvalid
	switch outcome {
	case services.AccessMissing:
		reason = reasonMissing
	case services.AccessNotFound:
		reason = reasonNotFound
	}
	return "/" + loc + "/reenvio?reason=" + reason
}
