package api

import (
	"github.com/gin-gonic/gin"

	"github.com/romyseb/wedding/internal/handlers"
	"github.com/romyseb/wedding/internal/middleware"
)

func registerAccessRoutes(r *gin.Engine, api *gin.RouterGroup, deps Dependencies) error {
	accessHandler, err := handlers.NewAccessHandler(deps.Access, deps.Negotiator)
	if err != nil {
		return err
	}
	loginHandler, err := handlers.NewLoginHandler(deps.Access)
	if err != nil {
		return err
	}
	invitationHandler, err := handlers.NewInvitationHandler(deps.Access)
	if err != nil {
		return err
	}

	// Access links from emails
	r.GET("/acces", accessHandler.Entry)
	r.GET("/:locale/acces", accessHandler.Page)
	api.GET("/acces", accessHandler.API)
	api.POST("/login", loginHandler.Login)

	// Gated invitation pages
	invitation := r.Group("/:locale/invitation")
	invitation.Use(middleware.GuestGate(deps.Access, deps.Negotiator))
	{
		invitation.GET("", invitationHandler.Show)
		invitation.GET("/qr", invitationHandler.QRCode)
	}
	return nil
}
