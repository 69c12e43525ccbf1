package api

import (
	"github.com/gin-gonic/gin"

	"github.com/romyseb/wedding/internal/handlers"
)

func registerInviteRoutes(api *gin.RouterGroup, issuer handlers.InviteIssuer) error {
	inviteHandler, err := handlers.NewInviteHandler(issuer)
	if err != nil {
		return err
	}

	invites := api.Group("/invite")
	{
		invites.POST("/request-bulk", inviteHandler.Bulk)
		invites.POST("/bulk", inviteHandler.Bulk)
		invites.POST("/resend", inviteHandler.Resend)
	}
	return nil
}

func registerGuestbookRoutes(api *gin.RouterGroup, rsvps handlers.RSVPRecorder, songs handlers.SongCatalog) error {
	rsvpHandler, err := handlers.NewRSVPHandler(rsvps)
	if err != nil {
		return err
	}
	songHandler, err := handlers.NewSongHandler(songs)
	if err != nil {
		return err
	}

	api.POST("/rsvp", rsvpHandler.Submit)
	api.GET("/songs", songHandler.List)
	api.POST("/songs", songHandler.Create)
	return nil
}
