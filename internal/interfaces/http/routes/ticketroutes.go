package routes

import (
	"github.com/gin-gonic/gin"

	tickethandlers "github.com/orris-inc/ticketdesk/internal/interfaces/http/handlers/ticket"
)

type TicketRouteConfig struct {
	TicketHandler     *tickethandlers.TicketHandler
	EntryHandler      *tickethandlers.EntryHandler
	AttachmentHandler *tickethandlers.AttachmentHandler
	SearchHandler     *tickethandlers.SearchHandler
	// Middlewares run on every /api route, e.g. the rate limiter.
	Middlewares []gin.HandlerFunc
}

func SetupTicketRoutes(engine *gin.Engine, config *TicketRouteConfig) {
	api := engine.Group("/api")
	api.Use(config.Middlewares...)

	tickets := api.Group("/tickets")
	{
		tickets.GET("", config.TicketHandler.ListTickets)
		tickets.POST("", config.TicketHandler.CreateTicket)

		tickets.GET("/:id", config.TicketHandler.GetTicket)
		tickets.PATCH("/:id", config.TicketHandler.UpdateTicket)
		tickets.DELETE("/:id", config.TicketHandler.DeleteTicket)

		entries := tickets.Group("/:id/entries")
		{
			entries.POST("", config.EntryHandler.AddEntry)
			entries.PATCH("/:entryId", config.EntryHandler.UpdateEntry)
			entries.PUT("/:entryId", config.EntryHandler.SaveEntry)
			entries.DELETE("/:entryId", config.EntryHandler.DeleteEntry)

			entries.POST("/:entryId/attachments", config.AttachmentHandler.UploadAttachment)
			entries.DELETE("/:entryId/attachments/:attachmentId", config.AttachmentHandler.DeleteAttachment)
		}
	}

	api.GET("/search", config.SearchHandler.Search)

	// Attachment paths are built as /uploads/<storageName>.
	engine.GET("/uploads/:storageName", config.AttachmentHandler.Download)
}
