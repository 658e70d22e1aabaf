package http

import (
	"net/http"

	cport "msg-relay/internal/infrastructure/cache/port"
	"msg-relay/internal/infrastructure/realtime"
	"msg-relay/internal/pkg/messaging/application/dispatch"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"
	"msg-relay/internal/pkg/messaging/presentation/controller"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers messaging HTTP endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, repo repository.MessagingRepository, d *dispatch.Dispatcher, cache cport.Cache, hub *realtime.Hub) {
	sendSmsCtl := controller.NewSendSmsController(d)
	sendEmailCtl := controller.NewSendEmailController(d)
	smsWebhookCtl := controller.NewSmsWebhookController(d)
	emailWebhookCtl := controller.NewEmailWebhookController(d)
	listConvCtl := controller.NewListConversationsController(repo, cache)
	getMsgCtl := controller.NewGetMessagesController(repo)
	streamCtl := controller.NewConversationStreamController(hub)

	// GET /api/messages -> health probe for the outbound surface
	g.GET("/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Outbound messaging service is running"})
	})

	// GET /api/webhooks -> health probe for the inbound surface
	g.GET("/webhooks", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Webhook service is running"})
	})

	// POST /api/messages/sms -> send an outbound SMS or MMS
	g.POST("/messages/sms", sendSmsCtl.Handle())

	// POST /api/messages/email -> send an outbound email
	g.POST("/messages/email", sendEmailCtl.Handle())

	// POST /api/webhooks/sms -> receive an inbound SMS or MMS
	g.POST("/webhooks/sms", smsWebhookCtl.Handle())

	// POST /api/webhooks/email -> receive an inbound email
	g.POST("/webhooks/email", emailWebhookCtl.Handle())

	// GET /api/conversations -> list all conversation ids
	g.GET("/conversations", listConvCtl.Handle())

	// GET /api/conversations/:conversationId/messages -> ordered history
	g.GET("/conversations/:conversationId/messages", getMsgCtl.Handle())

	// GET /api/conversations/:conversationId/stream -> websocket live stream
	g.GET("/conversations/:conversationId/stream", streamCtl.Handle())
}
