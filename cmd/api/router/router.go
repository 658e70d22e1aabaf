package router

import (
	cport "msg-relay/internal/infrastructure/cache/port"
	"msg-relay/internal/infrastructure/realtime"
	"msg-relay/internal/pkg/messaging/application/dispatch"
	repository "msg-relay/internal/pkg/messaging/persistence/repository/port"
	httpHandler "msg-relay/internal/pkg/messaging/presentation/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts all API routes under /api
func RegisterRoutes(r *gin.Engine, repo repository.MessagingRepository, d *dispatch.Dispatcher, cache cport.Cache, hub *realtime.Hub) {
	api := r.Group("/api")
	// Pass the repository and side channels down to the HTTP layer
	httpHandler.RegisterRoutes(api, repo, d, cache, hub)
}
