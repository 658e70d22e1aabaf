package controller

import (
	"context"
	"net/http"
	"time"

	"msg-relay/internal/pkg/messaging/application/dispatch"
	messaging "msg-relay/internal/pkg/messaging/domain"
	"msg-relay/internal/pkg/messaging/provider"

	"github.com/gin-gonic/gin"
)

const persistTimeout = 5 * time.Second

// simulateError reports whether the caller asked for a simulated provider
// failure (?error=true), used to exercise failure paths end to end.
func simulateError(c *gin.Context) bool {
	return c.Query("error") == "true"
}

// recordAndRespond persists the event and writes the provider response back.
// Every provider result is recorded, failed ones included, so the stored
// history is a full audit of provider traffic. The provider result is what
// callers see; persistence failures only fail the request when the dispatcher
// runs in strict mode.
func recordAndRespond(c *gin.Context, d *dispatch.Dispatcher, event messaging.MessageEvent, outcome provider.Outcome) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), persistTimeout)
	defer cancel()

	recorded := d.Record(ctx, event, &outcome)

	if !outcome.OK {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "provider call failed", "details": outcome.Raw})
		return
	}
	if !recorded && d.Strict() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record message"})
		return
	}

	c.JSON(http.StatusOK, outcome.Raw)
}
