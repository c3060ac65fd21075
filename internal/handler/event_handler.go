package handler

import (
	"fmt"
	"io"

	"questlog/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

// StreamEvents godoc
// @Summary      Relationship event stream
// @Description  Server-sent event stream of relationship events (request received, request accepted, friend removed) for the authenticated user.
// @Tags         events
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {string}  string  "event stream"
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/events [get]
func StreamEvents(c *gin.Context) {
	viewerID := c.GetUint("userID")

	client := make(hub.Client, 16)
	eventHub.Subscribe(viewerID, client)
	defer eventHub.Unsubscribe(viewerID, client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
