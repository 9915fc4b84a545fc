package handler

import (
	"io"

	"kitlocker/backend/internal/feed"

	"github.com/gin-gonic/gin"
)

// StreamFeed godoc
// @Summary      Subscribe to the change feed
// @Description  Opens a server-sent events stream delivering change notifications addressed to the current user. Clients re-derive their local view when an event arrives.
// @Tags         feed
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {string}  string "event stream"
// @Failure      401  {object}  ErrorResponse
// @Router       /feed [get]
func StreamFeed(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	userID := viewerID.(uint)

	client := make(feed.Client, 16)
	feed.GlobalHub.Subscribe(userID, client)
	defer feed.GlobalHub.Unsubscribe(userID, client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case message, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(message))
			return true
		}
	})
}
