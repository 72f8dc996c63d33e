package ws

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins; rely on the auth middleware.
		return true
	},
}

// BookingEventsHandler upgrades an authenticated request to a websocket that
// streams booking events, optionally restricted to one room via ?room=.
func BookingEventsHandler(hub *EventsHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		room := strings.TrimSpace(c.Query("room"))

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newEventsClient(hub, conn, room)
		hub.register <- client

		go client.writePump()
		client.readPump()
	}
}
