package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qorvia/roombook_backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// Booking event types.
const (
	EventBookingCreated = "booking_created"
	EventBookingUpdated = "booking_updated"
	EventBookingDeleted = "booking_deleted"
)

// BookingEvent is pushed to connected clients when a booking changes.
type BookingEvent struct {
	Event   string         `json:"event"`
	Booking models.Booking `json:"booking"`
}

type eventsMessage struct {
	roomName string
	payload  []byte
}

// EventsHub handles websocket clients listening for booking updates.
type EventsHub struct {
	register   chan *eventsClient
	unregister chan *eventsClient
	broadcast  chan eventsMessage
	clients    map[*eventsClient]struct{}
}

func NewEventsHub() *EventsHub {
	return &EventsHub{
		register:   make(chan *eventsClient),
		unregister: make(chan *eventsClient),
		broadcast:  make(chan eventsMessage, 256),
		clients:    make(map[*eventsClient]struct{}),
	}
}

func (h *EventsHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				client.conn.Close()
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.room != "" && client.room != msg.roomName {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					delete(h.clients, client)
					close(client.send)
					client.conn.Close()
				}
			}
		}
	}
}

// Broadcast pushes a booking event to all clients watching its room.
func (h *EventsHub) Broadcast(event string, b models.Booking) {
	if h == nil {
		return
	}
	data, err := json.Marshal(BookingEvent{Event: event, Booking: b})
	if err != nil {
		log.Printf("ws: failed to marshal event: %v", err)
		return
	}
	h.broadcast <- eventsMessage{
		roomName: b.RoomName,
		payload:  data,
	}
}

type eventsClient struct {
	hub  *EventsHub
	conn *websocket.Conn
	send chan []byte
	// room restricts the stream to one room; empty means all rooms.
	room string
}

func newEventsClient(hub *EventsHub, conn *websocket.Conn, room string) *eventsClient {
	return &eventsClient{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		room: room,
	}
}

func (c *eventsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *eventsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
