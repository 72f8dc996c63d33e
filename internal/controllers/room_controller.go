package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qorvia/roombook_backend/internal/middleware"
	"github.com/qorvia/roombook_backend/internal/rooms"
)

type RoomController struct {
	Registry *rooms.Registry
}

type addRoomRequest struct {
	RoomName     string         `json:"roomName" binding:"required"`
	RoomCapacity FlexibleString `json:"roomCapacity"`
	RoomPrice    FlexibleString `json:"roomPrice"`
}

// ListRooms serves GET /rooms and GET /bookRoom: the full room list.
func (rc *RoomController) ListRooms(c *gin.Context) {
	list, err := rc.Registry.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": list})
}

func (rc *RoomController) AddRoom(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
		return
	}
	var req addRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	capacity := 0
	if s := req.RoomCapacity.String(); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room capacity"})
			return
		}
		capacity = n
	}
	price := 0.0
	if s := req.RoomPrice.String(); s != "" {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room price"})
			return
		}
		price = p
	}

	room, err := rc.Registry.Create(c.Request.Context(), req.RoomName, capacity, price, caller.UserID)
	switch {
	case errors.Is(err, rooms.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, rooms.ErrRoomExists):
		c.JSON(http.StatusConflict, gin.H{"error": "room already exists"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "room added", "room": room})
	}
}

// DeleteRoom serves POST /delete-room/:room_name. It authenticates on its
// own and rejects anonymous callers with 401 rather than the 403 the other
// protected routes use.
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	name := strings.TrimSpace(c.Param("room_name"))

	err := rc.Registry.Delete(c.Request.Context(), name, caller.UserID)
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case errors.Is(err, rooms.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not authorized to remove this room"})
	case errors.Is(err, rooms.ErrHasBookings):
		c.JSON(http.StatusConflict, gin.H{"error": "bookings are associated with this room"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
	}
}
