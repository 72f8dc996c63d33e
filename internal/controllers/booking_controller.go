package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qorvia/roombook_backend/internal/booking"
	"github.com/qorvia/roombook_backend/internal/middleware"
	"github.com/qorvia/roombook_backend/internal/models"
	"github.com/qorvia/roombook_backend/internal/rooms"
	"github.com/qorvia/roombook_backend/internal/ws"
)

type BookingController struct {
	Engine *booking.Engine
	Rooms  *rooms.Registry
	Hub    *ws.EventsHub
}

type bookRoomRequest struct {
	RoomName string `form:"roomName"`
	Date     string `form:"date"`
	Time     string `form:"time"`
}

type userBookingsRequest struct {
	RoomName string `form:"roomName" binding:"required"`
}

type deleteBookingRequest struct {
	BookingID string `form:"booking_id" binding:"required"`
}

type editBookingRequest struct {
	Date string `form:"date"`
	Time string `form:"time"`
}

type filterByDateRequest struct {
	FilterDate string `form:"filterDate" binding:"required"`
}

// Home serves GET /: the room list, plus the caller's bookings when a valid
// token came with the request.
func (bc *BookingController) Home(c *gin.Context) {
	list, err := bc.Rooms.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"rooms": list}
	if caller, ok := middleware.Caller(c); ok {
		userBookings, err := bc.Engine.ListForUser(c.Request.Context(), caller.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp["user"] = models.User{UserID: caller.UserID, Email: caller.Email}
		resp["user_bookings"] = userBookings
	}
	c.JSON(http.StatusOK, resp)
}

func (bc *BookingController) BookRoom(c *gin.Context) {
	caller, _ := middleware.Caller(c)
	var req bookRoomRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := bc.Engine.Create(c.Request.Context(), req.RoomName, req.Date, req.Time, caller.UserID)
	switch {
	case errors.Is(err, booking.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrRoomBooked):
		c.JSON(http.StatusConflict, gin.H{"error": "room already booked on the same date"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		bc.Hub.Broadcast(ws.EventBookingCreated, *b)
		c.JSON(http.StatusCreated, gin.H{"message": "room booked", "booking": b})
	}
}

// UserBookings serves POST /userBookings: the caller's bookings for one room.
func (bc *BookingController) UserBookings(c *gin.Context) {
	caller, _ := middleware.Caller(c)
	var req userBookingsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	list, err := bc.Engine.ListForUserAndRoom(c.Request.Context(), caller.UserID, req.RoomName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_name": req.RoomName, "user_bookings": list})
}

func (bc *BookingController) DeleteBooking(c *gin.Context) {
	caller, _ := middleware.Caller(c)
	var req deleteBookingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := bc.Engine.Delete(c.Request.Context(), req.BookingID, caller.UserID)
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, booking.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		bc.Hub.Broadcast(ws.EventBookingDeleted, *b)
		c.JSON(http.StatusOK, gin.H{"message": "booking deleted"})
	}
}

// EditBookingForm serves GET /editBooking/:booking_id: the booking to
// prepopulate the edit form, owner only.
func (bc *BookingController) EditBookingForm(c *gin.Context) {
	caller, _ := middleware.Caller(c)
	bookingID := strings.TrimSpace(c.Param("booking_id"))

	b, err := bc.Engine.Get(c.Request.Context(), bookingID, caller.UserID)
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, booking.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"booking": b})
	}
}

func (bc *BookingController) EditBooking(c *gin.Context) {
	caller, _ := middleware.Caller(c)
	bookingID := strings.TrimSpace(c.Param("booking_id"))
	var req editBookingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := bc.Engine.Edit(c.Request.Context(), bookingID, req.Date, req.Time, caller.UserID)
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, booking.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		bc.Hub.Broadcast(ws.EventBookingUpdated, *b)
		c.JSON(http.StatusOK, gin.H{"message": "booking updated", "booking": b})
	}
}

func (bc *BookingController) FilterBookingsByDate(c *gin.Context) {
	var req filterByDateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grouped, err := bc.Engine.GroupedByDate(c.Request.Context(), req.FilterDate)
	switch {
	case errors.Is(err, booking.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"filter_date": req.FilterDate, "room_bookings": grouped})
	}
}

// RoomBookings serves GET /roomBookings/:room_name: all bookings for a room.
func (bc *BookingController) RoomBookings(c *gin.Context) {
	roomName := strings.TrimSpace(c.Param("room_name"))
	list, err := bc.Engine.ListForRoom(c.Request.Context(), roomName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_name": roomName, "room_bookings": list})
}
