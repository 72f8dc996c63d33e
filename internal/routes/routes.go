package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/qorvia/roombook_backend/internal/booking"
	"github.com/qorvia/roombook_backend/internal/controllers"
	"github.com/qorvia/roombook_backend/internal/docstore"
	"github.com/qorvia/roombook_backend/internal/identity"
	"github.com/qorvia/roombook_backend/internal/middleware"
	"github.com/qorvia/roombook_backend/internal/rooms"
	"github.com/qorvia/roombook_backend/internal/ws"
)

func Register(r *gin.Engine, store docstore.Store, verifier identity.Verifier, hub *ws.EventsHub) {
	registry := rooms.NewRegistry(store)
	engine := booking.NewEngine(store)

	roomCtrl := &controllers.RoomController{Registry: registry}
	bookingCtrl := &controllers.BookingController{Engine: engine, Rooms: registry, Hub: hub}

	r.Use(middleware.Authenticate(store, verifier))

	// Public / optional auth
	r.GET("/", bookingCtrl.Home)
	r.GET("/rooms", roomCtrl.ListRooms)
	r.GET("/bookRoom", roomCtrl.ListRooms)

	// Room deletion authenticates in the handler and rejects with 401.
	r.POST("/delete-room/:room_name", roomCtrl.DeleteRoom)

	// Protected
	authed := r.Group("/", middleware.RequireAuth())
	{
		authed.POST("/addRoom", roomCtrl.AddRoom)
		authed.POST("/bookRoom", bookingCtrl.BookRoom)
		authed.POST("/userBookings", bookingCtrl.UserBookings)
		authed.POST("/deleteBooking", bookingCtrl.DeleteBooking)
		authed.GET("/editBooking/:booking_id", bookingCtrl.EditBookingForm)
		authed.POST("/editBooking/:booking_id", bookingCtrl.EditBooking)
		authed.POST("/filterBookingsByDate", bookingCtrl.FilterBookingsByDate)
		authed.GET("/roomBookings/:room_name", bookingCtrl.RoomBookings)
		authed.GET("/ws/bookings", ws.BookingEventsHandler(hub))
	}
}
