// Package booking implements the booking engine: creation with per-date
// conflict checks, owner-gated mutation, and the query surface backing the
// HTTP handlers.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/qorvia/roombook_backend/internal/docstore"
	"github.com/qorvia/roombook_backend/internal/models"
)

var (
	ErrValidation      = errors.New("invalid booking")
	ErrBookingNotFound = errors.New("booking not found")
	ErrNotOwner        = errors.New("requester does not own the booking")
	ErrRoomBooked      = errors.New("room already booked on that date")
)

type Engine struct {
	store docstore.Store
}

func NewEngine(store docstore.Store) *Engine {
	return &Engine{store: store}
}

// IsRoomBooked reports whether any booking exists for the room on the given
// date (string-exact match on the normalized YYYY-MM-DD form).
func (e *Engine) IsRoomBooked(ctx context.Context, roomName, date string) (bool, error) {
	docs, err := e.store.QueryByEquals(ctx, models.CollectionBookings, map[string]any{
		"room_name": roomName,
		"date":      date,
	})
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// Create books a room for a date. The existence check and the insert are two
// separate store calls; a concurrent pair of creates for the same room and
// date can both pass the check.
func (e *Engine) Create(ctx context.Context, roomName, date, timeSlot, userID string) (*models.Booking, error) {
	roomName = strings.TrimSpace(roomName)
	if roomName == "" || date == "" || timeSlot == "" {
		return nil, fmt.Errorf("%w: room name, date and time are required", ErrValidation)
	}
	if err := models.ValidateDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	booked, err := e.IsRoomBooked(ctx, roomName, date)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrRoomBooked
	}

	b := models.Booking{
		BookingID: uuid.NewString(),
		RoomName:  roomName,
		UserID:    userID,
		Date:      date,
		Time:      timeSlot,
	}
	doc, err := models.ToDocument(b)
	if err != nil {
		return nil, err
	}
	if err := e.store.Set(ctx, models.CollectionBookings, b.BookingID, doc); err != nil {
		return nil, err
	}
	// Day index: one document per date, bookings keyed by id. A failed merge
	// is reported but the booking above stands.
	if err := e.store.Merge(ctx, models.CollectionDays, date, docstore.Document{b.BookingID: doc}); err != nil {
		return nil, err
	}
	return &b, nil
}

// Get returns a booking if the requester owns it.
func (e *Engine) Get(ctx context.Context, bookingID, requesterID string) (*models.Booking, error) {
	b, err := e.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != requesterID {
		return nil, ErrNotOwner
	}
	return b, nil
}

// Edit overwrites a booking's date and time in place. The new date is not
// re-checked against existing bookings for the room.
func (e *Engine) Edit(ctx context.Context, bookingID, newDate, newTime, requesterID string) (*models.Booking, error) {
	b, err := e.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != requesterID {
		return nil, ErrNotOwner
	}
	if err := e.store.Merge(ctx, models.CollectionBookings, bookingID, docstore.Document{
		"date": newDate,
		"time": newTime,
	}); err != nil {
		return nil, err
	}
	b.Date = newDate
	b.Time = newTime
	return b, nil
}

// Delete removes a booking owned by the requester and returns the removed
// record. The day-index entry for the old date stays behind; readers treat
// the bookings collection as authoritative.
func (e *Engine) Delete(ctx context.Context, bookingID, requesterID string) (*models.Booking, error) {
	b, err := e.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != requesterID {
		return nil, ErrNotOwner
	}
	if err := e.store.Delete(ctx, models.CollectionBookings, bookingID); err != nil {
		return nil, err
	}
	return b, nil
}

func (e *Engine) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return e.query(ctx, map[string]any{"user_id": userID})
}

func (e *Engine) ListForRoom(ctx context.Context, roomName string) ([]models.Booking, error) {
	return e.query(ctx, map[string]any{"room_name": roomName})
}

func (e *Engine) ListForUserAndRoom(ctx context.Context, userID, roomName string) ([]models.Booking, error) {
	return e.query(ctx, map[string]any{"user_id": userID, "room_name": roomName})
}

// GroupedByDate returns, per room, the bookings on the given date. Rooms
// without bookings on that date are omitted.
func (e *Engine) GroupedByDate(ctx context.Context, date string) (map[string][]models.Booking, error) {
	if err := models.ValidateDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	roomDocs, err := e.store.QueryByEquals(ctx, models.CollectionRooms, nil)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]models.Booking)
	for _, doc := range roomDocs {
		var room models.Room
		if err := models.FromDocument(doc, &room); err != nil {
			return nil, err
		}
		bookings, err := e.query(ctx, map[string]any{"room_name": room.RoomName, "date": date})
		if err != nil {
			return nil, err
		}
		if len(bookings) > 0 {
			grouped[room.RoomName] = bookings
		}
	}
	return grouped, nil
}

func (e *Engine) fetch(ctx context.Context, bookingID string) (*models.Booking, error) {
	doc, err := e.store.Get(ctx, models.CollectionBookings, bookingID)
	if errors.Is(err, docstore.ErrDocNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	var b models.Booking
	if err := models.FromDocument(doc, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (e *Engine) query(ctx context.Context, filters map[string]any) ([]models.Booking, error) {
	docs, err := e.store.QueryByEquals(ctx, models.CollectionBookings, filters)
	if err != nil {
		return nil, err
	}
	bookings := make([]models.Booking, 0, len(docs))
	for _, doc := range docs {
		var b models.Booking
		if err := models.FromDocument(doc, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}
