package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/qorvia/roombook_backend/internal/docstore"
)

// Collection names in the document store.
const (
	CollectionUsers    = "users"
	CollectionRooms    = "rooms"
	CollectionBookings = "bookings"
	CollectionDays     = "days"
)

// DateLayout is the wire format for booking dates.
const DateLayout = "2006-01-02"

// User mirrors the identity-provider principal; upserted on every verified
// request, never deleted.
type User struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Room is keyed by its name in the rooms collection.
type Room struct {
	RoomName     string  `json:"room_name"`
	RoomCapacity int     `json:"room_capacity"`
	RoomPrice    float64 `json:"room_price"`
	OwnerUserID  string  `json:"owner_user_id,omitempty"`
}

// Booking is keyed by its UUID in the bookings collection. A copy also lives
// in the per-date day document under the same key.
type Booking struct {
	BookingID string `json:"booking_id"`
	RoomName  string `json:"room_name"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// ValidateDate checks the YYYY-MM-DD format used across bookings.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}
	return nil
}

// ToDocument converts a typed record into its stored document form.
func ToDocument(v any) (docstore.Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc docstore.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// FromDocument decodes a stored document into a typed record.
func FromDocument(doc docstore.Document, v any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
