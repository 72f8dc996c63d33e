package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/qorvia/roombook_backend/internal/docstore"
	"github.com/qorvia/roombook_backend/internal/models"
)

var (
	ErrValidation   = errors.New("invalid room")
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrNotOwner     = errors.New("requester does not own the room")
	ErrHasBookings  = errors.New("room has associated bookings")
)

// Registry manages room definitions in the document store.
type Registry struct {
	store docstore.Store
}

func NewRegistry(store docstore.Store) *Registry {
	return &Registry{store: store}
}

func (r *Registry) List(ctx context.Context) ([]models.Room, error) {
	docs, err := r.store.QueryByEquals(ctx, models.CollectionRooms, nil)
	if err != nil {
		return nil, err
	}
	rooms := make([]models.Room, 0, len(docs))
	for _, doc := range docs {
		var room models.Room
		if err := models.FromDocument(doc, &room); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (r *Registry) Create(ctx context.Context, name string, capacity int, price float64, ownerID string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", ErrValidation)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: room capacity is required", ErrValidation)
	}

	existing, err := r.store.QueryByEquals(ctx, models.CollectionRooms, map[string]any{"room_name": name})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrRoomExists
	}

	room := models.Room{
		RoomName:     name,
		RoomCapacity: capacity,
		RoomPrice:    price,
		OwnerUserID:  ownerID,
	}
	doc, err := models.ToDocument(room)
	if err != nil {
		return nil, err
	}
	// Rooms are keyed by name, so the insert also catches a concurrent
	// create that slipped past the existence check.
	if err := r.store.Insert(ctx, models.CollectionRooms, name, doc); err != nil {
		if errors.Is(err, docstore.ErrDocExists) {
			return nil, ErrRoomExists
		}
		return nil, err
	}
	return &room, nil
}

func (r *Registry) Delete(ctx context.Context, name, requesterID string) error {
	doc, err := r.store.Get(ctx, models.CollectionRooms, name)
	if errors.Is(err, docstore.ErrDocNotFound) {
		return ErrRoomNotFound
	}
	if err != nil {
		return err
	}
	var room models.Room
	if err := models.FromDocument(doc, &room); err != nil {
		return err
	}
	if room.OwnerUserID != requesterID {
		return ErrNotOwner
	}

	bookings, err := r.store.QueryByEquals(ctx, models.CollectionBookings, map[string]any{"room_name": name})
	if err != nil {
		return err
	}
	if len(bookings) > 0 {
		return ErrHasBookings
	}
	return r.store.Delete(ctx, models.CollectionRooms, name)
}

// SeedDemo inserts a few rooms on first start so the booking form has
// something to offer. No-op once any room exists.
func (r *Registry) SeedDemo(ctx context.Context) error {
	existing, err := r.store.QueryByEquals(ctx, models.CollectionRooms, nil)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	demo := []models.Room{
		{RoomName: "Boardroom", RoomCapacity: 12, RoomPrice: 50},
		{RoomName: "Huddle A", RoomCapacity: 4, RoomPrice: 15},
		{RoomName: "Huddle B", RoomCapacity: 4, RoomPrice: 15},
	}
	for _, room := range demo {
		doc, err := models.ToDocument(room)
		if err != nil {
			return err
		}
		if err := r.store.Insert(ctx, models.CollectionRooms, room.RoomName, doc); err != nil && !errors.Is(err, docstore.ErrDocExists) {
			return err
		}
	}
	return nil
}
