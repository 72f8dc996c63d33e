package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/qorvia/roombook_backend/internal/docstore"
	"github.com/qorvia/roombook_backend/internal/identity"
	"github.com/qorvia/roombook_backend/internal/models"
	"github.com/qorvia/roombook_backend/internal/ws"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *docstore.MemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := docstore.NewMemStore()
	verifier := identity.NewJWTVerifier(testSecret)
	hub := ws.NewEventsHub()
	go hub.Run()

	r := gin.New()
	Register(r, store, verifier, hub)
	return r, store
}

func mintToken(t *testing.T, userID, email string) string {
	t.Helper()
	claims := identity.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(t *testing.T, r *gin.Engine, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddRoom(t *testing.T) {
	r, _ := newTestRouter(t)
	token := mintToken(t, "U1", "u1@example.com")

	w := doJSON(t, r, http.MethodPost, "/addRoom", token, `{"roomName":"Alpha","roomCapacity":4,"roomPrice":25}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("addRoom = %d, want 201: %s", w.Code, w.Body.String())
	}

	// Same name again conflicts.
	w = doJSON(t, r, http.MethodPost, "/addRoom", token, `{"roomName":"Alpha","roomCapacity":8}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate addRoom = %d, want 409: %s", w.Code, w.Body.String())
	}

	// Capacity may arrive as a string.
	w = doJSON(t, r, http.MethodPost, "/addRoom", token, `{"roomName":"Beta","roomCapacity":"6"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("string-capacity addRoom = %d, want 201: %s", w.Code, w.Body.String())
	}
}

func TestAddRoomUnauthenticated(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/addRoom", "", `{"roomName":"Alpha","roomCapacity":4}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("unauthenticated addRoom = %d, want 403", w.Code)
	}
}

func TestListRooms(t *testing.T) {
	r, _ := newTestRouter(t)
	token := mintToken(t, "U1", "u1@example.com")
	doJSON(t, r, http.MethodPost, "/addRoom", token, `{"roomName":"Alpha","roomCapacity":4}`)

	for _, path := range []string{"/rooms", "/bookRoom"} {
		w := doJSON(t, r, http.MethodGet, path, "", "")
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s = %d, want 200", path, w.Code)
		}
		var resp struct {
			Rooms []models.Room `json:"rooms"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		if len(resp.Rooms) != 1 || resp.Rooms[0].RoomName != "Alpha" {
			t.Errorf("GET %s rooms = %+v", path, resp.Rooms)
		}
	}
}

func TestBookRoomFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	u1 := mintToken(t, "U1", "u1@example.com")
	u2 := mintToken(t, "U2", "u2@example.com")

	// Unauthenticated booking is rejected.
	w := doForm(t, r, "/bookRoom", "", url.Values{"roomName": {"Alpha"}, "date": {"2024-06-01"}, "time": {"10:00"}})
	if w.Code != http.StatusForbidden {
		t.Fatalf("unauthenticated bookRoom = %d, want 403", w.Code)
	}

	w = doForm(t, r, "/bookRoom", u1, url.Values{"roomName": {"Alpha"}, "date": {"2024-06-01"}, "time": {"10:00"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("bookRoom = %d, want 201: %s", w.Code, w.Body.String())
	}

	// Same room, same date: conflict.
	w = doForm(t, r, "/bookRoom", u2, url.Values{"roomName": {"Alpha"}, "date": {"2024-06-01"}, "time": {"14:00"}})
	if w.Code != http.StatusConflict {
		t.Fatalf("double booking = %d, want 409: %s", w.Code, w.Body.String())
	}

	// Next day is free.
	w = doForm(t, r, "/bookRoom", u2, url.Values{"roomName": {"Alpha"}, "date": {"2024-06-02"}, "time": {"14:00"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("bookRoom next day = %d, want 201: %s", w.Code, w.Body.String())
	}

	// Malformed date.
	w = doForm(t, r, "/bookRoom", u1, url.Values{"roomName": {"Alpha"}, "date": {"June 3rd"}, "time": {"10:00"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed date = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestHomeIncludesUserBookings(t *testing.T) {
	r, _ := newTestRouter(t)
	token := mintToken(t, "U1", "u1@example.com")
	doForm(t, r, "/bookRoom", token, url.Values{"roomName": {"Alpha"}, "date": {"2024-06-01"}, "time": {"10:00"}})

	// Anonymous: no bookings in the payload.
	w := doJSON(t, r, http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET / = %d, want 200", w.Code)
	}
	if strings.Contains(w.Body.String(), "user_bookings") {
		t.Errorf("anonymous home leaked user bookings: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET / with token = %d, want 200", w.Code)
	}
	var resp struct {
		UserBookings []models.Booking `json:"user_bookings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode home: %v", err)
	}
	if len(resp.UserBookings) != 1 || resp.UserBookings[0].RoomName != "Alpha" {
		t.Errorf("user_bookings = %+v", resp.UserBookings)
	}
}

func TestAuthUpsertsUser(t *testing.T) {
	r, store := newTestRouter(t)
	token := mintToken(t, "U1", "u1@example.com")

	doJSON(t, r, http.MethodGet, "/", token, "")

	doc, err := store.Get(context.Background(), models.CollectionUsers, "U1")
	if err != nil {
		t.Fatalf("user record missing after verified request: %v", err)
	}
	if doc["email"] != "u1@example.com" {
		t.Errorf("user email = %v", doc["email"])
	}
}

func TestDeleteBookingOwnership(t *testing.T) {
	r, _ := newTestRouter(t)
	u1 := mintToken(t, "U1", "u1@example.com")
	u2 := mintToken(t, "U2", "u2@example.com")

	w := doForm(t, r, "/bookRoom", u1, url.Values{"roomName": {"Alpha"}, "date": {"2024-06-01"}, "time": {"10:00"}})
	var created struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	id := created.Booking.BookingID

	w = doForm(t, r, "/deleteBooking", u2, url.Values{"booking_id": {id}})
	if w.Code != http.StatusForbidden {
		t.Fatalf("delete by non-owner = %d, want 403", w.Code)
	}
	w = doForm(t, r, "/deleteBooking", u1, url.Values{"booking_id": {id}})
	if w.Code != http.StatusOK {
		t.Fatalf("delete by owner = %d, want 200: %s", w.Code, w.Body.String())
	}
	w = doForm(t, r, "/deleteBooking", u1, url.Values{"booking_id": {id}})
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete again = %d, want 404", w.Code)
	}
}

func TestEditBooking(t *testing.T) {
	r, _ := newTestRouter(t)
	u1 := mintToken(t, "U1", "u1@example.com")
	u2 := mintToken(t, "U2", "u2@example.com")

	w := doForm(t, r, "/bookRoom", u1, url.Values{"roomName": {"Alpha"}, "date": {"2024-06-01"}, "time": {"10:00"}})
	var created struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	id := created.Booking.BookingID

	// Prefill form, owner only.
	w = doJSON(t, r, http.MethodGet, "/editBooking/"+id, u1, "")
	if w.Code != http.StatusOK {
		t.Fatalf("edit form = %d, want 200: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/editBooking/"+id, u2, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("edit form non-owner = %d, want 403", w.Code)
	}

	w = doForm(t, r, "/editBooking/"+id, u2, url.Values{"date": {"2024-06-05"}, "time": {"16:00"}})
	if w.Code != http.StatusForbidden {
		t.Fatalf("edit by non-owner = %d, want 403", w.Code)
	}
	w = doForm(t, r, "/editBooking/"+id, u1, url.Values{"date": {"2024-06-05"}, "time": {"16:00"}})
	if w.Code != http.StatusOK {
		t.Fatalf("edit by owner = %d, want 200: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/editBooking/unknown-id", u1, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("edit form unknown id = %d, want 404", w.Code)
	}
}

func TestUserBookingsByRoom(t *testing.T) {
	r, _ := newTestRouter(t)
	u1 := mintToken(t, "U1", "u1@example.com")

	doForm(t, r, "/bookRoom", u1, url.Values{"roomName": {"Alpha"}, "date": {"2024-06-01"}, "time": {"10:00"}})
	doForm(t, r, "/bookRoom", u1, url.Values{"roomName": {"Beta"}, "date": {"2024-06-01"}, "time": {"10:00"}})

	w := doForm(t, r, "/userBookings", u1, url.Values{"roomName": {"Alpha"}})
	if w.Code != http.StatusOK {
		t.Fatalf("userBookings = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		UserBookings []models.Booking `json:"user_bookings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.UserBookings) != 1 || resp.UserBookings[0].RoomName != "Alpha" {
		t.Errorf("user_bookings = %+v", resp.UserBookings)
	}

	// Missing roomName is a bad request.
	w = doForm(t, r, "/userBookings", u1, url.Values{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("userBookings without room = %d, want 400", w.Code)
	}
}

func TestFilterBookingsByDate(t *testing.T) {
	r, _ := newTestRouter(t)
	u1 := mintToken(t, "U1", "u1@example.com")

	doJSON(t, r, http.MethodPost, "/addRoom", u1, `{"roomName":"Alpha","roomCapacity":4}`)
	doJSON(t, r, http.MethodPost, "/addRoom", u1, `{"roomName":"Beta","roomCapacity":4}`)
	doForm(t, r, "/bookRoom", u1, url.Values{"roomName": {"Alpha"}, "date": {"2024-06-01"}, "time": {"10:00"}})

	w := doForm(t, r, "/filterBookingsByDate", u1, url.Values{"filterDate": {"2024-06-01"}})
	if w.Code != http.StatusOK {
		t.Fatalf("filter = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		RoomBookings map[string][]models.Booking `json:"room_bookings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.RoomBookings) != 1 {
		t.Fatalf("room_bookings = %+v, want only Alpha", resp.RoomBookings)
	}
	if len(resp.RoomBookings["Alpha"]) != 1 {
		t.Errorf("Alpha bookings = %+v", resp.RoomBookings["Alpha"])
	}

	w = doForm(t, r, "/filterBookingsByDate", u1, url.Values{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("filter without date = %d, want 400", w.Code)
	}
}

func TestRoomBookings(t *testing.T) {
	r, _ := newTestRouter(t)
	u1 := mintToken(t, "U1", "u1@example.com")
	doForm(t, r, "/bookRoom", u1, url.Values{"roomName": {"Alpha"}, "date": {"2024-06-01"}, "time": {"10:00"}})

	w := doJSON(t, r, http.MethodGet, "/roomBookings/Alpha", u1, "")
	if w.Code != http.StatusOK {
		t.Fatalf("roomBookings = %d, want 200: %s", w.Code, w.Body.String())
	}
	// Requires auth.
	w = doJSON(t, r, http.MethodGet, "/roomBookings/Alpha", "", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("anonymous roomBookings = %d, want 403", w.Code)
	}
}

func TestDeleteRoom(t *testing.T) {
	r, _ := newTestRouter(t)
	owner := mintToken(t, "U1", "u1@example.com")
	other := mintToken(t, "U2", "u2@example.com")

	doJSON(t, r, http.MethodPost, "/addRoom", owner, `{"roomName":"Alpha","roomCapacity":4}`)

	// Anonymous deletion gets 401, unlike the 403 elsewhere.
	w := doForm(t, r, "/delete-room/Alpha", "", url.Values{})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous delete-room = %d, want 401", w.Code)
	}

	w = doForm(t, r, "/delete-room/Alpha", other, url.Values{})
	if w.Code != http.StatusForbidden {
		t.Fatalf("delete-room by non-owner = %d, want 403", w.Code)
	}

	w = doForm(t, r, "/delete-room/Missing", owner, url.Values{})
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete-room missing = %d, want 404", w.Code)
	}

	// Rooms with bookings cannot be deleted.
	doForm(t, r, "/bookRoom", other, url.Values{"roomName": {"Alpha"}, "date": {"2024-06-01"}, "time": {"10:00"}})
	w = doForm(t, r, "/delete-room/Alpha", owner, url.Values{})
	if w.Code != http.StatusConflict {
		t.Fatalf("delete-room with bookings = %d, want 409: %s", w.Code, w.Body.String())
	}
}
