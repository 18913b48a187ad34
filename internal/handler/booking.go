package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avestan/hotel-booking-api/internal/middleware"
	"github.com/avestan/hotel-booking-api/internal/model"
	"github.com/avestan/hotel-booking-api/internal/queue"
	"github.com/avestan/hotel-booking-api/internal/repository"
	"github.com/avestan/hotel-booking-api/internal/service"
)

// dateLayout is the wire format for check-in/check-out dates.
const dateLayout = "2006-01-02"

// BookingStore is the booking persistence surface of the booking engine.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	HasDateConflict(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	ListAll(ctx context.Context) ([]repository.BookingDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error)
}

// BookingHandler implements booking creation, cancellation and listings.
type BookingHandler struct {
	Rooms    RoomStore
	Bookings BookingStore

	// publishConfirmed is swapped out in tests; defaults to the queue publisher.
	publishConfirmed func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

func NewBookingHandler(rooms RoomStore, bookings BookingStore) *BookingHandler {
	return &BookingHandler{
		Rooms:            rooms,
		Bookings:         bookings,
		publishConfirmed: service.PublishBookingConfirmed,
	}
}

type createBookingReq struct {
	RoomID   uint64 `json:"roomId"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

// Create handles POST /bookings. The availability check and the insert are
// two separate store calls with no lock or transaction between them, so two
// simultaneous requests for the same room and dates can both pass the check.
// That window is accepted at this scale.
func (h *BookingHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}

	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	checkIn, err1 := time.Parse(dateLayout, req.CheckIn)
	checkOut, err2 := time.Parse(dateLayout, req.CheckOut)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid date format. Please use YYYY-MM-DD format"})
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if checkIn.Before(today) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Check-in date must be in the future"})
	}
	if !checkOut.After(checkIn) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Check-out date must be after check-in date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	conflict, err := h.Bookings.HasDateConflict(ctx, room.ID, checkIn, checkOut)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	if conflict {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Room is already booked for these dates"})
	}

	b := model.Booking{
		UserID:     u.ID,
		RoomID:     room.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: model.TotalPrice(checkIn, checkOut, room.Price),
		Status:     model.BookingConfirmed,
	}
	if err := h.Bookings.Create(ctx, &b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	ev := queue.BookingConfirmedEvent{
		BookingID:  b.ID,
		UserID:     u.ID,
		UserEmail:  u.Email,
		RoomID:     room.ID,
		RoomNumber: room.RoomNumber,
		CheckIn:    checkIn.Format(dateLayout),
		CheckOut:   checkOut.Format(dateLayout),
		TotalPrice: b.TotalPrice,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	// Best-effort notification; a broker outage must not fail the booking.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.publishConfirmed(ctx, ev); err != nil {
			log.Printf("booking: publish confirmed event failed: %v", err)
		}
	}()

	return c.JSON(http.StatusCreated, repository.BookingDetail{
		Booking: b,
		Room: repository.RoomSummary{
			ID:         room.ID,
			RoomNumber: room.RoomNumber,
			Type:       room.Type,
			Price:      room.Price,
		},
	})
}

// Cancel handles PUT /bookings/:id/cancel. Only the booking's owner or an
// admin may cancel; cancelling twice leaves the booking cancelled.
func (h *BookingHandler) Cancel(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	if b.UserID != u.ID && !u.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Not authorized"})
	}

	if err := h.Bookings.UpdateStatus(ctx, b.ID, model.BookingCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	b.Status = model.BookingCancelled
	return c.JSON(http.StatusOK, b)
}

// ListAll handles GET /bookings. Admin only.
func (h *BookingHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Bookings.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, details)
}

// ListMine handles GET /bookings/my-bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Bookings.ListByUser(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, details)
}
