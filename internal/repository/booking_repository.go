package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avestan/hotel-booking-api/internal/model"
)

// BookingRepo persists bookings and answers the availability query used by
// the booking engine.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// RoomSummary is the room slice embedded in booking listings.
type RoomSummary struct {
	ID         uint64  `json:"id"`
	RoomNumber string  `json:"roomNumber"`
	Type       string  `json:"type"`
	Price      float64 `json:"price"`
}

// UserSummary is the user slice embedded in admin booking listings.
type UserSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookingDetail is a booking joined with its room (and, for admin listings,
// its user).
type BookingDetail struct {
	model.Booking
	Room RoomSummary  `json:"room"`
	User *UserSummary `json:"user,omitempty"`
}

// Create inserts a booking and populates its generated ID.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO bookings (user_id, room_id, check_in, check_out, total_price, status) VALUES (?,?,?,?,?,?)",
		b.UserID, b.RoomID, b.CheckIn, b.CheckOut, b.TotalPrice, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID fetches a booking by id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	var b model.Booking
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,room_id,check_in,check_out,total_price,status,created_at,updated_at FROM bookings WHERE id=? LIMIT 1",
		id).Scan(&b.ID, &b.UserID, &b.RoomID, &b.CheckIn, &b.CheckOut, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

// HasDateConflict reports whether any confirmed booking for the room
// intersects the requested stay. The comparison is inclusive on both ends,
// so back-to-back bookings sharing a turnover day also count as conflicts.
// This is a point-in-time check; nothing prevents two concurrent requests
// from both passing it before either inserts.
func (r *BookingRepo) HasDateConflict(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM bookings WHERE room_id=? AND status=? AND check_in <= ? AND check_out >= ? LIMIT 1",
		roomID, model.BookingConfirmed, checkOut, checkIn).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateStatus sets the booking status. Cancelling an already cancelled
// booking is a no-op at the SQL level.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=?", status, id)
	return err
}

const bookingJoinColumns = `b.id, b.user_id, b.room_id, b.check_in, b.check_out, b.total_price, b.status, b.created_at, b.updated_at,
 r.id, r.room_number, r.type, r.price`

func scanBookingDetail(rows *sql.Rows, withUser bool) (BookingDetail, error) {
	var d BookingDetail
	dest := []any{
		&d.ID, &d.UserID, &d.RoomID, &d.CheckIn, &d.CheckOut, &d.TotalPrice, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.Room.ID, &d.Room.RoomNumber, &d.Room.Type, &d.Room.Price,
	}
	if withUser {
		d.User = &UserSummary{}
		dest = append(dest, &d.User.ID, &d.User.Name, &d.User.Email)
	}
	if err := rows.Scan(dest...); err != nil {
		return BookingDetail{}, err
	}
	return d, nil
}

// ListAll returns every booking with room and user summaries, for admins.
func (r *BookingRepo) ListAll(ctx context.Context) ([]BookingDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookingJoinColumns+", u.id, u.name, u.email FROM bookings b JOIN rooms r ON r.id=b.room_id JOIN users u ON u.id=b.user_id ORDER BY b.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows, true)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByUser returns the given user's bookings with room summaries.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookingJoinColumns+" FROM bookings b JOIN rooms r ON r.id=b.room_id WHERE b.user_id=? ORDER BY b.id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
