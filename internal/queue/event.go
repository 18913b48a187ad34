// Package queue defines message payloads exchanged over the message broker
// and the background consumers that process them.
package queue

// Queue names used on the default exchange.
const (
	BookingConfirmedQueue  = "booking.confirmed"
	PasswordResetMailQueue = "email.password_reset"
)

// BookingConfirmedEvent is published when a booking is successfully created.
// It carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID  uint64  `json:"booking_id"`
	UserID     uint64  `json:"user_id"`
	UserEmail  string  `json:"user_email"`
	RoomID     uint64  `json:"room_id"`
	RoomNumber string  `json:"room_number"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	TotalPrice float64 `json:"total_price"`
	CreatedAt  string  `json:"created_at"`
}

// PasswordResetMailEvent asks the mail worker to deliver a reset link. The
// raw token appears only here and in the user's inbox; the database holds
// its hash.
type PasswordResetMailEvent struct {
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	ResetURL    string `json:"reset_url"`
	ExpiresAt   string `json:"expires_at"`
	RequestedAt string `json:"requested_at"`
}
