package model

import (
	"math"
	"time"
)

// Booking status values stored in bookings.status. A booking is created as
// confirmed after the availability check passes and can only transition to
// cancelled afterwards.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking records a user's stay in a room over a [CheckIn, CheckOut) date
// range. TotalPrice is computed once at creation and never recomputed on
// cancellation.
type Booking struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"userId"`
	RoomID     uint64    `json:"roomId"`
	CheckIn    time.Time `json:"checkIn"`
	CheckOut   time.Time `json:"checkOut"`
	TotalPrice float64   `json:"totalPrice"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Nights returns the chargeable number of nights between checkIn and
// checkOut, rounding any partial day up.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// TotalPrice computes the booking price: ceil(nights) times the nightly rate.
func TotalPrice(checkIn, checkOut time.Time, nightlyRate float64) float64 {
	return float64(Nights(checkIn, checkOut)) * nightlyRate
}

// DatesOverlap reports whether an existing confirmed booking conflicts with a
// requested stay. The comparison is deliberately inclusive on both ends, so a
// booking whose check-out equals another's check-in counts as a conflict (no
// same-day turnover).
func DatesOverlap(existingIn, existingOut, reqIn, reqOut time.Time) bool {
	return !existingIn.After(reqOut) && !existingOut.Before(reqIn)
}
