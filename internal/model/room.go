package model

import "time"

// Room represents a hotel room as stored in the `rooms` table. RoomNumber is
// unique, Price is the nightly rate and IsAvailable controls whether the room
// is offered for booking at all. Amenities and Images are stored as
// JSON-encoded text columns by the repository.
type Room struct {
	ID          uint64    `json:"id"`
	RoomNumber  string    `json:"roomNumber"`
	Type        string    `json:"type"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Amenities   []string  `json:"amenities"`
	IsAvailable bool      `json:"isAvailable"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
