package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/avestan/hotel-booking-api/internal/model"
)

// RoomRepo provides CRUD over the rooms table. Amenities and images are
// stored as JSON-encoded text columns so entries may contain any character.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomColumns = "id,room_number,type,price,description,amenities,is_available,images,created_at,updated_at"

func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(items) // a []string cannot fail to marshal
	return string(b)
}

func decodeList(s string) []string {
	if s == "" || s == "[]" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		// Rows written before the JSON encoding hold comma-joined text.
		return strings.Split(s, ",")
	}
	if out == nil {
		return []string{}
	}
	return out
}

func scanRoom(scan func(dest ...any) error) (model.Room, error) {
	var (
		rm        model.Room
		amenities string
		images    string
	)
	err := scan(&rm.ID, &rm.RoomNumber, &rm.Type, &rm.Price, &rm.Description,
		&amenities, &rm.IsAvailable, &images, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Room{}, ErrNotFound
		}
		return model.Room{}, err
	}
	rm.Amenities = decodeList(amenities)
	rm.Images = decodeList(images)
	return rm, nil
}

// Create inserts a room and populates its generated ID.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO rooms (room_number, type, price, description, amenities, is_available, images) VALUES (?,?,?,?,?,?,?)",
		rm.RoomNumber, rm.Type, rm.Price, rm.Description, encodeList(rm.Amenities), rm.IsAvailable, encodeList(rm.Images))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrRoomExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return nil
}

// GetByID fetches a room by id.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id=? LIMIT 1", id)
	return scanRoom(row.Scan)
}

// ListAll returns every room ordered by room number.
func (r *RoomRepo) ListAll(ctx context.Context) ([]model.Room, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+roomColumns+" FROM rooms ORDER BY room_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Update overwrites all mutable room fields. The handler merges partial
// request bodies with the existing record before calling this.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE rooms SET room_number=?, type=?, price=?, description=?, amenities=?, is_available=?, images=? WHERE id=?",
		rm.RoomNumber, rm.Type, rm.Price, rm.Description, encodeList(rm.Amenities), rm.IsAvailable, encodeList(rm.Images), rm.ID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrRoomExists
	}
	return err
}

// Delete removes a room. ErrNotFound is returned when no row was affected.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
