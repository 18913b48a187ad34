package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/avestan/hotel-booking-api/internal/model"
	"github.com/avestan/hotel-booking-api/internal/repository"
	"github.com/avestan/hotel-booking-api/internal/utils"
)

// In-memory stores standing in for the MySQL repositories.

type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]*model.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, name, email, password, role string, cost int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s.nextID++
	now := time.Now().UTC()
	s.users[s.nextID] = &model.User{
		ID: s.nextID, Name: name, Email: email, PasswordHash: hash, Role: role,
		CreatedAt: now, UpdatedAt: now,
	}
	return s.nextID, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return model.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) ListAll(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		c.PasswordHash = ""
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeUserStore) SetResetToken(_ context.Context, id uint64, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ResetTokenHash = &tokenHash
	u.ResetExpiresAt = &expiresAt
	return nil
}

func (s *fakeUserStore) GetByResetTokenHash(_ context.Context, tokenHash string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash {
			if u.ResetExpiresAt == nil || time.Now().UTC().After(*u.ResetExpiresAt) {
				return model.User{}, repository.ErrNotFound
			}
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id uint64, password string, cost int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	changedAt := time.Now().UTC().Add(-time.Second)
	u.PasswordHash = hash
	u.ResetTokenHash = nil
	u.ResetExpiresAt = nil
	u.PasswordChangedAt = &changedAt
	return nil
}

type fakeTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{revoked: map[string]time.Time{}}
}

func (s *fakeTokenStore) Revoke(_ context.Context, t model.RevokedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[t.TokenHash] = t.ExpiresAt
	return nil
}

type fakeRoomStore struct {
	mu     sync.Mutex
	nextID uint64
	rooms  map[uint64]*model.Room
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{rooms: map[uint64]*model.Room{}}
}

func (s *fakeRoomStore) Create(_ context.Context, rm *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.RoomNumber == rm.RoomNumber {
			return repository.ErrRoomExists
		}
	}
	s.nextID++
	rm.ID = s.nextID
	cp := *rm
	s.rooms[rm.ID] = &cp
	return nil
}

func (s *fakeRoomStore) GetByID(_ context.Context, id uint64) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[id]; ok {
		return *r, nil
	}
	return model.Room{}, repository.ErrNotFound
}

func (s *fakeRoomStore) ListAll(_ context.Context) ([]model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, *r)
	}
	return out, nil
}

func (s *fakeRoomStore) Update(_ context.Context, rm *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.RoomNumber == rm.RoomNumber && r.ID != rm.ID {
			return repository.ErrRoomExists
		}
	}
	cp := *rm
	s.rooms[rm.ID] = &cp
	return nil
}

func (s *fakeRoomStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

type fakeBookingStore struct {
	mu       sync.Mutex
	nextID   uint64
	bookings map[uint64]*model.Booking

	// onConflictCheck, when set, runs after the conflict result is computed
	// and before it is returned. Tests use it to hold two requests inside
	// the check-then-insert window.
	onConflictCheck func()
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: map[uint64]*model.Booking{}}
}

func (s *fakeBookingStore) Create(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		return *b, nil
	}
	return model.Booking{}, repository.ErrNotFound
}

func (s *fakeBookingStore) HasDateConflict(_ context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	s.mu.Lock()
	conflict := false
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.Status == model.BookingConfirmed &&
			model.DatesOverlap(b.CheckIn, b.CheckOut, checkIn, checkOut) {
			conflict = true
			break
		}
	}
	s.mu.Unlock()
	if s.onConflictCheck != nil {
		s.onConflictCheck()
	}
	return conflict, nil
}

func (s *fakeBookingStore) UpdateStatus(_ context.Context, id uint64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	return nil
}

func (s *fakeBookingStore) ListAll(_ context.Context) ([]repository.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.BookingDetail, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, repository.BookingDetail{Booking: *b})
	}
	return out, nil
}

func (s *fakeBookingStore) ListByUser(_ context.Context, userID uint64) ([]repository.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.BookingDetail, 0)
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, repository.BookingDetail{Booking: *b})
		}
	}
	return out, nil
}

func (s *fakeBookingStore) confirmedForRoom(roomID uint64) []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.Status == model.BookingConfirmed {
			out = append(out, *b)
		}
	}
	return out
}
