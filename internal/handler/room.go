package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avestan/hotel-booking-api/internal/model"
	"github.com/avestan/hotel-booking-api/internal/repository"
)

// RoomHandler implements the room catalog: public reads, admin-only writes.
type RoomHandler struct {
	Rooms RoomStore
}

func NewRoomHandler(rooms RoomStore) *RoomHandler { return &RoomHandler{Rooms: rooms} }

type roomReq struct {
	RoomNumber  string   `json:"roomNumber"`
	Type        string   `json:"type"`
	Price       *float64 `json:"price"`
	Description string   `json:"description"`
	Amenities   []string `json:"amenities"`
	IsAvailable *bool    `json:"isAvailable"`
	Images      []string `json:"images"`
}

// List handles GET /rooms. Public; responses are served from the Redis cache
// when available.
func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get handles GET /rooms/:id. Public.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid room id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, room)
}

// Create handles POST /rooms. Admin only.
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)
	req.Type = strings.TrimSpace(req.Type)
	if req.RoomNumber == "" || req.Type == "" || req.Price == nil || *req.Price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "roomNumber, type and a positive price are required"})
	}

	room := model.Room{
		RoomNumber:  req.RoomNumber,
		Type:        req.Type,
		Price:       *req.Price,
		Description: req.Description,
		Amenities:   req.Amenities,
		IsAvailable: true,
		Images:      req.Images,
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}
	if room.Amenities == nil {
		room.Amenities = []string{}
	}
	if room.Images == nil {
		room.Images = []string{}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Create(ctx, &room); err != nil {
		if errors.Is(err, repository.ErrRoomExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Room already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusCreated, room)
}

// Update handles PUT /rooms/:id. Admin only. Fields absent from the body
// keep their existing values.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid room id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	if v := strings.TrimSpace(req.RoomNumber); v != "" {
		room.RoomNumber = v
	}
	if v := strings.TrimSpace(req.Type); v != "" {
		room.Type = v
	}
	if req.Price != nil && *req.Price > 0 {
		room.Price = *req.Price
	}
	if req.Description != "" {
		room.Description = req.Description
	}
	if req.Amenities != nil {
		room.Amenities = req.Amenities
	}
	if req.Images != nil {
		room.Images = req.Images
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}

	if err := h.Rooms.Update(ctx, &room); err != nil {
		if errors.Is(err, repository.ErrRoomExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Room already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /rooms/:id. Admin only.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid room id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Room removed"})
}
