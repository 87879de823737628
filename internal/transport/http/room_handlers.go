package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-lobby/internal/core"
	"github.com/vovakirdan/wirechat-lobby/internal/proto"
)

const queryTimeout = 2 * time.Second

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomHandlers exposes the live room directory and presence over HTTP.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// ListRooms returns the room directory.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	rooms, err := h.hub.Rooms(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "room directory unavailable"})
		return
	}
	c.JSON(http.StatusOK, proto.RoomsBody{Rooms: roomInfos(rooms)})
}

// ListUsers returns every connected identity.
// GET /api/users
func (h *RoomHandlers) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, proto.UsersBody{Users: userInfos(h.hub.Users())})
}

// CloseRoom evicts every member of a room and removes it from the directory.
// DELETE /api/rooms/:id
func (h *RoomHandlers) CloseRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	switch err := h.hub.CloseRoom(ctx, id); {
	case err == nil:
		h.log.Info().Int64("room_id", id).Msg("room closed via api")
		c.Status(http.StatusNoContent)
	case errors.Is(err, core.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
	default:
		h.log.Error().Err(err).Int64("room_id", id).Msg("failed to close room")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "room directory unavailable"})
	}
}
