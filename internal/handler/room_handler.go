package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/walideltayeh/school-booking-api/internal/service"
	appErrors "github.com/walideltayeh/school-booking-api/pkg/errors"
	"github.com/walideltayeh/school-booking-api/pkg/response"
)

// RoomHandler manages room catalog and suggestion endpoints.
type RoomHandler struct {
	rooms       *service.RoomService
	suggestions *service.SuggestionService
	bookings    *service.BookingService
	exports     *service.ScheduleExportService
}

// NewRoomHandler constructs handler. exports may be nil when schedule
// export is disabled.
func NewRoomHandler(rooms *service.RoomService, suggestions *service.SuggestionService, bookings *service.BookingService, exports *service.ScheduleExportService) *RoomHandler {
	return &RoomHandler{rooms: rooms, suggestions: suggestions, bookings: bookings, exports: exports}
}

// List godoc
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.rooms.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Get godoc
// @Summary Get room
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.rooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Create godoc
// @Summary Create room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param payload body service.CreateRoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Router /rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req service.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	room, err := h.rooms.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// Update godoc
// @Summary Update room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param payload body service.UpdateRoomRequest true "Room payload"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [put]
func (h *RoomHandler) Update(c *gin.Context) {
	var req service.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	room, err := h.rooms.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Delete godoc
// @Summary Delete room
// @Tags Rooms
// @Param id path string true "Room ID"
// @Success 204
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Delete(c *gin.Context) {
	if err := h.rooms.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Suggest godoc
// @Summary Classify every room for a candidate batch
// @Tags Rooms
// @Accept json
// @Produce json
// @Param payload body service.SuggestionRequest true "Suggestion request"
// @Success 200 {object} response.Envelope
// @Router /rooms/suggestions [post]
func (h *RoomHandler) Suggest(c *gin.Context) {
	var req service.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	for i, day := range req.Days {
		req.Days[i] = strings.ToUpper(day)
	}

	suggestions, err := h.suggestions.SuggestRooms(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

// Bookings godoc
// @Summary List one room's schedule
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/bookings [get]
func (h *RoomHandler) Bookings(c *gin.Context) {
	bookings, err := h.bookings.ListByRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, nil)
}

// Export godoc
// @Summary Export one room's schedule as CSV or PDF
// @Tags Rooms
// @Produce text/csv
// @Param id path string true "Room ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /rooms/{id}/bookings/export [get]
func (h *RoomHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "schedule export is disabled"))
		return
	}
	file, err := h.exports.ExportRoomSchedule(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
