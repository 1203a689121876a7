package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/walideltayeh/school-booking-api/internal/models"
	"github.com/walideltayeh/school-booking-api/internal/service"
	appErrors "github.com/walideltayeh/school-booking-api/pkg/errors"
	"github.com/walideltayeh/school-booking-api/pkg/response"
)

// BookingHandler manages booking endpoints.
type BookingHandler struct {
	service *service.BookingService
}

// NewBookingHandler constructs handler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{service: svc}
}

// Commit godoc
// @Summary Commit a scheduling request as one atomic batch
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.SchedulingRequest true "Scheduling request"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Commit(c *gin.Context) {
	var req service.SchedulingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	normalizeRequestDays(req.Days)

	result, err := h.service.Commit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Check godoc
// @Summary Check a scheduling request for conflicts without committing
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.SchedulingRequest true "Scheduling request"
// @Success 200 {object} response.Envelope
// @Router /bookings/check [post]
func (h *BookingHandler) Check(c *gin.Context) {
	var req service.SchedulingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	normalizeRequestDays(req.Days)

	report, err := h.service.CheckConflicts(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param roomId query string false "Filter by room"
// @Param classSectionId query string false "Filter by class section"
// @Param teacherId query string false "Filter by teacher"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	var filter models.BookingFilter
	filter.RoomID = c.Query("roomId")
	filter.ClassSectionID = c.Query("classSectionId")
	filter.TeacherID = c.Query("teacherId")
	if day := strings.ToUpper(c.Query("day")); day != "" {
		filter.DaysIn = []string{day}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	bookings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Get godoc
// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Update godoc
// @Summary Update a single booking's room/day/period/week
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body service.UpdateBookingRequest true "Booking payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	var req service.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.DayOfWeek = strings.ToUpper(req.DayOfWeek)

	booking, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// ListByClassSection godoc
// @Summary List one class section's bookings
// @Tags Bookings
// @Produce json
// @Param id path string true "Class section ID"
// @Success 200 {object} response.Envelope
// @Router /class-sections/{id}/bookings [get]
func (h *BookingHandler) ListByClassSection(c *gin.Context) {
	filter := models.BookingFilter{ClassSectionID: c.Param("id"), PageSize: 100}
	bookings, _, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, nil)
}

// Delete godoc
// @Summary Delete booking
// @Tags Bookings
// @Param id path string true "Booking ID"
// @Success 204
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteBatch godoc
// @Summary Delete a set of bookings
// @Tags Bookings
// @Accept json
// @Param payload body handler.DeleteBookingsRequest true "Booking IDs"
// @Success 204
// @Router /bookings/batch-delete [post]
func (h *BookingHandler) DeleteBatch(c *gin.Context) {
	var req DeleteBookingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.DeleteBatch(c.Request.Context(), req.IDs); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteBookingsRequest carries booking ids for batch deletion.
type DeleteBookingsRequest struct {
	IDs []string `json:"ids"`
}

func normalizeRequestDays(days []string) {
	for i, day := range days {
		days[i] = strings.ToUpper(day)
	}
}
