package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/walideltayeh/school-booking-api/internal/service"
	"github.com/walideltayeh/school-booking-api/pkg/response"
)

// ClassSectionHandler exposes class section lookups for booking forms.
type ClassSectionHandler struct {
	service *service.ClassSectionService
}

// NewClassSectionHandler constructs handler.
func NewClassSectionHandler(svc *service.ClassSectionService) *ClassSectionHandler {
	return &ClassSectionHandler{service: svc}
}

// Get godoc
// @Summary Get class section
// @Tags ClassSections
// @Produce json
// @Param id path string true "Class section ID"
// @Success 200 {object} response.Envelope
// @Router /class-sections/{id} [get]
func (h *ClassSectionHandler) Get(c *gin.Context) {
	section, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// ListByTeacher godoc
// @Summary List class sections owned by a teacher
// @Tags ClassSections
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/class-sections [get]
func (h *ClassSectionHandler) ListByTeacher(c *gin.Context) {
	sections, err := h.service.ListByTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}
