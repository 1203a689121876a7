package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/walideltayeh/school-booking-api/internal/models"
	"github.com/walideltayeh/school-booking-api/pkg/export"
	appErrors "github.com/walideltayeh/school-booking-api/pkg/errors"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type roomScheduleSource interface {
	ListByRoom(ctx context.Context, roomID string) ([]models.BookingWithDetails, error)
}

// ExportFile is a rendered schedule document.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ScheduleExportService renders one room's schedule as CSV or PDF, the
// downloadable counterpart of the room occupancy views.
type ScheduleExportService struct {
	bookings roomScheduleSource
	rooms    roomFinder
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewScheduleExportService constructs a ScheduleExportService.
func NewScheduleExportService(bookings roomScheduleSource, rooms roomFinder, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ScheduleExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleExportService{bookings: bookings, rooms: rooms, csv: csv, pdf: pdf, logger: logger}
}

// ExportRoomSchedule renders the room's schedule in the requested format
// ("csv" or "pdf").
func (s *ScheduleExportService) ExportRoomSchedule(ctx context.Context, roomID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load room")
	}

	bookings, err := s.bookings.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list room bookings")
	}

	dataset := scheduleDataset(bookings)
	title := fmt.Sprintf("Room %s schedule", room.Name)

	var payload []byte
	var contentType, ext string
	switch format {
	case "pdf":
		payload, err = s.pdf.Render(dataset, title)
		contentType, ext = "application/pdf", "pdf"
	default:
		payload, err = s.csv.Render(dataset)
		contentType, ext = "text/csv", "csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("room-%s-schedule.%s", room.ID, ext),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

func scheduleDataset(bookings []models.BookingWithDetails) export.Dataset {
	headers := []string{"Day", "Period", "Week", "Month", "Class", "Teacher"}
	rows := make([]map[string]string, 0, len(bookings))
	for _, booking := range bookings {
		teacher := ""
		if booking.TeacherName != nil {
			teacher = *booking.TeacherName
		}
		rows = append(rows, map[string]string{
			"Day":     booking.DayOfWeek,
			"Period":  strconv.Itoa(booking.PeriodNumber),
			"Week":    strconv.Itoa(booking.WeekNumber),
			"Month":   strconv.Itoa(booking.MonthNumber),
			"Class":   booking.ClassSectionName,
			"Teacher": teacher,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
