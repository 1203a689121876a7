package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/walideltayeh/school-booking-api/internal/models"
	appErrors "github.com/walideltayeh/school-booking-api/pkg/errors"
)

type mockScheduleSource struct {
	bookings []models.BookingWithDetails
}

func (m *mockScheduleSource) ListByRoom(ctx context.Context, roomID string) ([]models.BookingWithDetails, error) {
	return m.bookings, nil
}

func exportFixture() *ScheduleExportService {
	source := &mockScheduleSource{bookings: []models.BookingWithDetails{
		{
			Booking: models.Booking{
				ID:          "b1",
				DayOfWeek:   models.Monday,
				WeekNumber:  1,
				MonthNumber: 9,
			},
			ClassSectionName: "7-A (Math)",
			TeacherName:      strPtr("Teacher One"),
			PeriodNumber:     3,
		},
	}}
	rooms := &mockRoomFinder{byID: map[string]*models.Room{
		"r1": {ID: "r1", Name: "Lab 1"},
	}}
	return NewScheduleExportService(source, rooms, nil, nil, zap.NewNop())
}

func TestExportRoomScheduleCSV(t *testing.T) {
	svc := exportFixture()

	file, err := svc.ExportRoomSchedule(context.Background(), "r1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "room-r1-schedule.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	body := string(file.Data)
	assert.True(t, strings.Contains(body, "Day"))
	assert.True(t, strings.Contains(body, "MONDAY"))
	assert.True(t, strings.Contains(body, "7-A (Math)"))
	assert.True(t, strings.Contains(body, "Teacher One"))
}

func TestExportRoomSchedulePDF(t *testing.T) {
	svc := exportFixture()

	file, err := svc.ExportRoomSchedule(context.Background(), "r1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "room-r1-schedule.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.NotEmpty(t, file.Data)
}

func TestExportRoomScheduleRejectsUnknownFormat(t *testing.T) {
	svc := exportFixture()

	_, err := svc.ExportRoomSchedule(context.Background(), "r1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportRoomScheduleUnknownRoom(t *testing.T) {
	svc := exportFixture()

	_, err := svc.ExportRoomSchedule(context.Background(), "missing", "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
