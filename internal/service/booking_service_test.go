package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/walideltayeh/school-booking-api/internal/models"
	"github.com/walideltayeh/school-booking-api/internal/repository"
	appErrors "github.com/walideltayeh/school-booking-api/pkg/errors"
)

type mockBookingRepo struct {
	byID      map[string]*models.BookingWithDetails
	inserted  []models.Booking
	insertErr error
	updated   []models.Booking
	updateErr error
	deleted   []string
}

func (m *mockBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingWithDetails, int, error) {
	return nil, 0, nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*models.BookingWithDetails, error) {
	if b, ok := m.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBookingRepo) ListByRoom(ctx context.Context, roomID string) ([]models.BookingWithDetails, error) {
	return nil, nil
}

func (m *mockBookingRepo) InsertMany(ctx context.Context, bookings []models.Booking) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, bookings...)
	return nil
}

func (m *mockBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, *booking)
	return nil
}

func (m *mockBookingRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockBookingRepo) DeleteMany(ctx context.Context, ids []string) error {
	m.deleted = append(m.deleted, ids...)
	return nil
}

type mockDetector struct {
	report     *models.ConflictReport
	err        error
	candidates []models.SlotKey
	sectionID  string
	excludeID  string
}

func (m *mockDetector) FindConflicts(ctx context.Context, candidates []models.SlotKey, classSectionID, excludeBookingID string) (*models.ConflictReport, error) {
	m.candidates = candidates
	m.sectionID = classSectionID
	m.excludeID = excludeBookingID
	if m.err != nil {
		return nil, m.err
	}
	if m.report == nil {
		return &models.ConflictReport{}, nil
	}
	return m.report, nil
}

type mockRoomFinder struct {
	byID map[string]*models.Room
}

func (m *mockRoomFinder) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if r, ok := m.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockCommitObserver struct {
	outcomes  []string
	conflicts map[string]int
}

func (m *mockCommitObserver) ObserveCommit(outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockCommitObserver) ObserveConflicts(kind string, count int) {
	if m.conflicts == nil {
		m.conflicts = make(map[string]int)
	}
	m.conflicts[kind] += count
}

func bookingFixture() (*BookingService, *mockBookingRepo, *mockDetector, *mockCommitObserver) {
	repo := &mockBookingRepo{byID: map[string]*models.BookingWithDetails{}}
	detector := &mockDetector{}
	periods := &mockPeriods{byNumber: map[int]*models.Period{
		3: {ID: "p3", PeriodNumber: 3},
	}}
	rooms := &mockRoomFinder{byID: map[string]*models.Room{
		"r1": {ID: "r1", Name: "Lab 1"},
	}}
	sections := &mockSections{byID: map[string]*models.ClassSection{
		"cs1": {ID: "cs1", TeacherID: strPtr("t1")},
	}}
	observer := &mockCommitObserver{}
	svc := NewBookingService(repo, detector, periods, rooms, sections, observer, validator.New(), zap.NewNop())
	return svc, repo, detector, observer
}

func validRequest() SchedulingRequest {
	return SchedulingRequest{
		ClassSectionID: "cs1",
		RoomID:         "r1",
		PeriodNumber:   3,
		Days:           []string{models.Monday},
		Weeks:          []int{1},
	}
}

func TestBookingServiceCommit(t *testing.T) {
	svc, repo, detector, observer := bookingFixture()

	result, err := svc.Commit(context.Background(), validRequest())
	require.NoError(t, err)

	// One day, one week, months defaulting to the whole year.
	require.Len(t, result.Bookings, 12)
	require.Len(t, repo.inserted, 12)
	for _, b := range repo.inserted {
		assert.Equal(t, "p3", b.PeriodID)
		assert.Equal(t, models.Monday, b.DayOfWeek)
		assert.Equal(t, 1, b.WeekNumber)
	}
	assert.Equal(t, "cs1", detector.sectionID)
	require.Len(t, detector.candidates, 1)
	assert.Equal(t, []string{"committed"}, observer.outcomes)
}

func TestBookingServiceCommitRejectedOnConflict(t *testing.T) {
	svc, repo, detector, observer := bookingFixture()
	detector.report = &models.ConflictReport{Conflicts: []models.Conflict{
		{BookingID: "b1", ClassSectionName: "7-A (Math)", Kind: models.ConflictRoom},
	}}

	_, err := svc.Commit(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	var conflictErr *models.BookingConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Report.Conflicts, 1)
	assert.Equal(t, "7-A (Math)", conflictErr.Report.Conflicts[0].ClassSectionName)

	assert.Empty(t, repo.inserted, "rejected batch must persist nothing")
	assert.Equal(t, []string{"rejected"}, observer.outcomes)
	assert.Equal(t, 1, observer.conflicts[string(models.ConflictRoom)])
}

func TestBookingServiceCommitLostSlotRace(t *testing.T) {
	svc, repo, _, observer := bookingFixture()
	repo.insertErr = repository.ErrUniqueViolation

	_, err := svc.Commit(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, []string{"rejected"}, observer.outcomes)
}

func TestBookingServiceCommitStorageError(t *testing.T) {
	svc, repo, _, observer := bookingFixture()
	repo.insertErr = errors.New("connection reset")

	_, err := svc.Commit(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStorage.Code, appErrors.FromError(err).Code)
	assert.Equal(t, []string{"error"}, observer.outcomes)
}

func TestBookingServiceCommitValidation(t *testing.T) {
	svc, repo, _, _ := bookingFixture()

	req := validRequest()
	req.Days = []string{"SUNDAY"}
	_, err := svc.Commit(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.inserted)
}

func TestBookingServiceCommitUnknownPeriod(t *testing.T) {
	svc, _, _, _ := bookingFixture()

	req := validRequest()
	req.PeriodNumber = 9
	_, err := svc.Commit(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConfiguration.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "period 9")
}

func TestBookingServiceCommitUnknownRoom(t *testing.T) {
	svc, _, _, _ := bookingFixture()

	req := validRequest()
	req.RoomID = "missing"
	_, err := svc.Commit(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConfiguration.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceUpdateExcludesSelf(t *testing.T) {
	svc, repo, detector, _ := bookingFixture()
	repo.byID["b1"] = &models.BookingWithDetails{
		Booking: models.Booking{
			ID:             "b1",
			ClassSectionID: "cs1",
			RoomID:         strPtr("r1"),
			PeriodID:       "p3",
			DayOfWeek:      models.Monday,
			WeekNumber:     1,
			MonthNumber:    9,
		},
	}

	updated, err := svc.Update(context.Background(), "b1", UpdateBookingRequest{
		RoomID:       "r1",
		DayOfWeek:    models.Tuesday,
		PeriodNumber: 3,
		WeekNumber:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, "b1", detector.excludeID)
	assert.Equal(t, models.Tuesday, updated.DayOfWeek)
	assert.Equal(t, 2, updated.WeekNumber)
	assert.Equal(t, 9, updated.MonthNumber, "edits keep the booking's month")
	require.Len(t, repo.updated, 1)
}

func TestBookingServiceUpdateNotFound(t *testing.T) {
	svc, _, _, _ := bookingFixture()

	_, err := svc.Update(context.Background(), "missing", UpdateBookingRequest{
		RoomID:       "r1",
		DayOfWeek:    models.Monday,
		PeriodNumber: 3,
		WeekNumber:   1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceUpdateConflict(t *testing.T) {
	svc, repo, detector, _ := bookingFixture()
	repo.byID["b1"] = &models.BookingWithDetails{
		Booking: models.Booking{ID: "b1", ClassSectionID: "cs1", MonthNumber: 9},
	}
	detector.report = &models.ConflictReport{Conflicts: []models.Conflict{
		{BookingID: "b2", Kind: models.ConflictTeacher},
	}}

	_, err := svc.Update(context.Background(), "b1", UpdateBookingRequest{
		RoomID:       "r1",
		DayOfWeek:    models.Monday,
		PeriodNumber: 3,
		WeekNumber:   1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}

func TestBookingServiceCheckConflictsPassesThrough(t *testing.T) {
	svc, _, detector, _ := bookingFixture()
	detector.report = &models.ConflictReport{Conflicts: []models.Conflict{
		{BookingID: "b1", Kind: models.ConflictRoom},
	}}

	req := validRequest()
	req.ExcludeBookingID = "b-edit"
	report, err := svc.CheckConflicts(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, report.HasConflicts())
	assert.Equal(t, "b-edit", detector.excludeID)
}

func TestBookingServiceDeleteBatchRequiresIDs(t *testing.T) {
	svc, repo, _, _ := bookingFixture()

	err := svc.DeleteBatch(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.DeleteBatch(context.Background(), []string{"b1", "b2"}))
	assert.Equal(t, []string{"b1", "b2"}, repo.deleted)
}
