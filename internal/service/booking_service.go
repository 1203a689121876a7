package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/walideltayeh/school-booking-api/internal/models"
	"github.com/walideltayeh/school-booking-api/internal/repository"
	appErrors "github.com/walideltayeh/school-booking-api/pkg/errors"
)

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingWithDetails, int, error)
	FindByID(ctx context.Context, id string) (*models.BookingWithDetails, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.BookingWithDetails, error)
	InsertMany(ctx context.Context, bookings []models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
}

type conflictDetector interface {
	FindConflicts(ctx context.Context, candidates []models.SlotKey, classSectionID, excludeBookingID string) (*models.ConflictReport, error)
}

type roomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type commitObserver interface {
	ObserveCommit(outcome string)
	ObserveConflicts(kind string, count int)
}

// UpdateBookingRequest replaces the room/day/period/week of one booking.
// The day/week/month selection sets of a batch are fixed at creation;
// edits operate on single bookings only.
type UpdateBookingRequest struct {
	RoomID       string `json:"room_id" validate:"required"`
	DayOfWeek    string `json:"day_of_week" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY"`
	PeriodNumber int    `json:"period_number" validate:"required,min=1"`
	WeekNumber   int    `json:"week_number" validate:"required,min=1,max=4"`
}

// CommitResult reports a committed batch.
type CommitResult struct {
	Bookings []models.Booking `json:"bookings"`
}

// BookingService coordinates booking commits: expand, check, then persist
// the whole batch atomically or reject it untouched.
type BookingService struct {
	repo      bookingRepository
	detector  conflictDetector
	expander  BookingExpander
	periods   periodResolver
	rooms     roomFinder
	sections  classSectionFinder
	metrics   commitObserver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService instantiates BookingService. metrics may be nil.
func NewBookingService(repo bookingRepository, detector conflictDetector, periods periodResolver, rooms roomFinder, sections classSectionFinder, metrics commitObserver, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		repo:      repo,
		detector:  detector,
		periods:   periods,
		rooms:     rooms,
		sections:  sections,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Commit runs one booking attempt through expand → check → persist. Any
// conflict rejects the whole batch with the full report; a clean check
// persists every expanded booking in one transaction. A uniqueness
// violation during insert means a concurrent commit won the slot, and is
// reported as a conflict with nothing persisted.
func (s *BookingService) Commit(ctx context.Context, req SchedulingRequest) (*CommitResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduling request")
	}

	period, err := s.resolvePeriod(ctx, req.PeriodNumber)
	if err != nil {
		return nil, err
	}
	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load room")
	}

	candidates := s.expander.SlotKeys(req)
	report, err := s.detector.FindConflicts(ctx, candidates, req.ClassSectionID, req.ExcludeBookingID)
	if err != nil {
		s.observeCommit("error")
		return nil, err
	}
	if report.HasConflicts() {
		s.observeCommit("rejected")
		s.observeReport(report)
		return nil, s.conflictError(report)
	}

	bookings := s.expander.Expand(req)
	for i := range bookings {
		bookings[i].PeriodID = period.ID
	}

	if err := s.repo.InsertMany(ctx, bookings); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			s.observeCommit("rejected")
			s.logger.Info("booking batch lost slot race",
				zap.String("class_section_id", req.ClassSectionID),
				zap.String("room_id", req.RoomID))
			return nil, s.conflictError(&models.ConflictReport{})
		}
		s.observeCommit("error")
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist booking batch")
	}

	s.observeCommit("committed")
	s.logger.Info("booking batch committed",
		zap.String("class_section_id", req.ClassSectionID),
		zap.String("room_id", req.RoomID),
		zap.Int("bookings", len(bookings)))
	return &CommitResult{Bookings: bookings}, nil
}

// Update edits one booking after a self-excluding conflict check.
func (s *BookingService) Update(ctx context.Context, id string, req UpdateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load booking")
	}

	period, err := s.resolvePeriod(ctx, req.PeriodNumber)
	if err != nil {
		return nil, err
	}

	candidate := models.SlotKey{
		RoomID:       req.RoomID,
		DayOfWeek:    req.DayOfWeek,
		PeriodNumber: req.PeriodNumber,
		WeekNumber:   req.WeekNumber,
	}
	report, err := s.detector.FindConflicts(ctx, []models.SlotKey{candidate}, existing.ClassSectionID, id)
	if err != nil {
		return nil, err
	}
	if report.HasConflicts() {
		s.observeReport(report)
		return nil, s.conflictError(report)
	}

	roomID := req.RoomID
	updated := models.Booking{
		ID:             existing.ID,
		ClassSectionID: existing.ClassSectionID,
		RoomID:         &roomID,
		PeriodID:       period.ID,
		DayOfWeek:      req.DayOfWeek,
		WeekNumber:     req.WeekNumber,
		MonthNumber:    existing.MonthNumber,
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, s.conflictError(&models.ConflictReport{})
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update booking")
	}
	return &updated, nil
}

// CheckConflicts exposes the detector for live form feedback. Best-effort:
// the answer may be stale by the time the operator submits.
func (s *BookingService) CheckConflicts(ctx context.Context, req SchedulingRequest) (*models.ConflictReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduling request")
	}
	return s.detector.FindConflicts(ctx, s.expander.SlotKeys(req), req.ClassSectionID, req.ExcludeBookingID)
}

// List returns bookings with pagination metadata.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingWithDetails, *models.Pagination, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return bookings, pagination, nil
}

// Get loads one booking.
func (s *BookingService) Get(ctx context.Context, id string) (*models.BookingWithDetails, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load booking")
	}
	return booking, nil
}

// ListByRoom returns one room's schedule.
func (s *BookingService) ListByRoom(ctx context.Context, roomID string) ([]models.BookingWithDetails, error) {
	bookings, err := s.repo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list room bookings")
	}
	return bookings, nil
}

// Delete soft-deletes one booking.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load booking")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete booking")
	}
	return nil
}

// DeleteBatch soft-deletes a set of bookings, used by admin cleanup.
func (s *BookingService) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "ids must not be empty")
	}
	if err := s.repo.DeleteMany(ctx, ids); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete bookings")
	}
	return nil
}

func (s *BookingService) resolvePeriod(ctx context.Context, number int) (*models.Period, error) {
	period, err := s.periods.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("period %d is not configured", number))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to resolve period")
	}
	return period, nil
}

func (s *BookingService) conflictError(report *models.ConflictReport) error {
	domainErr := &models.BookingConflictError{Message: "booking conflicts detected", Report: report}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "booking conflicts detected")
}

func (s *BookingService) observeCommit(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveCommit(outcome)
	}
}

func (s *BookingService) observeReport(report *models.ConflictReport) {
	if s.metrics == nil || report == nil {
		return
	}
	counts := make(map[models.ConflictKind]int)
	for _, conflict := range report.Conflicts {
		counts[conflict.Kind]++
	}
	for kind, count := range counts {
		s.metrics.ObserveConflicts(string(kind), count)
	}
}
