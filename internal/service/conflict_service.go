package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/walideltayeh/school-booking-api/internal/models"
	appErrors "github.com/walideltayeh/school-booking-api/pkg/errors"
)

type conflictBookingFinder interface {
	FindByFilter(ctx context.Context, filter models.BookingFilter) ([]models.BookingWithDetails, error)
}

type periodResolver interface {
	FindByNumber(ctx context.Context, number int) (*models.Period, error)
}

type classSectionFinder interface {
	FindByID(ctx context.Context, id string) (*models.ClassSection, error)
}

// ConflictService detects room and teacher collisions for candidate slots.
// It is read-only and safe to call repeatedly for live form feedback; the
// result is best-effort, final enforcement happens at commit time.
type ConflictService struct {
	bookings conflictBookingFinder
	periods  periodResolver
	sections classSectionFinder
	logger   *zap.Logger
}

// NewConflictService instantiates ConflictService.
func NewConflictService(bookings conflictBookingFinder, periods periodResolver, sections classSectionFinder, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{bookings: bookings, periods: periods, sections: sections, logger: logger}
}

// FindConflicts checks every candidate slot against existing bookings.
// Room conflicts match on the candidate's room; teacher conflicts match on
// the owning teacher of classSectionID regardless of room. excludeBookingID
// removes one booking from consideration so an edit never conflicts with
// itself.
func (s *ConflictService) FindConflicts(ctx context.Context, candidates []models.SlotKey, classSectionID, excludeBookingID string) (*models.ConflictReport, error) {
	report := &models.ConflictReport{}
	if len(candidates) == 0 {
		return report, nil
	}

	var ownerTeacherID string
	if classSectionID != "" {
		section, err := s.sections.FindByID(ctx, classSectionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrConfiguration, "class section not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load class section")
		}
		if section.TeacherID != nil {
			ownerTeacherID = *section.TeacherID
		}
	}

	existing, err := s.existingForCandidates(ctx, candidates)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, cand := range candidates {
		for _, booking := range existing {
			if booking.ID == excludeBookingID {
				continue
			}
			if booking.DayOfWeek != cand.DayOfWeek || booking.WeekNumber != cand.WeekNumber {
				continue
			}

			if cand.RoomID != "" && booking.RoomID != nil && *booking.RoomID == cand.RoomID {
				s.appendConflict(report, seen, cand, booking, models.ConflictRoom)
			}
			if ownerTeacherID != "" && booking.TeacherID != nil && *booking.TeacherID == ownerTeacherID {
				s.appendConflict(report, seen, cand, booking, models.ConflictTeacher)
			}
		}
	}

	return report, nil
}

// RoomConflicts checks candidate slots against every room at once and
// returns room conflicts keyed by room id. Candidates carry no room of
// their own; the suggestion engine uses this to flag occupied rooms.
func (s *ConflictService) RoomConflicts(ctx context.Context, candidates []models.SlotKey) (map[string][]models.Conflict, error) {
	result := make(map[string][]models.Conflict)
	if len(candidates) == 0 {
		return result, nil
	}

	existing, err := s.existingForCandidates(ctx, candidates)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, cand := range candidates {
		for _, booking := range existing {
			if booking.RoomID == nil {
				continue
			}
			if booking.DayOfWeek != cand.DayOfWeek || booking.WeekNumber != cand.WeekNumber {
				continue
			}
			roomID := *booking.RoomID
			key := fmt.Sprintf("%s|%s|%d", roomID, cand.DayOfWeek, cand.WeekNumber)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			result[roomID] = append(result[roomID], conflictFor(cand, booking, models.ConflictRoom))
		}
	}

	return result, nil
}

// existingForCandidates resolves each candidate period number to its id and
// fetches all bookings sharing the batch's day/week/period coordinates.
// Candidates normally share one period, so this is a single store query.
func (s *ConflictService) existingForCandidates(ctx context.Context, candidates []models.SlotKey) ([]models.BookingWithDetails, error) {
	groups := make(map[int][]models.SlotKey)
	for _, cand := range candidates {
		groups[cand.PeriodNumber] = append(groups[cand.PeriodNumber], cand)
	}

	var existing []models.BookingWithDetails
	for number, group := range groups {
		period, err := s.periods.FindByNumber(ctx, number)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("period %d is not configured", number))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to resolve period")
		}

		filter := models.BookingFilter{
			DaysIn:   uniqueDays(group),
			WeeksIn:  uniqueWeeks(group),
			PeriodID: period.ID,
		}
		matches, err := s.bookings.FindByFilter(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to query existing bookings")
		}
		existing = append(existing, matches...)
	}

	return existing, nil
}

func (s *ConflictService) appendConflict(report *models.ConflictReport, seen map[string]struct{}, cand models.SlotKey, booking models.BookingWithDetails, kind models.ConflictKind) {
	key := fmt.Sprintf("%s|%s|%d|%s", cand.RoomID, cand.DayOfWeek, cand.WeekNumber, kind)
	if _, dup := seen[key]; dup {
		return
	}
	seen[key] = struct{}{}
	report.Conflicts = append(report.Conflicts, conflictFor(cand, booking, kind))
}

func conflictFor(cand models.SlotKey, booking models.BookingWithDetails, kind models.ConflictKind) models.Conflict {
	conflict := models.Conflict{
		Slot:             cand,
		BookingID:        booking.ID,
		ClassSectionName: booking.ClassSectionName,
		Kind:             kind,
	}
	if booking.RoomName != nil {
		conflict.RoomName = *booking.RoomName
	}
	return conflict
}

func uniqueDays(candidates []models.SlotKey) []string {
	seen := make(map[string]struct{}, len(candidates))
	var days []string
	for _, cand := range candidates {
		if _, ok := seen[cand.DayOfWeek]; ok {
			continue
		}
		seen[cand.DayOfWeek] = struct{}{}
		days = append(days, cand.DayOfWeek)
	}
	return days
}

func uniqueWeeks(candidates []models.SlotKey) []int {
	seen := make(map[int]struct{}, len(candidates))
	var weeks []int
	for _, cand := range candidates {
		if _, ok := seen[cand.WeekNumber]; ok {
			continue
		}
		seen[cand.WeekNumber] = struct{}{}
		weeks = append(weeks, cand.WeekNumber)
	}
	return weeks
}
