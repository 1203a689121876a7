package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/walideltayeh/school-booking-api/internal/models"
	appErrors "github.com/walideltayeh/school-booking-api/pkg/errors"
)

const roomCatalogCacheKey = "booking:rooms:catalog"

type roomCatalog interface {
	List(ctx context.Context) ([]models.Room, error)
}

type roomConflictDetector interface {
	RoomConflicts(ctx context.Context, candidates []models.SlotKey) (map[string][]models.Conflict, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// SuggestionRequest asks which rooms can host a candidate batch.
type SuggestionRequest struct {
	ClassSectionID string   `json:"class_section_id" validate:"required"`
	PeriodNumber   int      `json:"period_number" validate:"required,min=1"`
	Days           []string `json:"days" validate:"required,min=1,dive,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY"`
	Weeks          []int    `json:"weeks" validate:"required,min=1,dive,min=1,max=4"`
}

// SuggestionService classifies the room catalog against a candidate batch.
// Purely advisory: the operator may still book a flagged room, and commit
// time enforcement has the final word.
type SuggestionService struct {
	rooms     roomCatalog
	sections  classSectionFinder
	detector  roomConflictDetector
	cache     catalogCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSuggestionService instantiates SuggestionService. cache may be nil.
func NewSuggestionService(rooms roomCatalog, sections classSectionFinder, detector roomConflictDetector, cache catalogCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *SuggestionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{
		rooms:     rooms,
		sections:  sections,
		detector:  detector,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
	}
}

// SuggestRooms classifies every catalog room for the batch. A room counts
// as available only when it is free for every slot; capacity shortfalls are
// flagged, never blocking.
func (s *SuggestionService) SuggestRooms(ctx context.Context, req SuggestionRequest) ([]models.RoomSuggestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion request")
	}

	section, err := s.sections.FindByID(ctx, req.ClassSectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, "class section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load class section")
	}
	requiredCapacity := section.EnrollmentCount

	rooms, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.SlotKey, 0, len(req.Days)*len(req.Weeks))
	for _, day := range req.Days {
		for _, week := range req.Weeks {
			candidates = append(candidates, models.SlotKey{
				DayOfWeek:    day,
				PeriodNumber: req.PeriodNumber,
				WeekNumber:   week,
			})
		}
	}

	conflictsByRoom, err := s.detector.RoomConflicts(ctx, candidates)
	if err != nil {
		return nil, err
	}

	suggestions := make([]models.RoomSuggestion, 0, len(rooms))
	for _, room := range rooms {
		suggestion := models.RoomSuggestion{Room: room}
		if conflicts := conflictsByRoom[room.ID]; len(conflicts) > 0 {
			suggestion.Status = models.RoomBooked
			suggestion.Conflicts = conflicts
		} else if room.Capacity != nil && *room.Capacity < requiredCapacity {
			suggestion.Status = models.RoomAvailableTooSmall
		} else {
			suggestion.Status = models.RoomAvailableSufficient
		}
		suggestions = append(suggestions, suggestion)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		ri, rj := availabilityRank(suggestions[i].Status), availabilityRank(suggestions[j].Status)
		if ri != rj {
			return ri < rj
		}
		return suggestions[i].Room.Name < suggestions[j].Room.Name
	})

	return suggestions, nil
}

func (s *SuggestionService) loadCatalog(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if s.cache != nil {
		if err := s.cache.Get(ctx, roomCatalogCacheKey, &rooms); err == nil {
			return rooms, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("room catalog cache read failed", zap.Error(err))
		}
	}

	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list rooms")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, roomCatalogCacheKey, rooms, s.cacheTTL); err != nil {
			s.logger.Warn("room catalog cache write failed", zap.Error(err))
		}
	}
	return rooms, nil
}

func availabilityRank(status models.RoomAvailability) int {
	switch status {
	case models.RoomAvailableSufficient:
		return 0
	case models.RoomAvailableTooSmall:
		return 1
	default:
		return 2
	}
}
