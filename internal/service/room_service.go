package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/walideltayeh/school-booking-api/internal/models"
	appErrors "github.com/walideltayeh/school-booking-api/pkg/errors"
)

type roomStore interface {
	List(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

type cacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

// CreateRoomRequest describes payload for creating a room.
type CreateRoomRequest struct {
	Name     string  `json:"name" validate:"required"`
	Building *string `json:"building"`
	Floor    *string `json:"floor"`
	Capacity *int    `json:"capacity" validate:"omitempty,min=1"`
}

// UpdateRoomRequest updates an existing room.
type UpdateRoomRequest struct {
	Name     string  `json:"name" validate:"required"`
	Building *string `json:"building"`
	Floor    *string `json:"floor"`
	Capacity *int    `json:"capacity" validate:"omitempty,min=1"`
}

// RoomService manages the room catalog. Writes invalidate the cached
// catalog used by the suggestion engine.
type RoomService struct {
	repo      roomStore
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService instantiates RoomService. cache may be nil.
func NewRoomService(repo roomStore, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the whole catalog.
func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list rooms")
	}
	return rooms, nil
}

// Get loads one room.
func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load room")
	}
	return room, nil
}

// Create adds a room to the catalog.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	room := models.Room{
		Name:     req.Name,
		Building: req.Building,
		Floor:    req.Floor,
		Capacity: req.Capacity,
	}
	if err := s.repo.Create(ctx, &room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create room")
	}
	s.invalidateCatalog(ctx)
	return &room, nil
}

// Update modifies a room.
func (s *RoomService) Update(ctx context.Context, id string, req UpdateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.Building = req.Building
	existing.Floor = req.Floor
	existing.Capacity = req.Capacity
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update room")
	}
	s.invalidateCatalog(ctx)
	return existing, nil
}

// Delete removes a room from the catalog. Existing bookings keep their
// room reference; conflict detection tolerates unresolved rooms.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete room")
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *RoomService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, roomCatalogCacheKey); err != nil {
		s.logger.Warn("room catalog cache invalidation failed", zap.Error(err))
	}
}
