package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/walideltayeh/school-booking-api/internal/models"
	appErrors "github.com/walideltayeh/school-booking-api/pkg/errors"
)

type periodStore interface {
	List(ctx context.Context) ([]models.Period, error)
	Create(ctx context.Context, period *models.Period) error
}

// CreatePeriodRequest describes payload for adding a period.
type CreatePeriodRequest struct {
	PeriodNumber int    `json:"period_number" validate:"required,min=1"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
}

// PeriodService manages period reference data.
type PeriodService struct {
	repo      periodStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService instantiates PeriodService.
func NewPeriodService(repo periodStore, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{repo: repo, validator: validate, logger: logger}
}

// List returns all periods in order.
func (s *PeriodService) List(ctx context.Context) ([]models.Period, error) {
	periods, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list periods")
	}
	return periods, nil
}

// Create adds a period.
func (s *PeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*models.Period, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}

	period := models.Period{
		PeriodNumber: req.PeriodNumber,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	}
	if err := s.repo.Create(ctx, &period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create period")
	}
	return &period, nil
}
