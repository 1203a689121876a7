package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/walideltayeh/school-booking-api/internal/models"
	appErrors "github.com/walideltayeh/school-booking-api/pkg/errors"
)

type classSectionStore interface {
	FindByID(ctx context.Context, id string) (*models.ClassSection, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassSection, error)
}

// ClassSectionService resolves class sections for booking forms.
type ClassSectionService struct {
	repo   classSectionStore
	logger *zap.Logger
}

// NewClassSectionService instantiates ClassSectionService.
func NewClassSectionService(repo classSectionStore, logger *zap.Logger) *ClassSectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassSectionService{repo: repo, logger: logger}
}

// Get loads one class section.
func (s *ClassSectionService) Get(ctx context.Context, id string) (*models.ClassSection, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load class section")
	}
	return section, nil
}

// ListByTeacher returns the sections owned by one teacher, used by the
// scheduling form to narrow the class picker.
func (s *ClassSectionService) ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassSection, error) {
	sections, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list class sections")
	}
	return sections, nil
}
