package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/walideltayeh/school-booking-api/internal/models"
)

// ClassSectionRepository resolves class sections, their owning teacher and
// enrollment counts.
type ClassSectionRepository struct {
	db *sqlx.DB
}

// NewClassSectionRepository creates a new class section repository.
func NewClassSectionRepository(db *sqlx.DB) *ClassSectionRepository {
	return &ClassSectionRepository{db: db}
}

// FindByID loads a class section by id.
func (r *ClassSectionRepository) FindByID(ctx context.Context, id string) (*models.ClassSection, error) {
	const query = `SELECT id, grade, section, subject, teacher_id, enrollment_count, created_at, updated_at FROM class_sections WHERE id = $1`
	var section models.ClassSection
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// ListByTeacher returns the sections owned by one teacher.
func (r *ClassSectionRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassSection, error) {
	const query = `SELECT id, grade, section, subject, teacher_id, enrollment_count, created_at, updated_at FROM class_sections WHERE teacher_id = $1 ORDER BY grade ASC, section ASC`
	var sections []models.ClassSection
	if err := r.db.SelectContext(ctx, &sections, query, teacherID); err != nil {
		return nil, err
	}
	return sections, nil
}
