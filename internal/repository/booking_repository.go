package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/walideltayeh/school-booking-api/internal/models"
)

// ErrUniqueViolation marks an insert or update rejected by the slot
// uniqueness index. The booking service treats it as a detected conflict.
var ErrUniqueViolation = errors.New("booking slot already taken")

const bookingSelectColumns = `b.id, b.class_section_id, b.room_id, b.period_id, b.day_of_week, b.week_number, b.month_number, b.deleted, b.created_at, b.updated_at,
	cs.grade || '-' || cs.section || ' (' || cs.subject || ')' AS class_section_name,
	cs.teacher_id,
	t.full_name AS teacher_name,
	r.name AS room_name,
	p.period_number`

const bookingJoins = `
FROM bookings b
JOIN class_sections cs ON cs.id = b.class_section_id
JOIN periods p ON p.id = b.period_id
LEFT JOIN teachers t ON t.id = cs.teacher_id
LEFT JOIN rooms r ON r.id = b.room_id`

// BookingRepository persists bookings and answers the range queries the
// conflict detector relies on.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// FindByFilter returns non-deleted bookings with joined display fields.
func (r *BookingRepository) FindByFilter(ctx context.Context, filter models.BookingFilter) ([]models.BookingWithDetails, error) {
	base := fmt.Sprintf("SELECT %s %s WHERE b.deleted = FALSE", bookingSelectColumns, bookingJoins)
	var conditions []string
	var args []interface{}

	if len(filter.DaysIn) > 0 {
		conditions = append(conditions, fmt.Sprintf("b.day_of_week = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.DaysIn))
	}
	if len(filter.WeeksIn) > 0 {
		conditions = append(conditions, fmt.Sprintf("b.week_number = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.WeeksIn))
	}
	if filter.PeriodID != "" {
		conditions = append(conditions, fmt.Sprintf("b.period_id = $%d", len(args)+1))
		args = append(args, filter.PeriodID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("b.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.ClassSectionID != "" {
		conditions = append(conditions, fmt.Sprintf("b.class_section_id = $%d", len(args)+1))
		args = append(args, filter.ClassSectionID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	base += " ORDER BY b.day_of_week ASC, b.week_number ASC, b.month_number ASC"

	var bookings []models.BookingWithDetails
	if err := r.db.SelectContext(ctx, &bookings, base, args...); err != nil {
		return nil, fmt.Errorf("find bookings by filter: %w", err)
	}
	return bookings, nil
}

// List returns bookings with pagination for administrative views.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingWithDetails, int, error) {
	where := "WHERE b.deleted = FALSE"
	var conditions []string
	var args []interface{}

	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("b.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.ClassSectionID != "" {
		conditions = append(conditions, fmt.Sprintf("b.class_section_id = $%d", len(args)+1))
		args = append(args, filter.ClassSectionID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if len(filter.DaysIn) > 0 {
		conditions = append(conditions, fmt.Sprintf("b.day_of_week = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.DaysIn))
	}
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s %s ORDER BY b.day_of_week ASC, b.week_number ASC, b.month_number ASC LIMIT %d OFFSET %d",
		bookingSelectColumns, bookingJoins, where, size, offset)
	var bookings []models.BookingWithDetails
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", bookingJoins, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	return bookings, total, nil
}

// FindByID loads a single non-deleted booking with display fields.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.BookingWithDetails, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE b.id = $1 AND b.deleted = FALSE", bookingSelectColumns, bookingJoins)
	var booking models.BookingWithDetails
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListByRoom returns the full schedule of one room ordered by cycle position.
func (r *BookingRepository) ListByRoom(ctx context.Context, roomID string) ([]models.BookingWithDetails, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE b.room_id = $1 AND b.deleted = FALSE ORDER BY b.month_number ASC, b.week_number ASC, b.day_of_week ASC", bookingSelectColumns, bookingJoins)
	var bookings []models.BookingWithDetails
	if err := r.db.SelectContext(ctx, &bookings, query, roomID); err != nil {
		return nil, fmt.Errorf("list bookings by room: %w", err)
	}
	return bookings, nil
}

// InsertMany persists a batch inside a single transaction. The partial
// unique index on (room_id, day_of_week, period_id, week_number,
// month_number) is the authoritative conflict guard: a violation rolls the
// whole batch back and surfaces as ErrUniqueViolation.
func (r *BookingRepository) InsertMany(ctx context.Context, bookings []models.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert bookings: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const query = `INSERT INTO bookings (id, class_section_id, room_id, period_id, day_of_week, week_number, month_number, deleted, created_at, updated_at)
VALUES (:id, :class_section_id, :room_id, :period_id, :day_of_week, :week_number, :month_number, FALSE, :created_at, :updated_at)`

	for i := range bookings {
		payload := bookings[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now

		if _, err = sqlx.NamedExecContext(ctx, tx, query, &payload); err != nil {
			if isUniqueViolation(err) {
				err = fmt.Errorf("insert booking: %w", ErrUniqueViolation)
			} else {
				err = fmt.Errorf("insert booking: %w", err)
			}
			return err
		}
		bookings[i] = payload
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit insert bookings: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of one booking.
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	booking.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bookings SET room_id = :room_id, period_id = :period_id, day_of_week = :day_of_week, week_number = :week_number, updated_at = :updated_at WHERE id = :id AND deleted = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update booking: %w", ErrUniqueViolation)
		}
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

// Delete soft-deletes one booking.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE bookings SET deleted = TRUE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

// DeleteMany soft-deletes a set of bookings at once.
func (r *BookingRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE bookings SET deleted = TRUE, updated_at = $2 WHERE id = ANY($1)`, pq.Array(ids), time.Now().UTC()); err != nil {
		return fmt.Errorf("delete bookings: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
