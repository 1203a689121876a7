package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walideltayeh/school-booking-api/internal/models"
)

func newBookingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var bookingColumns = []string{
	"id", "class_section_id", "room_id", "period_id", "day_of_week",
	"week_number", "month_number", "deleted", "created_at", "updated_at",
	"class_section_name", "teacher_id", "teacher_name", "room_name", "period_number",
}

func addBookingRow(rows *sqlmock.Rows, id, room, day string, week int) {
	now := time.Now()
	rows.AddRow(id, "cs1", room, "p3", day, week, 9, false, now, now,
		"7-A (Math)", "t1", "Teacher One", "Lab 1", 3)
}

func TestBookingRepositoryFindByFilter(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	rows := sqlmock.NewRows(bookingColumns)
	addBookingRow(rows, "b1", "r1", "MONDAY", 1)

	mock.ExpectQuery(`b\.day_of_week = ANY\(\$1\) AND b\.week_number = ANY\(\$2\) AND b\.period_id = \$3`).
		WithArgs(pq.Array([]string{"MONDAY", "WEDNESDAY"}), pq.Array([]int{1, 2}), "p3").
		WillReturnRows(rows)

	bookings, err := repo.FindByFilter(context.Background(), models.BookingFilter{
		DaysIn:   []string{"MONDAY", "WEDNESDAY"},
		WeeksIn:  []int{1, 2},
		PeriodID: "p3",
	})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "b1", bookings[0].ID)
	assert.Equal(t, "7-A (Math)", bookings[0].ClassSectionName)
	require.NotNil(t, bookings[0].TeacherID)
	assert.Equal(t, "t1", *bookings[0].TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectQuery(`WHERE b\.id = \$1 AND b\.deleted = FALSE`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryInsertManyCommitsBatch(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	room := "r1"
	bookings := []models.Booking{
		{ClassSectionID: "cs1", RoomID: &room, PeriodID: "p3", DayOfWeek: "MONDAY", WeekNumber: 1, MonthNumber: 9},
		{ClassSectionID: "cs1", RoomID: &room, PeriodID: "p3", DayOfWeek: "MONDAY", WeekNumber: 1, MonthNumber: 10},
	}
	require.NoError(t, repo.InsertMany(context.Background(), bookings))
	assert.NotEmpty(t, bookings[0].ID, "ids are assigned during insert")
	assert.NotEmpty(t, bookings[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryInsertManyRollsBackOnUniqueViolation(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	room := "r1"
	bookings := []models.Booking{
		{ClassSectionID: "cs1", RoomID: &room, PeriodID: "p3", DayOfWeek: "MONDAY", WeekNumber: 1, MonthNumber: 9},
		{ClassSectionID: "cs1", RoomID: &room, PeriodID: "p3", DayOfWeek: "MONDAY", WeekNumber: 1, MonthNumber: 10},
	}
	err := repo.InsertMany(context.Background(), bookings)
	require.ErrorIs(t, err, ErrUniqueViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryInsertManyRollsBackOnOtherError(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	room := "r1"
	err := repo.InsertMany(context.Background(), []models.Booking{
		{ClassSectionID: "cs1", RoomID: &room, PeriodID: "p3", DayOfWeek: "MONDAY", WeekNumber: 1, MonthNumber: 9},
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUniqueViolation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryUpdateMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec("UPDATE bookings SET room_id").
		WillReturnError(&pq.Error{Code: "23505"})

	room := "r1"
	err := repo.Update(context.Background(), &models.Booking{
		ID:     "b1",
		RoomID: &room,
	})
	require.ErrorIs(t, err, ErrUniqueViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryDeleteIsSoft(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET deleted = TRUE, updated_at = $2 WHERE id = $1")).
		WithArgs("b1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "b1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryDeleteMany(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET deleted = TRUE, updated_at = $2 WHERE id = ANY($1)")).
		WithArgs(pq.Array([]string{"b1", "b2"}), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteMany(context.Background(), []string{"b1", "b2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryList(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	rows := sqlmock.NewRows(bookingColumns)
	addBookingRow(rows, "b1", "r1", "MONDAY", 1)

	mock.ExpectQuery(`b\.room_id = \$1 ORDER BY .+ LIMIT 20 OFFSET 0`).
		WithArgs("r1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	bookings, total, err := repo.List(context.Background(), models.BookingFilter{RoomID: "r1"})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
