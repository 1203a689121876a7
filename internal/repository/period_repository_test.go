package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walideltayeh/school-booking-api/internal/models"
)

func newPeriodRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPeriodRepositoryFindByNumber(t *testing.T) {
	db, mock, cleanup := newPeriodRepoMock(t)
	defer cleanup()
	repo := NewPeriodRepository(db)

	rows := sqlmock.NewRows([]string{"id", "period_number", "start_time", "end_time", "created_at"}).
		AddRow("p3", 3, "09:30", "10:15", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, period_number, start_time, end_time, created_at FROM periods WHERE period_number = $1")).
		WithArgs(3).
		WillReturnRows(rows)

	period, err := repo.FindByNumber(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "p3", period.ID)
	assert.Equal(t, 3, period.PeriodNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodRepositoryFindByNumberMissing(t *testing.T) {
	db, mock, cleanup := newPeriodRepoMock(t)
	defer cleanup()
	repo := NewPeriodRepository(db)

	mock.ExpectQuery("FROM periods WHERE period_number").
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByNumber(context.Background(), 9)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newPeriodRepoMock(t)
	defer cleanup()
	repo := NewPeriodRepository(db)

	mock.ExpectExec("INSERT INTO periods").
		WillReturnResult(sqlmock.NewResult(0, 1))

	period := &models.Period{PeriodNumber: 1, StartTime: "07:15", EndTime: "08:00"}
	require.NoError(t, repo.Create(context.Background(), period))
	assert.NotEmpty(t, period.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
