package main

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*storage, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newStorage(db), mock
}

func TestToggleHabitOnRecordsTodayInOneTransaction(t *testing.T) {
	s, mock := newTestStorage(t)
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	h := &habit{ID: 7, UserID: 3, Name: "Run", Completed: false}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE habits").
		WithArgs(true, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO completion_logs").
		WithArgs(7, today).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, s.toggleHabit(h, today))
	assert.True(t, h.Completed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleHabitOffRemovesOnlyTodaysLog(t *testing.T) {
	s, mock := newTestStorage(t)
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	h := &habit{ID: 7, UserID: 3, Name: "Run", Completed: true}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE habits").
		WithArgs(false, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM completion_logs").
		WithArgs(7, today).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.toggleHabit(h, today))
	assert.False(t, h.Completed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleHabitRollsBackWhenLogWriteFails(t *testing.T) {
	s, mock := newTestStorage(t)
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	h := &habit{ID: 7, UserID: 3, Name: "Run", Completed: false}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE habits").
		WithArgs(true, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO completion_logs").
		WithArgs(7, today).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	require.Error(t, s.toggleHabit(h, today))
	assert.False(t, h.Completed, "flag must not change when the transaction fails")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetHabitsDoesNotTouchCompletionLogs(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectExec("UPDATE habits").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, s.resetHabits(3))
	// ExpectationsWereMet fails on any statement beyond the single UPDATE,
	// so a reset that touched completion_logs would be caught here.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHabitMissingOrForeignReturnsNil(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT (.+) FROM habits").
		WithArgs(42, 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "completed"}))

	h, err := s.getHabit(42, 3)
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestDeleteHabitReportsMissingRow(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectExec("DELETE FROM habits").
		WithArgs(42, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := s.deleteHabit(42, 3)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetCompletionHistoryBuildsSparseMap(t *testing.T) {
	s, mock := newTestStorage(t)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -6)

	mock.ExpectQuery("SELECT (.+) FROM completion_logs").
		WithArgs(3, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"date", "count"}).
			AddRow(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), 2).
			AddRow(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 1))

	history, err := s.getCompletionHistory(3, from, to)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"2026-02-27": 2,
		"2026-03-01": 1,
	}, history)
}

func TestGetCompletionHistoryEmptyWindow(t *testing.T) {
	s, mock := newTestStorage(t)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -6)

	mock.ExpectQuery("SELECT (.+) FROM completion_logs").
		WithArgs(3, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"date", "count"}))

	history, err := s.getCompletionHistory(3, from, to)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.NotNil(t, history)
}

func TestGetHabitsEmptyIsNotNil(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT (.+) FROM habits").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "completed"}))

	habits, err := s.getHabits(3)
	require.NoError(t, err)
	assert.NotNil(t, habits)
	assert.Len(t, habits, 0)
}
