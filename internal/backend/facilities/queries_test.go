// internal/backend/facilities/queries_test.go
package facilities

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "childcare-assistant/internal/common/errors"
	"childcare-assistant/internal/common/logger"
)

var facilityRowColumns = []string{
	"id", "name", "region", "address", "description",
	"capacity", "waitlist_len", "min_age", "max_age", "rating",
}

func facilityRow(rows *sqlmock.Rows, id, name string) *sqlmock.Rows {
	return rows.AddRow(id, name, "강남구", "서울시 강남구", "설명", 50, 12, 0, 5, 4.5)
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, nil, "facilities", logger.NewTestLogger(t)), mock
}

func TestDetails_PreservesRequestedOrder(t *testing.T) {
	s, mock := newTestService(t)

	rows := sqlmock.NewRows(facilityRowColumns)
	facilityRow(rows, "F2", "둘째 어린이집")
	facilityRow(rows, "F1", "첫째 어린이집")
	mock.ExpectQuery("SELECT (.+) FROM facilities").WillReturnRows(rows)

	facilities, err := s.Details(context.Background(), []string{"F1", "F2"})
	require.NoError(t, err)
	require.Len(t, facilities, 2)
	assert.Equal(t, "F1", facilities[0].ID)
	assert.Equal(t, "F2", facilities[1].ID)
}

func TestDetails_SkipsUnknownIDs(t *testing.T) {
	s, mock := newTestService(t)

	rows := sqlmock.NewRows(facilityRowColumns)
	facilityRow(rows, "F1", "첫째 어린이집")
	mock.ExpectQuery("SELECT (.+) FROM facilities").WillReturnRows(rows)

	facilities, err := s.Details(context.Background(), []string{"F1", "F999"})
	require.NoError(t, err)
	require.Len(t, facilities, 1)
	assert.Equal(t, "F1", facilities[0].ID)
}

func TestDetails_EmptyIDList(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Details(context.Background(), nil)
	assert.Equal(t, commonerrors.ErrCodeQueryExecutionFailed, commonerrors.CodeOf(err))
}

func TestDetails_QueryError(t *testing.T) {
	s, mock := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM facilities").WillReturnError(assert.AnError)

	_, err := s.Details(context.Background(), []string{"F1", "F2"})
	assert.Equal(t, commonerrors.ErrCodeQueryExecutionFailed, commonerrors.CodeOf(err))
}

func TestRecommend_FiltersByRegionAndAge(t *testing.T) {
	s, mock := newTestService(t)

	rows := sqlmock.NewRows(facilityRowColumns)
	facilityRow(rows, "F3", "별빛 어린이집")
	mock.ExpectQuery("SELECT (.+) FROM facilities").
		WithArgs("강남구", 5).
		WillReturnRows(rows)

	facilities, err := s.Recommend(context.Background(), "강남구", 5)
	require.NoError(t, err)
	require.Len(t, facilities, 1)
	assert.Equal(t, "F3", facilities[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommend_EmptyResult(t *testing.T) {
	s, mock := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM facilities").
		WithArgs("", 0).
		WillReturnRows(sqlmock.NewRows(facilityRowColumns))

	facilities, err := s.Recommend(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, facilities)
}
