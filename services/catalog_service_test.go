package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/07-main-teamproject/backend/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gdb, mock
}

func TestUpsertMany_InsertsNewFood(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewCatalogService(gdb)

	mock.ExpectQuery(`INSERT INTO "foods"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	foods, err := svc.UpsertMany([]models.FoodCandidate{
		{ExternalID: "111", Name: "lentils", Calories: 116},
	})
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, uint(7), foods[0].ID)
	assert.Equal(t, "111", foods[0].ExternalID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertMany_ConflictReturnsExistingRow(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewCatalogService(gdb)

	// ON CONFLICT DO NOTHING: zero rows back, the store falls back to a read
	mock.ExpectQuery(`INSERT INTO "foods"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT (.+) FROM "foods"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "calories"}).
			AddRow(3, "111", "lentils", 116.0))

	foods, err := svc.UpsertMany([]models.FoodCandidate{
		{ExternalID: "111", Name: "lentils re-fetched", Calories: 999},
	})
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, uint(3), foods[0].ID)
	assert.Equal(t, "lentils", foods[0].Name, "existing nutrition data must not be clobbered")
	assert.InDelta(t, 116.0, foods[0].Calories, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertMany_DeduplicatesInputByExternalID(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewCatalogService(gdb)

	mock.ExpectQuery(`INSERT INTO "foods"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	foods, err := svc.UpsertMany([]models.FoodCandidate{
		{ExternalID: "dup", Name: "first"},
		{ExternalID: "dup", Name: "second"},
		{ExternalID: ""},
	})
	require.NoError(t, err)
	assert.Len(t, foods, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByExternalID_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewCatalogService(gdb)

	mock.ExpectQuery(`SELECT (.+) FROM "foods"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.FindByExternalID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewCatalogService(gdb)

	mock.ExpectQuery(`SELECT (.+) FROM "foods"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name"}).
			AddRow(1, "a", "apple").
			AddRow(2, "b", "banana"))

	foods, err := svc.ListAll()
	require.NoError(t, err)
	assert.Len(t, foods, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
