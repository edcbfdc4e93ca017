package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-storefront/internal/models"
	"sms-storefront/internal/repository"
)

func newMockRepository(t *testing.T) (*CatalogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCatalogRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestListCountriesOrdersByName(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := sqlmock.NewRows([]string{"id", "name", "iso", "available"}).
		AddRow(24, "Germany", "DE", true).
		AddRow(1, "United States", "US", false)
	mock.ExpectQuery(`SELECT id, name, iso, available FROM countries ORDER BY name`).WillReturnRows(rows)

	countries, err := repo.ListCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.Equal(t, models.Country{ID: 24, Name: "Germany", ISO: "DE", Available: true}, countries[0])
	assert.False(t, countries[1].Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCountriesMissingTable(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM countries`).WillReturnError(&pq.Error{Code: codeUndefinedTable, Message: `relation "countries" does not exist`})

	_, err := repo.ListCountries(context.Background())
	assert.ErrorIs(t, err, repository.ErrTableMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListServicesScansPrice(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "available"}).
		AddRow(1, "WhatsApp", "Verify your WhatsApp account", "4.00", true)
	mock.ExpectQuery(`FROM services ORDER BY name`).WillReturnRows(rows)

	services, err := repo.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.True(t, decimal.NewFromInt(4).Equal(services[0].Price))
	assert.Empty(t, services[0].Icon)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCountryAvailability(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`UPDATE countries SET available = \$1 WHERE id = \$2`).
		WithArgs(false, 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "iso", "available"}).AddRow(3, "Russia", "RU", false))

	country, err := repo.SetCountryAvailability(context.Background(), 3, false)
	require.NoError(t, err)
	assert.Equal(t, "RU", country.ISO)
	assert.False(t, country.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCountryAvailabilityUnknownID(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`UPDATE countries`).
		WithArgs(true, 999).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "iso", "available"}))

	_, err := repo.SetCountryAvailability(context.Background(), 999, true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCountriesRunsInTransaction(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO countries`).WithArgs(1, "United States", "US", true).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO countries`).WithArgs(2, "United Kingdom", "GB", true).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertCountries(context.Background(), []models.Country{
		{ID: 1, Name: "United States", ISO: "US", Available: true},
		{ID: 2, Name: "United Kingdom", ISO: "GB", Available: true},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertServicesRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO services`).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.UpsertServices(context.Background(), []models.Service{
		{ID: 1, Name: "WhatsApp", Price: decimal.NewFromInt(4), Available: true},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS countries`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
