package repository

import (
	"context"
	"errors"

	"sms-storefront/internal/models"
)

var (
	// ErrTableMissing means the catalog schema has not been provisioned.
	ErrTableMissing = errors.New("catalog table does not exist")
	ErrNotFound     = errors.New("record not found")
)

// CatalogRepository is the relational source of truth for countries and
// services. Implementations return rows without presentation fields merged.
type CatalogRepository interface {
	ListCountries(ctx context.Context) ([]models.Country, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id int) (*models.Service, error)
	SetCountryAvailability(ctx context.Context, id int, available bool) (*models.Country, error)

	EnsureSchema(ctx context.Context) error
	UpsertCountries(ctx context.Context, countries []models.Country) error
	UpsertServices(ctx context.Context, services []models.Service) error

	HealthCheck(ctx context.Context) error
	Backend() string
	Close() error
}
