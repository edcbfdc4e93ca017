package scylla

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"

	"sms-storefront/internal/models"
	"sms-storefront/internal/repository"
	"sms-storefront/internal/util"
)

const backendName = "scylla"

// CatalogRepository keeps countries and services in two single-partition-key
// tables. Prices are stored as integer cents.
type CatalogRepository struct {
	client *ScyllaClient
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)

func NewCatalogRepository(client *ScyllaClient) *CatalogRepository {
	return &CatalogRepository{client: client}
}

func (r *CatalogRepository) Backend() string {
	return backendName
}

func (r *CatalogRepository) ListCountries(ctx context.Context) ([]models.Country, error) {
	iter := r.client.Query(ctx, cql.ListCountries).Iter()

	countries := []models.Country{}
	var c models.Country
	for iter.Scan(&c.ID, &c.Name, &c.ISO, &c.Available) {
		countries = append(countries, c)
	}
	if err := iter.Close(); err != nil {
		return nil, translate(err, "list countries")
	}

	sort.Slice(countries, func(i, j int) bool { return countries[i].Name < countries[j].Name })
	return countries, nil
}

func (r *CatalogRepository) ListServices(ctx context.Context) ([]models.Service, error) {
	iter := r.client.Query(ctx, cql.ListServices).Iter()

	services := []models.Service{}
	var (
		s     models.Service
		cents int64
	)
	for iter.Scan(&s.ID, &s.Name, &s.Description, &cents, &s.Available) {
		s.Price = fromCents(cents)
		services = append(services, s)
	}
	if err := iter.Close(); err != nil {
		return nil, translate(err, "list services")
	}

	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	return services, nil
}

func (r *CatalogRepository) GetService(ctx context.Context, id int) (*models.Service, error) {
	var (
		s     models.Service
		cents int64
	)
	err := r.client.Query(ctx, cql.GetService, id).Scan(&s.ID, &s.Name, &s.Description, &cents, &s.Available)
	if err != nil {
		return nil, translate(err, "get service")
	}
	s.Price = fromCents(cents)
	return &s, nil
}

// SetCountryAvailability uses a lightweight transaction so unknown ids are
// not created by the update.
func (r *CatalogRepository) SetCountryAvailability(ctx context.Context, id int, available bool) (*models.Country, error) {
	applied, err := r.client.Query(ctx, cql.SetAvailability, available, id).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return nil, translate(err, "update country availability")
	}
	if !applied {
		return nil, fmt.Errorf("update country availability: %w", repository.ErrNotFound)
	}

	var c models.Country
	if err := r.client.Query(ctx, cql.GetCountry, id).Scan(&c.ID, &c.Name, &c.ISO, &c.Available); err != nil {
		return nil, translate(err, "read country")
	}
	return &c, nil
}

func (r *CatalogRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{cql.CreateCountries, cql.CreateServices} {
		if err := r.client.Query(ctx, stmt).Exec(); err != nil {
			return fmt.Errorf("create catalog schema: %w", err)
		}
	}
	return nil
}

func (r *CatalogRepository) UpsertCountries(ctx context.Context, countries []models.Country) error {
	err := r.client.ExecuteBatch(ctx, func(b *gocql.Batch) {
		for _, c := range countries {
			b.Query(cql.UpsertCountry, c.ID, c.Name, c.ISO, c.Available)
		}
	})
	if err != nil {
		return translate(err, "upsert countries")
	}
	util.Debug("Upserted countries", util.Int("count", len(countries)))
	return nil
}

func (r *CatalogRepository) UpsertServices(ctx context.Context, services []models.Service) error {
	err := r.client.ExecuteBatch(ctx, func(b *gocql.Batch) {
		for _, s := range services {
			b.Query(cql.UpsertService, s.ID, s.Name, s.Description, toCents(s.Price), s.Available)
		}
	})
	if err != nil {
		return translate(err, "upsert services")
	}
	util.Debug("Upserted services", util.Int("count", len(services)))
	return nil
}

func (r *CatalogRepository) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck(ctx)
}

func (r *CatalogRepository) Close() error {
	r.client.Close()
	return nil
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func translate(err error, op string) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	if strings.Contains(err.Error(), "unconfigured table") {
		return fmt.Errorf("%s: %w", op, repository.ErrTableMissing)
	}
	return fmt.Errorf("%s: %w", op, err)
}
