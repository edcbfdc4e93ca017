package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"sms-storefront/internal/catalog"
	"sms-storefront/internal/events"
	"sms-storefront/internal/fallback"
	"sms-storefront/internal/metrics"
	"sms-storefront/internal/models"
	"sms-storefront/internal/repository"
	"sms-storefront/internal/repository/redis"
	"sms-storefront/internal/util"
)

const (
	CountriesKey = "countries"
	ServicesKey  = "services"

	SourceCache      = "cache"
	SourceDatabase   = "database"
	SourceDefaults   = "defaults"
	SourceDemoSeeded = "demo-defaults"
)

type CatalogOptions struct {
	DemoMode    bool
	CacheTTL    time.Duration
	Development bool
	SeedKey     string
}

type SeedResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	CountriesCount int    `json:"countriesCount"`
	ServicesCount  int    `json:"servicesCount"`
}

// CatalogService serves countries and services through the fallback chain
// cache, relational store, static defaults. repo may be nil when no
// relational store is configured.
type CatalogService struct {
	repo   repository.CatalogRepository
	cache  *redis.ResponseCache
	events events.Publisher
	opts   CatalogOptions
}

func NewCatalogService(repo repository.CatalogRepository, cache *redis.ResponseCache, publisher events.Publisher, opts CatalogOptions) *CatalogService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CatalogService{repo: repo, cache: cache, events: publisher, opts: opts}
}

// Countries never fails; the second value names the source that answered.
func (s *CatalogService) Countries(ctx context.Context) ([]models.Country, string) {
	return resolveList(ctx, s, CountriesKey, s.listCountries, catalog.Countries)
}

func (s *CatalogService) Services(ctx context.Context) ([]models.Service, string) {
	return resolveList(ctx, s, ServicesKey, s.listServices, catalog.Services)
}

func (s *CatalogService) listCountries(ctx context.Context) ([]models.Country, error) {
	rows, err := s.repo.ListCountries(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.MergeCountries(rows), nil
}

func (s *CatalogService) listServices(ctx context.Context) ([]models.Service, error) {
	rows, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.MergeServices(rows), nil
}

func resolveList[T any](
	ctx context.Context,
	s *CatalogService,
	key string,
	load func(context.Context) ([]T, error),
	defaults func() []T,
) ([]T, string) {
	steps := []fallback.Step[[]T]{{Resolver: cacheResolver[T](s.cache, key)}}

	switch {
	case s.opts.DemoMode:
		steps = append(steps, fallback.Step[[]T]{Resolver: staticResolver(SourceDemoSeeded, defaults), Store: true})
	case s.repo != nil:
		steps = append(steps,
			fallback.Step[[]T]{Resolver: databaseResolver(load), Store: true},
			fallback.Step[[]T]{Resolver: staticResolver(SourceDefaults, defaults)},
		)
	default:
		steps = append(steps, fallback.Step[[]T]{Resolver: staticResolver(SourceDefaults, defaults)})
	}

	var sink fallback.Sink[[]T]
	if s.cache != nil {
		sink = func(ctx context.Context, v []T) error {
			return s.cache.Set(ctx, key, v, s.opts.CacheTTL)
		}
	}

	res, err := fallback.NewChain(sink, steps...).Resolve(ctx)
	for _, a := range res.Attempts {
		if a.Outcome == fallback.Failed {
			util.Warn("Catalog source failed",
				util.String("resource", key),
				util.String("source", a.Source),
				util.ErrorField(a.Err),
			)
		}
	}
	if res.StoreErr != nil {
		util.Warn("Failed to cache catalog", util.String("resource", key), util.ErrorField(res.StoreErr))
	}
	if err != nil {
		util.Warn("Catalog chain exhausted", util.String("resource", key), util.ErrorField(err))
		metrics.RecordCatalogResolution(key, SourceDefaults)
		return defaults(), SourceDefaults
	}

	metrics.RecordCatalogResolution(key, res.Source)
	return res.Value, res.Source
}

func cacheResolver[T any](cache *redis.ResponseCache, key string) fallback.Resolver[[]T] {
	return fallback.ResolverFunc[[]T]{
		Label: SourceCache,
		Fn: func(ctx context.Context) fallback.Result[[]T] {
			if cache == nil {
				return fallback.Missing[[]T]()
			}
			var out []T
			hit, err := cache.Get(ctx, key, &out)
			if err != nil {
				return fallback.Failure[[]T](err)
			}
			if !hit {
				return fallback.Missing[[]T]()
			}
			return fallback.Found(out)
		},
	}
}

// databaseResolver treats an empty table as a miss so defaults are served
// uncached.
func databaseResolver[T any](load func(context.Context) ([]T, error)) fallback.Resolver[[]T] {
	return fallback.ResolverFunc[[]T]{
		Label: SourceDatabase,
		Fn: func(ctx context.Context) fallback.Result[[]T] {
			rows, err := load(ctx)
			if err != nil {
				return fallback.Failure[[]T](err)
			}
			if len(rows) == 0 {
				return fallback.Missing[[]T]()
			}
			return fallback.Found(rows)
		},
	}
}

func staticResolver[T any](label string, defaults func() []T) fallback.Resolver[[]T] {
	return fallback.ResolverFunc[[]T]{
		Label: label,
		Fn: func(context.Context) fallback.Result[[]T] {
			return fallback.Found(defaults())
		},
	}
}

// SetCountryAvailability updates the row and drops the cached list before
// returning, so the next read cannot see the old value.
func (s *CatalogService) SetCountryAvailability(ctx context.Context, id int, available bool) (*models.Country, error) {
	if s.repo == nil {
		return nil, ErrCatalogUnavailable
	}

	country, err := s.repo.SetCountryAvailability(ctx, id, available)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTableMissing):
			return nil, ErrCatalogTableMissing
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCountryNotFound
		default:
			return nil, fmt.Errorf("failed to update country %d: %w", id, err)
		}
	}

	if err := s.invalidate(ctx, CountriesKey); err != nil {
		return nil, err
	}

	country.Flag = catalog.FlagFor(country.ISO)
	s.events.Publish(ctx, models.EventCountryUpdated, "", map[string]string{
		"country_id": strconv.Itoa(id),
		"available":  strconv.FormatBool(available),
	})
	return country, nil
}

// AuthorizeSeed allows seeding in development, or with the configured key.
// An unset key never matches.
func (s *CatalogService) AuthorizeSeed(key string) error {
	if s.opts.Development {
		return nil
	}
	if s.opts.SeedKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.opts.SeedKey)) != 1 {
		return ErrSeedForbidden
	}
	return nil
}

// Seed creates the catalog tables if needed and upserts the built-in lists.
func (s *CatalogService) Seed(ctx context.Context) (*SeedResult, error) {
	if s.repo == nil {
		return nil, ErrCatalogUnavailable
	}

	if err := s.repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("error creating catalog tables: %w", err)
	}

	countries := catalog.Countries()
	if err := s.repo.UpsertCountries(ctx, countries); err != nil {
		return nil, fmt.Errorf("error seeding countries: %w", err)
	}
	services := catalog.Services()
	if err := s.repo.UpsertServices(ctx, services); err != nil {
		return nil, fmt.Errorf("error seeding services: %w", err)
	}

	if err := s.invalidate(ctx, CountriesKey, ServicesKey); err != nil {
		return nil, err
	}

	util.Info("Catalog seeded",
		util.String("backend", s.repo.Backend()),
		util.Int("countries", len(countries)),
		util.Int("services", len(services)),
	)
	s.events.Publish(ctx, models.EventCatalogSeeded, "", map[string]string{
		"countries": strconv.Itoa(len(countries)),
		"services":  strconv.Itoa(len(services)),
	})
	return &SeedResult{
		Success:        true,
		Message:        "Database seeded successfully",
		CountriesCount: len(countries),
		ServicesCount:  len(services),
	}, nil
}

// ServicePrice returns the price to charge for a service: the catalog
// price when it is known and positive, otherwise fallbackPrice.
func (s *CatalogService) ServicePrice(ctx context.Context, serviceID int, fallbackPrice decimal.Decimal) decimal.Decimal {
	if s.repo != nil && !s.opts.DemoMode {
		svc, err := s.repo.GetService(ctx, serviceID)
		if err == nil && svc.Price.IsPositive() {
			return svc.Price
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			util.Warn("Service price lookup failed", util.Int("service_id", serviceID), util.ErrorField(err))
		}
	}
	if svc, ok := catalog.ServiceByID(serviceID); ok && svc.Price.IsPositive() {
		return svc.Price
	}
	return fallbackPrice
}

func (s *CatalogService) invalidate(ctx context.Context, keys ...string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		util.Error("Catalog cache invalidation failed", util.Strings("keys", keys), util.ErrorField(err))
		return err
	}
	return nil
}
