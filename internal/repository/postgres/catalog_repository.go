package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"sms-storefront/internal/config"
	"sms-storefront/internal/models"
	"sms-storefront/internal/repository"
	"sms-storefront/internal/util"
)

const (
	backendName = "postgres"

	// SQLSTATE for undefined_table.
	codeUndefinedTable = "42P01"
)

const schema = `
CREATE TABLE IF NOT EXISTS countries (
	id        INTEGER PRIMARY KEY,
	name      TEXT    NOT NULL,
	iso       TEXT    NOT NULL UNIQUE,
	available BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE TABLE IF NOT EXISTS services (
	id          INTEGER        PRIMARY KEY,
	name        TEXT           NOT NULL,
	description TEXT           NOT NULL DEFAULT '',
	price       NUMERIC(10, 2) NOT NULL,
	available   BOOLEAN        NOT NULL DEFAULT TRUE
);`

type CatalogRepository struct {
	db *sqlx.DB
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)

// Connect opens a pooled connection to the catalog database and verifies it.
func Connect(ctx context.Context, cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	util.Info("Connected to catalog database",
		util.Int("max_open_conns", cfg.MaxOpenConns),
		util.Int("max_idle_conns", cfg.MaxIdleConns),
		util.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
	)
	return db, nil
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Backend() string {
	return backendName
}

func (r *CatalogRepository) ListCountries(ctx context.Context) ([]models.Country, error) {
	countries := []models.Country{}
	err := r.db.SelectContext(ctx, &countries,
		`SELECT id, name, iso, available FROM countries ORDER BY name`)
	if err != nil {
		return nil, translate(err, "list countries")
	}
	return countries, nil
}

func (r *CatalogRepository) ListServices(ctx context.Context) ([]models.Service, error) {
	services := []models.Service{}
	err := r.db.SelectContext(ctx, &services,
		`SELECT id, name, description, price, available FROM services ORDER BY name`)
	if err != nil {
		return nil, translate(err, "list services")
	}
	return services, nil
}

func (r *CatalogRepository) GetService(ctx context.Context, id int) (*models.Service, error) {
	var service models.Service
	err := r.db.GetContext(ctx, &service,
		`SELECT id, name, description, price, available FROM services WHERE id = $1`, id)
	if err != nil {
		return nil, translate(err, "get service")
	}
	return &service, nil
}

func (r *CatalogRepository) SetCountryAvailability(ctx context.Context, id int, available bool) (*models.Country, error) {
	var country models.Country
	err := r.db.GetContext(ctx, &country,
		`UPDATE countries SET available = $1 WHERE id = $2 RETURNING id, name, iso, available`,
		available, id)
	if err != nil {
		return nil, translate(err, "update country availability")
	}
	return &country, nil
}

func (r *CatalogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create catalog schema: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpsertCountries(ctx context.Context, countries []models.Country) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, c := range countries {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO countries (id, name, iso, available) VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, iso = EXCLUDED.iso, available = EXCLUDED.available`,
				c.ID, c.Name, c.ISO, c.Available)
			if err != nil {
				return translate(err, fmt.Sprintf("upsert country %d", c.ID))
			}
		}
		return nil
	})
}

func (r *CatalogRepository) UpsertServices(ctx context.Context, services []models.Service) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, s := range services {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO services (id, name, description, price, available) VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
				price = EXCLUDED.price, available = EXCLUDED.available`,
				s.ID, s.Name, s.Description, s.Price, s.Available)
			if err != nil {
				return translate(err, fmt.Sprintf("upsert service %d", s.ID))
			}
		}
		return nil
	})
}

func (r *CatalogRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *CatalogRepository) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}

func (r *CatalogRepository) Close() error {
	return r.db.Close()
}

func translate(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeUndefinedTable {
		return fmt.Errorf("%s: %w", op, repository.ErrTableMissing)
	}
	return fmt.Errorf("%s: %w", op, err)
}
