package scylla

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"sms-storefront/internal/config"
	"sms-storefront/internal/util"
)

// statements holds the CQL used by the catalog repository. gocql prepares
// and caches each statement on first use.
type statements struct {
	ListCountries    string
	ListServices     string
	GetService       string
	SetAvailability  string
	GetCountry       string
	UpsertCountry    string
	UpsertService    string
	CreateCountries  string
	CreateServices   string
	ClusterNameProbe string
}

var cql = statements{
	ListCountries:    `SELECT id, name, iso, available FROM countries`,
	ListServices:     `SELECT id, name, description, price_cents, available FROM services`,
	GetService:       `SELECT id, name, description, price_cents, available FROM services WHERE id = ?`,
	SetAvailability:  `UPDATE countries SET available = ? WHERE id = ? IF EXISTS`,
	GetCountry:       `SELECT id, name, iso, available FROM countries WHERE id = ?`,
	UpsertCountry:    `INSERT INTO countries (id, name, iso, available) VALUES (?, ?, ?, ?)`,
	UpsertService:    `INSERT INTO services (id, name, description, price_cents, available) VALUES (?, ?, ?, ?, ?)`,
	CreateCountries:  `CREATE TABLE IF NOT EXISTS countries (id int PRIMARY KEY, name text, iso text, available boolean)`,
	CreateServices:   `CREATE TABLE IF NOT EXISTS services (id int PRIMARY KEY, name text, description text, price_cents bigint, available boolean)`,
	ClusterNameProbe: `SELECT cluster_name FROM system.local`,
}

type ScyllaClient struct {
	Session *gocql.Session
	config  *config.ScyllaConfig
}

func NewScyllaClient(cfg *config.Config) (*ScyllaClient, error) {
	scyllaConfig := cfg.Scylla

	cluster := gocql.NewCluster(scyllaConfig.Nodes...)
	cluster.Keyspace = scyllaConfig.Keyspace
	cluster.Consistency = gocql.LocalQuorum
	cluster.SerialConsistency = gocql.LocalSerial
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second
	cluster.NumConns = 2
	cluster.SocketKeepalive = 30 * time.Second
	cluster.PageSize = 500
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		Min:        100 * time.Millisecond,
		Max:        2 * time.Second,
		NumRetries: 3,
	}

	if caPath := config.GetEnv("SCYLLA_TLS_CA_FILE", ""); caPath != "" {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 caPath,
			CertPath:               config.GetEnv("SCYLLA_TLS_CERT_FILE", ""),
			KeyPath:                config.GetEnv("SCYLLA_TLS_KEY_FILE", ""),
			EnableHostVerification: cfg.IsProduction(),
		}
	}

	if scyllaConfig.Username != "" && scyllaConfig.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: scyllaConfig.Username,
			Password: scyllaConfig.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create scylla session: %w", err)
	}

	util.Info("ScyllaDB client initialized",
		util.Strings("nodes", scyllaConfig.Nodes),
		util.String("keyspace", scyllaConfig.Keyspace),
	)

	return &ScyllaClient{
		Session: session,
		config:  &scyllaConfig,
	}, nil
}

func (s *ScyllaClient) Query(ctx context.Context, stmt string, values ...interface{}) *gocql.Query {
	return s.Session.Query(stmt, values...).WithContext(ctx)
}

func (s *ScyllaClient) ExecuteBatch(ctx context.Context, build func(b *gocql.Batch)) error {
	batch := s.Session.NewBatch(gocql.UnloggedBatch).WithContext(ctx)
	build(batch)
	return s.Session.ExecuteBatch(batch)
}

func (s *ScyllaClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var clusterName string
	if err := s.Query(ctx, cql.ClusterNameProbe).Scan(&clusterName); err != nil {
		return fmt.Errorf("scylla health check failed: %w", err)
	}

	util.Debug("ScyllaDB health check passed", util.String("cluster_name", clusterName))
	return nil
}

func (s *ScyllaClient) Close() {
	if s.Session != nil {
		s.Session.Close()
	}
}
