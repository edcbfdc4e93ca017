package factory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sms-storefront/internal/client"
	"sms-storefront/internal/config"
	"sms-storefront/internal/events"
	"sms-storefront/internal/provider"
	"sms-storefront/internal/repository"
	"sms-storefront/internal/repository/postgres"
	"sms-storefront/internal/repository/scylla"
	"sms-storefront/internal/service"
	"sms-storefront/internal/tls"
	"sms-storefront/internal/util"
)

// Factory manages the lifecycle of all application dependencies. Every
// external store is optional: the fallback store degrades to memory, the
// catalog to static defaults, and unreachable sinks are skipped.
type Factory struct {
	config     *config.Config
	tlsManager *tls.TLSManager

	// Clients
	kv               client.KVClient
	catalogRepo      repository.CatalogRepository
	kafkaProducer    *client.KafkaProducer
	esClient         *client.ESClient
	clickhouseClient *client.ClickHouseClient

	publisher      *events.FanOut
	provider       *provider.MockProvider
	serviceFactory *service.ServiceFactory

	closeOnce sync.Once
	closed    chan struct{}
}

// NewFactory creates and initializes all application dependencies
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	return newFactory(cfg)
}

func newFactory(cfg *config.Config) (*Factory, error) {
	factory := &Factory{
		config: cfg,
		closed: make(chan struct{}),
	}

	if cfg.Server.EnableTLS {
		factory.tlsManager = tls.NewTLSManager(cfg.Server)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := factory.initializeClients(ctx); err != nil {
		factory.Close()
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}
	factory.initializeSinks(ctx)
	factory.provider = provider.NewMockProvider(cfg.SMS.PendingPolls)

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.Bool("tls_enabled", cfg.Server.EnableTLS),
		util.Bool("demo_mode", cfg.DemoMode()),
		util.String("kv_backend", factory.kv.Backend()),
		util.Bool("catalog_database", factory.catalogRepo != nil),
		util.Strings("event_sinks", factory.publisher.Sinks()),
	)

	return factory, nil
}

// initializeClients connects the fallback store and the catalog database.
// Neither failure is fatal outside production.
func (f *Factory) initializeClients(ctx context.Context) error {
	var initErrors []error

	// Fallback store
	if f.config.RedisConfigured() {
		if redisClient, err := client.NewRedisClient(f.config); err != nil {
			initErrors = append(initErrors, fmt.Errorf("redis: %w", err))
		} else {
			f.kv = redisClient
			util.Info("Redis client initialized and healthy")
		}
	}
	if f.kv == nil {
		embedded, err := client.NewEmbeddedRedis(time.Second)
		if err != nil {
			return fmt.Errorf("embedded fallback store: %w", err)
		}
		util.Warn("Using in-memory fallback store; data is lost on restart")
		f.kv = embedded
	}

	// Catalog database
	if f.config.RelationalConfigured() {
		repo, err := f.connectCatalog(ctx)
		if err != nil {
			initErrors = append(initErrors, fmt.Errorf("%s: %w", f.config.Catalog.Backend, err))
		} else {
			f.catalogRepo = repo
			util.Info("Catalog database initialized", util.String("backend", repo.Backend()))
		}
	}

	if len(initErrors) > 0 {
		if f.config.IsProduction() {
			return fmt.Errorf("critical service initialization failed: %w", errors.Join(initErrors...))
		}
		for _, err := range initErrors {
			util.Warn("Service initialization warning", util.ErrorField(err))
		}
	}

	return nil
}

func (f *Factory) connectCatalog(ctx context.Context) (repository.CatalogRepository, error) {
	switch f.config.Catalog.Backend {
	case config.CatalogBackendScylla:
		scyllaClient, err := scylla.NewScyllaClient(f.config)
		if err != nil {
			return nil, err
		}
		return scylla.NewCatalogRepository(scyllaClient), nil
	case config.CatalogBackendPostgres:
		db, err := postgres.Connect(ctx, &f.config.Postgres)
		if err != nil {
			return nil, err
		}
		return postgres.NewCatalogRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", f.config.Catalog.Backend)
	}
}

// initializeSinks connects the configured activity event sinks. A sink that
// cannot be reached is left out.
func (f *Factory) initializeSinks(ctx context.Context) {
	var sinks []events.Sink

	// Kafka
	if len(f.config.Kafka.Brokers) > 0 {
		if producer, err := client.NewKafkaProducer(f.config); err != nil {
			util.Warn("Kafka producer initialization failed - proceeding without Kafka", util.ErrorField(err))
		} else {
			f.kafkaProducer = producer
			sinks = append(sinks, events.NewKafkaSink(producer))
		}
	}

	// Elasticsearch
	if f.config.Elasticsearch.URL != "" {
		if esClient, err := client.NewElasticsearchClient(f.config); err != nil {
			util.Warn("Elasticsearch initialization failed - proceeding without Elasticsearch", util.ErrorField(err))
		} else {
			f.esClient = esClient
			sinks = append(sinks, events.NewElasticsearchSink(esClient))
		}
	}

	// ClickHouse
	if f.config.Clickhouse.URL != "" {
		if chClient, err := client.NewClickHouseClient(f.config); err != nil {
			util.Warn("ClickHouse initialization failed - proceeding without ClickHouse", util.ErrorField(err))
		} else {
			sink := events.NewClickHouseSink(chClient)
			if err := sink.EnsureTable(ctx); err != nil {
				util.Warn("ClickHouse events table unavailable - proceeding without ClickHouse", util.ErrorField(err))
				_ = chClient.Close()
			} else {
				f.clickhouseClient = chClient
				sinks = append(sinks, sink)
			}
		}
	}

	f.publisher = events.NewFanOut(sinks...)
}

// ==============================
// Service Factory
// ==============================
func (f *Factory) ServiceFactory() *service.ServiceFactory {
	if f.serviceFactory == nil {
		deps := service.Dependencies{
			Config:    f.config,
			KV:        f.kv,
			Provider:  f.provider,
			Masker:    f.provider,
			Publisher: f.publisher,
			Probes:    f.probes(),
		}
		if f.catalogRepo != nil {
			deps.Catalog = f.catalogRepo
			deps.DatabaseProbe = &service.Probe{Name: f.catalogRepo.Backend(), Check: f.catalogRepo.HealthCheck}
		}
		f.serviceFactory = service.NewServiceFactory(deps)
	}
	return f.serviceFactory
}

func (f *Factory) probes() []service.Probe {
	var probes []service.Probe
	if f.kafkaProducer != nil {
		probes = append(probes, service.Probe{Name: "kafka", Check: f.kafkaProducer.HealthCheck})
	}
	if f.esClient != nil {
		probes = append(probes, service.Probe{Name: "elasticsearch", Check: f.esClient.HealthCheck})
	}
	if f.clickhouseClient != nil {
		probes = append(probes, service.Probe{Name: "clickhouse", Check: f.clickhouseClient.HealthCheck})
	}
	return probes
}

// ==============================
// Health Checks
// ==============================

func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	healthErrors := make(map[string]error)

	if err := f.kv.HealthCheck(ctx); err != nil {
		healthErrors[f.kv.Backend()] = err
	}
	if f.catalogRepo != nil {
		if err := f.catalogRepo.HealthCheck(ctx); err != nil {
			healthErrors[f.catalogRepo.Backend()] = err
		}
	}
	for _, p := range f.probes() {
		if err := p.Check(ctx); err != nil {
			healthErrors[p.Name] = err
		}
	}

	return healthErrors
}

// IsHealthy ignores the event sinks; they never fail a request.
func (f *Factory) IsHealthy(ctx context.Context) bool {
	healthErrors := f.HealthCheck(ctx)
	delete(healthErrors, "kafka")
	delete(healthErrors, "elasticsearch")
	delete(healthErrors, "clickhouse")
	return len(healthErrors) == 0
}

func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
		util.Info("Shutting down factory...")

		// Queued events go out before their sinks close.
		if f.publisher != nil {
			f.publisher.Close()
		}

		if f.clickhouseClient != nil {
			if err := f.clickhouseClient.Close(); err != nil {
				util.Error("Failed to close ClickHouse client", util.ErrorField(err))
			} else {
				util.Info("ClickHouse client closed")
			}
		}

		if f.esClient != nil {
			f.esClient.Close()
			util.Info("Elasticsearch client closed")
		}

		if f.kafkaProducer != nil {
			if err := f.kafkaProducer.Close(); err != nil {
				util.Error("Failed to close Kafka producer", util.ErrorField(err))
			} else {
				util.Info("Kafka producer closed")
			}
		}

		if f.catalogRepo != nil {
			if err := f.catalogRepo.Close(); err != nil {
				util.Error("Failed to close catalog database", util.ErrorField(err))
			} else {
				util.Info("Catalog database closed")
			}
		}

		if f.kv != nil {
			if err := f.kv.Close(); err != nil {
				util.Error("Failed to close fallback store", util.ErrorField(err))
			} else {
				util.Info("Fallback store closed", util.String("backend", f.kv.Backend()))
			}
		}

		util.Sync()
		util.Info("Factory shutdown completed")
	})

	return nil
}

func (f *Factory) WaitForClose() {
	<-f.closed
}

func (f *Factory) Config() *config.Config {
	return f.config
}

func (f *Factory) TLSManager() *tls.TLSManager {
	return f.tlsManager
}

func (f *Factory) KV() client.KVClient {
	return f.kv
}

// CatalogRepository is nil when no catalog database is reachable.
func (f *Factory) CatalogRepository() repository.CatalogRepository {
	return f.catalogRepo
}

func (f *Factory) Publisher() *events.FanOut {
	return f.publisher
}
