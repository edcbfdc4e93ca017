package service

import (
	"sms-storefront/internal/client"
	"sms-storefront/internal/config"
	"sms-storefront/internal/events"
	"sms-storefront/internal/hashing"
	"sms-storefront/internal/provider"
	"sms-storefront/internal/repository"
	"sms-storefront/internal/repository/redis"
)

// Dependencies are the clients a ServiceFactory wires services from. Catalog
// and DatabaseProbe may be nil.
type Dependencies struct {
	Config        *config.Config
	KV            client.KVClient
	Catalog       repository.CatalogRepository
	Provider      provider.Provider
	Masker        Masker
	Publisher     events.Publisher
	DatabaseProbe *Probe
	Probes        []Probe
}

// ServiceFactory creates and manages service instances
type ServiceFactory struct {
	deps Dependencies

	authService        *AuthService
	accountService     *AccountService
	catalogService     *CatalogService
	smsService         *SmsService
	diagnosticsService *DiagnosticsService
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(deps Dependencies) *ServiceFactory {
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	return &ServiceFactory{deps: deps}
}

func (f *ServiceFactory) AuthService() *AuthService {
	if f.authService == nil {
		cfg := f.deps.Config
		f.authService = NewAuthService(
			redis.NewUserStore(f.deps.KV),
			redis.NewSessionCache(f.deps.KV, cfg.Session.TTL),
			redis.NewRateLimitCache(f.deps.KV),
			hashing.NewHasher(&cfg.Hashing),
			f.deps.Publisher,
			cfg.Auth,
		)
	}
	return f.authService
}

func (f *ServiceFactory) AccountService() *AccountService {
	if f.accountService == nil {
		f.accountService = NewAccountService(
			redis.NewUserStore(f.deps.KV),
			redis.NewTransactionStore(f.deps.KV),
			f.deps.Publisher,
		)
	}
	return f.accountService
}

func (f *ServiceFactory) CatalogService() *CatalogService {
	if f.catalogService == nil {
		cfg := f.deps.Config
		f.catalogService = NewCatalogService(
			f.deps.Catalog,
			redis.NewResponseCache(f.deps.KV),
			f.deps.Publisher,
			CatalogOptions{
				DemoMode:    cfg.DemoMode(),
				CacheTTL:    cfg.Catalog.CacheTTL,
				Development: cfg.IsDevelopment(),
				SeedKey:     cfg.Auth.SeedKey,
			},
		)
	}
	return f.catalogService
}

func (f *ServiceFactory) SmsService() *SmsService {
	if f.smsService == nil {
		f.smsService = NewSmsService(
			f.deps.Provider,
			f.deps.Masker,
			redis.NewSmsRequestStore(f.deps.KV),
			f.AccountService(),
			f.CatalogService(),
			f.deps.Publisher,
			f.deps.Config.SMS.DefaultPrice,
		)
	}
	return f.smsService
}

func (f *ServiceFactory) DiagnosticsService() *DiagnosticsService {
	if f.diagnosticsService == nil {
		f.diagnosticsService = NewDiagnosticsService(f.deps.Config, f.deps.KV, f.deps.DatabaseProbe, f.deps.Probes...)
	}
	return f.diagnosticsService
}
