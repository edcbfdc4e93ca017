package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sms-storefront/internal/client"
	"sms-storefront/internal/config"
	"sms-storefront/internal/util"
)

const (
	probeTimeout    = 3 * time.Second
	publicEnvPrefix = "PUBLIC_"
)

// Probe checks one optional dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type KeyStatus struct {
	Status  string `json:"status"`
	Preview string `json:"preview"`
}

type StoreStatus struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Backend    string `json:"backend"`
	Configured bool   `json:"configured"`
}

type DatabaseStatus struct {
	Configured bool   `json:"configured"`
	Backend    string `json:"backend,omitempty"`
	Status     string `json:"status"`
}

type DebugReport struct {
	Status       string            `json:"status"`
	APIKey       KeyStatus         `json:"apiKey"`
	Redis        StoreStatus       `json:"redis"`
	Database     DatabaseStatus    `json:"database"`
	Dependencies map[string]string `json:"dependencies"`
	Connectivity string            `json:"connectivity"`
	DemoMode     bool              `json:"demoMode"`
	Message      string            `json:"message"`
	Timestamp    time.Time         `json:"timestamp"`
}

type EnvironmentReport struct {
	Message              string            `json:"message"`
	Environment          string            `json:"environment"`
	DemoMode             bool              `json:"demoMode"`
	RedisConfigured      bool              `json:"redisConfigured"`
	RelationalConfigured bool              `json:"relationalConfigured"`
	CatalogBackend       string            `json:"catalogBackend"`
	EnvVars              map[string]string `json:"envVars"`
	Timestamp            time.Time         `json:"timestamp"`
}

// DiagnosticsService reports connectivity of the stores and sinks.
type DiagnosticsService struct {
	cfg      *config.Config
	kv       client.KVClient
	database *Probe
	probes   []Probe
	now      func() time.Time
}

func NewDiagnosticsService(cfg *config.Config, kv client.KVClient, database *Probe, probes ...Probe) *DiagnosticsService {
	return &DiagnosticsService{cfg: cfg, kv: kv, database: database, probes: probes, now: time.Now}
}

func (s *DiagnosticsService) Debug(ctx context.Context) DebugReport {
	demo := s.cfg.DemoMode()
	report := DebugReport{
		Status:       "OK",
		APIKey:       apiKeyStatus(s.cfg.SMS.APIKey),
		Redis:        s.checkStore(ctx),
		Database:     DatabaseStatus{Configured: s.database != nil, Status: "Not configured"},
		Dependencies: make(map[string]string, len(s.probes)),
		Connectivity: "Connected",
		DemoMode:     demo,
		Message:      "Application is connected to the SMS provider.",
		Timestamp:    s.now().UTC(),
	}
	if demo {
		report.Status = "Demo Mode"
		report.Connectivity = "Using Mock Data"
		report.Message = "Application is running in demo mode with mock data due to missing environment variables."
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	if s.database != nil {
		report.Database.Backend = s.database.Name
		g.Go(func() error {
			status := runProbe(ctx, *s.database)
			mu.Lock()
			report.Database.Status = status
			mu.Unlock()
			return nil
		})
	}
	for _, p := range s.probes {
		g.Go(func() error {
			status := runProbe(ctx, p)
			mu.Lock()
			report.Dependencies[p.Name] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return report
}

func runProbe(ctx context.Context, p Probe) string {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := p.Check(ctx); err != nil {
		util.Warn("Dependency probe failed", util.String("dependency", p.Name), util.ErrorField(err))
		return "Error: " + err.Error()
	}
	return "Connected"
}

// checkStore round-trips a short-lived key through the fallback store.
func (s *DiagnosticsService) checkStore(ctx context.Context) StoreStatus {
	status := StoreStatus{
		Backend:    s.kv.Backend(),
		Configured: s.cfg.RedisConfigured(),
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := s.kv.Set(ctx, "debug_test", "test", 10*time.Second); err != nil {
		status.Status = "Error"
		status.Message = err.Error()
		return status
	}
	value, err := s.kv.Get(ctx, "debug_test")
	switch {
	case err != nil:
		status.Status = "Error"
		status.Message = err.Error()
	case value != "test":
		status.Status = "Error"
		status.Message = fmt.Sprintf("%s test operation failed", status.Backend)
	default:
		status.Status = "Connected"
		status.Message = fmt.Sprintf("%s connection is working properly", status.Backend)
	}
	return status
}

func apiKeyStatus(key string) KeyStatus {
	if key == "" || key == "demo_key" {
		return KeyStatus{Status: "Not set", Preview: "N/A"}
	}
	return KeyStatus{Status: "Set", Preview: util.MaskSecret(key)}
}

// Environment lists configuration flags and PUBLIC_ prefixed variables.
func (s *DiagnosticsService) Environment() EnvironmentReport {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, publicEnvPrefix) {
			vars[key] = value
		}
	}

	backend := ""
	if s.cfg.RelationalConfigured() {
		backend = s.cfg.Catalog.Backend
	}
	return EnvironmentReport{
		Message:              "Debug information",
		Environment:          s.cfg.Environment,
		DemoMode:             s.cfg.DemoMode(),
		RedisConfigured:      s.cfg.RedisConfigured(),
		RelationalConfigured: s.cfg.RelationalConfigured(),
		CatalogBackend:       backend,
		EnvVars:              vars,
		Timestamp:            s.now().UTC(),
	}
}
