package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sms-storefront/internal/models"
)

// MockCatalogRepository is a testify mock of repository.CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

// NewMockCatalogRepository registers AssertExpectations as a test cleanup.
func NewMockCatalogRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCatalogRepository {
	m := &MockCatalogRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCatalogRepository) ListCountries(ctx context.Context) ([]models.Country, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]models.Country)
	return rows, args.Error(1)
}

func (m *MockCatalogRepository) ListServices(ctx context.Context) ([]models.Service, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]models.Service)
	return rows, args.Error(1)
}

func (m *MockCatalogRepository) GetService(ctx context.Context, id int) (*models.Service, error) {
	args := m.Called(ctx, id)
	svc, _ := args.Get(0).(*models.Service)
	return svc, args.Error(1)
}

func (m *MockCatalogRepository) SetCountryAvailability(ctx context.Context, id int, available bool) (*models.Country, error) {
	args := m.Called(ctx, id, available)
	country, _ := args.Get(0).(*models.Country)
	return country, args.Error(1)
}

func (m *MockCatalogRepository) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCatalogRepository) UpsertCountries(ctx context.Context, countries []models.Country) error {
	return m.Called(ctx, countries).Error(0)
}

func (m *MockCatalogRepository) UpsertServices(ctx context.Context, services []models.Service) error {
	return m.Called(ctx, services).Error(0)
}

func (m *MockCatalogRepository) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCatalogRepository) Backend() string {
	return m.Called().String(0)
}

func (m *MockCatalogRepository) Close() error {
	return m.Called().Error(0)
}
