package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-storefront/internal/models"
)

func TestDefaults(t *testing.T) {
	countries := Countries()
	services := Services()

	require.Len(t, countries, 50)
	require.Len(t, services, 30)

	assert.Equal(t, models.Country{ID: 1, Name: "United States", ISO: "US", Flag: "🇺🇸", Available: true}, countries[0])
	assert.Equal(t, "TR", countries[49].ISO)
	assert.Equal(t, "WhatsApp", services[0].Name)
	assert.True(t, decimal.RequireFromString("4.5").Equal(services[22].Price), "Epic Games")

	for _, c := range countries {
		assert.True(t, c.Available, c.Name)
	}
}

func TestDefaultsAreCopies(t *testing.T) {
	countries := Countries()
	countries[0].Available = false

	assert.True(t, Countries()[0].Available)
}

func TestMergeCountries(t *testing.T) {
	merged := MergeCountries([]models.Country{
		{ID: 24, Name: "Germany", ISO: "de", Available: false},
		{ID: 99, Name: "Atlantis", ISO: "AT-X", Available: true},
	})

	assert.Equal(t, "🇩🇪", merged[0].Flag)
	assert.False(t, merged[0].Available)
	assert.Equal(t, FallbackFlag, merged[1].Flag)
}

func TestMergeServices(t *testing.T) {
	merged := MergeServices([]models.Service{
		{ID: 2, Name: "Telegram", Price: decimal.NewFromInt(4)},
		{ID: 77, Name: "Unknown", Price: decimal.NewFromInt(1)},
	})

	assert.Equal(t, "✈️", merged[0].Icon)
	assert.Equal(t, FallbackIcon, merged[1].Icon)
}

func TestServiceByID(t *testing.T) {
	s, ok := ServiceByID(14)
	require.True(t, ok)
	assert.Equal(t, "PayPal", s.Name)

	_, ok = ServiceByID(0)
	assert.False(t, ok)
}
