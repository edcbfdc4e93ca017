// Package catalog holds the built-in country and service lists and the
// presentation data layered over rows from the catalog database.
package catalog

import (
	"strings"

	"sms-storefront/internal/models"
)

// Countries returns a fresh copy of the built-in country list.
func Countries() []models.Country {
	out := make([]models.Country, len(defaultCountries))
	copy(out, defaultCountries)
	return out
}

// Services returns a fresh copy of the built-in service list.
func Services() []models.Service {
	out := make([]models.Service, len(defaultServices))
	copy(out, defaultServices)
	return out
}

// ServiceByID looks a service up in the built-in list.
func ServiceByID(id int) (models.Service, bool) {
	for _, s := range defaultServices {
		if s.ID == id {
			return s, true
		}
	}
	return models.Service{}, false
}

// FlagFor returns the flag glyph for an ISO code.
func FlagFor(iso string) string {
	for _, c := range defaultCountries {
		if strings.EqualFold(c.ISO, iso) {
			return c.Flag
		}
	}
	return FallbackFlag
}

// IconFor returns the icon for a service name.
func IconFor(name string) string {
	for _, s := range defaultServices {
		if s.Name == name {
			return s.Icon
		}
	}
	return FallbackIcon
}

// MergeCountries fills in flags on rows loaded from the database.
func MergeCountries(rows []models.Country) []models.Country {
	out := make([]models.Country, len(rows))
	for i, c := range rows {
		c.Flag = FlagFor(c.ISO)
		out[i] = c
	}
	return out
}

// MergeServices fills in icons on rows loaded from the database.
func MergeServices(rows []models.Service) []models.Service {
	out := make([]models.Service, len(rows))
	for i, s := range rows {
		s.Icon = IconFor(s.Name)
		out[i] = s
	}
	return out
}
