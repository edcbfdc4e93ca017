package models

import "time"

type EventType string

const (
	EventUserSignedUp    EventType = "user.signed_up"
	EventUserLoggedIn    EventType = "user.logged_in"
	EventUserLoggedOut   EventType = "user.logged_out"
	EventUserUpdated     EventType = "user.updated"
	EventBalanceCredited EventType = "balance.credited"
	EventBalanceDebited  EventType = "balance.debited"
	EventNumberRequested EventType = "sms.number_requested"
	EventCodeReceived    EventType = "sms.code_received"
	EventCountryUpdated  EventType = "catalog.country_updated"
	EventCatalogSeeded   EventType = "catalog.seeded"
)

// ActivityEvent is an audit record fanned out to the analytics sinks.
type ActivityEvent struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	UserID     string            `json:"userId,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}
