// Package provider abstracts the upstream that leases virtual numbers and
// relays verification codes.
package provider

import "context"

type CodeStatus int

const (
	CodePending CodeStatus = iota
	CodeReceived
)

func (s CodeStatus) String() string {
	if s == CodeReceived {
		return "received"
	}
	return "pending"
}

// NumberResult is a leased number and the upstream handle for it.
type NumberResult struct {
	RequestID   string
	PhoneNumber string
}

// CodeResult reports whether a code has arrived. Code is empty while the
// status is CodePending.
type CodeResult struct {
	Status CodeStatus
	Code   string
}

type Provider interface {
	Name() string
	RequestNumber(ctx context.Context, serviceID, countryID int) (NumberResult, error)
	CheckCode(ctx context.Context, requestID string) (CodeResult, error)
}
