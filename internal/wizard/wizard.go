package wizard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"sms-storefront/internal/models"
)

type State string

const (
	StateSelection State = "selection"
	StateNumber    State = "number"
	StatePayment   State = "payment"
	StateCode      State = "code"
)

var transitions = map[State][]State{
	StateSelection: {StateNumber},
	StateNumber:    {StatePayment},
	StatePayment:   {StateCode},
	StateCode:      {StateSelection},
}

var (
	ErrInvalidTransition     = errors.New("invalid wizard transition")
	ErrSelectionIncomplete   = errors.New("service and country are required")
	ErrUnavailableOption     = errors.New("option is not available")
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")
	ErrPaymentMethodRequired = errors.New("payment method is required")
	ErrRequestInFlight       = errors.New("number request already in progress")
	ErrSuperseded            = errors.New("wizard changed while the request was in progress")
)

const (
	msgSelectBoth    = "Please select both a service and a country"
	msgSelectPayment = "Please select a payment method"
	msgNoCodeYet     = "No SMS code received yet. Try again in a few moments."
	msgNumberFailed  = "Failed to get number"
	msgCodeFailed    = "Failed to get SMS code"
)

type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is the message shown for the last failed or inconclusive action.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Number is a leased number as returned by the API.
type Number struct {
	RequestID    string
	PhoneNumber  string
	SmsRequestID string
}

// Client is the part of the storefront API the wizard drives.
type Client interface {
	RequestNumber(ctx context.Context, serviceID, countryID int) (Number, error)
	CheckCode(ctx context.Context, requestID string) (string, error)
}

// View is a copy of the wizard state for rendering.
type View struct {
	State         State
	ServiceID     int
	CountryID     int
	PhoneNumber   string
	RequestID     string
	Code          string
	PaymentMethod PaymentMethod
	Notice        *Notice
}

// Wizard walks one number acquisition: selection, number, payment, code.
// Payment is acknowledged locally and never touches the account balance.
type Wizard struct {
	client    Client
	services  []models.Service
	countries []models.Country

	mu          sync.Mutex
	state       State
	serviceID   int
	countryID   int
	phoneNumber string
	requestID   string
	code        string
	method      PaymentMethod
	notice      *Notice

	// inFlight is set while a number request runs without mu held; epoch
	// counts selection and state changes so its result can be discarded.
	inFlight bool
	epoch    uint64
}

// New starts a wizard in selection. Only available services and countries
// can be selected.
func New(client Client, services []models.Service, countries []models.Country) *Wizard {
	w := &Wizard{client: client, state: StateSelection}
	for _, s := range services {
		if s.Available {
			w.services = append(w.services, s)
		}
	}
	for _, c := range countries {
		if c.Available {
			w.countries = append(w.countries, c)
		}
	}
	return w
}

func (w *Wizard) Services() []models.Service {
	return slices.Clone(w.services)
}

func (w *Wizard) Countries() []models.Country {
	return slices.Clone(w.countries)
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		State:         w.state,
		ServiceID:     w.serviceID,
		CountryID:     w.countryID,
		PhoneNumber:   w.phoneNumber,
		RequestID:     w.requestID,
		Code:          w.code,
		PaymentMethod: w.method,
	}
	if w.notice != nil {
		n := *w.notice
		v.Notice = &n
	}
	return v
}

// require checks the current state. Callers hold mu.
func (w *Wizard) require(states ...State) error {
	if slices.Contains(states, w.state) {
		return nil
	}
	return fmt.Errorf("%w: not allowed in %s", ErrInvalidTransition, w.state)
}

// moveTo changes state along an allowed edge. Callers hold mu.
func (w *Wizard) moveTo(next State) error {
	if !slices.Contains(transitions[w.state], next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, w.state, next)
	}
	w.state = next
	w.epoch++
	return nil
}

func (w *Wizard) setNotice(level NoticeLevel, message string) {
	w.notice = &Notice{Level: level, Message: message}
}

func (w *Wizard) SelectService(id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.require(StateSelection); err != nil {
		return err
	}
	if !slices.ContainsFunc(w.services, func(s models.Service) bool { return s.ID == id }) {
		return fmt.Errorf("%w: service %d", ErrUnavailableOption, id)
	}
	w.serviceID = id
	w.epoch++
	return nil
}

func (w *Wizard) SelectCountry(id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.require(StateSelection); err != nil {
		return err
	}
	if !slices.ContainsFunc(w.countries, func(c models.Country) bool { return c.ID == id }) {
		return fmt.Errorf("%w: country %d", ErrUnavailableOption, id)
	}
	w.countryID = id
	w.epoch++
	return nil
}

// RequestNumber leases a number for the selected service and country. On
// failure the wizard stays in selection with an error notice. The lock is
// released during the call; a selection change or reset made meanwhile
// discards the result with ErrSuperseded.
func (w *Wizard) RequestNumber(ctx context.Context) error {
	w.mu.Lock()
	if err := w.require(StateSelection); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.inFlight {
		w.mu.Unlock()
		return ErrRequestInFlight
	}
	if w.serviceID == 0 || w.countryID == 0 {
		w.setNotice(NoticeError, msgSelectBoth)
		w.mu.Unlock()
		return ErrSelectionIncomplete
	}

	w.notice = nil
	w.phoneNumber, w.requestID, w.code = "", "", ""
	w.inFlight = true
	serviceID, countryID, epoch := w.serviceID, w.countryID, w.epoch
	w.mu.Unlock()

	number, err := w.client.RequestNumber(ctx, serviceID, countryID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false

	if w.epoch != epoch {
		return ErrSuperseded
	}
	if err != nil {
		w.setNotice(NoticeError, failureMessage(err, msgNumberFailed))
		return err
	}

	w.phoneNumber = number.PhoneNumber
	w.requestID = number.SmsRequestID
	if w.requestID == "" {
		w.requestID = number.RequestID
	}
	return w.moveTo(StateNumber)
}

// CheckCode polls once. An empty result leaves a warning notice and is not
// an error. The lock is released during the call; if the wizard was reset
// meanwhile the result is discarded with ErrSuperseded.
func (w *Wizard) CheckCode(ctx context.Context) (string, error) {
	w.mu.Lock()
	if err := w.require(StateNumber, StateCode); err != nil {
		w.mu.Unlock()
		return "", err
	}
	w.notice = nil
	w.code = ""
	requestID := w.requestID
	w.mu.Unlock()

	code, err := w.client.CheckCode(ctx, requestID)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.requestID != requestID {
		return "", ErrSuperseded
	}
	if err != nil {
		w.setNotice(NoticeError, failureMessage(err, msgCodeFailed))
		return "", err
	}
	if code == "" {
		w.setNotice(NoticeWarning, msgNoCodeYet)
		return "", nil
	}
	w.code = code
	return code, nil
}

// ProceedToPayment does not require a code to have arrived.
func (w *Wizard) ProceedToPayment() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.moveTo(StatePayment); err != nil {
		return err
	}
	w.notice = nil
	return nil
}

func (w *Wizard) SelectPaymentMethod(m PaymentMethod) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.require(StatePayment); err != nil {
		return err
	}
	if _, ok := LookupPaymentMethod(m); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, m)
	}
	w.method = m
	return nil
}

// CompletePayment acknowledges the selected method and moves to code. No
// charge is made.
func (w *Wizard) CompletePayment() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.require(StatePayment); err != nil {
		return err
	}
	if w.method == "" {
		w.setNotice(NoticeError, msgSelectPayment)
		return ErrPaymentMethodRequired
	}
	w.notice = nil
	return w.moveTo(StateCode)
}

// Reset clears everything and returns to selection.
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.moveTo(StateSelection); err != nil {
		return err
	}
	w.serviceID, w.countryID = 0, 0
	w.phoneNumber, w.requestID, w.code = "", "", ""
	w.method = ""
	w.notice = nil
	return nil
}

func failureMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
