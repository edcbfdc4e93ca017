package provider

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	mockName          = "mock"
	mockRequestPrefix = "mock_"
	base36            = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// MockProvider fabricates numbers and codes locally. With pendingPolls > 0
// each request reports CodePending that many times before a code appears.
type MockProvider struct {
	pendingPolls int
	now          func() time.Time

	mu    sync.Mutex
	rng   *rand.Rand
	polls map[string]int
}

func NewMockProvider(pendingPolls int) *MockProvider {
	return &MockProvider{
		pendingPolls: pendingPolls,
		now:          time.Now,
		rng:          rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		polls:        make(map[string]int),
	}
}

// WithSeed makes output deterministic.
func (p *MockProvider) WithSeed(seed uint64) *MockProvider {
	p.mu.Lock()
	p.rng = rand.New(rand.NewPCG(seed, seed))
	p.mu.Unlock()
	return p
}

func (p *MockProvider) Name() string {
	return mockName
}

func (p *MockProvider) RequestNumber(ctx context.Context, serviceID, countryID int) (NumberResult, error) {
	if err := ctx.Err(); err != nil {
		return NumberResult{}, err
	}
	return NumberResult{
		RequestID:   p.MockRequestID(),
		PhoneNumber: p.MockPhoneNumber(),
	}, nil
}

func (p *MockProvider) CheckCode(ctx context.Context, requestID string) (CodeResult, error) {
	if err := ctx.Err(); err != nil {
		return CodeResult{}, err
	}
	if requestID == "" {
		return CodeResult{}, fmt.Errorf("empty request id")
	}

	p.mu.Lock()
	seen := p.polls[requestID]
	if seen < p.pendingPolls {
		p.polls[requestID] = seen + 1
		p.mu.Unlock()
		return CodeResult{Status: CodePending}, nil
	}
	delete(p.polls, requestID)
	p.mu.Unlock()

	return CodeResult{Status: CodeReceived, Code: p.MockCode()}, nil
}

// MockRequestID returns "mock_<millis>_<7 base36 chars>".
func (p *MockProvider) MockRequestID() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	b.WriteString(mockRequestPrefix)
	b.WriteString(strconv.FormatInt(p.now().UnixMilli(), 10))
	b.WriteByte('_')
	for i := 0; i < 7; i++ {
		b.WriteByte(base36[p.rng.IntN(len(base36))])
	}
	return b.String()
}

// MockPhoneNumber returns a +1 number with ten random digits.
func (p *MockProvider) MockPhoneNumber() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	b.WriteString("+1")
	for i := 0; i < 10; i++ {
		b.WriteByte(byte('0' + p.rng.IntN(10)))
	}
	return b.String()
}

// MockCode returns a six digit code without a leading zero.
func (p *MockProvider) MockCode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strconv.Itoa(100000 + p.rng.IntN(900000))
}
