package clock

import (
	"sync"
	"time"
)

// Clock abstracts time so sync stamps can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time in UTC.
type RealClock struct{}

// New returns the production clock.
func New() Clock {
	return RealClock{}
}

// Now returns the current UTC time.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// MockClock is a manually driven clock. Each call to Now advances it by Step.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	Step    time.Duration
}

// NewMock creates a MockClock starting at t.
func NewMock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

// Now returns the mock time, then advances it by Step.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.current
	m.current = m.current.Add(m.Step)
	return now
}

// Set pins the mock time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}
