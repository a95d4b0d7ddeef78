package static

import (
	"context"
	"sync"

	"gatehouse-hq/keystone/pkg/extract"
)

// StubModel is the model identifier reported when no real model is involved.
const StubModel = "mock"

// StubSensor proposes nothing for any submission. Every tracked field comes
// back absent, so the fail-safe path of normalization and policy evaluation
// decides the outcome.
type StubSensor struct{}

// NewStubSensor creates a stub sensor.
func NewStubSensor() *StubSensor {
	return &StubSensor{}
}

// Extract returns the all-absent result. It never fails.
func (s *StubSensor) Extract(_ context.Context, _, model string) (*extract.Result, error) {
	if model == "" {
		model = StubModel
	}
	return extract.AbsentResult(model, "stub sensor: extraction disabled"), nil
}

// FixtureSensor replays canned extraction results keyed by exact submission
// text. Unknown submissions fall back to the all-absent result, which keeps
// fixture-backed runs hermetic.
type FixtureSensor struct {
	mu       sync.RWMutex
	fixtures map[string]*extract.Result
}

// NewFixtureSensor creates an empty fixture sensor.
func NewFixtureSensor() *FixtureSensor {
	return &FixtureSensor{fixtures: make(map[string]*extract.Result)}
}

// Add registers claims for a submission. The claims cross the same trust
// boundary a live sensor's output would, so fixtures cannot smuggle in
// unverified evidence or untracked fields.
func (s *FixtureSensor) Add(rawText string, claims *extract.Claims) {
	result := extract.Sanitize(rawText, StubModel, claims)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures[rawText] = result
}

// Len reports how many fixtures are registered.
func (s *FixtureSensor) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fixtures)
}

// Extract returns the fixture for rawText, or the all-absent result when no
// fixture matches.
func (s *FixtureSensor) Extract(_ context.Context, rawText, model string) (*extract.Result, error) {
	s.mu.RLock()
	result, ok := s.fixtures[rawText]
	s.mu.RUnlock()
	if ok {
		return result, nil
	}
	if model == "" {
		model = StubModel
	}
	return extract.AbsentResult(model, "fixture sensor: no fixture for submission"), nil
}
