package llm

import "context"

// MockGenerator is a configurable mock for testing narrative consumers.
// Set NarrativeFunc to control behavior; nil returns "mock narrative".
type MockGenerator struct {
	NarrativeFunc func(ctx context.Context, req Request) (string, error)

	// NarrativeCalls counts invocations for verification.
	NarrativeCalls int
}

// NewMockGenerator creates a new mock with defaults.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

var _ NarrativeGenerator = (*MockGenerator)(nil)

// Name implements NarrativeGenerator.
func (m *MockGenerator) Name() string { return "mock" }

// Narrative implements NarrativeGenerator.
func (m *MockGenerator) Narrative(ctx context.Context, req Request) (string, error) {
	m.NarrativeCalls++
	if m.NarrativeFunc != nil {
		return m.NarrativeFunc(ctx, req)
	}
	return "mock narrative", nil
}
