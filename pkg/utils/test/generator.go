package testutils

import (
	"context"
	"fmt"
	"strings"
)

// MockGenerator is a test text generator with canned outputs per prompt.
type MockGenerator struct {
	// Outputs maps prompt -> generated text.
	Outputs map[string]string

	// Default is returned for any prompt without a canned output.
	Default string

	// FailOn causes Generate to return an error when the prompt contains it.
	FailOn string

	// Calls counts generation invocations, hit or miss.
	Calls int
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Outputs: make(map[string]string),
		Default: "generated text",
	}
}

func (m *MockGenerator) Generate(_ context.Context, prompt, _ string) (string, error) {
	m.Calls++
	if m.FailOn != "" && strings.Contains(prompt, m.FailOn) {
		return "", fmt.Errorf("mock generation failure for: %s", m.FailOn)
	}
	if out, ok := m.Outputs[prompt]; ok {
		return out, nil
	}
	return m.Default, nil
}

func (m *MockGenerator) Close() error {
	return nil
}
