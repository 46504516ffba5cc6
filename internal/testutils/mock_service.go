// Package testutils provides deterministic fakes for testing the
// evaluation pipeline without a live provider.
package testutils

import (
	"context"
	"strings"
	"sync"

	"github.com/ahrav/go-prospect/internal/ports"
)

// MockEvaluationService implements ports.EvaluationService with
// deterministic, pattern-matched responses and scripted failures. It is
// safe for concurrent use, matching how the orchestrator drives it.
type MockEvaluationService struct {
	mu sync.Mutex

	// responses maps prompt patterns (substring match against the
	// system prompt, then the user prompt) to canned texts.
	responses map[string]string

	// defaultResponse is returned when no pattern matches.
	defaultResponse string

	// failures maps patterns to scripted error sequences consumed one
	// per matching request.
	failures map[string][]error

	// calls counts requests per matched pattern.
	calls map[string]int

	// requests records every request in arrival order.
	requests []RecordedRequest
}

// RecordedRequest captures one request for assertions.
type RecordedRequest struct {
	SystemPrompt string
	UserPrompt   string
	Params       ports.RequestParams
}

var _ ports.EvaluationService = (*MockEvaluationService)(nil)

// NewMockEvaluationService creates a mock that answers every request
// with a generic assessment until patterns are configured.
func NewMockEvaluationService() *MockEvaluationService {
	return &MockEvaluationService{
		responses:       make(map[string]string),
		failures:        make(map[string][]error),
		calls:           make(map[string]int),
		defaultResponse: "A plausible assessment grounded in the supplied features.",
	}
}

// AddResponse registers a canned response for prompts containing the
// pattern.
func (m *MockEvaluationService) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[pattern] = response
}

// ScriptFailures registers an error sequence for prompts containing the
// pattern. Each matching request consumes one error; once the script is
// exhausted the request succeeds normally.
func (m *MockEvaluationService) ScriptFailures(pattern string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[pattern] = append(m.failures[pattern], errs...)
}

// Request implements ports.EvaluationService.
func (m *MockEvaluationService) Request(
	ctx context.Context, systemPrompt, userPrompt string, params ports.RequestParams,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, RecordedRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Params:       params,
	})

	pattern, response := m.match(systemPrompt, userPrompt)
	m.calls[pattern]++

	for p, script := range m.failures {
		if len(script) == 0 || !matches(p, systemPrompt, userPrompt) {
			continue
		}
		err := script[0]
		m.failures[p] = script[1:]
		return "", err
	}

	return response, nil
}

// CallCount returns how many requests matched the pattern. The empty
// pattern counts requests that matched nothing.
func (m *MockEvaluationService) CallCount(pattern string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[pattern]
}

// Requests returns a copy of every recorded request in arrival order.
func (m *MockEvaluationService) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockEvaluationService) match(systemPrompt, userPrompt string) (string, string) {
	for pattern, response := range m.responses {
		if matches(pattern, systemPrompt, userPrompt) {
			return pattern, response
		}
	}
	return "", m.defaultResponse
}

func matches(pattern, systemPrompt, userPrompt string) bool {
	return strings.Contains(systemPrompt, pattern) || strings.Contains(userPrompt, pattern)
}
