package pr

import (
	"context"
	"fmt"
)

// MockProvider is a Provider for tests, keyed by branch name.
type MockProvider struct {
	PRs      map[string]*PullRequest
	Err      error
	Requests []string
}

// NewMockProvider creates an empty mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{PRs: make(map[string]*PullRequest)}
}

// AddPR registers a pull request for a branch.
func (m *MockProvider) AddPR(branch string, pull *PullRequest) {
	m.PRs[branch] = pull
}

// StatusForBranch implements Provider.
func (m *MockProvider) StatusForBranch(ctx context.Context, branch string) (*PullRequest, error) {
	m.Requests = append(m.Requests, branch)
	if m.Err != nil {
		return nil, m.Err
	}
	if pull, ok := m.PRs[branch]; ok {
		return pull, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, branch)
}
