package pr

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubProvider implements Provider for GitHub repositories.
type GitHubProvider struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubProvider creates a GitHub provider for owner/repo using the
// given personal access token.
func NewGitHubProvider(token, owner, repo string) (*GitHubProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &GitHubProvider{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}, nil
}

// NewGitHubProviderFromURL creates a GitHub provider from a remote URL.
// Example: "https://github.com/grovekit/grove.git"
func NewGitHubProviderFromURL(token, remoteURL string) (*GitHubProvider, error) {
	owner, repo, err := ParseRepoFromURL(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}
	return NewGitHubProvider(token, owner, repo)
}

// StatusForBranch implements Provider. The most recently updated PR for
// the branch wins when several exist.
func (p *GitHubProvider) StatusForBranch(ctx context.Context, branch string) (*PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		Head:        p.owner + ":" + branch,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 1},
	}

	prs, _, err := p.client.PullRequests.List(ctx, p.owner, p.repo, opts)
	if err != nil {
		return nil, fmt.Errorf("list PRs for %s: %w", branch, err)
	}
	if len(prs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, branch)
	}

	return prFromGitHub(prs[0]), nil
}

func prFromGitHub(pull *github.PullRequest) *PullRequest {
	result := &PullRequest{
		ID:    pull.GetNumber(),
		URL:   pull.GetHTMLURL(),
		Title: pull.GetTitle(),
		Draft: pull.GetDraft(),
	}

	switch pull.GetState() {
	case "open":
		result.State = StateOpen
	case "closed":
		if pull.GetMerged() || pull.MergedAt != nil {
			result.State = StateMerged
		} else {
			result.State = StateClosed
		}
	}

	if pull.Head != nil {
		result.Head = pull.Head.GetRef()
	}
	if pull.Base != nil {
		result.Base = pull.Base.GetRef()
	}
	if pull.CreatedAt != nil {
		result.CreatedAt = pull.CreatedAt.Time
	}
	if pull.UpdatedAt != nil {
		result.UpdatedAt = pull.UpdatedAt.Time
	}
	if pull.MergedAt != nil {
		t := pull.MergedAt.Time
		result.MergedAt = &t
	}

	return result
}
