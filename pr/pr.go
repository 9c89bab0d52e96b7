package pr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// State represents the state of a pull request.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
	StateMerged State = "merged"
)

// Provider errors.
var (
	// ErrUnknownProvider indicates the git remote uses an unknown provider.
	ErrUnknownProvider = errors.New("unknown git provider")

	// ErrNotFound indicates no pull request exists for the branch.
	ErrNotFound = errors.New("no pull request for branch")

	// ErrNoToken indicates no API token is available in the environment.
	ErrNoToken = errors.New("no API token configured")
)

// PullRequest is the status of a pull request for a branch.
type PullRequest struct {
	ID        int        // PR number / MR IID
	URL       string     // Web URL
	Title     string     // PR title
	State     State      // Current state
	Draft     bool       // Whether it's a draft
	Head      string     // Source branch
	Base      string     // Target branch
	CreatedAt time.Time  // Creation time
	UpdatedAt time.Time  // Last update time
	MergedAt  *time.Time // Merge time (nil if not merged)
}

// Provider looks up pull request status. Implementations exist for
// GitHub and GitLab; all operations are read-only.
type Provider interface {
	// StatusForBranch returns the most recent pull request whose source
	// branch matches. Returns ErrNotFound when the branch has no PR.
	StatusForBranch(ctx context.Context, branch string) (*PullRequest, error)
}

// DetectProvider identifies the hosting platform from a remote URL.
func DetectProvider(remoteURL string) (string, error) {
	remoteURL = strings.ToLower(remoteURL)

	if strings.Contains(remoteURL, "github.com") {
		return "github", nil
	}
	if strings.Contains(remoteURL, "gitlab") {
		return "gitlab", nil
	}

	return "", ErrUnknownProvider
}

// ParseRepoFromURL extracts owner and repo from a git remote URL.
func ParseRepoFromURL(remoteURL string) (owner, repo string, err error) {
	// SSH URLs: git@github.com:owner/repo.git
	if strings.HasPrefix(remoteURL, "git@") {
		parts := strings.Split(remoteURL, ":")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("invalid SSH URL format")
		}
		path := strings.TrimSuffix(parts[1], ".git")
		pathParts := strings.Split(path, "/")
		if len(pathParts) != 2 {
			return "", "", fmt.Errorf("invalid repository path")
		}
		return pathParts[0], pathParts[1], nil
	}

	// HTTPS URLs: https://github.com/owner/repo.git
	remoteURL = strings.TrimPrefix(remoteURL, "https://")
	remoteURL = strings.TrimPrefix(remoteURL, "http://")
	remoteURL = strings.TrimSuffix(remoteURL, ".git")

	parts := strings.Split(remoteURL, "/")
	if len(parts) < 3 {
		return "", "", fmt.Errorf("invalid URL format")
	}

	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// ProviderFromEnv creates a provider based on the remote URL and
// environment tokens: GITHUB_TOKEN for GitHub, GITLAB_TOKEN for GitLab,
// GIT_TOKEN as a fallback for either.
func ProviderFromEnv(remoteURL string) (Provider, error) {
	platform, err := DetectProvider(remoteURL)
	if err != nil {
		return nil, err
	}

	switch platform {
	case "github":
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			token = os.Getenv("GIT_TOKEN")
		}
		if token == "" {
			return nil, fmt.Errorf("%w: set GITHUB_TOKEN or GIT_TOKEN", ErrNoToken)
		}
		return NewGitHubProviderFromURL(token, remoteURL)

	case "gitlab":
		token := os.Getenv("GITLAB_TOKEN")
		if token == "" {
			token = os.Getenv("GIT_TOKEN")
		}
		if token == "" {
			return nil, fmt.Errorf("%w: set GITLAB_TOKEN or GIT_TOKEN", ErrNoToken)
		}
		return NewGitLabProviderFromURL(token, remoteURL)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, platform)
	}
}
