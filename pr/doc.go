// Package pr looks up pull request status for worktree branches.
//
// Core types:
//   - Provider: Interface for querying pull request status by branch
//   - PullRequest: Status of a pull request (state, URL, draft)
//
// Implementations:
//   - GitHubProvider: GitHub lookup using go-github
//   - GitLabProvider: GitLab merge request lookup using go-gitlab
//
// The provider is detected from the origin remote URL; tokens come from
// GITHUB_TOKEN / GITLAB_TOKEN with GIT_TOKEN as a fallback for either.
//
// Example usage:
//
//	remoteURL, _ := gitCtx.GetRemoteURL("origin")
//	provider, err := pr.ProviderFromEnv(remoteURL)
//	if err != nil {
//	    return err
//	}
//	pull, err := provider.StatusForBranch(ctx, "feature/login")
package pr
