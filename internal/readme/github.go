// Package readme talks to the GitHub REST API and a generative text API to
// draft README files for public repositories.
package readme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultGitHubAPIURL = "https://api.github.com"
	userAgent           = "MellowMark-Readme-Generator"
)

// ErrInvalidURL is returned by ParseRepositoryURL for anything that does not
// name an owner and a repository.
var ErrInvalidURL = errors.New("invalid repository url")

// RepoInfo is the subset of repository metadata used in prompts.
type RepoInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
}

// ParseRepositoryURL extracts owner and repository name from URLs such as
// https://github.com/owner/repo, github.com/owner/repo.git or owner/repo/.
// Trailing path segments such as /tree/main are ignored.
func ParseRepositoryURL(raw string) (owner, name string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ErrInvalidURL
	}

	p := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return "", "", ErrInvalidURL
		}
		p = u.Path
	} else if i := strings.Index(raw, "github.com/"); i >= 0 {
		p = raw[i+len("github.com/"):]
	}

	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) < 2 {
		return "", "", ErrInvalidURL
	}

	owner = segs[0]
	name = strings.TrimSuffix(segs[1], ".git")
	if owner == "" || name == "" || owner == "." || owner == ".." || name == "." || name == ".." {
		return "", "", ErrInvalidURL
	}
	return owner, name, nil
}

// GitHubClient reads repository metadata from the GitHub REST API.
type GitHubClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGitHubClient builds a client. An empty token makes unauthenticated
// requests, which GitHub rate limits aggressively.
func NewGitHubClient(baseURL, token string, timeout time.Duration) *GitHubClient {
	if baseURL == "" {
		baseURL = DefaultGitHubAPIURL
	}
	var transport http.RoundTripper = http.DefaultTransport
	if token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   http.DefaultTransport,
		}
	}
	return &GitHubClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

func (c *GitHubClient) Repository(ctx context.Context, owner, name string) (*RepoInfo, error) {
	var info RepoInfo
	if err := c.getJSON(ctx, c.repoURL(owner, name), &info); err != nil {
		return nil, fmt.Errorf("get repository %s/%s: %w", owner, name, err)
	}
	return &info, nil
}

// Contents lists the names of the entries at the repository root.
func (c *GitHubClient) Contents(ctx context.Context, owner, name string) ([]string, error) {
	var entries []struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, c.repoURL(owner, name)+"/contents", &entries); err != nil {
		return nil, fmt.Errorf("list contents of %s/%s: %w", owner, name, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

func (c *GitHubClient) repoURL(owner, name string) string {
	return fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(name))
}

func (c *GitHubClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
