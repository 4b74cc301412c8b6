// Package github fetches public repository statistics for project cards,
// caching results to stay under the API rate limit.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dukerupert/clubsite/internal/model"
)

const (
	cacheTTL     = time.Hour
	cacheCleanup = 10 * time.Minute
)

// ErrNoToken is returned when no API token is configured.
var ErrNoToken = errors.New("github token not set")

var (
	namePattern     = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	lastPagePattern = regexp.MustCompile(`[?&]page=(\d+)>;\s*rel="last"`)
)

// ValidName reports whether s is an acceptable owner or repository name.
func ValidName(s string) bool {
	return namePattern.MatchString(s)
}

// Service fetches and caches repository stats.
type Service struct {
	token   string
	client  *http.Client
	baseURL string
	cache   *gocache.Cache
}

// NewService creates a service authenticating with token.
func NewService(token string) *Service {
	return &Service{
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://api.github.com",
		cache:   gocache.New(cacheTTL, cacheCleanup),
	}
}

// Configured reports whether a token is set.
func (s *Service) Configured() bool {
	return s.token != ""
}

// RepoStats returns stats for owner/repo, served from cache for up to an
// hour.
func (s *Service) RepoStats(ctx context.Context, owner, repo string) (*model.RepoStats, error) {
	if !ValidName(owner) || !ValidName(repo) {
		return nil, fmt.Errorf("invalid owner or repo name %q/%q", owner, repo)
	}

	key := owner + "/" + repo

	if v, ok := s.cache.Get(key); ok {
		stats := v.(model.RepoStats)
		return &stats, nil
	}

	if !s.Configured() {
		return nil, ErrNoToken
	}

	stats, err := s.fetch(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(key, *stats)

	return stats, nil
}

// ClearCache drops every cached entry.
func (s *Service) ClearCache() {
	s.cache.Flush()
}

// CacheKeys lists the unexpired "owner/repo" keys in order.
func (s *Service) CacheKeys() []string {
	items := s.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PruneCache removes expired entries ahead of the background janitor.
func (s *Service) PruneCache() {
	s.cache.DeleteExpired()
}

type repoResponse struct {
	StargazersCount int     `json:"stargazers_count"`
	ForksCount      int     `json:"forks_count"`
	UpdatedAt       string  `json:"updated_at"`
	Language        *string `json:"language"`
	Archived        bool    `json:"archived"`
}

func (s *Service) fetch(ctx context.Context, owner, repo string) (*model.RepoStats, error) {
	resp, err := s.get(ctx, fmt.Sprintf("%s/repos/%s/%s", s.baseURL, owner, repo))
	if err != nil {
		return nil, fmt.Errorf("github repo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d for %s/%s", resp.StatusCode, owner, repo)
	}

	var data repoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode repo response: %w", err)
	}

	return &model.RepoStats{
		Stars:        data.StargazersCount,
		Forks:        data.ForksCount,
		LastUpdated:  data.UpdatedAt,
		Contributors: s.contributors(ctx, owner, repo),
		Language:     data.Language,
		IsArchived:   data.Archived,
	}, nil
}

// contributors counts contributors from the pagination links of a
// one-per-page listing. Failures count as zero.
func (s *Service) contributors(ctx context.Context, owner, repo string) int {
	resp, err := s.get(ctx, fmt.Sprintf("%s/repos/%s/%s/contributors?per_page=1", s.baseURL, owner, repo))
	if err != nil {
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0
	}

	if m := lastPagePattern.FindStringSubmatch(resp.Header.Get("Link")); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}

	var list []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return 0
	}
	return len(list)
}

func (s *Service) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	return s.client.Do(req)
}
