package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/clubsite/internal/github"
	"github.com/dukerupert/clubsite/internal/middleware"
	"github.com/dukerupert/clubsite/internal/model"
)

// RepoStatsSource looks up repository statistics.
type RepoStatsSource interface {
	RepoStats(ctx context.Context, owner, repo string) (*model.RepoStats, error)
}

// StatsCache is implemented by sources that cache lookups.
type StatsCache interface {
	CacheKeys() []string
	ClearCache()
}

type GitHubHandler struct {
	source RepoStatsSource
	logger *slog.Logger
}

func NewGitHubHandler(source RepoStatsSource, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{source: source, logger: logger}
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// RepoStats handles GET /api/github/{owner}/{repo}.
func (h *GitHubHandler) RepoStats(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	repo := r.PathValue("repo")

	if owner == "" || repo == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Missing required parameters: owner and repo"})
		return
	}
	if !github.ValidName(owner) || !github.ValidName(repo) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid owner or repo name format"})
		return
	}

	stats, err := h.source.RepoStats(r.Context(), owner, repo)
	if err != nil || stats == nil {
		h.logger.Warn("github stats unavailable", "owner", owner, "repo", repo, "error", err)
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   "Repository not found or GitHub API request failed. This could be due to rate limiting, invalid repository, or network issues.",
		})
		return
	}

	setCORS(w)
	w.Header().Set("Cache-Control", "public, s-maxage=3600, stale-while-revalidate=86400")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": stats})
}

// Preflight handles OPTIONS /api/github/{owner}/{repo}.
func (h *GitHubHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	writeJSON(w, http.StatusOK, map[string]any{})
}

// ClearCache handles DELETE /api/github/cache. Only trusted callers may
// flush the cache; the response lists the entries that were dropped.
func (h *GitHubHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsTrusted(r.Context()) {
		writeFailure(w, http.StatusUnauthorized, failure{Error: "Unauthorized"})
		return
	}
	cache, ok := h.source.(StatsCache)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "cleared": []string{}})
		return
	}

	keys := cache.CacheKeys()
	cache.ClearCache()
	h.logger.Info("github cache cleared", "entries", len(keys))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "cleared": keys})
}
