package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/clubsite/internal/model"
	"github.com/dukerupert/clubsite/internal/store"
)

type SyncRunHandler struct {
	runStore *store.SyncRunStore
	logger   *slog.Logger
}

func NewSyncRunHandler(rs *store.SyncRunStore, logger *slog.Logger) *SyncRunHandler {
	return &SyncRunHandler{runStore: rs, logger: logger}
}

// List handles GET /api/sync/runs?kind=events|resources&limit=N.
func (h *SyncRunHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := model.SyncKind(r.URL.Query().Get("kind"))
	switch kind {
	case "", model.SyncKindEvents, model.SyncKindResources:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be events or resources"})
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 200 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}

	runs, err := h.runStore.ListRecent(kind, limit)
	if err != nil {
		h.logger.Error("list sync runs", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list sync runs"})
		return
	}
	if runs == nil {
		runs = []model.SyncRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// Get handles GET /api/sync/runs/{id}.
func (h *SyncRunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	run, err := h.runStore.GetByID(id)
	if err != nil {
		h.logger.Error("get sync run", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get sync run"})
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "sync run not found"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}
