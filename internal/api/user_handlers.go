package api

import (
	"context"
	"net/http"
)

func (h *APIHandler) deleteByID(w http.ResponseWriter, r *http.Request, what string, del func(context.Context, int64) (bool, error)) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid "+what+" id", http.StatusBadRequest)
		return
	}
	deleted, err := del(r.Context(), id)
	if err != nil {
		writeStoreError(w, "delete "+what, err)
		return
	}
	if !deleted {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.store.ListUserFavorites(r.Context(), currentUser(r).ID)
	if err != nil {
		writeStoreError(w, "list favorites", err)
		return
	}
	writeJSON(w, http.StatusOK, favorites)
}

// AddFavoriteHandler answers 201 for a new favorite and 200 when the article
// was already a favorite.
func (h *APIHandler) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	newsID, ok := idParam(r, "newsID")
	if !ok {
		http.Error(w, "Invalid news id", http.StatusBadRequest)
		return
	}
	_, created, err := h.store.AddFavorite(r.Context(), currentUser(r).ID, newsID)
	if err != nil {
		writeStoreError(w, "add favorite", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]bool{"favorited": true, "created": created})
}

func (h *APIHandler) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	newsID, ok := idParam(r, "newsID")
	if !ok {
		http.Error(w, "Invalid news id", http.StatusBadRequest)
		return
	}
	removed, err := h.store.RemoveFavorite(r.Context(), currentUser(r).ID, newsID)
	if err != nil {
		writeStoreError(w, "remove favorite", err)
		return
	}
	if !removed {
		http.Error(w, "Favorite not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) CheckFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	newsID, ok := idParam(r, "newsID")
	if !ok {
		http.Error(w, "Invalid news id", http.StatusBadRequest)
		return
	}
	favorited, err := h.store.IsFavorited(r.Context(), currentUser(r).ID, newsID)
	if err != nil {
		writeStoreError(w, "check favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorited": favorited})
}

func (h *APIHandler) ListChatLogsHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitQuery(r)
	if !ok {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	logs, err := h.store.ListChatLogs(r.Context(), currentUser(r).ID, limit)
	if err != nil {
		writeStoreError(w, "list chat logs", err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *APIHandler) ListSearchHistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitQuery(r)
	if !ok {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	history, err := h.store.ListSearchHistory(r.Context(), currentUser(r).ID, limit)
	if err != nil {
		writeStoreError(w, "list search history", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
