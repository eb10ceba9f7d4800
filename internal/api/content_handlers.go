package api

import (
	"net/http"
	"strconv"

	"github.com/AlperErd0gan/Filizlen-App/internal/store"
)

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (h *APIHandler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeStoreError(w, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *APIHandler) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid category id", http.StatusBadRequest)
		return
	}
	category, err := h.store.GetCategory(r.Context(), id)
	if err != nil {
		writeStoreError(w, "get category", err)
		return
	}
	if category == nil {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *APIHandler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := h.store.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		writeStoreError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, store.Category{ID: id, Name: req.Name, Description: req.Description})
}

func (h *APIHandler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "category", h.store.DeleteCategory)
}

func (h *APIHandler) ListNewsHandler(w http.ResponseWriter, r *http.Request) {
	var filter store.NewsFilter
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid category_id", http.StatusBadRequest)
			return
		}
		filter.CategoryID = &categoryID
	}
	limit, ok := limitQuery(r)
	if !ok {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	filter.Limit = limit

	news, err := h.store.ListNews(r.Context(), filter)
	if err != nil {
		writeStoreError(w, "list news", err)
		return
	}
	writeJSON(w, http.StatusOK, news)
}

func (h *APIHandler) GetNewsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid news id", http.StatusBadRequest)
		return
	}
	h.writeNews(w, r, id, http.StatusOK)
}

func (h *APIHandler) writeNews(w http.ResponseWriter, r *http.Request, id int64, status int) {
	news, err := h.store.GetNews(r.Context(), id)
	if err != nil {
		writeStoreError(w, "get news", err)
		return
	}
	if news == nil {
		http.Error(w, "News not found", http.StatusNotFound)
		return
	}
	writeJSON(w, status, news)
}

func (h *APIHandler) CreateNewsHandler(w http.ResponseWriter, r *http.Request) {
	var in store.NewsInput
	if !decodeBody(w, r, &in) {
		return
	}
	id, err := h.store.CreateNews(r.Context(), in)
	if err != nil {
		writeStoreError(w, "create news", err)
		return
	}
	h.writeNews(w, r, id, http.StatusCreated)
}

// UpdateNewsHandler applies a partial update and returns the stored article.
// An empty patch returns the article unchanged.
func (h *APIHandler) UpdateNewsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid news id", http.StatusBadRequest)
		return
	}
	var patch store.NewsPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if _, err := h.store.UpdateNews(r.Context(), id, patch); err != nil {
		writeStoreError(w, "update news", err)
		return
	}
	h.writeNews(w, r, id, http.StatusOK)
}

func (h *APIHandler) DeleteNewsHandler(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "news", h.store.DeleteNews)
}

func (h *APIHandler) ListTipsHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitQuery(r)
	if !ok {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	tips, err := h.store.ListTips(r.Context(), store.TipFilter{
		Difficulty: r.URL.Query().Get("difficulty"),
		Limit:      limit,
	})
	if err != nil {
		writeStoreError(w, "list tips", err)
		return
	}
	writeJSON(w, http.StatusOK, tips)
}

func (h *APIHandler) GetTipHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid tip id", http.StatusBadRequest)
		return
	}
	h.writeTip(w, r, id, http.StatusOK)
}

func (h *APIHandler) writeTip(w http.ResponseWriter, r *http.Request, id int64, status int) {
	tip, err := h.store.GetTip(r.Context(), id)
	if err != nil {
		writeStoreError(w, "get tip", err)
		return
	}
	if tip == nil {
		http.Error(w, "Tip not found", http.StatusNotFound)
		return
	}
	writeJSON(w, status, tip)
}

func (h *APIHandler) CreateTipHandler(w http.ResponseWriter, r *http.Request) {
	var in store.TipInput
	if !decodeBody(w, r, &in) {
		return
	}
	id, err := h.store.CreateTip(r.Context(), in)
	if err != nil {
		writeStoreError(w, "create tip", err)
		return
	}
	h.writeTip(w, r, id, http.StatusCreated)
}

func (h *APIHandler) UpdateTipHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid tip id", http.StatusBadRequest)
		return
	}
	var patch store.TipPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if _, err := h.store.UpdateTip(r.Context(), id, patch); err != nil {
		writeStoreError(w, "update tip", err)
		return
	}
	h.writeTip(w, r, id, http.StatusOK)
}

func (h *APIHandler) DeleteTipHandler(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "tip", h.store.DeleteTip)
}
