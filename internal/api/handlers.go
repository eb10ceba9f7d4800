package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AlperErd0gan/Filizlen-App/internal/auth"
	"github.com/AlperErd0gan/Filizlen-App/internal/core"
	"github.com/AlperErd0gan/Filizlen-App/internal/store"
)

const adminRole = "admin"

type contextKey string

const userContextKey contextKey = "user"

type APIHandler struct {
	store       *store.SQLiteStore
	chatService *core.ChatService
	ragService  *core.RAGService
}

func NewAPIHandler(s *store.SQLiteStore, cs *core.ChatService, rag *core.RAGService) *APIHandler {
	return &APIHandler{store: s, chatService: cs, ragService: rag}
}

func currentUser(r *http.Request) *store.User {
	user, _ := r.Context().Value(userContextKey).(*store.User)
	return user
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeStoreError maps store error kinds onto HTTP statuses. Anything
// unclassified is logged and reported as a 500 with a generic message.
func writeStoreError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, store.ErrReferentialConstraint):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrUniqueConstraint):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Error trying to %s: %v", action, err)
		http.Error(w, "Failed to "+action, http.StatusInternalServerError)
	}
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func limitQuery(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil && n >= 0
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		email, err := auth.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		user, err := h.store.GetUserByEmail(r.Context(), email)
		if err != nil {
			log.Printf("Error in JWTAuthMiddleware for user %s: %v", email, err)
			http.Error(w, "Failed to process user identity", http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after JWTAuthMiddleware.
func (h *APIHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil || user.Role != adminRole {
			http.Error(w, "Admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password for user %s: %v", req.Email, err)
		http.Error(w, "Failed to process password", http.StatusInternalServerError)
		return
	}

	id, err := h.store.CreateUser(r.Context(), store.UserInput{Name: req.Name, Email: req.Email, PasswordHash: hashedPassword})
	if err != nil {
		writeStoreError(w, "create user", err)
		return
	}
	user, err := h.store.GetUser(r.Context(), id)
	if err != nil || user == nil {
		writeStoreError(w, "load created user", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		log.Printf("Error getting user %s: %v", req.Email, err)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(user.Email)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", user.Email, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

type AskRequest struct {
	Question string `json:"question"`
}

func (h *APIHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req AskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.chatService.Ask(r.Context(), user.ID, req.Question)
	if err != nil {
		if errors.Is(err, core.ErrEmptyQuestion) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeStoreError(w, "answer question", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ReloadCacheHandler swaps in the embedding cache file written by the last
// rebuild. The current snapshot stays in use if the file cannot be loaded.
func (h *APIHandler) ReloadCacheHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.ragService.Refresh()
	if err != nil {
		log.Printf("Error reloading embedding cache: %v", err)
		http.Error(w, "Failed to reload embedding cache", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"documents": n})
}
