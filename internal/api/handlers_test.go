package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlperErd0gan/Filizlen-App/internal/auth"
	"github.com/AlperErd0gan/Filizlen-App/internal/config"
	"github.com/AlperErd0gan/Filizlen-App/internal/core"
	"github.com/AlperErd0gan/Filizlen-App/internal/embcache"
	"github.com/AlperErd0gan/Filizlen-App/internal/store"
)

type echoAnswerer struct{}

func (echoAnswerer) Answer(_ context.Context, question, _ string) (string, error) {
	return "yanıt: " + question, nil
}

type testServer struct {
	t         *testing.T
	store     *store.SQLiteStore
	router    http.Handler
	cachePath string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig.JWTSecret = "test-secret"
	t.Cleanup(func() { config.AppConfig = prev })

	dir := t.TempDir()
	s, err := store.NewSQLiteStore(filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.EnsureSchema(context.Background()))

	cachePath := filepath.Join(dir, "rag_cache.json")
	rag, err := core.NewRAGService(cachePath, func(string) ([]float32, error) {
		return nil, errors.New("no embeddings in tests")
	})
	require.NoError(t, err)
	chat := core.NewChatService(s, rag, echoAnswerer{})

	return &testServer{t: t, store: s, router: NewRouter(NewAPIHandler(s, chat, rag)), cachePath: cachePath}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// userToken creates a user with the given role directly in the store and
// returns a token for it.
func (ts *testServer) userToken(email, role string) (int64, string) {
	ts.t.Helper()
	id, err := ts.store.CreateUser(context.Background(), store.UserInput{Name: email, Email: email, PasswordHash: "x", Role: role})
	require.NoError(ts.t, err)
	token, err := auth.GenerateJWT(email)
	require.NoError(ts.t, err)
	return id, token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSignupLoginMe(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/signup", "", SignupRequest{Name: "Ayşe", Email: "ayse@example.com", Password: "gizli"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "gizli")

	rec = ts.do(http.MethodPost, "/api/signup", "", SignupRequest{Name: "Ayşe", Email: "ayse@example.com", Password: "başka"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/api/login", "", LoginRequest{Email: "ayse@example.com", Password: "yanlış"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/api/login", "", LoginRequest{Email: "ayse@example.com", Password: "gizli"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)

	rec = ts.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[store.User](t, rec)
	assert.Equal(t, "ayse@example.com", me.Email)
	assert.Equal(t, store.DefaultRole, me.Role)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/me", "not-a-token", nil).Code)
}

func TestNewsEndpoints(t *testing.T) {
	ts := newTestServer(t)
	_, admin := ts.userToken("admin@example.com", "admin")
	_, member := ts.userToken("uye@example.com", "")

	rec := ts.do(http.MethodPost, "/api/categories", member, CategoryRequest{Name: "Pazar"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/api/categories", admin, CategoryRequest{Name: "Pazar"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	category := decode[store.Category](t, rec)

	rec = ts.do(http.MethodPost, "/api/news", admin, store.NewsInput{Title: "Hasat", Content: "Buğday hasadı başladı.", CategoryID: 999})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/api/news", admin, store.NewsInput{Title: "", Content: "x", CategoryID: category.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/news", admin, store.NewsInput{Title: "Hasat", Content: "Buğday hasadı başladı.", CategoryID: category.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[store.News](t, rec)
	assert.Equal(t, "Pazar", created.CategoryName)
	newsPath := "/api/news/" + strconv.FormatInt(created.ID, 10)

	title := "Hasat sürüyor"
	rec = ts.do(http.MethodPatch, newsPath, admin, store.NewsPatch{Title: &title})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[store.News](t, rec)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "Buğday hasadı başladı.", updated.Content)

	rec = ts.do(http.MethodGet, "/api/news?category_id="+strconv.FormatInt(category.ID, 10), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.News](t, rec), 1)

	rec = ts.do(http.MethodDelete, "/api/categories/"+strconv.FormatInt(category.ID, 10), admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, newsPath, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, newsPath, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, newsPath, admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/news/abc", "", nil).Code)
}

func TestTipEndpoints(t *testing.T) {
	ts := newTestServer(t)
	_, admin := ts.userToken("admin@example.com", "admin")

	easy, hard := "Kolay", "Zor"
	rec := ts.do(http.MethodPost, "/api/tips", admin, store.TipInput{Title: "Sulama", Content: "Sabah sulayın.", Difficulty: &easy})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tip := decode[store.Tip](t, rec)

	rec = ts.do(http.MethodPost, "/api/tips", admin, store.TipInput{Title: "Aşılama", Content: "Kalem aşısı.", Difficulty: &hard})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(http.MethodGet, "/api/tips?difficulty=Kolay", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tips := decode[[]store.Tip](t, rec)
	require.Len(t, tips, 1)
	assert.Equal(t, tip.ID, tips[0].ID)

	content := "Akşam sulayın."
	rec = ts.do(http.MethodPatch, "/api/tips/"+strconv.FormatInt(tip.ID, 10), admin, store.TipPatch{Content: &content})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, content, decode[store.Tip](t, rec).Content)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPatch, "/api/tips/999", admin, store.TipPatch{Content: &content}).Code)
}

func TestFavoriteEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	_, token := ts.userToken("uye@example.com", "")
	categoryID, err := ts.store.CreateCategory(ctx, "Pazar", nil)
	require.NoError(t, err)
	newsID, err := ts.store.CreateNews(ctx, store.NewsInput{Title: "Fındık", Content: "Fiyatlar", CategoryID: categoryID})
	require.NoError(t, err)
	path := "/api/favorites/" + strconv.FormatInt(newsID, 10)

	assert.Equal(t, http.StatusCreated, ts.do(http.MethodPut, path, token, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodPut, path, token, nil).Code)
	assert.Equal(t, http.StatusConflict, ts.do(http.MethodPut, "/api/favorites/999", token, nil).Code)

	rec := ts.do(http.MethodGet, path, token, nil)
	assert.JSONEq(t, `{"favorited":true}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/favorites", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	favorites := decode[[]store.FavoriteNews](t, rec)
	require.Len(t, favorites, 1)
	assert.Equal(t, newsID, favorites[0].ID)

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, path, token, nil).Code)
}

func TestAskRecordsHistory(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.userToken("uye@example.com", "")

	rec := ts.do(http.MethodPost, "/api/ask", token, AskRequest{Question: "Domates ne zaman ekilir?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[core.AskResult](t, rec)
	assert.Equal(t, "yanıt: Domates ne zaman ekilir?", res.Answer)
	assert.Empty(t, res.Sources)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/ask", token, AskRequest{Question: " "}).Code)

	rec = ts.do(http.MethodGet, "/api/chat-logs", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.ChatLogEntry](t, rec), 1)

	rec = ts.do(http.MethodGet, "/api/search-history?limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.SearchHistoryEntry](t, rec), 1)
}

func TestReloadCache(t *testing.T) {
	ts := newTestServer(t)
	_, admin := ts.userToken("admin@example.com", "admin")
	_, member := ts.userToken("uye@example.com", "")

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/api/admin/reload-cache", member, nil).Code)
	assert.Equal(t, http.StatusInternalServerError, ts.do(http.MethodPost, "/api/admin/reload-cache", admin, nil).Code)

	docs := []embcache.Document{
		{ID: "news-1", Type: core.DocTypeNews, Content: "fındık"},
		{ID: "tip-1", Type: core.DocTypeTip, Content: "domates"},
	}
	require.NoError(t, embcache.Save(ts.cachePath, docs, [][]float32{{1, 0}, {0, 1}}))

	rec := ts.do(http.MethodPost, "/api/admin/reload-cache", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"documents":2}`, rec.Body.String())
}
