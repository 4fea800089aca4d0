package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

// memoryCoordinator 是只在测试中使用的 Coordinator
type memoryCoordinator struct {
	mu      sync.Mutex
	locks   map[int64]bool
	revoked map[string]bool
}

func newMemoryCoordinator() *memoryCoordinator {
	return &memoryCoordinator{locks: map[int64]bool{}, revoked: map[string]bool{}}
}

func (c *memoryCoordinator) AcquireLineupLock(ctx context.Context, gameID int64, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[gameID] {
		return false, nil
	}
	c.locks[gameID] = true
	return true, nil
}

func (c *memoryCoordinator) ReleaseLineupLock(ctx context.Context, gameID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, gameID)
	return nil
}

func (c *memoryCoordinator) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[sessionID] = true
	return nil
}

func (c *memoryCoordinator) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revoked[sessionID], nil
}

func newTestHandler(t *testing.T) (*Handler, *memoryCoordinator) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	coordinator := newMemoryCoordinator()
	h, err := NewHandler(cfg, nil, nil, coordinator)
	if err != nil {
		t.Fatalf("NewHandler returned error: %v", err)
	}
	return h, coordinator
}

func newTestSession(t *testing.T, h *Handler, role domain.Role) (*Session, string) {
	t.Helper()
	session := h.newSession(&domain.User{ID: 1, FullName: "王磊", Role: role}, time.Now())
	ss, err := h.signSession(session)
	if err != nil {
		t.Fatal(err)
	}
	return session, ss
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var res Response
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return res
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, msg string) {
	t.Helper()
	if res := decodeResponse(t, rec); res.Success || res.Message != msg {
		t.Fatalf("expected error %q, got %+v", msg, res)
	}
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestAuthRequiresCookie(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.auth(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/players", nil))

	expectError(t, rec, "用户未登录")
}

func TestAuthRejectsForeignToken(t *testing.T) {
	h, _ := newTestHandler(t)
	other, _ := newTestHandler(t)
	other.config.JWT.Secret = "other-secret"
	_, token := newTestSession(t, other, domain.RoleCoach)

	req := httptest.NewRequest(http.MethodGet, "/players", nil)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.auth(okHandler).ServeHTTP(rec, req)

	expectError(t, rec, "无效的令牌")
}

func TestAuthStoresSession(t *testing.T) {
	h, _ := newTestHandler(t)
	_, token := newTestSession(t, h, domain.RoleCoach)

	var got *Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = sessionFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/players", nil)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.auth(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if got == nil || got.FullName != "王磊" || got.Role != domain.RoleCoach {
		t.Fatalf("unexpected session %+v", got)
	}
	if id, err := got.UserID(); err != nil || id != 1 {
		t.Fatalf("expected user id 1, got %d (%v)", id, err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	h, coordinator := newTestHandler(t)
	session, token := newTestSession(t, h, domain.RoleHeadCoach)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if res := decodeResponse(t, rec); !res.Success {
		t.Fatalf("expected logout to succeed, got %+v", res)
	}
	if !coordinator.revoked[session.ID] {
		t.Fatalf("expected session %s to be revoked", session.ID)
	}

	// 登出后原令牌不能再使用
	req = httptest.NewRequest(http.MethodGet, "/players", nil)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
	rec = httptest.NewRecorder()
	h.auth(okHandler).ServeHTTP(rec, req)

	expectError(t, rec, "登录已失效，请重新登录")
}

func TestRequireRole(t *testing.T) {
	h, _ := newTestHandler(t)
	protected := h.auth(h.requireRole(domain.RoleHeadCoach)(okHandler))

	tests := []struct {
		role       domain.Role
		wantStatus int
	}{
		{domain.RoleHeadCoach, http.StatusNoContent},
		{domain.RoleCoach, http.StatusOK},
	}

	for _, tt := range tests {
		_, token := newTestSession(t, h, tt.role)
		req := httptest.NewRequest(http.MethodDelete, "/games/1", nil)
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code != tt.wantStatus {
			t.Fatalf("role %s: expected status %d, got %d", tt.role, tt.wantStatus, rec.Code)
		}
		if tt.wantStatus == http.StatusOK {
			expectError(t, rec, "权限不足")
		}
	}
}

func TestLineupRoutesRequireHeadCoach(t *testing.T) {
	h, _ := newTestHandler(t)
	h.RegisterRoutes()
	_, token := newTestSession(t, h, domain.RoleCoach)

	// 权限检查在读取比赛之前，repository 为 nil 也不会被访问
	for _, path := range []string{"/games/1/lineup/generate", "/games/1/lineup/publish"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
		rec := httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, req)

		expectError(t, rec, "只有主教练可以生成或发布阵容")
	}
}

func TestLineupGenerationLock(t *testing.T) {
	h, coordinator := newTestHandler(t)
	coordinator.locks[7] = true

	var ran []int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		game := r.Context().Value(GameInfoCtx).(*domain.Game)
		ran = append(ran, game.ID)
		if !coordinator.locks[game.ID] {
			t.Fatalf("expected lock for game %d to be held while generating", game.ID)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	serve := func(gameID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/games/lineup/generate", nil)
		req = req.WithContext(context.WithValue(req.Context(), GameInfoCtx, &domain.Game{ID: gameID}))
		rec := httptest.NewRecorder()
		h.lineupGenerationLock(next).ServeHTTP(rec, req)
		return rec
	}

	expectError(t, serve(7), "该比赛正在生成阵容，请稍后再试")

	if rec := serve(8); rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if len(ran) != 1 || ran[0] != 8 {
		t.Fatalf("expected only game 8 to run, got %v", ran)
	}
	if coordinator.locks[8] {
		t.Fatalf("expected lock for game 8 to be released")
	}
}

func TestLoadByID(t *testing.T) {
	h, _ := newTestHandler(t)

	get := func(id int64) (*domain.Player, error) {
		switch id {
		case 1:
			return &domain.Player{ID: 1, Name: "Carl"}, nil
		case 2:
			return nil, errors.New("connection reset")
		default:
			return nil, sql.ErrNoRows
		}
	}

	router := chi.NewRouter()
	router.With(loadByID(h, PlayerInfoCtx, "球员", get)).Get("/players/{id}", func(w http.ResponseWriter, r *http.Request) {
		player := r.Context().Value(PlayerInfoCtx).(*domain.Player)
		h.successResponse(w, r, "ok", player)
	})

	tests := []struct {
		path       string
		wantStatus int
		wantMsg    string
	}{
		{"/players/1", http.StatusOK, "ok"},
		{"/players/abc", http.StatusOK, "球员ID无效"},
		{"/players/9", http.StatusOK, "球员不存在"},
		{"/players/2", http.StatusInternalServerError, "服务器内部错误"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if res := decodeResponse(t, rec); res.Message != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, res.Message)
			}
		})
	}
}

func TestRecovererReturnsInternalServerError(t *testing.T) {
	h, _ := newTestHandler(t)
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	h.recoverer(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestBadRequestTranslatesValidationErrors(t *testing.T) {
	h, _ := newTestHandler(t)

	var req struct {
		Skill int32 `json:"skill" validate:"required,min=1,max=5"`
	}
	req.Skill = 9
	err := h.validate.Struct(req)
	if err == nil {
		t.Fatalf("expected validation error")
	}

	rec := httptest.NewRecorder()
	h.badRequest(rec, httptest.NewRequest(http.MethodPost, "/players", nil), err)

	res := decodeResponse(t, rec)
	if res.Success || res.Message == "" {
		t.Fatalf("unexpected response %+v", res)
	}
}
