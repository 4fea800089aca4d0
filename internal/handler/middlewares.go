package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("已处理请求", "status", rec.status, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				fmt.Print(string(debug.Stack())) // 堆栈用 slog 输出会挤在一行
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(ctx context.Context) *Session {
	session, _ := ctx.Value(SessionCtx).(*Session)
	return session
}

// auth 校验 cookie 中的令牌，并检查令牌是否已经被登出或修改密码吊销
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.errorResponse(w, r, "用户未登录")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		session, err := h.parseSession(cookie.Value)
		if err != nil {
			h.errorResponse(w, r, "无效的令牌")
			return
		}

		ctx, cancel := h.redisContext(r.Context())
		revoked, err := h.coordinator.IsSessionRevoked(ctx, session.ID)
		cancel()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if revoked {
			h.errorResponse(w, r, "登录已失效，请重新登录")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), SessionCtx, session)))
	})
}

func (h *Handler) requireRole(roles ...domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFrom(r.Context())
			if session == nil || !slices.Contains(roles, session.Role) {
				h.errorResponse(w, r, "权限不足")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// lineupManager 限制只有主教练可以改动阵容
func (h *Handler) lineupManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sessionFrom(r.Context())
		if session == nil || !session.CanManageLineup() {
			h.errorResponse(w, r, "只有主教练可以生成或发布阵容")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loadByID 按 URL 中的 id 读取实体放入 context，name 用于错误提示
func loadByID[T any](h *Handler, key ContextKey, name string, get func(int64) (T, error)) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				h.errorResponse(w, r, name+"ID无效")
				return
			}

			v, err := get(id)
			if err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					h.errorResponse(w, r, name+"不存在")
				default:
					h.internalServerError(w, r, err)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), key, v)))
		})
	}
}

func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := sessionFrom(r.Context()).UserID()
		if err != nil {
			h.errorResponse(w, r, "无效的令牌")
			return
		}

		me, err := h.repository.GetUserByID(userID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "个人信息不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), MyInfoCtx, me)))
	})
}

func (h *Handler) userInfo(next http.Handler) http.Handler {
	return loadByID(h, UserInfoCtx, "教练", h.repository.GetUserByID)(next)
}

func (h *Handler) playerInfo(next http.Handler) http.Handler {
	return loadByID(h, PlayerInfoCtx, "球员", h.repository.GetPlayerByID)(next)
}

func (h *Handler) gameInfo(next http.Handler) http.Handler {
	return loadByID(h, GameInfoCtx, "比赛", h.repository.GetGameByID)(next)
}

// lineupInfo 读取 context 中比赛已保存的阵容，必须在 gameInfo 之后使用
func (h *Handler) lineupInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		game := r.Context().Value(GameInfoCtx).(*domain.Game)

		lineup, err := h.repository.GetLineupByGameID(game.ID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "该比赛尚未生成阵容")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), LineupInfoCtx, lineup)))
	})
}

// lineupGenerationLock 保证同一场比赛同时只有一个排阵请求在运行
func (h *Handler) lineupGenerationLock(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		game := r.Context().Value(GameInfoCtx).(*domain.Game)

		ctx, cancel := h.redisContext(r.Context())
		acquired, err := h.coordinator.AcquireLineupLock(ctx, game.ID, time.Duration(h.config.Redis.LineupLockTTL)*time.Second)
		cancel()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if !acquired {
			h.errorResponse(w, r, "该比赛正在生成阵容，请稍后再试")
			return
		}

		defer func() {
			// 请求可能已经结束，不能使用 r.Context()
			ctx, cancel := h.redisContext(context.Background())
			defer cancel()
			if err := h.coordinator.ReleaseLineupLock(ctx, game.ID); err != nil {
				slog.Error("无法释放排阵锁", "gameID", game.ID, "error", err)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) preventOperateInitialAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(UserInfoCtx).(*domain.User)
		if user.Username == h.config.InitialAdmin.Username {
			h.errorResponse(w, r, "禁止操作初始管理员")
			return
		}
		next.ServeHTTP(w, r)
	})
}
