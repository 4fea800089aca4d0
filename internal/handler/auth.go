package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const authCookieName = "__lineup_manager_token"

// Session 是登录后签发给教练的令牌内容
type Session struct {
	Role     domain.Role `json:"role"`
	FullName string      `json:"fullName"`
	jwt.RegisteredClaims
}

// UserID 返回令牌对应的教练 ID
func (s *Session) UserID() (int64, error) {
	return strconv.ParseInt(s.Subject, 10, 64)
}

// CanManageLineup 只有主教练可以生成或发布阵容
func (s *Session) CanManageLineup() bool {
	return s.Role == domain.RoleHeadCoach
}

func (h *Handler) newSession(user *domain.User, now time.Time) *Session {
	return &Session{
		Role:     user.Role,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(h.config.JWT.Expiration) * time.Hour)),
		},
	}
}

func (h *Handler) signSession(session *Session) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, session).SignedString([]byte(h.config.JWT.Secret))
}

func (h *Handler) parseSession(tokenString string) (*Session, error) {
	session := &Session{}
	_, err := jwt.ParseWithClaims(tokenString, session, func(t *jwt.Token) (interface{}, error) {
		return []byte(h.config.JWT.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, value string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     authCookieName,
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
	}
	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}
	http.SetCookie(w, cookie)
}

func (h *Handler) redisContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, time.Duration(h.config.Redis.OperationTimeout)*time.Second)
}

// revokeSession 使令牌在过期前失效，用于登出和修改密码
func (h *Handler) revokeSession(r *http.Request, session *Session) error {
	ctx, cancel := h.redisContext(r.Context())
	defer cancel()

	return h.coordinator.RevokeSession(ctx, session.ID, time.Until(session.ExpiresAt.Time))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.repository.GetUserByUsername(req.Username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "用户名不存在或密码错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.errorResponse(w, r, "用户名不存在或密码错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 已离队的教练不能再登录
	if !user.IsActive {
		h.errorResponse(w, r, "账号已停用")
		return
	}

	session := h.newSession(user, time.Now())
	ss, err := h.signSession(session)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.setSessionCookie(w, ss, session.ExpiresAt.Time)
	h.successResponse(w, r, "登录成功", user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	// 未登录或令牌无效时只清除 cookie
	if cookie, err := r.Cookie(authCookieName); err == nil {
		if session, err := h.parseSession(cookie.Value); err == nil {
			if err := h.revokeSession(r, session); err != nil {
				h.internalServerError(w, r, err)
				return
			}
		}
	}

	h.setSessionCookie(w, "", time.Now().Add(-time.Hour))
	h.successResponse(w, r, "登出成功", nil)
}
