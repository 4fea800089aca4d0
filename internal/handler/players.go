package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/utils"
)

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string   `json:"name" validate:"required"`
		Category  string   `json:"category" validate:"required,oneof=M O"`
		Positions []string `json:"positions" validate:"dive,required"`
		Skill     int32    `json:"skill" validate:"required,min=1,max=5"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	player := &domain.Player{
		Name:      req.Name,
		Category:  domain.Category(req.Category),
		Positions: req.Positions,
		Skill:     req.Skill,
	}
	if player.Positions == nil {
		player.Positions = make([]string, 0)
	}

	// 检查位置是否合法
	if err := utils.ValidatePlayer(player); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreatePlayer(player); err != nil {
		h.handlePlayerWriteError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建球员成功", player)
}

func (h *Handler) GetAllPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.repository.GetAllPlayers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取球员列表成功", players)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	player := r.Context().Value(PlayerInfoCtx).(*domain.Player)
	h.successResponse(w, r, "获取球员信息成功", player)
}

func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	player := r.Context().Value(PlayerInfoCtx).(*domain.Player)

	var req struct {
		Name      *string  `json:"name"`
		Category  *string  `json:"category" validate:"omitempty,oneof=M O"`
		Positions []string `json:"positions" validate:"omitempty,dive,required"`
		Skill     *int32   `json:"skill" validate:"omitempty,min=1,max=5"`
		IsActive  *bool    `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		player.Name = *req.Name
	}
	if req.Category != nil {
		player.Category = domain.Category(*req.Category)
	}
	if req.Positions != nil {
		player.Positions = req.Positions
	}
	if req.Skill != nil {
		player.Skill = *req.Skill
	}
	if req.IsActive != nil {
		player.IsActive = *req.IsActive
	}

	if err := utils.ValidatePlayer(player); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdatePlayer(player); err != nil {
		h.handlePlayerWriteError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新球员信息成功", player)
}

func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	player := r.Context().Value(PlayerInfoCtx).(*domain.Player)

	if err := h.repository.DeletePlayer(player.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "game_players_player_id_fkey":
			// 已经参加过比赛的球员只能标记为不活跃
			h.errorResponse(w, r, "该球员已有出场记录，无法删除")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除球员成功", nil)
}

func (h *Handler) handlePlayerWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "players_name_key":
			h.errorResponse(w, r, "球员名字已存在")
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "更新球员信息失败，请重试")
	default:
		h.internalServerError(w, r, err)
	}
}
