package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/utils"
)

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name              string     `json:"name" validate:"required"`
		Innings           int32      `json:"innings" validate:"min=0"`
		MaxPrimaryOnField *int32     `json:"maxPrimaryOnField" validate:"omitempty,min=0"`
		Mode              string     `json:"mode" validate:"omitempty,oneof=regular playoff"`
		PlayerIDs         []int64    `json:"playerIDs" validate:"required,min=1,unique"`
		PlayedAt          *time.Time `json:"playedAt"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 未指定的参数使用配置中的默认值
	game := &domain.Game{
		Name:              req.Name,
		Innings:           h.config.Game.Innings,
		MaxPrimaryOnField: h.config.Game.MaxPrimaryOnField,
		Mode:              domain.GameMode(h.config.Game.Mode),
		PlayerIDs:         req.PlayerIDs,
	}
	if req.Innings > 0 {
		game.Innings = req.Innings
	}
	if req.MaxPrimaryOnField != nil {
		game.MaxPrimaryOnField = *req.MaxPrimaryOnField
	}
	if req.Mode != "" {
		game.Mode = domain.GameMode(req.Mode)
	}
	if req.PlayedAt != nil {
		game.PlayedAt = *req.PlayedAt
	}

	if err := utils.ValidateGame(game); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 出场球员必须都存在，同时检查名单本身是否合法
	players, ok := h.gamePlayers(w, r, game)
	if !ok {
		return
	}
	if err := utils.ValidateRoster(players); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateGame(game); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "games_name_key":
				h.errorResponse(w, r, "比赛名称已存在")
			case "game_players_player_id_fkey":
				h.errorResponse(w, r, "出场名单中有球员不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建比赛成功", game)
}

func (h *Handler) GetAllGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.repository.GetAllGames()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取比赛列表成功", games)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	game := r.Context().Value(GameInfoCtx).(*domain.Game)
	h.successResponse(w, r, "获取比赛信息成功", game)
}

func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	game := r.Context().Value(GameInfoCtx).(*domain.Game)

	if err := h.repository.DeleteGame(game.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除比赛成功", nil)
}

// generateLineupRequest 中为 0 的参数使用配置中的默认值
type generateLineupRequest struct {
	InitialTemperature float64 `json:"initialTemperature" validate:"min=0,max=1000000"`
	CoolingRate        float64 `json:"coolingRate" validate:"min=0,lt=1"`
	Iterations         int32   `json:"iterations" validate:"min=0,max=1000000"`
	DiversityPenalty   float64 `json:"diversityPenalty" validate:"min=0,max=1000"`
	Seed               *int64  `json:"seed"`
}

func (req *generateLineupRequest) parameters(defaults config.SchedulerConfig) *scheduler.Parameters {
	parameters := &scheduler.Parameters{
		InitialTemperature: defaults.InitialTemperature,
		CoolingRate:        defaults.CoolingRate,
		Iterations:         defaults.Iterations,
		DiversityPenalty:   defaults.DiversityPenalty,
	}
	if req.InitialTemperature > 0 {
		parameters.InitialTemperature = req.InitialTemperature
	}
	if req.CoolingRate > 0 {
		parameters.CoolingRate = req.CoolingRate
	}
	if req.Iterations > 0 {
		parameters.Iterations = req.Iterations
	}
	if req.DiversityPenalty > 0 {
		parameters.DiversityPenalty = req.DiversityPenalty
	}
	return parameters
}

// gamePlayers 按出场顺序读取比赛的球员，球员可能在建赛后被删除
func (h *Handler) gamePlayers(w http.ResponseWriter, r *http.Request, game *domain.Game) ([]*domain.Player, bool) {
	players, err := h.repository.GetPlayersByIDs(game.PlayerIDs)
	if err != nil {
		h.playersLookupError(w, r, err)
		return nil, false
	}
	return players, true
}

func (h *Handler) playersLookupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "出场名单中有球员不存在")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GenerateLineup(w http.ResponseWriter, r *http.Request) {
	game := r.Context().Value(GameInfoCtx).(*domain.Game)

	var req generateLineupRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	players, ok := h.gamePlayers(w, r, game)
	if !ok {
		return
	}

	opts := []scheduler.Option{}
	if req.Seed != nil {
		opts = append(opts, scheduler.WithRand(rand.New(rand.NewSource(*req.Seed))))
	}

	s, err := scheduler.New(req.parameters(h.config.Scheduler), game, players, opts...)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, err := s.Schedule()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.InsertLineup(res.Lineup); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	slog.Info("已生成阵容", "gameID", game.ID, "runID", res.RunID, "cost", res.Cost, "by", sessionFrom(r.Context()).FullName)

	h.successResponse(w, r, "自动排阵成功", map[string]any{
		"lineup":      res.Lineup,
		"initialCost": res.InitialCost,
		"breakdown":   res.Breakdown,
		"accepted":    res.Accepted,
		"improved":    res.Improved,
	})
}

func (h *Handler) GetLineup(w http.ResponseWriter, r *http.Request) {
	lineup := r.Context().Value(LineupInfoCtx).(*domain.Lineup)
	h.successResponse(w, r, "获取阵容成功", lineup)
}

// lineupTable 将已保存的阵容渲染成表格
func (h *Handler) lineupTable(w http.ResponseWriter, r *http.Request, game *domain.Game, lineup *domain.Lineup) ([][]string, bool) {
	players, ok := h.gamePlayers(w, r, game)
	if !ok {
		return nil, false
	}

	playersMap := make(map[int64]*domain.Player, len(players))
	for _, p := range players {
		playersMap[p.ID] = p
	}

	table, err := scheduler.LineupTable(lineup, playersMap)
	if err != nil {
		h.internalServerError(w, r, err)
		return nil, false
	}

	return table, true
}

func (h *Handler) GetLineupCSV(w http.ResponseWriter, r *http.Request) {
	game := r.Context().Value(GameInfoCtx).(*domain.Game)
	lineup := r.Context().Value(LineupInfoCtx).(*domain.Lineup)

	table, ok := h.lineupTable(w, r, game, lineup)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="lineup-%d.csv"`, game.ID))
	if err := scheduler.WriteCSV(w, table); err != nil {
		// 响应头已经写出，只能记录日志
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) PublishLineup(w http.ResponseWriter, r *http.Request) {
	game := r.Context().Value(GameInfoCtx).(*domain.Game)
	lineup := r.Context().Value(LineupInfoCtx).(*domain.Lineup)
	session := sessionFrom(r.Context())

	table, ok := h.lineupTable(w, r, game, lineup)
	if !ok {
		return
	}

	coaches, err := h.repository.GetActiveCoaches()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	for _, coach := range coaches {
		mailMessage := domain.MailMessage{
			Type: domain.MailTypeLineupPublished,
			To:   coach.Email,
			Data: domain.LineupPublishedMailData{
				FullName:    coach.FullName,
				GameName:    game.Name,
				PublishedBy: session.FullName,
				PlayedAt:    game.PlayedAt.Format("2006-01-02 15:04"),
				Table:       table,
			},
		}

		if err := h.publishMail(mailMessage); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	if err := h.repository.MarkLineupPublished(lineup); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "发布阵容失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "发布阵容成功", lineup)
}
