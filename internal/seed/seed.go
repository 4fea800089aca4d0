package seed

import (
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/repository"
)

// DemoPlayers 返回一支真实球队的名单，可用于演示和测试
func DemoPlayers() []*domain.Player {
	players := []*domain.Player{
		{Name: "Paul M", Category: domain.CategoryPrimary, Positions: []string{"*", "P"}, Skill: 5},
		{Name: "Alex B", Category: domain.CategoryPrimary, Positions: []string{"OF", "P"}, Skill: 4},
		{Name: "David D", Category: domain.CategoryPrimary, Positions: []string{"*"}, Skill: 5},
		{Name: "Mason K", Category: domain.CategoryPrimary, Positions: []string{"*", "P"}, Skill: 4},
		{Name: "Bailey B", Category: domain.CategoryOther, Positions: []string{"3B", "2B", "1B"}, Skill: 4},
		{Name: "David G", Category: domain.CategoryPrimary, Positions: []string{"OF"}, Skill: 5},
		{Name: "Leia C", Category: domain.CategoryOther, Positions: []string{"RF", "C", "2B"}, Skill: 2},
		{Name: "Nicolle C", Category: domain.CategoryOther, Positions: []string{"RF", "C"}, Skill: 1},
		{Name: "Rudy G", Category: domain.CategoryPrimary, Positions: []string{"OF", "1B"}, Skill: 3},
		{Name: "Ryan A", Category: domain.CategoryPrimary, Positions: []string{"IF"}, Skill: 5},
		{Name: "Skylar V", Category: domain.CategoryOther, Positions: []string{"RF", "2B", "C", "SS"}, Skill: 3},
		{Name: "Thomas N", Category: domain.CategoryPrimary, Positions: []string{"OF", "2B", "P", "C"}, Skill: 3},
	}

	for _, p := range players {
		p.IsActive = true
	}

	return players
}

// SeedDemoRoster 插入演示球员以及一场使用全部演示球员的比赛
func SeedDemoRoster(r *repository.Repository) {
	playerIDs := make([]int64, 0)

	for _, player := range DemoPlayers() {
		if err := r.CreatePlayer(player); err != nil {
			slog.Error("插入球员失败", "name", player.Name, "error", err)
			continue
		}
		playerIDs = append(playerIDs, player.ID)
	}

	if len(playerIDs) == 0 {
		slog.Error("没有插入任何球员")
		return
	}

	game := &domain.Game{
		Name:              "演示比赛",
		Innings:           6,
		MaxPrimaryOnField: 7,
		Mode:              domain.GameModeRegular,
		PlayerIDs:         playerIDs,
		PlayedAt:          time.Now().Add(time.Hour * 24 * 7),
	}

	if err := r.CreateGame(game); err != nil {
		slog.Error("插入比赛失败", "error", err)
		return
	}

	slog.Info("插入演示数据完成", "players", len(playerIDs), "gameID", game.ID)
}
