package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

func ValidateGame(game *domain.Game) error {
	if game == nil {
		return errors.New("缺少比赛信息")
	}
	if game.Innings < 1 {
		return fmt.Errorf("比赛局数至少为 1，当前为 %d", game.Innings)
	}
	if game.MaxPrimaryOnField < 0 {
		return fmt.Errorf("场上 M 类球员人数上限不能为负数，当前为 %d", game.MaxPrimaryOnField)
	}
	switch game.Mode {
	case domain.GameModeRegular, domain.GameModePlayoff:
	default:
		return fmt.Errorf("未知的比赛类型 %q", game.Mode)
	}
	return nil
}

func ValidatePlayer(player *domain.Player) error {
	if player.Name == "" {
		return errors.New("球员名字不能为空")
	}
	switch player.Category {
	case domain.CategoryPrimary, domain.CategoryOther:
	default:
		return fmt.Errorf("球员 %s 的类别 %q 不合法", player.Name, player.Category)
	}
	if player.Skill < domain.MinSkill || player.Skill > domain.MaxSkill {
		return fmt.Errorf("球员 %s 的水平必须在 %d 到 %d 之间", player.Name, domain.MinSkill, domain.MaxSkill)
	}
	for _, token := range player.Positions {
		if !domain.IsValidPositionToken(token) {
			return fmt.Errorf("球员 %s 的位置 %q 不合法", player.Name, token)
		}
	}
	return nil
}

func ValidateRoster(players []*domain.Player) error {
	if len(players) == 0 {
		return errors.New("球员名单不能为空")
	}

	names := make(map[string]bool)
	ids := make(map[int64]bool)
	for _, player := range players {
		if err := ValidatePlayer(player); err != nil {
			return err
		}
		if names[player.Name] {
			return fmt.Errorf("球员名字 %s 重复", player.Name)
		}
		names[player.Name] = true
		if ids[player.ID] {
			return fmt.Errorf("球员 ID %d 重复", player.ID)
		}
		ids[player.ID] = true
	}
	return nil
}

// ValidateLineupWithRoster 检查排阵结果中每一局每个球员都恰好出现一次，且击球顺序中每个球员也恰好出现一次
func ValidateLineupWithRoster(lineup *domain.Lineup, game *domain.Game, players []*domain.Player) error {
	if len(lineup.Innings) != int(game.Innings) {
		return fmt.Errorf("排阵结果的局数 %d 和比赛局数 %d 不匹配", len(lineup.Innings), game.Innings)
	}

	roster := make(map[int64]bool, len(players))
	for _, player := range players {
		roster[player.ID] = true
	}

	for _, inning := range lineup.Innings {
		if len(inning.Assignments) != len(players) {
			return fmt.Errorf("第 %d 局的安排人数 %d 和球员人数 %d 不匹配", inning.Inning, len(inning.Assignments), len(players))
		}

		seen := make(map[int64]bool)
		for _, a := range inning.Assignments {
			if !roster[a.PlayerID] {
				return fmt.Errorf("第 %d 局中的球员 %d 不在名单中", inning.Inning, a.PlayerID)
			}
			if seen[a.PlayerID] {
				return fmt.Errorf("第 %d 局中球员 %d 重复出现", inning.Inning, a.PlayerID)
			}
			seen[a.PlayerID] = true
			if a.Position != domain.PositionBench && !domain.IsFieldPosition(a.Position) {
				return fmt.Errorf("第 %d 局中球员 %d 的位置 %q 不合法", inning.Inning, a.PlayerID, a.Position)
			}
		}
	}

	seen := make(map[int64]bool)
	for _, batter := range lineup.BattingOrder {
		if batter.PlayerID == nil {
			// 占位球员
			continue
		}
		if !roster[*batter.PlayerID] {
			return fmt.Errorf("第 %d 棒的球员 %d 不在名单中", batter.Slot, *batter.PlayerID)
		}
		if seen[*batter.PlayerID] {
			return fmt.Errorf("球员 %d 在击球顺序中重复出现", *batter.PlayerID)
		}
		seen[*batter.PlayerID] = true
	}
	if len(seen) != len(players) {
		return fmt.Errorf("击球顺序中只有 %d 名球员，名单中有 %d 名", len(seen), len(players))
	}

	return nil
}
