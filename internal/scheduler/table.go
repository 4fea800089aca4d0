package scheduler

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

func tableHeader(innings int) []string {
	header := make([]string, 0, innings+1)
	header = append(header, "球员")
	for i := 0; i < innings; i++ {
		header = append(header, fmt.Sprintf("第 %d 局", i+1))
	}
	return header
}

// Table 按击球顺序输出每个球员每一局的位置，第一行为表头
// 占位球员只输出名字
func (s *Scheduler) Table(sol *Solution) ([][]string, error) {
	rows := [][]string{tableHeader(sol.Innings())}

	for _, h := range sol.BattingOrder() {
		row := make([]string, 1, sol.Innings()+1)
		row[0] = s.player(h).Name
		if h == fillerHandle {
			rows = append(rows, append(row, make([]string, sol.Innings())...))
			continue
		}
		for inning := 0; inning < sol.Innings(); inning++ {
			pos, err := sol.PositionOf(h, inning)
			if err != nil {
				return nil, err
			}
			row = append(row, string(pos))
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// LineupTable 与 Table 相同，但作用于已经保存的排阵结果
func LineupTable(lineup *domain.Lineup, players map[int64]*domain.Player) ([][]string, error) {
	rows := [][]string{tableHeader(len(lineup.Innings))}

	for _, batter := range lineup.BattingOrder {
		if batter.PlayerID == nil {
			row := make([]string, len(lineup.Innings)+1)
			row[0] = filler.Name
			rows = append(rows, row)
			continue
		}

		player, ok := players[*batter.PlayerID]
		if !ok {
			return nil, fmt.Errorf("第 %d 棒的球员 %d 不存在", batter.Slot, *batter.PlayerID)
		}

		row := make([]string, 0, len(lineup.Innings)+1)
		row = append(row, player.Name)
		for _, inning := range lineup.Innings {
			pos, err := lineupPositionOf(inning, player.ID)
			if err != nil {
				return nil, err
			}
			row = append(row, string(pos))
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func lineupPositionOf(inning domain.LineupInning, playerID int64) (domain.Position, error) {
	for _, a := range inning.Assignments {
		if a.PlayerID == playerID {
			return a.Position, nil
		}
	}
	return "", fmt.Errorf("球员 %d 在第 %d 局: %w", playerID, inning.Inning, ErrAssignmentNotFound)
}

func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
