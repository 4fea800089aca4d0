package scheduler

import (
	"slices"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

var positionImportance = map[domain.Position]float64{
	domain.PositionPitcher:          10,
	domain.PositionShortstop:        9,
	domain.PositionFirstBase:        9,
	domain.PositionLeftField:        8,
	domain.PositionLeftCenterField:  8,
	domain.PositionThirdBase:        7,
	domain.PositionRightCenterField: 7,
	domain.PositionSecondBase:       6,
	domain.PositionRightField:       3,
	domain.PositionCatcher:          1,
}

// 用于补足击球顺序中其他类别人数的虚拟球员
var filler = &domain.Player{
	Name:      "SLOT",
	Category:  domain.CategoryOther,
	Positions: []string{domain.TokenAnyButPitcher},
	Skill:     2,
}

// canPlay 判断球员是否愿意守这个位置，替补席永远可以
func canPlay(player *domain.Player, pos domain.Position) bool {
	if pos == domain.PositionBench {
		return true
	}
	if slices.Contains(player.Positions, string(pos)) {
		return true
	}
	if slices.Contains(player.Positions, domain.TokenAnyButPitcher) && pos != domain.PositionPitcher && domain.IsFieldPosition(pos) {
		return true
	}
	if slices.Contains(player.Positions, domain.TokenInfield) && slices.Contains(domain.InfieldPositions, pos) {
		return true
	}
	if slices.Contains(player.Positions, domain.TokenOutfield) && slices.Contains(domain.OutfieldPositions, pos) {
		return true
	}
	return false
}

// ascendingPositions 返回按重要程度从低到高排序的守备位置（重要程度相同时保持原有顺序）
func ascendingPositions() []domain.Position {
	positions := slices.Clone(domain.FieldPositions)
	slices.SortStableFunc(positions, func(a, b domain.Position) int {
		switch {
		case positionImportance[a] < positionImportance[b]:
			return -1
		case positionImportance[a] > positionImportance[b]:
			return 1
		}
		return 0
	})
	return positions
}

func isOutfield(pos domain.Position) bool {
	return slices.Contains(domain.OutfieldPositions, pos)
}
