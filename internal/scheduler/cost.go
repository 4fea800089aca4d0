package scheduler

import (
	"math"
	"slices"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

const (
	invalidAssignmentPenalty = 1000 // 球员不愿意守该位置
	imbalancedSittingPenalty = 1000 // 坐替补席次数差距过大
	skillFactor              = 20

	// 只有两个位置空缺时（即三名外野手的情况），场上的外野位置按中等重要程度计算
	threeOutfielderImportance = 8

	orderTopWeight        = 5  // 击球顺序越靠前越希望是高水平球员
	highSkillThreshold    = 4  // 不低于该值视为高水平
	lowSkillThreshold     = 2  // 不高于该值视为低水平
	highToLowBonus        = 20 // 高水平球员后紧跟低水平球员时的奖励
	consecutiveLowPenalty = 50 // 连续出现低水平球员的惩罚
	sawtoothPenalty       = 50 // 相邻两次水平变化方向相同时的惩罚
)

func (s *Scheduler) cost(sol *Solution) float64 {
	return s.evaluate(sol).Total()
}

/**
 * 计算候选解的各项惩罚，越小越好
 * 1. Sitting: 逐局累计每个球员坐替补席的次数，每局结束后若最大值与最小值相差超过 1 则惩罚
 * 2. Eligibility + Skill: 守备安排是否合适，以及位置重要程度与球员水平是否匹配
 * 3. Diversity: 常规赛中同一球员重复守同一位置（默认不启用）
 * 4. BattingOrder: 击球顺序的形状
 */
func (s *Scheduler) evaluate(sol *Solution) Breakdown {
	var b Breakdown

	sitCounts := make([]int, len(s.roster))
	for _, inning := range sol.innings {
		for _, a := range inning.assignments {
			if a.position == domain.PositionBench {
				sitCounts[a.player]++
			}
		}

		// 注意这里用的是截至当前这一局的累计次数
		if spread := slices.Max(sitCounts) - slices.Min(sitCounts); spread > 1 {
			b.Sitting += float64(spread) * imbalancedSittingPenalty
		}

		eligibility, skill := s.fieldingPenalty(inning)
		b.Eligibility += eligibility
		b.Skill += skill
	}

	b.Diversity = s.diversityPenalty(sol)
	b.BattingOrder = s.battingOrderPenalty(sol.BattingOrder())

	return b
}

func (s *Scheduler) fieldingPenalty(inning InningAssignment) (eligibility float64, skill float64) {
	filled := make(map[domain.Position]bool, len(domain.FieldPositions))
	for _, a := range inning.assignments {
		filled[a.position] = true
	}
	missing := 0
	for _, pos := range domain.FieldPositions {
		if !filled[pos] {
			missing++
		}
	}
	threeOutfielders := missing == 2

	for _, a := range inning.assignments {
		if a.position == domain.PositionBench {
			continue
		}

		importance := positionImportance[a.position]
		if threeOutfielders && isOutfield(a.position) {
			importance = threeOutfielderImportance
		}

		player := s.player(a.player)
		if !canPlay(player, a.position) {
			eligibility += invalidAssignmentPenalty
		}

		// 季后赛希望高水平球员守重要位置，常规赛则让水平较低的球员多获得锻炼
		if s.game.Mode == domain.GameModePlayoff {
			skill += importance * float64(domain.MaxSkill-player.Skill) * skillFactor
		} else {
			skill += importance * float64(player.Skill-domain.MinSkill) * skillFactor
		}
	}

	return eligibility, skill
}

func (s *Scheduler) diversityPenalty(sol *Solution) float64 {
	if s.parameters.DiversityPenalty <= 0 || s.game.Mode != domain.GameModeRegular {
		return 0
	}

	fielded := make([]int, len(s.roster))
	played := make([]map[domain.Position]bool, len(s.roster))
	for _, inning := range sol.innings {
		for _, a := range inning.assignments {
			if a.position == domain.PositionBench {
				continue
			}
			if played[a.player] == nil {
				played[a.player] = make(map[domain.Position]bool)
			}
			played[a.player][a.position] = true
			fielded[a.player]++
		}
	}

	penalty := 0.0
	for i := range s.roster {
		if fielded[i] > 1 {
			penalty += float64(fielded[i]-len(played[i])) * s.parameters.DiversityPenalty
		}
	}
	return penalty
}

func (s *Scheduler) battingOrderPenalty(order []int) float64 {
	n := len(order)
	skills := make([]int, n)
	for i, h := range order {
		skills[i] = int(s.player(h).Skill)
	}

	penalty := 0.0

	// 1. 高水平球员排在前面
	for i, skill := range skills {
		penalty += float64((n - i) * (domain.MaxSkill - skill) * orderTopWeight)
	}

	// 2. 高水平球员后紧跟低水平球员
	for i := 0; i+1 < n; i++ {
		if skills[i] >= highSkillThreshold && skills[i+1] <= lowSkillThreshold {
			penalty -= highToLowBonus
		}
	}

	// 3. 连续的低水平球员，连续 k 人惩罚 (k-1) 次
	run := 0
	for _, skill := range skills {
		if skill <= lowSkillThreshold {
			run++
			continue
		}
		if run > 1 {
			penalty += float64((run - 1) * consecutiveLowPenalty)
		}
		run = 0
	}
	if run > 1 {
		penalty += float64((run - 1) * consecutiveLowPenalty)
	}

	// 4. 希望水平呈锯齿状交替变化
	for i := 1; i+1 < n; i++ {
		in := skills[i] - skills[i-1]
		out := skills[i+1] - skills[i]
		if (in > 0 && out > 0) || (in < 0 && out < 0) {
			penalty += sawtoothPenalty * (math.Abs(float64(in)) + math.Abs(float64(out)))
		}
	}

	return penalty
}
