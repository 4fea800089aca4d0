package scheduler

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

// 虚拟占位球员的句柄，不对应 roster 中的任何球员
const fillerHandle = -1

var ErrAssignmentNotFound = errors.New("球员在该局中没有分配记录")

// Assignment: 某一局中某个球员被分配到的位置
type Assignment struct {
	player   int // 球员在 roster 中的下标
	position domain.Position
}

// InningAssignment: 一局的守备安排，roster 中的每个球员恰好出现一次
type InningAssignment struct {
	assignments []Assignment
}

// Solution: 一个完整的候选解，包括每一局的守备安排以及两个类别各自的击球顺序
// 最终的击球顺序由 BattingOrder 按需计算，不单独保存
type Solution struct {
	innings      []InningAssignment
	primaryOrder []int
	otherOrder   []int
}

func (sol *Solution) clone() *Solution {
	next := &Solution{
		innings:      make([]InningAssignment, len(sol.innings)),
		primaryOrder: slices.Clone(sol.primaryOrder),
		otherOrder:   slices.Clone(sol.otherOrder),
	}
	for i, inning := range sol.innings {
		next.innings[i] = InningAssignment{
			assignments: slices.Clone(inning.assignments),
		}
	}
	return next
}

// BattingOrder 返回交错合并后的击球顺序，其中可能包含 fillerHandle
func (sol *Solution) BattingOrder() []int {
	return renderBattingOrder(sol.primaryOrder, sol.otherOrder)
}

func (sol *Solution) Innings() int {
	return len(sol.innings)
}

// PositionOf 返回球员在第 inning 局（从 0 开始）的位置
func (sol *Solution) PositionOf(player int, inning int) (domain.Position, error) {
	if inning < 0 || inning >= len(sol.innings) {
		return "", fmt.Errorf("第 %d 局不存在: %w", inning+1, ErrAssignmentNotFound)
	}
	for _, a := range sol.innings[inning].assignments {
		if a.player == player {
			return a.position, nil
		}
	}
	return "", fmt.Errorf("球员 %d 在第 %d 局: %w", player, inning+1, ErrAssignmentNotFound)
}

// 模拟退火参数
type Parameters struct {
	InitialTemperature float64 // 初始温度
	CoolingRate        float64 // 每次迭代后温度乘以该系数
	Iterations         int32   // 迭代次数
	DiversityPenalty   float64 // 常规赛中重复守同一位置的惩罚，为 0 时不启用
}

// Breakdown: 各项惩罚的明细
type Breakdown struct {
	Sitting      float64 `json:"sitting"`
	Eligibility  float64 `json:"eligibility"`
	Skill        float64 `json:"skill"`
	Diversity    float64 `json:"diversity"`
	BattingOrder float64 `json:"battingOrder"`
}

func (b Breakdown) Total() float64 {
	return b.Sitting + b.Eligibility + b.Skill + b.Diversity + b.BattingOrder
}

// Result: 一次退火运行的结果
type Result struct {
	RunID       uuid.UUID
	Solution    *Solution
	Lineup      *domain.Lineup
	Cost        float64
	InitialCost float64
	Breakdown   Breakdown
	Accepted    int
	Improved    int
}
