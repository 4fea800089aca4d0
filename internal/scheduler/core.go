package scheduler

import (
	"slices"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

const (
	fieldingMoveRate = 0.7 // 邻域操作中修改守备安排的概率，其余情况修改击球顺序
	benchMoveRate    = 0.5 // 修改守备安排时，尝试替补席与场上交换的概率
)

// shuffled 返回打乱顺序后的副本
func (s *Scheduler) shuffled(handles []int) []int {
	out := slices.Clone(handles)
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// randomInningAssignment 随机生成一局的守备安排
// 人数不足时空出最不重要的位置，人数过多时多出的人（优先是超出上限的 M 类球员）坐替补席
// 这里不检查球员是否愿意守该位置，不合适的安排交给 cost 去惩罚
func (s *Scheduler) randomInningAssignment() InningAssignment {
	primary := s.shuffled(s.primary)
	other := s.shuffled(s.other)

	allowed := min(int(s.game.MaxPrimaryOnField), len(primary))
	assignable := make([]int, 0, len(s.roster))
	assignable = append(assignable, primary[:allowed]...)
	assignable = append(assignable, other...)
	excess := primary[allowed:]

	positions := ascendingPositions()
	if len(assignable) < len(positions) {
		// 从最不重要的位置开始去掉
		positions = positions[len(positions)-len(assignable):]
	}
	for len(positions) < len(s.roster) {
		positions = append(positions, domain.PositionBench)
	}

	players := append(assignable, excess...)
	assignments := make([]Assignment, len(players))
	for i, player := range players {
		assignments[i] = Assignment{
			player:   player,
			position: positions[i],
		}
	}

	return InningAssignment{
		assignments: assignments,
	}
}

// randomBattingOrder 返回某个类别球员的随机排列
func (s *Scheduler) randomBattingOrder(category domain.Category) []int {
	if category == domain.CategoryPrimary {
		return s.shuffled(s.primary)
	}
	return s.shuffled(s.other)
}

// randomSolution 随机初始化一个候选解
func (s *Scheduler) randomSolution() *Solution {
	innings := make([]InningAssignment, s.game.Innings)
	for i := range innings {
		innings[i] = s.randomInningAssignment()
	}

	return &Solution{
		innings:      innings,
		primaryOrder: s.randomBattingOrder(domain.CategoryPrimary),
		otherOrder:   s.randomBattingOrder(domain.CategoryOther),
	}
}

// neighbor 在候选解的副本上做一次局部修改，找不到可行的修改时直接返回未修改的副本
func (s *Scheduler) neighbor(sol *Solution) *Solution {
	next := sol.clone()

	if s.rng.Float64() < fieldingMoveRate {
		s.mutateFielding(next)
	} else {
		s.mutateBattingOrder(next)
	}

	return next
}

// mutateFielding 随机选一局，交换两个球员的位置
func (s *Scheduler) mutateFielding(sol *Solution) bool {
	inning := s.rng.Intn(len(sol.innings))
	assignments := sol.innings[inning].assignments

	var benched, playing []int
	for i, a := range assignments {
		if a.position == domain.PositionBench {
			benched = append(benched, i)
		} else {
			playing = append(playing, i)
		}
	}

	moveType := s.rng.Float64()

	var first int
	var candidates []int

	// 只要本局替补席有人就可以换人，名单不足 10 人时超出上限的 M 球员同样坐在替补席
	if moveType <= benchMoveRate && len(benched) > 0 {
		// 替补席上的球员换下一个同类别、且他愿意守对方位置的场上球员
		first = benched[s.rng.Intn(len(benched))]
		firstPlayer := s.player(assignments[first].player)
		for _, i := range playing {
			if s.player(assignments[i].player).Category == firstPlayer.Category && canPlay(firstPlayer, assignments[i].position) {
				candidates = append(candidates, i)
			}
		}
	} else {
		if len(playing) == 0 {
			return false
		}
		// 两个场上球员交换位置
		first = playing[s.rng.Intn(len(playing))]
		firstPlayer := s.player(assignments[first].player)
		for _, i := range playing {
			if assignments[i].position != assignments[first].position && canPlay(firstPlayer, assignments[i].position) {
				candidates = append(candidates, i)
			}
		}
	}

	if len(candidates) == 0 {
		s.logger.Debug("没有可交换的位置", "player", s.player(assignments[first].player).Name, "inning", inning+1)
		return false
	}

	second := candidates[s.rng.Intn(len(candidates))]
	s.logger.Debug("交换位置",
		"inning", inning+1,
		"first", s.player(assignments[first].player).Name,
		"firstPosition", assignments[first].position,
		"second", s.player(assignments[second].player).Name,
		"secondPosition", assignments[second].position,
	)
	assignments[first].position, assignments[second].position = assignments[second].position, assignments[first].position

	return true
}

// mutateBattingOrder 按两个击球顺序的长度比例选择其中一个，随机交换其中两个球员
func (s *Scheduler) mutateBattingOrder(sol *Solution) bool {
	total := len(sol.primaryOrder) + len(sol.otherOrder)
	if total == 0 {
		return false
	}

	order := sol.otherOrder
	if s.rng.Float64() < float64(len(sol.primaryOrder))/float64(total) {
		order = sol.primaryOrder
	}

	if len(order) < 2 {
		return false
	}

	i := s.rng.Intn(len(order))
	j := s.rng.Intn(len(order))
	order[i], order[j] = order[j], order[i]

	return true
}
