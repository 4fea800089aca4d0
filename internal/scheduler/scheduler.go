package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/utils"
)

type Scheduler struct {
	parameters *Parameters
	game       *domain.Game
	roster     []*domain.Player // 下标即为球员在候选解中的句柄
	primary    []int            // M 类球员的句柄
	other      []int            // O 类球员的句柄
	rng        *rand.Rand
	logger     *slog.Logger
}

type Option func(*Scheduler)

// WithRand 注入随机数生成器，便于复现结果
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) {
		s.rng = rng
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func New(parameters *Parameters, game *domain.Game, roster []*domain.Player, opts ...Option) (*Scheduler, error) {
	if err := validateParameters(parameters); err != nil {
		return nil, err
	}
	if err := utils.ValidateGame(game); err != nil {
		return nil, err
	}
	if err := utils.ValidateRoster(roster); err != nil {
		return nil, err
	}

	s := &Scheduler{
		parameters: parameters,
		game:       game,
		roster:     roster,
		primary:    make([]int, 0),
		other:      make([]int, 0),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:     slog.Default(),
	}

	for i, player := range roster {
		if player.Category == domain.CategoryPrimary {
			s.primary = append(s.primary, i)
		} else {
			s.other = append(s.other, i)
		}
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func validateParameters(p *Parameters) error {
	if p == nil {
		return errors.New("缺少模拟退火参数")
	}
	if p.InitialTemperature <= 0 {
		return fmt.Errorf("初始温度必须大于 0，当前为 %v", p.InitialTemperature)
	}
	if p.CoolingRate <= 0 || p.CoolingRate >= 1 {
		return fmt.Errorf("降温系数必须在 (0, 1) 之间，当前为 %v", p.CoolingRate)
	}
	if p.Iterations < 0 {
		return fmt.Errorf("迭代次数不能为负数，当前为 %d", p.Iterations)
	}
	if p.DiversityPenalty < 0 {
		return fmt.Errorf("重复位置惩罚不能为负数，当前为 %v", p.DiversityPenalty)
	}
	return nil
}

// player 根据句柄取出球员，fillerHandle 对应虚拟占位球员
func (s *Scheduler) player(handle int) *domain.Player {
	if handle == fillerHandle {
		return filler
	}
	return s.roster[handle]
}

// Schedule 使用模拟退火搜索，返回搜索过程中代价最小的解
func (s *Scheduler) Schedule() (*Result, error) {
	runID := uuid.New()

	current := s.randomSolution()
	currentCost := s.cost(current)

	// current 在被替换后不会再被修改（邻域操作总是作用在副本上），因此 best 可以直接引用它
	best := current
	bestCost := currentCost
	initialCost := currentCost

	accepted, improved := 0, 0
	temperature := s.parameters.InitialTemperature

	for i := 0; i < int(s.parameters.Iterations); i++ {
		candidate := s.neighbor(current)
		candidateCost := s.cost(candidate)

		if s.accept(currentCost, candidateCost, temperature) {
			current = candidate
			currentCost = candidateCost
			accepted++

			if currentCost < bestCost {
				best = current
				bestCost = currentCost
				improved++
				s.logger.Debug("发现更优解", "runID", runID, "iteration", i+1, "cost", bestCost, "temperature", temperature)
			}
		}

		// 几何降温，不会回升
		temperature *= s.parameters.CoolingRate
	}

	lineup := s.lineup(best, bestCost, runID)

	// 检查结果是否满足约束条件
	if err := utils.ValidateLineupWithRoster(lineup, s.game, s.roster); err != nil {
		return nil, err
	}

	s.logger.Info("自动排阵完成",
		slog.String("runID", runID.String()),
		slog.Int("iterations", int(s.parameters.Iterations)),
		slog.Float64("initialCost", initialCost),
		slog.Float64("cost", bestCost),
		slog.Int("accepted", accepted),
		slog.Int("improved", improved),
	)

	return &Result{
		RunID:       runID,
		Solution:    best,
		Lineup:      lineup,
		Cost:        bestCost,
		InitialCost: initialCost,
		Breakdown:   s.evaluate(best),
		Accepted:    accepted,
		Improved:    improved,
	}, nil
}

// accept 使用 Metropolis 准则：更优的解总是接受，更差的解以 exp(-delta/T) 的概率接受
func (s *Scheduler) accept(currentCost, candidateCost, temperature float64) bool {
	delta := candidateCost - currentCost
	if delta < 0 {
		return true
	}
	if temperature <= 0 {
		return false
	}
	return s.rng.Float64() < math.Exp(-delta/temperature)
}

// lineup 将候选解中的句柄转换回球员 ID
func (s *Scheduler) lineup(sol *Solution, cost float64, runID uuid.UUID) *domain.Lineup {
	lineup := &domain.Lineup{
		GameID:       s.game.ID,
		RunID:        runID.String(),
		Cost:         cost,
		Innings:      make([]domain.LineupInning, len(sol.innings)),
		BattingOrder: make([]domain.LineupBatter, 0, len(s.roster)),
	}

	for i, inning := range sol.innings {
		lineup.Innings[i] = domain.LineupInning{
			Inning:      int32(i + 1),
			Assignments: make([]domain.LineupAssignment, len(inning.assignments)),
		}
		for j, a := range inning.assignments {
			lineup.Innings[i].Assignments[j] = domain.LineupAssignment{
				PlayerID: s.roster[a.player].ID,
				Position: a.position,
			}
		}
	}

	for i, h := range sol.BattingOrder() {
		batter := domain.LineupBatter{Slot: int32(i + 1)}
		if h != fillerHandle {
			id := s.roster[h].ID
			batter.PlayerID = &id
		}
		lineup.BattingOrder = append(lineup.BattingOrder, batter)
	}

	return lineup
}
