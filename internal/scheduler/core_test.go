package scheduler

import (
	"reflect"
	"slices"
	"testing"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

// checkInning 检查一局中每个球员恰好出现一次，且每个守备位置至多出现一次
func checkInning(t *testing.T, s *Scheduler, inning InningAssignment) {
	t.Helper()

	if len(inning.assignments) != len(s.roster) {
		t.Fatalf("expected %d assignments, got %d", len(s.roster), len(inning.assignments))
	}

	players := make(map[int]bool)
	positions := make(map[domain.Position]bool)
	for _, a := range inning.assignments {
		if players[a.player] {
			t.Fatalf("player %d assigned twice", a.player)
		}
		players[a.player] = true

		if a.position == domain.PositionBench {
			continue
		}
		if !domain.IsFieldPosition(a.position) {
			t.Fatalf("unexpected position %q", a.position)
		}
		if positions[a.position] {
			t.Fatalf("position %s assigned twice", a.position)
		}
		positions[a.position] = true
	}
}

func positionsOf(inning InningAssignment) []domain.Position {
	out := make([]domain.Position, 0, len(inning.assignments))
	for _, a := range inning.assignments {
		out = append(out, a.position)
	}
	slices.Sort(out)
	return out
}

func TestRandomInningAssignmentIsBijection(t *testing.T) {
	roster := demoRoster()
	s := newTestScheduler(t, defaultParameters(), newGame(6, 7, domain.GameModeRegular, roster), roster, 1)

	for i := 0; i < 50; i++ {
		inning := s.randomInningAssignment()
		checkInning(t, s, inning)

		fielded, benched, primaryOnField := 0, 0, 0
		for _, a := range inning.assignments {
			if a.position == domain.PositionBench {
				benched++
				continue
			}
			fielded++
			if s.roster[a.player].Category == domain.CategoryPrimary {
				primaryOnField++
			}
		}
		if fielded != 10 || benched != 2 {
			t.Fatalf("expected 10 fielded and 2 benched, got %d and %d", fielded, benched)
		}
		if primaryOnField > 7 {
			t.Fatalf("expected at most 7 primary players on field, got %d", primaryOnField)
		}
	}
}

func TestRandomInningAssignmentDropsLeastImportantPositions(t *testing.T) {
	roster := newRoster(8, 0)
	s := newTestScheduler(t, defaultParameters(), newGame(1, 7, domain.GameModeRegular, roster), roster, 1)

	inning := s.randomInningAssignment()
	checkInning(t, s, inning)

	want := []domain.Position{
		domain.PositionPitcher,
		domain.PositionShortstop,
		domain.PositionFirstBase,
		domain.PositionLeftField,
		domain.PositionLeftCenterField,
		domain.PositionThirdBase,
		domain.PositionRightCenterField,
		domain.PositionBench,
	}
	slices.Sort(want)
	if got := positionsOf(inning); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected positions %v, got %v", want, got)
	}
}

func TestRandomInningAssignmentShortRoster(t *testing.T) {
	roster := newRoster(2, 1)
	s := newTestScheduler(t, defaultParameters(), newGame(1, 7, domain.GameModeRegular, roster), roster, 1)

	inning := s.randomInningAssignment()
	checkInning(t, s, inning)

	want := []domain.Position{domain.PositionPitcher, domain.PositionShortstop, domain.PositionFirstBase}
	slices.Sort(want)
	if got := positionsOf(inning); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected positions %v, got %v", want, got)
	}
}

func TestRandomInningAssignmentPrimaryCap(t *testing.T) {
	roster := newRoster(10, 0)
	s := newTestScheduler(t, defaultParameters(), newGame(1, 7, domain.GameModeRegular, roster), roster, 9)

	inning := s.randomInningAssignment()
	checkInning(t, s, inning)

	benched := 0
	for _, a := range inning.assignments {
		if a.position == domain.PositionBench {
			benched++
		}
	}
	if benched != 3 {
		t.Fatalf("expected 3 benched players, got %d", benched)
	}
}

func TestRandomSolutionShape(t *testing.T) {
	roster := demoRoster()
	s := newTestScheduler(t, defaultParameters(), newGame(6, 7, domain.GameModeRegular, roster), roster, 3)

	sol := s.randomSolution()
	if sol.Innings() != 6 {
		t.Fatalf("expected 6 innings, got %d", sol.Innings())
	}
	if len(sol.primaryOrder) != 8 || len(sol.otherOrder) != 4 {
		t.Fatalf("expected 8 primary and 4 other batters, got %d and %d", len(sol.primaryOrder), len(sol.otherOrder))
	}
	for _, h := range sol.primaryOrder {
		if s.roster[h].Category != domain.CategoryPrimary {
			t.Fatalf("expected primary player in primary order, got %s", s.roster[h].Name)
		}
	}
	for _, h := range sol.otherOrder {
		if s.roster[h].Category != domain.CategoryOther {
			t.Fatalf("expected other player in other order, got %s", s.roster[h].Name)
		}
	}
}

func TestNeighborDoesNotModifyOriginal(t *testing.T) {
	roster := demoRoster()
	s := newTestScheduler(t, defaultParameters(), newGame(6, 7, domain.GameModeRegular, roster), roster, 5)

	sol := s.randomSolution()
	snapshot := sol.clone()

	for i := 0; i < 200; i++ {
		s.neighbor(sol)
	}

	if !reflect.DeepEqual(sol, snapshot) {
		t.Fatalf("expected neighbor to leave the original solution untouched")
	}
}

func TestNeighborKeepsInvariants(t *testing.T) {
	roster := demoRoster()
	s := newTestScheduler(t, defaultParameters(), newGame(6, 7, domain.GameModeRegular, roster), roster, 8)

	sol := s.randomSolution()
	initialPositions := make([][]domain.Position, sol.Innings())
	for i, inning := range sol.innings {
		initialPositions[i] = positionsOf(inning)
	}
	primary := slices.Sorted(slices.Values(sol.primaryOrder))
	other := slices.Sorted(slices.Values(sol.otherOrder))

	for i := 0; i < 500; i++ {
		sol = s.neighbor(sol)

		for j, inning := range sol.innings {
			checkInning(t, s, inning)
			// 邻域操作只交换位置，每局的位置集合不变
			if !reflect.DeepEqual(positionsOf(inning), initialPositions[j]) {
				t.Fatalf("inning %d: position multiset changed", j+1)
			}
		}
		if !reflect.DeepEqual(slices.Sorted(slices.Values(sol.primaryOrder)), primary) {
			t.Fatalf("primary order is no longer a permutation: %v", sol.primaryOrder)
		}
		if !reflect.DeepEqual(slices.Sorted(slices.Values(sol.otherOrder)), other) {
			t.Fatalf("other order is no longer a permutation: %v", sol.otherOrder)
		}
	}
}

func TestMutateFieldingWithoutCandidates(t *testing.T) {
	// 只有一个球员时没有任何可交换的对象
	roster := []*domain.Player{newPlayer(1, "solo", domain.CategoryPrimary, 3)}
	s := newTestScheduler(t, defaultParameters(), newGame(2, 7, domain.GameModeRegular, roster), roster, 1)

	sol := s.randomSolution()
	snapshot := sol.clone()

	for i := 0; i < 20; i++ {
		if s.mutateFielding(sol) {
			t.Fatalf("expected no move to be possible")
		}
	}
	if !reflect.DeepEqual(sol, snapshot) {
		t.Fatalf("expected solution to be unchanged")
	}
}

func TestMutateFieldingBenchMoveKeepsCategory(t *testing.T) {
	roster := newRoster(8, 4)
	s := newTestScheduler(t, defaultParameters(), newGame(1, 10, domain.GameModeRegular, roster), roster, 4)

	benchMoves := 0
	for i := 0; i < 300; i++ {
		sol := s.randomSolution()
		before := sol.clone()
		if !s.mutateFielding(sol) {
			continue
		}

		var changed []int
		for j, a := range sol.innings[0].assignments {
			if a.position != before.innings[0].assignments[j].position {
				changed = append(changed, j)
			}
		}
		if len(changed) != 2 {
			t.Fatalf("expected exactly two assignments to change, got %d", len(changed))
		}

		a := before.innings[0].assignments[changed[0]]
		b := before.innings[0].assignments[changed[1]]
		if a.position != domain.PositionBench && b.position != domain.PositionBench {
			continue
		}
		benchMoves++
		if s.roster[a.player].Category != s.roster[b.player].Category {
			t.Fatalf("bench swap between %s and %s crosses categories", s.roster[a.player].Name, s.roster[b.player].Name)
		}
	}

	if benchMoves == 0 {
		t.Fatalf("expected at least one bench move")
	}
}

func TestMutateFieldingBenchMoveOnShortRoster(t *testing.T) {
	// 9 人中 8 个 M，上限 5 人，替补席上始终有 3 个 M
	roster := newRoster(8, 1)
	s := newTestScheduler(t, defaultParameters(), newGame(1, 5, domain.GameModeRegular, roster), roster, 11)

	benchMoves := 0
	for i := 0; i < 300; i++ {
		sol := s.randomSolution()
		before := sol.clone()
		if !s.mutateFielding(sol) {
			continue
		}

		for j, a := range sol.innings[0].assignments {
			if before.innings[0].assignments[j].position == domain.PositionBench && a.position != domain.PositionBench {
				benchMoves++
				if s.roster[a.player].Category != domain.CategoryPrimary {
					t.Fatalf("expected only M players on the bench, got %s", s.roster[a.player].Name)
				}
			}
		}
	}

	if benchMoves == 0 {
		t.Fatalf("expected bench moves with fewer than 10 players")
	}
}

func TestMutateBattingOrderSingleBatter(t *testing.T) {
	roster := newRoster(1, 0)
	s := newTestScheduler(t, defaultParameters(), newGame(1, 7, domain.GameModeRegular, roster), roster, 1)

	sol := s.randomSolution()
	if s.mutateBattingOrder(sol) {
		t.Fatalf("expected no batting order move with a single batter")
	}
}
