package utils

import (
	"testing"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

func validPlayers() []*domain.Player {
	return []*domain.Player{
		{ID: 1, Name: "Paul M", Category: domain.CategoryPrimary, Positions: []string{"*", "P"}, Skill: 5},
		{ID: 2, Name: "Leia C", Category: domain.CategoryOther, Positions: []string{"RF", "C", "2B"}, Skill: 2},
	}
}

func validGame() *domain.Game {
	return &domain.Game{Name: "test", Innings: 2, MaxPrimaryOnField: 7, Mode: domain.GameModeRegular, PlayerIDs: []int64{1, 2}}
}

func validLineup() *domain.Lineup {
	one, two := int64(1), int64(2)
	return &domain.Lineup{
		Innings: []domain.LineupInning{
			{Inning: 1, Assignments: []domain.LineupAssignment{{PlayerID: 1, Position: domain.PositionPitcher}, {PlayerID: 2, Position: domain.PositionShortstop}}},
			{Inning: 2, Assignments: []domain.LineupAssignment{{PlayerID: 2, Position: domain.PositionPitcher}, {PlayerID: 1, Position: domain.PositionBench}}},
		},
		BattingOrder: []domain.LineupBatter{
			{Slot: 1, PlayerID: &one},
			{Slot: 2, PlayerID: &two},
			{Slot: 3, PlayerID: nil},
		},
	}
}

func TestValidateGame(t *testing.T) {
	if err := ValidateGame(validGame()); err != nil {
		t.Fatalf("expected valid game, got %v", err)
	}

	tests := map[string]func(g *domain.Game){
		"zero innings": func(g *domain.Game) { g.Innings = 0 },
		"negative cap": func(g *domain.Game) { g.MaxPrimaryOnField = -1 },
		"unknown mode": func(g *domain.Game) { g.Mode = "friendly" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			g := validGame()
			mutate(g)
			if err := ValidateGame(g); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}

	if err := ValidateGame(nil); err == nil {
		t.Fatalf("expected error for missing game")
	}
}

func TestValidatePlayer(t *testing.T) {
	tests := map[string]func(p *domain.Player){
		"empty name":       func(p *domain.Player) { p.Name = "" },
		"unknown category": func(p *domain.Player) { p.Category = "X" },
		"skill too low":    func(p *domain.Player) { p.Skill = 0 },
		"skill too high":   func(p *domain.Player) { p.Skill = 6 },
		"unknown token":    func(p *domain.Player) { p.Positions = []string{"DH"} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := validPlayers()[0]
			mutate(p)
			if err := ValidatePlayer(p); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}

	p := validPlayers()[0]
	p.Positions = []string{"IF", "OF", "C"}
	if err := ValidatePlayer(p); err != nil {
		t.Fatalf("expected group tokens to be valid, got %v", err)
	}
}

func TestValidateRoster(t *testing.T) {
	if err := ValidateRoster(validPlayers()); err != nil {
		t.Fatalf("expected valid roster, got %v", err)
	}
	if err := ValidateRoster(nil); err == nil {
		t.Fatalf("expected error for empty roster")
	}

	players := validPlayers()
	players[1].Name = players[0].Name
	if err := ValidateRoster(players); err == nil {
		t.Fatalf("expected error for duplicate name")
	}

	players = validPlayers()
	players[1].ID = players[0].ID
	if err := ValidateRoster(players); err == nil {
		t.Fatalf("expected error for duplicate id")
	}
}

func TestValidateLineupWithRoster(t *testing.T) {
	if err := ValidateLineupWithRoster(validLineup(), validGame(), validPlayers()); err != nil {
		t.Fatalf("expected valid lineup, got %v", err)
	}

	three := int64(3)
	one := int64(1)
	tests := map[string]func(l *domain.Lineup){
		"missing inning": func(l *domain.Lineup) { l.Innings = l.Innings[:1] },
		"player twice in inning": func(l *domain.Lineup) {
			l.Innings[0].Assignments[1].PlayerID = 1
		},
		"missing player in inning": func(l *domain.Lineup) {
			l.Innings[1].Assignments = l.Innings[1].Assignments[:1]
		},
		"unknown position": func(l *domain.Lineup) {
			l.Innings[0].Assignments[0].Position = "DH"
		},
		"unknown batter": func(l *domain.Lineup) { l.BattingOrder[1].PlayerID = &three },
		"batter twice":   func(l *domain.Lineup) { l.BattingOrder[1].PlayerID = &one },
		"missing batter": func(l *domain.Lineup) { l.BattingOrder = l.BattingOrder[:1] },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			l := validLineup()
			mutate(l)
			if err := ValidateLineupWithRoster(l, validGame(), validPlayers()); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}
