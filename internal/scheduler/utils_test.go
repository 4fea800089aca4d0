package scheduler

import (
	"testing"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

func TestCanPlay(t *testing.T) {
	tests := []struct {
		tokens []string
		pos    domain.Position
		want   bool
	}{
		{[]string{"*"}, domain.PositionPitcher, false},
		{[]string{"*"}, domain.PositionCatcher, true},
		{[]string{"*"}, domain.PositionRightCenterField, true},
		{[]string{"*", "P"}, domain.PositionPitcher, true},
		{[]string{"P"}, domain.PositionPitcher, true},
		{[]string{"P"}, domain.PositionShortstop, false},
		{[]string{"IF"}, domain.PositionCatcher, true},
		{[]string{"IF"}, domain.PositionFirstBase, true},
		{[]string{"IF"}, domain.PositionShortstop, true},
		{[]string{"IF"}, domain.PositionLeftField, false},
		{[]string{"IF"}, domain.PositionPitcher, false},
		{[]string{"OF"}, domain.PositionLeftCenterField, true},
		{[]string{"OF"}, domain.PositionRightField, true},
		{[]string{"OF"}, domain.PositionSecondBase, false},
		{[]string{"OF", "1B"}, domain.PositionFirstBase, true},
		{[]string{"RF", "C"}, domain.PositionThirdBase, false},
		{[]string{}, domain.PositionShortstop, false},
		{[]string{}, domain.PositionBench, true},
		{[]string{"P"}, domain.PositionBench, true},
	}

	for _, tt := range tests {
		player := &domain.Player{Name: "x", Positions: tt.tokens}
		if got := canPlay(player, tt.pos); got != tt.want {
			t.Fatalf("canPlay(%v, %s): expected %v, got %v", tt.tokens, tt.pos, tt.want, got)
		}
	}
}

func TestFillerCanPlayAnyButPitcher(t *testing.T) {
	for _, pos := range domain.FieldPositions {
		want := pos != domain.PositionPitcher
		if got := canPlay(filler, pos); got != want {
			t.Fatalf("filler at %s: expected %v, got %v", pos, want, got)
		}
	}
	if filler.Skill != 2 {
		t.Fatalf("expected filler skill 2, got %d", filler.Skill)
	}
}

func TestAscendingPositions(t *testing.T) {
	positions := ascendingPositions()
	if len(positions) != len(domain.FieldPositions) {
		t.Fatalf("expected %d positions, got %d", len(domain.FieldPositions), len(positions))
	}

	want := []domain.Position{
		domain.PositionCatcher,
		domain.PositionRightField,
		domain.PositionSecondBase,
		domain.PositionThirdBase,
		domain.PositionRightCenterField,
		domain.PositionLeftField,
		domain.PositionLeftCenterField,
		domain.PositionShortstop,
		domain.PositionFirstBase,
		domain.PositionPitcher,
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, positions)
		}
	}
}
