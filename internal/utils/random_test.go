package utils

import (
	"testing"
)

func TestGenerateRandomPlayerIsValid(t *testing.T) {
	for i := 0; i < 100; i++ {
		p := GenerateRandomPlayer()
		if err := ValidatePlayer(p); err != nil {
			t.Fatalf("expected generated player to be valid, got %v", err)
		}
	}
}

func TestGenerateRandomGameIsValid(t *testing.T) {
	g := GenerateRandomGame([]int64{1, 2, 3})
	if err := ValidateGame(g); err != nil {
		t.Fatalf("expected generated game to be valid, got %v", err)
	}
	if len(g.PlayerIDs) != 3 {
		t.Fatalf("expected 3 players, got %d", len(g.PlayerIDs))
	}
}

func TestGenerateRandomSubset(t *testing.T) {
	arr := []int{1, 2, 3, 4, 5}
	for i := 0; i < 50; i++ {
		subset := GenerateRandomSubset(arr, 3)
		if len(subset) > 3 {
			t.Fatalf("expected at most 3 elements, got %v", subset)
		}
		seen := make(map[int]bool)
		for _, v := range subset {
			if seen[v] {
				t.Fatalf("expected distinct elements, got %v", subset)
			}
			seen[v] = true
		}
	}
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	username := GenerateUsernameFromChineseName("王伟")
	if username == "" || username[0] != 'w' {
		t.Fatalf("expected username to start with pinyin of the surname, got %q", username)
	}
}
