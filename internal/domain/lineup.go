package domain

import "time"

type LineupAssignment struct {
	PlayerID int64    `json:"playerID"`
	Position Position `json:"position"`
}

type LineupInning struct {
	Inning      int32              `json:"inning"` // 从 1 开始
	Assignments []LineupAssignment `json:"assignments"`
}

type LineupBatter struct {
	Slot     int32  `json:"slot"`     // 从 1 开始
	PlayerID *int64 `json:"playerID"` // 为 nil 时表示该棒次是占位用的虚拟球员
}

type Lineup struct {
	ID           int64          `json:"id"`
	GameID       int64          `json:"gameID"`
	RunID        string         `json:"runID"`
	Cost         float64        `json:"cost"`
	Innings      []LineupInning `json:"innings"`
	BattingOrder []LineupBatter `json:"battingOrder"`
	PublishedAt  *time.Time     `json:"publishedAt"`
	CreatedAt    time.Time      `json:"createdAt"`
	Version      int32          `json:"-"`
}
